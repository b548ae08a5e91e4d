package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorType
	}{
		{404, ErrorTypeNotFound},
		{403, ErrorTypeClientError},
		{429, ErrorTypeClientError},
		{500, ErrorTypeServerError},
		{503, ErrorTypeServerError},
		{302, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		err := FromStatus(tt.code, "https://nitter.example/alice")
		if assert.NotNil(t, err, "code %d", tt.code) {
			assert.Equal(t, tt.want, err.Type)
			assert.Equal(t, tt.code, err.Code)
		}
	}

	assert.Nil(t, FromStatus(200, "https://nitter.example"))
	assert.Nil(t, FromStatus(204, "https://nitter.example"))
}

func TestTypeOfUnwrapsChains(t *testing.T) {
	base := Wrap(ErrorTypeNetwork, errors.New("connection refused"), "probe failed")
	wrapped := fmt.Errorf("resolving members: %w", base)

	assert.Equal(t, ErrorTypeNetwork, TypeOf(wrapped))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("plain")))
	assert.ErrorContains(t, base, "connection refused")
}

func TestIsSkippable(t *testing.T) {
	assert.True(t, IsSkippable(FromStatus(404, "x")))
	assert.True(t, IsSkippable(New(ErrorTypeParsing, "bad html")))
	assert.False(t, IsSkippable(New(ErrorTypeRender, "disk full")))
	assert.False(t, IsSkippable(errors.New("boom")))
}
