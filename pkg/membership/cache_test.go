package membership

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nitterfeed/pkg/errors"
	"nitterfeed/pkg/models"
)

func TestCacheMissingFile(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "missing.json"))

	m, err := cache.Load()
	assert.NoError(t, err)
	assert.Nil(t, m)
}

func TestCacheFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache := NewCache(path)

	updated := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, cache.Save(&models.Membership{
		Accounts:  []models.Handle{"alice", "bob"},
		UpdatedAt: updated,
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"accounts":["alice","bob"],"updated_at":"2024-03-15T12:00:00Z"}`, string(raw))
}

func TestCacheLoadNormalizesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"accounts":["@alice","Alice","bob/"],"updated_at":"2024-03-15T12:00:00Z"}`), 0644))

	m, err := NewCache(path).Load()
	require.NoError(t, err)
	assert.Equal(t, []models.Handle{"alice", "bob"}, m.Accounts)
}

func TestCacheCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0644))

	_, err := NewCache(path).Load()
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeCache, errors.TypeOf(err))
}

func TestCacheLoadZonelessTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"accounts":["alice","bob"],"updated_at":"2024-03-14T12:00:00.123456"}`), 0644))

	m, err := NewCache(path).Load()
	require.NoError(t, err)
	assert.Equal(t, []models.Handle{"alice", "bob"}, m.Accounts)
	assert.Equal(t, time.Date(2024, 3, 14, 12, 0, 0, 123456000, time.UTC), m.UpdatedAt)
	assert.True(t, m.IsFresh(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC), 7*24*time.Hour))
}

func TestCacheLoadUnreadableTimestampIsStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"accounts":["alice"],"updated_at":"last tuesday"}`), 0644))

	m, err := NewCache(path).Load()
	require.NoError(t, err)
	assert.Equal(t, []models.Handle{"alice"}, m.Accounts)
	assert.True(t, m.UpdatedAt.IsZero())
	assert.False(t, m.IsFresh(time.Now(), 7*24*time.Hour))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-14T12:00:00Z", time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)},
		{"2024-03-14T14:00:00+02:00", time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)},
		{"2024-03-14T12:00:00", time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)},
		{"2024-03-14 12:00:00.5", time.Date(2024, 3, 14, 12, 0, 0, 500000000, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	_, err := ParseTimestamp("")
	assert.Error(t, err)
}
