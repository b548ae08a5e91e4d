package feed

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/feeds"
	"github.com/mmcdole/gofeed"
	"nitterfeed/pkg/config"
	"nitterfeed/pkg/errors"
	"nitterfeed/pkg/logger"
	"nitterfeed/pkg/models"
	"nitterfeed/pkg/storage"
)

const (
	// DefaultPreviewLength is the title preview length in characters
	DefaultPreviewLength = 120

	ellipsis = "..."
)

// WriteResult describes a written feed file
type WriteResult struct {
	Path  string
	Items int
	Bytes int64
}

// Renderer builds and writes the feed document
type Renderer struct {
	meta   config.FeedConfig
	logger logger.Logger
}

// NewRenderer creates a renderer for the given channel metadata and output path
func NewRenderer(meta config.FeedConfig, log logger.Logger) *Renderer {
	if log == nil {
		log = logger.GetLogger()
	}
	if meta.PreviewLength <= 0 {
		meta.PreviewLength = DefaultPreviewLength
	}
	if meta.Language == "" {
		meta.Language = "en"
	}
	return &Renderer{meta: meta, logger: log}
}

// Path returns the output path
func (r *Renderer) Path() string {
	return r.meta.OutputPath
}

// Build assembles the RSS channel for posts
func (r *Renderer) Build(posts []models.PostRecord, now time.Time, subtitle string) *feeds.RssFeed {
	f := &feeds.Feed{
		Id:          r.meta.ID,
		Title:       r.meta.Title,
		Link:        &feeds.Link{Href: r.meta.Link, Rel: "alternate"},
		Description: subtitle,
		Author:      &feeds.Author{Name: r.meta.Author},
		Updated:     now,
	}

	for _, p := range posts {
		f.Items = append(f.Items, &feeds.Item{
			Id:          p.URL,
			Title:       Title(p, r.meta.PreviewLength),
			Link:        &feeds.Link{Href: p.URL},
			Description: Description(p),
			Created:     p.CreatedAt,
		})
	}

	rss := (&feeds.Rss{Feed: f}).RssFeed()
	rss.Language = r.meta.Language
	rss.ManagingEditor = r.meta.Author
	return rss
}

// Render serializes posts to an RSS 2.0 document
func (r *Renderer) Render(posts []models.PostRecord, now time.Time) ([]byte, error) {
	return r.render(posts, now, r.meta.Subtitle)
}

func (r *Renderer) render(posts []models.PostRecord, now time.Time, subtitle string) ([]byte, error) {
	var buf bytes.Buffer
	if err := feeds.WriteXML(r.Build(posts, now, subtitle), &buf); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeRender, err, "failed to render feed")
	}
	return buf.Bytes(), nil
}

// Write renders posts and atomically replaces the output file
func (r *Renderer) Write(posts []models.PostRecord, now time.Time) (WriteResult, error) {
	data, err := r.Render(posts, now)
	if err != nil {
		return WriteResult{}, err
	}
	return r.write(data, len(posts))
}

// WriteFallback writes a zero-item feed carrying the fallback subtitle
func (r *Renderer) WriteFallback(now time.Time, reason error) (WriteResult, error) {
	fields := map[string]interface{}{"path": r.meta.OutputPath}
	if reason != nil {
		fields["reason"] = reason.Error()
	}
	r.logger.WarnWithFields("Writing fallback feed", fields)

	data, err := r.render(nil, now, r.meta.FallbackSubtitle)
	if err != nil {
		return WriteResult{}, err
	}
	return r.write(data, 0)
}

func (r *Renderer) write(data []byte, items int) (WriteResult, error) {
	if err := storage.WriteFile(r.meta.OutputPath, data, 0644); err != nil {
		return WriteResult{}, errors.Wrap(errors.ErrorTypeRender, err, "failed to write feed")
	}

	result := WriteResult{Path: r.meta.OutputPath, Items: items, Bytes: int64(len(data))}
	r.logger.InfoWithFields("Feed written", map[string]interface{}{
		"path":  result.Path,
		"items": result.Items,
		"size":  humanize.Bytes(uint64(result.Bytes)),
	})
	return result, nil
}

// Title returns "@author: " plus the first n characters of the text,
// with "..." appended when the text was cut.
func Title(p models.PostRecord, n int) string {
	preview := p.Text
	if utf8.RuneCountInString(preview) > n {
		preview = string([]rune(preview)[:n]) + ellipsis
	}
	return fmt.Sprintf("@%s: %s", p.Author, preview)
}

// Description returns the HTML body of an item
func Description(p models.PostRecord) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Arial, sans-serif;">`)
	fmt.Fprintf(&b, `<p style="font-size: 15px; line-height: 1.5; margin: 0 0 12px 0;">%s</p>`, html.EscapeString(p.Text))
	fmt.Fprintf(&b, `<p style="color: #536471; font-size: 14px; margin: 0;"><strong>@%s</strong> · 👍 %s · 🔄 %s · 💬 %s</p>`,
		html.EscapeString(p.Author.String()),
		humanize.Comma(int64(p.Likes)),
		humanize.Comma(int64(p.Retweets)),
		humanize.Comma(int64(p.Replies)),
	)
	fmt.Fprintf(&b, `<p style="margin-top: 12px;"><a href="%s" style="color: #1d9bf0; text-decoration: none;">View on Twitter →</a></p>`,
		html.EscapeString(p.URL))
	b.WriteString(`</div>`)
	return b.String()
}

// VerifyResult summarizes a parsed feed file
type VerifyResult struct {
	Path     string
	FeedType string
	Title    string
	Items    int
	Bytes    int64
}

// Verify parses the file at path and reports what it contains
func Verify(path string) (VerifyResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return VerifyResult{}, errors.Wrap(errors.ErrorTypeRender, err, "feed file missing")
	}
	defer file.Close()

	parsed, err := gofeed.NewParser().Parse(file)
	if err != nil {
		return VerifyResult{}, errors.Wrap(errors.ErrorTypeRender, err, "feed file is not a valid feed")
	}

	size, err := storage.Size(path)
	if err != nil {
		return VerifyResult{}, errors.Wrap(errors.ErrorTypeRender, err, "failed to stat feed file")
	}

	return VerifyResult{
		Path:     path,
		FeedType: parsed.FeedType,
		Title:    parsed.Title,
		Items:    len(parsed.Items),
		Bytes:    size,
	}, nil
}
