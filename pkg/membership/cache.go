package membership

import (
	"strings"
	"time"

	"nitterfeed/pkg/errors"
	"nitterfeed/pkg/models"
	"nitterfeed/pkg/storage"
)

// Cache persists a membership snapshot to a JSON file
type Cache struct {
	path string
}

// NewCache creates a cache backed by path
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Path returns the backing file path
func (c *Cache) Path() string {
	return c.path
}

// timestampLayouts are tried in order when reading updated_at. Values
// without an offset are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// cacheFile is the on-disk shape. updated_at is kept as a string so any
// ISO-8601 variant can be read.
type cacheFile struct {
	Accounts  []string `json:"accounts"`
	UpdatedAt string   `json:"updated_at"`
}

// Load reads the snapshot. A missing file returns (nil, nil); a corrupt one
// returns a cache error which callers treat as a miss. An unreadable
// updated_at keeps the accounts with a zero timestamp, so the snapshot is
// stale but still usable as a fallback.
func (c *Cache) Load() (*models.Membership, error) {
	var raw cacheFile
	found, err := storage.ReadJSON(c.path, &raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeCache, err, "failed to load membership cache")
	}
	if !found {
		return nil, nil
	}

	// Normalize entries written by hand or by older versions
	set := models.NewHandleSet()
	for _, h := range raw.Accounts {
		set.Add(models.NewHandle(h))
	}

	updated, _ := ParseTimestamp(raw.UpdatedAt)
	return &models.Membership{Accounts: set.Handles(), UpdatedAt: updated}, nil
}

// ParseTimestamp reads an ISO-8601 timestamp with or without an offset.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, errors.Wrap(errors.ErrorTypeCache, lastErr, "unreadable updated_at")
}

// Save atomically replaces the snapshot
func (c *Cache) Save(m *models.Membership) error {
	if err := storage.WriteJSON(c.path, m); err != nil {
		return errors.Wrap(errors.ErrorTypeCache, err, "failed to save membership cache")
	}
	return nil
}
