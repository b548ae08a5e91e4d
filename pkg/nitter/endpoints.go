package nitter

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// CanonicalHost is the public host used for post permalinks in the feed
	CanonicalHost = "https://twitter.com"

	// ListPath is the mirror path prefix for list timelines
	ListPath = "/i/lists/"

	// mobileFragment is appended to permalinks by some mirrors
	mobileFragment = "#m"
)

// ParseListID extracts the numeric list identifier from a list URL
// (e.g. https://x.com/i/lists/1539497752140206080) or a bare id.
func ParseListID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty list reference")
	}

	id := ref
	if i := strings.LastIndex(ref, "/lists/"); i >= 0 {
		id = ref[i+len("/lists/"):]
	}
	if i := strings.IndexAny(id, "/?#"); i >= 0 {
		id = id[:i]
	}

	if id == "" {
		return "", fmt.Errorf("list reference %q has no id", ref)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("list reference %q has non-numeric id %q", ref, id)
		}
	}
	return id, nil
}

// ListURL constructs the mirror URL for a list timeline
func ListURL(mirror, listID string) string {
	return strings.TrimRight(mirror, "/") + ListPath + listID
}

// ProfileURL constructs the mirror URL for an account timeline
func ProfileURL(mirror, handle string) string {
	return strings.TrimRight(mirror, "/") + "/" + url.PathEscape(handle)
}

// CanonicalPostURL rewrites a mirror permalink to the canonical public host.
// Absolute permalinks keep only their path and query.
func CanonicalPostURL(host, permalink string) string {
	p := strings.ReplaceAll(strings.TrimSpace(permalink), mobileFragment, "")
	if p == "" {
		return ""
	}

	if u, err := url.Parse(p); err == nil && u.IsAbs() {
		p = u.RequestURI()
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	return strings.TrimRight(host, "/") + p
}
