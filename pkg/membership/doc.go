// Package membership resolves which accounts belong to the monitored lists.
//
// Membership changes slowly, so the resolved set is cached on disk as JSON
// ({"accounts": [...], "updated_at": "..."}) and reused for seven days.
// A stale, empty or unreadable cache triggers a fresh fetch of every list
// page from the selected mirror. When every list fetch comes back empty the
// last cached accounts are used even if stale.
//
// The cache file is read once and written at most once per run. Writes are
// atomic; a failed write is logged and otherwise ignored.
package membership
