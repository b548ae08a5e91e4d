// Package storage provides atomic file writes for nitterfeed outputs.
//
// Both the membership cache and the rendered feed are replaced on every run.
// Writes go to a temporary file in the destination directory which is synced
// and renamed over the target, so readers never observe a partially written
// document.
//
// Usage:
//
//	if err := storage.WriteFile("tech_ai_twitter.xml", data, 0644); err != nil {
//	    return err
//	}
//
//	var m models.Membership
//	found, err := storage.ReadJSON("list_members_cache.json", &m)
package storage
