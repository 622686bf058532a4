package storage

import "context"

// Keys under which per-owner state is persisted.
const (
	KeyTheme       = "kai-theme"
	KeyHistory     = "kai-analysis-history"
	KeyBookmarks   = "kai-bookmarks"
	KeyPreferences = "kai-preferences"
)

// CodeUnavailable marks a backend read that failed, as opposed to a key that is absent.
const CodeUnavailable = "storage_unavailable"

// KeyValue persists string-serialised JSON documents. Get reports found=false for absent keys.
type KeyValue interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ScopedKey namespaces key to one owner.
func ScopedKey(owner, key string) string {
	if owner == "" {
		return key
	}
	return owner + ":" + key
}
