// Package cache manages the process-wide caches used while resolving references.
package cache

import (
	"github.com/RepreZen/SwagEdit/references"
)

// ClearAllCaches clears all global caches:
// - URL parsing cache
// - absolute reference cache
//
// Long running processes such as the watch command call it when referenced files change.
func ClearAllCaches() {
	ClearURLCache()
	ClearReferenceCache()
}

// ClearURLCache clears the global URL parsing cache.
func ClearURLCache() {
	references.ClearGlobalURLCache()
}

// ClearReferenceCache clears the global cache of absolute reference locations, keyed by
// (reference, referring document) pairs.
func ClearReferenceCache() {
	references.ClearGlobalRefCache()
}

// CacheStats holds the sizes of the global caches.
type CacheStats struct {
	URLCacheSize       int64
	ReferenceCacheSize int64
}

// GetAllCacheStats returns statistics about all global caches.
func GetAllCacheStats() CacheStats {
	return CacheStats{
		URLCacheSize:       references.URLCacheSize(),
		ReferenceCacheSize: references.RefCacheSize(),
	}
}
