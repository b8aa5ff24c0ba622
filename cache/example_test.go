package cache_test

import (
	"fmt"

	"github.com/RepreZen/SwagEdit/cache"
	"github.com/RepreZen/SwagEdit/references"
)

func ExampleClearAllCaches() {
	cache.ClearAllCaches()

	_, _ = references.ParseURLCached("https://example.com/api")
	_, _ = references.ResolveAbsoluteReference("#/definitions/Pet", "https://api.example.com/swagger.yaml")

	stats := cache.GetAllCacheStats()
	fmt.Printf("Before clearing - URL cache: %d, Reference cache: %d\n", stats.URLCacheSize, stats.ReferenceCacheSize)

	cache.ClearAllCaches()

	stats = cache.GetAllCacheStats()
	fmt.Printf("After clearing - URL cache: %d, Reference cache: %d\n", stats.URLCacheSize, stats.ReferenceCacheSize)

	// Output:
	// Before clearing - URL cache: 2, Reference cache: 1
	// After clearing - URL cache: 0, Reference cache: 0
}
