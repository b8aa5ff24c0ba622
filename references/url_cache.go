package references

import (
	"net/url"
	"sync"
)

// URLCache is a thread-safe cache of parsed URLs.
type URLCache struct {
	cache sync.Map // map[string]*url.URL
}

var globalURLCache = &URLCache{}

// ParseURLCached parses a URL string through the process-wide cache.
func ParseURLCached(rawURL string) (*url.URL, error) {
	return globalURLCache.Parse(rawURL)
}

// Parse returns a copy of the cached parse result, parsing and caching it on a miss.
func (c *URLCache) Parse(rawURL string) (*url.URL, error) {
	if cached, ok := c.cache.Load(rawURL); ok {
		urlCopy := *cached.(*url.URL)
		return &urlCopy, nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	urlCopy := *parsed
	c.cache.Store(rawURL, &urlCopy)

	return parsed, nil
}

func (c *URLCache) Clear() {
	c.cache.Clear()
}

func (c *URLCache) Size() int64 {
	var size int64
	c.cache.Range(func(_, _ any) bool {
		size++
		return true
	})
	return size
}

// ClearGlobalURLCache clears the process-wide URL cache.
func ClearGlobalURLCache() {
	globalURLCache.Clear()
}

// URLCacheSize returns the number of entries in the process-wide URL cache.
func URLCacheSize() int64 {
	return globalURLCache.Size()
}
