package references

import (
	"path/filepath"
	"sync"
)

// AbsoluteReferenceResult is the absolute location of the document a reference points into.
type AbsoluteReferenceResult struct {
	// AbsoluteReference is the location with the fragment removed.
	AbsoluteReference string
	Classification    *ReferenceClassification
}

// RefCacheKey is a unique key for caching absolute reference results.
type RefCacheKey struct {
	RefURI         string
	TargetLocation string
}

// RefCache is a thread-safe cache of absolute reference results.
type RefCache struct {
	cache sync.Map // map[RefCacheKey]*AbsoluteReferenceResult
}

var globalRefCache = &RefCache{}

// ResolveAbsoluteReference resolves the document part of ref against the location of the referring document.
// Absolute URLs and absolute file paths are kept as they are. Results are cached process-wide.
func ResolveAbsoluteReference(ref Reference, targetLocation string) (*AbsoluteReferenceResult, error) {
	return globalRefCache.Resolve(ref, targetLocation)
}

// Resolve returns a copy of the cached result for (ref, targetLocation), computing it on a miss.
func (c *RefCache) Resolve(ref Reference, targetLocation string) (*AbsoluteReferenceResult, error) {
	key := RefCacheKey{
		RefURI:         ref.GetURI(),
		TargetLocation: targetLocation,
	}

	if cached, ok := c.cache.Load(key); ok {
		resultCopy := *cached.(*AbsoluteReferenceResult)
		return &resultCopy, nil
	}

	result, err := resolveAbsoluteReference(key.RefURI, targetLocation)
	if err != nil {
		return nil, err
	}

	c.cache.Store(key, result)

	resultCopy := *result
	return &resultCopy, nil
}

func resolveAbsoluteReference(uri, targetLocation string) (*AbsoluteReferenceResult, error) {
	if uri == "" {
		classification, err := ClassifyReference(targetLocation)
		if err != nil {
			return nil, err
		}
		return &AbsoluteReferenceResult{
			AbsoluteReference: targetLocation,
			Classification:    classification,
		}, nil
	}

	uriClassification, err := ClassifyReference(uri)
	if err != nil {
		return nil, err
	}

	absolute := uriClassification.Type == ReferenceTypeURL ||
		(uriClassification.Type == ReferenceTypeFilePath && filepath.IsAbs(uri))
	if absolute || targetLocation == "" {
		return &AbsoluteReferenceResult{
			AbsoluteReference: uri,
			Classification:    uriClassification,
		}, nil
	}

	classification, err := ClassifyReference(targetLocation)
	if err != nil {
		return nil, err
	}

	absRef, err := classification.JoinWith(uri)
	if err != nil {
		return nil, err
	}

	joined, err := ClassifyReference(absRef)
	if err != nil {
		return nil, err
	}

	return &AbsoluteReferenceResult{
		AbsoluteReference: absRef,
		Classification:    joined,
	}, nil
}

func (c *RefCache) Clear() {
	c.cache.Clear()
}

func (c *RefCache) Size() int64 {
	var size int64
	c.cache.Range(func(_, _ any) bool {
		size++
		return true
	})
	return size
}

// ClearGlobalRefCache clears the process-wide absolute reference cache.
func ClearGlobalRefCache() {
	globalRefCache.Clear()
}

// RefCacheSize returns the number of entries in the process-wide absolute reference cache.
func RefCacheSize() int64 {
	return globalRefCache.Size()
}
