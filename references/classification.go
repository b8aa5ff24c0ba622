package references

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ReferenceType is the kind of location a reference string names.
type ReferenceType int

const (
	ReferenceTypeUnknown ReferenceType = iota
	ReferenceTypeURL
	ReferenceTypeFilePath
	ReferenceTypeFragment
)

func (t ReferenceType) String() string {
	switch t {
	case ReferenceTypeURL:
		return "url"
	case ReferenceTypeFilePath:
		return "file"
	case ReferenceTypeFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// ReferenceClassification holds the result of classifying a reference string.
type ReferenceClassification struct {
	Type     ReferenceType
	Original string
	// ParsedURL is set for URLs.
	ParsedURL *url.URL
}

// ClassifyReference determines if a string represents a URL, file path, or JSON pointer fragment.
func ClassifyReference(ref string) (*ReferenceClassification, error) {
	if ref == "" {
		return nil, errors.New("empty reference")
	}

	result := &ReferenceClassification{
		Original: ref,
	}

	if strings.HasPrefix(ref, "#") {
		result.Type = ReferenceTypeFragment
		return result, nil
	}

	u, err := ParseURLCached(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid reference format: %w", err)
	}

	// a single letter scheme is a windows drive, C:\specs\api.yaml
	if u.Scheme != "" && len(u.Scheme) > 1 {
		result.Type = ReferenceTypeURL
		result.ParsedURL = u
		return result, nil
	}

	result.Type = ReferenceTypeFilePath
	return result, nil
}

// IsRemote reports whether the location is fetched over HTTP.
func (rc *ReferenceClassification) IsRemote() bool {
	if rc.Type != ReferenceTypeURL || rc.ParsedURL == nil {
		return false
	}
	scheme := strings.ToLower(rc.ParsedURL.Scheme)
	return scheme == "http" || scheme == "https"
}

// FilePath returns the path of a file path or file:// URL location.
func (rc *ReferenceClassification) FilePath() (string, bool) {
	switch rc.Type {
	case ReferenceTypeFilePath:
		return rc.Original, true
	case ReferenceTypeURL:
		if rc.ParsedURL != nil && strings.EqualFold(rc.ParsedURL.Scheme, "file") {
			return rc.ParsedURL.Path, true
		}
	}
	return "", false
}

// JoinWith resolves a relative reference against this location.
// URLs are joined with url.ResolveReference, file paths relative to the directory of the location.
func (rc *ReferenceClassification) JoinWith(relative string) (string, error) {
	if relative == "" {
		return rc.Original, nil
	}

	if strings.HasPrefix(relative, "#") {
		base, _, _ := strings.Cut(rc.Original, "#")
		return base + relative, nil
	}

	switch rc.Type {
	case ReferenceTypeURL:
		return rc.joinURL(relative)
	case ReferenceTypeFragment:
		return relative, nil
	default:
		return rc.joinFilePath(relative), nil
	}
}

func (rc *ReferenceClassification) joinURL(relative string) (string, error) {
	baseURL := rc.ParsedURL
	if baseURL == nil {
		var err error
		baseURL, err = ParseURLCached(rc.Original)
		if err != nil {
			return "", fmt.Errorf("invalid base URL: %w", err)
		}
	}

	relativeURL, err := ParseURLCached(relative)
	if err != nil {
		return "", fmt.Errorf("invalid relative URL: %w", err)
	}

	return baseURL.ResolveReference(relativeURL).String(), nil
}

func (rc *ReferenceClassification) joinFilePath(relative string) string {
	if filepath.IsAbs(relative) || strings.HasPrefix(relative, "/") {
		return relative
	}

	joined := filepath.Join(filepath.Dir(rc.Original), relative)
	return filepath.ToSlash(joined)
}

// JoinReference classifies base and resolves relative against it. An empty base leaves relative unchanged.
func JoinReference(base, relative string) (string, error) {
	if base == "" {
		return relative, nil
	}

	classification, err := ClassifyReference(base)
	if err != nil {
		return "", fmt.Errorf("invalid base reference: %w", err)
	}

	return classification.JoinWith(relative)
}
