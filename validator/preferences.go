package validator

import (
	stdjson "encoding/json"
	"strconv"
	"strings"
	"time"
)

// Preference keys understood by the dialects.
const (
	// PrefExternalReferences enables resolution of references to other files and URLs.
	PrefExternalReferences = "references.external"
	// PrefReferenceTimeout bounds one external lookup, in milliseconds.
	PrefReferenceTimeout = "references.timeout"
	// PrefSwaggerSimpleReferences enables the warning on Swagger 2.0 simple references.
	PrefSwaggerSimpleReferences = "swagger.references.simple"
)

const defaultReferenceTimeout = 10 * time.Second

// Preferences is a read-only key/value store of dialect settings.
type Preferences interface {
	Bool(key string, def bool) bool
	String(key string, def string) string
	Int(key string, def int) int
}

// MapPreferences implements Preferences over a map. Values may be native Go values or their string forms.
type MapPreferences map[string]any

var _ Preferences = MapPreferences(nil)

func (p MapPreferences) Bool(key string, def bool) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

func (p MapPreferences) String(key string, def string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case nil:
		return def
	case stdjson.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return def
}

func (p MapPreferences) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case stdjson.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return def
}

// ReferenceTimeout returns the configured timeout of one external lookup.
func ReferenceTimeout(p Preferences) time.Duration {
	if p == nil {
		return defaultReferenceTimeout
	}
	ms := p.Int(PrefReferenceTimeout, int(defaultReferenceTimeout/time.Millisecond))
	if ms <= 0 {
		return defaultReferenceTimeout
	}
	return time.Duration(ms) * time.Millisecond
}

// ExternalReferences reports whether references to other documents should be resolved.
func ExternalReferences(p Preferences) bool {
	if p == nil {
		return true
	}
	return p.Bool(PrefExternalReferences, true)
}
