// Package sequencedmap provides a map implementation that maintains the order of keys as they are added.
package sequencedmap

import (
	"bytes"
	"fmt"
	"iter"

	json "github.com/goccy/go-json"
)

// Element is a key-value pair that is stored in a sequenced map.
type Element[K comparable, V any] struct {
	Key   K
	Value V
}

// Map is a map implementation that maintains the order of keys as they are first added.
// The zero value is not usable, create maps with New.
type Map[K comparable, V any] struct {
	m map[K]*Element[K, V]
	l []*Element[K, V]
}

// New creates a new map with the specified capacity hint.
func New[K comparable, V any](capacity int) *Map[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Map[K, V]{
		m: make(map[K]*Element[K, V], capacity),
		l: make([]*Element[K, V], 0, capacity),
	}
}

// Len returns the number of elements in the map. nil safe.
func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.l)
}

// Set sets the value for the specified key.
// Setting an existing key replaces its value and keeps its original position.
func (m *Map[K, V]) Set(key K, value V) {
	if e, ok := m.m[key]; ok {
		e.Value = value
		return
	}
	e := &Element[K, V]{Key: key, Value: value}
	m.m[key] = e
	m.l = append(m.l, e)
}

// Get returns the value for the specified key and whether it was found.
func (m *Map[K, V]) Get(key K) (V, bool) {
	var zero V
	if m == nil {
		return zero, false
	}
	e, ok := m.m[key]
	if !ok {
		return zero, false
	}
	return e.Value, true
}

// Has returns true if the key is present. nil safe.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// All iterates the elements in insertion order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if m == nil {
			return
		}
		for _, e := range m.l {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	if m == nil {
		return nil
	}
	keys := make([]K, 0, len(m.l))
	for _, e := range m.l {
		keys = append(keys, e.Key)
	}
	return keys
}

// MarshalJSON returns the JSON representation of the map with keys in insertion order.
func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, e := range m.l {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(fmt.Sprintf("%v", e.Key))
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
