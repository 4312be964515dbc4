package params

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// DuplicateKeyError is returned by Add when the key is already present.
type DuplicateKeyError struct {
	Key string
}

// Error implements the error interface for DuplicateKeyError.
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("parameter '%s' already exists", e.Key)
}

// Set is an ordered mapping of parameter name to string value. Keys are
// case-sensitive and unique. The zero value is not usable; call New.
type Set struct {
	keys   []string
	values map[string]string
}

// New creates an empty Set.
func New() *Set {
	return &Set{values: make(map[string]string)}
}

// Of builds a Set from alternating key/value arguments. It panics on an odd
// argument count or a repeated key and is meant for literals in code and tests.
func Of(kv ...string) *Set {
	if len(kv)%2 != 0 {
		panic("params.Of: odd number of arguments")
	}
	s := New()
	for i := 0; i < len(kv); i += 2 {
		if err := s.Add(kv[i], kv[i+1]); err != nil {
			panic(err)
		}
	}
	return s
}

// Add inserts a new key. It fails with *DuplicateKeyError if the key exists.
func (s *Set) Add(key, value string) error {
	if _, exists := s.values[key]; exists {
		return &DuplicateKeyError{Key: key}
	}
	s.keys = append(s.keys, key)
	s.values[key] = value
	return nil
}

// Put sets the value of key, appending it when absent and keeping its
// original position when present.
func (s *Set) Put(key, value string) {
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Get returns the value stored for key.
func (s *Set) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Set) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Len returns the number of entries.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns the keys in insertion order. The slice is a copy.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.keys)
}

// SortedKeys returns the keys in lexical order.
func (s *Set) SortedKeys() []string {
	keys := s.Keys()
	slices.Sort(keys)
	return keys
}

// All iterates over the entries in insertion order.
func (s *Set) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if s == nil {
			return
		}
		for _, k := range s.keys {
			if !yield(k, s.values[k]) {
				return
			}
		}
	}
}

// Merge overlays other onto s: every key of other is set or overwritten in s.
// New keys are appended in other's order. other is never modified and may be nil.
func (s *Set) Merge(other *Set) {
	for k, v := range other.All() {
		s.Put(k, v)
	}
}

// Clone returns an independent copy of s. Cloning a nil Set yields an empty one.
func (s *Set) Clone() *Set {
	c := New()
	if s == nil {
		return c
	}
	c.keys = slices.Clone(s.keys)
	for k, v := range s.values {
		c.values[k] = v
	}
	return c
}

// Map returns the entries as a plain map.
func (s *Set) Map() map[string]string {
	m := make(map[string]string, s.Len())
	for k, v := range s.All() {
		m[k] = v
	}
	return m
}

// Equal reports whether both sets hold the same entries in the same order.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	if !slices.Equal(s.Keys(), other.Keys()) {
		return false
	}
	for k, v := range s.All() {
		if ov, _ := other.Get(k); ov != v {
			return false
		}
	}
	return true
}

// String renders the set as `a=1, b=2` in insertion order.
func (s *Set) String() string {
	var sb strings.Builder
	for k, v := range s.All() {
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%s", k, v)
	}
	return sb.String()
}
