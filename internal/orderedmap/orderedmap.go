// Package orderedmap provides a map that remembers the order in which
// keys were first inserted. Element attributes and namespace declarations
// are backed by this type so that documents round-trip with their
// attributes in the original order.
package orderedmap

import "iter"

type Map[K comparable, V any] struct {
	entries []K
	keys    map[K]V
}

func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		keys: make(map[K]V),
	}
}

// Set stores value under key. Setting an existing key overwrites its
// value in place; the key keeps its original position in iteration
// order. New keys are appended.
func (m *Map[K, V]) Set(key K, value V) {
	if _, exists := m.keys[key]; !exists {
		m.entries = append(m.entries, key)
	}
	m.keys[key] = value
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	v, ok := m.keys[key]
	return v, ok
}

func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.keys[key]
	return ok
}

// Delete removes key. Remaining keys keep their relative order.
func (m *Map[K, V]) Delete(key K) bool {
	if _, exists := m.keys[key]; !exists {
		return false
	}
	delete(m.keys, key)
	for i, k := range m.entries {
		if k == key {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	return true
}

func (m *Map[K, V]) Len() int {
	return len(m.entries)
}

// Keys returns the keys in insertion order. The returned slice is a
// copy and stays valid across later mutations.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, len(m.entries))
	copy(keys, m.entries)
	return keys
}

func (m *Map[K, V]) Range() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range m.entries {
			v := m.keys[k]
			if !yield(k, v) {
				break
			}
		}
	}
}

// Clone returns a copy sharing no internal state with m.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := &Map[K, V]{
		entries: make([]K, len(m.entries)),
		keys:    make(map[K]V, len(m.keys)),
	}
	copy(c.entries, m.entries)
	for k, v := range m.keys {
		c.keys[k] = v
	}
	return c
}
