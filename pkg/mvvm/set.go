package mvvm

import "encoding/json"

// Set is an immutable set of items identified by a comparable key.
// Two sets are equal when they hold the same keys, regardless of the order
// or duplicates of the items they were built from.
type Set[K comparable, V any] struct {
	items map[K]V
}

// NewSet materializes items into a new set. For duplicate keys the first
// item wins. The set never aliases the items slice.
func NewSet[K comparable, V any](items []V, key func(V) K) Set[K, V] {
	m := make(map[K]V, len(items))
	for _, it := range items {
		k := key(it)
		if _, ok := m[k]; ok {
			continue
		}
		m[k] = it
	}
	return Set[K, V]{items: m}
}

// Len returns the number of items.
func (s Set[K, V]) Len() int {
	return len(s.items)
}

// Contains reports whether an item with key k is present.
func (s Set[K, V]) Contains(k K) bool {
	_, ok := s.items[k]
	return ok
}

// Get returns the item with key k.
func (s Set[K, V]) Get(k K) (V, bool) {
	v, ok := s.items[k]
	return v, ok
}

// Keys returns the keys in unspecified order.
func (s Set[K, V]) Keys() []K {
	out := make([]K, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	return out
}

// Items returns a copy of the items in unspecified order.
func (s Set[K, V]) Items() []V {
	out := make([]V, 0, len(s.items))
	for _, v := range s.items {
		out = append(out, v)
	}
	return out
}

// Equal reports whether s and o hold the same keys.
func (s Set[K, V]) Equal(o Set[K, V]) bool {
	if len(s.items) != len(o.items) {
		return false
	}
	for k := range s.items {
		if _, ok := o.items[k]; !ok {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as an array of its items.
func (s Set[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Items())
}

// SetValueModel is a value model holding a Set with key-set equality.
type SetValueModel[K comparable, V any] struct {
	*ValueModel[Set[K, V]]

	keyOf func(V) K
}

// NewSetValueModel creates a SetValueModel seeded with a copy of items.
func NewSetValueModel[K comparable, V any](key string, items []V, keyOf func(V) K) *SetValueModel[K, V] {
	m := NewValueModel(key, NewSet(items, keyOf))
	m.WithEquals(func(a, b Set[K, V]) bool { return a.Equal(b) })
	return &SetValueModel[K, V]{ValueModel: m, keyOf: keyOf}
}

// ChangeItems materializes items into a fresh set and offers it to Change.
func (m *SetValueModel[K, V]) ChangeItems(items []V) bool {
	return m.Change(NewSet(items, m.keyOf))
}
