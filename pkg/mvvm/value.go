package mvvm

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Field is the type-erased view of a value model that an aggregate tracks.
// Only value models from this package implement it.
type Field interface {
	// Key returns the diagnostic key, e.g. "group.1.title".
	Key() string

	// Any returns the current value boxed as any.
	Any() any

	// flush delivers a pending container-level notification.
	flush()
}

// ValueModel is a keyed value container with equality-based mutation.
//
// The value only changes through Change, which compares before it stores.
// Change never calls listeners itself: it marks the container as pending and
// the owning aggregate flushes it on the dispatcher together with its own
// notification.
type ValueModel[T any] struct {
	// key is the diagnostic key. Immutable.
	key string

	// value is the current value.
	value T

	// mu protects value.
	mu sync.RWMutex

	// equal decides whether two values are the same.
	// If nil, defaultEquals is used.
	equal func(T, T) bool

	// pending is set by a successful Change and cleared by flush.
	pending atomic.Bool

	listeners Listeners[*ValueModel[T]]
}

// NewValueModel creates a value model with the given key and initial value.
func NewValueModel[T any](key string, initial T) *ValueModel[T] {
	return &ValueModel[T]{
		key:   key,
		value: initial,
	}
}

// WithEquals returns the model configured with a custom equality function.
// Call it before the model is shared.
func (m *ValueModel[T]) WithEquals(fn func(T, T) bool) *ValueModel[T] {
	m.equal = fn
	return m
}

// Key returns the diagnostic key.
func (m *ValueModel[T]) Key() string {
	return m.key
}

// Value returns the current value.
func (m *ValueModel[T]) Value() T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value
}

// Any returns the current value as any.
func (m *ValueModel[T]) Any() any {
	return m.Value()
}

// Change stores value if it differs from the current one and reports
// whether it did.
func (m *ValueModel[T]) Change(value T) bool {
	m.mu.Lock()
	changed := !m.equals(m.value, value)
	if changed {
		m.value = value
	}
	m.mu.Unlock()

	if changed {
		m.pending.Store(true)
	}
	return changed
}

// Subscribe registers a container-level listener and calls it once with the
// model. Subscribing a registered listener again is a no-op.
func (m *ValueModel[T]) Subscribe(l ModelChangedListener[*ValueModel[T]]) error {
	return m.listeners.subscribe(l, true, m)
}

// SubscribeNotify is Subscribe with control over the initial call.
func (m *ValueModel[T]) SubscribeNotify(l ModelChangedListener[*ValueModel[T]], notify bool) error {
	return m.listeners.subscribe(l, notify, m)
}

// Unsubscribe removes a container-level listener.
func (m *ValueModel[T]) Unsubscribe(l ModelChangedListener[*ValueModel[T]]) {
	m.listeners.Remove(l)
}

func (m *ValueModel[T]) flush() {
	if m.pending.Swap(false) {
		m.listeners.deliver(m)
	}
}

func (m *ValueModel[T]) equals(a, b T) bool {
	if m.equal != nil {
		return m.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals provides type-appropriate equality checking.
// Uses == for basic kinds and reflect.DeepEqual for others.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return sameAs(av, b)
	case int8:
		return sameAs(av, b)
	case int16:
		return sameAs(av, b)
	case int32:
		return sameAs(av, b)
	case int64:
		return sameAs(av, b)
	case uint:
		return sameAs(av, b)
	case uint8:
		return sameAs(av, b)
	case uint16:
		return sameAs(av, b)
	case uint32:
		return sameAs(av, b)
	case uint64:
		return sameAs(av, b)
	case float32:
		return sameAs(av, b)
	case float64:
		return sameAs(av, b)
	case string:
		return sameAs(av, b)
	case bool:
		return sameAs(av, b)
	default:
		// Slices, maps, structs and pointers compare structurally.
		return reflect.DeepEqual(a, b)
	}
}

// sameAs compares a with b when b holds the same dynamic type.
// A mismatch happens only when T is an interface type.
func sameAs[V comparable](a V, b any) bool {
	bv, ok := b.(V)
	return ok && a == bv
}
