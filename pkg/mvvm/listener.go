package mvvm

import (
	"reflect"
	"sync"
)

// ModelChangedListener is notified when the model it subscribed to changed.
// T is the model type handed back to the listener, e.g. *GroupVM or
// *ValueModel[string].
type ModelChangedListener[T any] interface {
	OnChanged(model T)
}

// ListenerFunc adapts a function to ModelChangedListener.
// Always use it through the pointer returned by NewListener: the pointer is
// the listener's identity for Subscribe and Unsubscribe.
type ListenerFunc[T any] struct {
	fn func(T)
}

// NewListener wraps fn in a listener with a stable identity.
func NewListener[T any](fn func(T)) *ListenerFunc[T] {
	return &ListenerFunc[T]{fn: fn}
}

// OnChanged calls the wrapped function.
func (f *ListenerFunc[T]) OnChanged(model T) {
	f.fn(model)
}

// Listeners is a deduplicated, goroutine-safe listener set.
// Membership is decided by interface identity: two listeners are the same
// when their dynamic types and values compare equal.
type Listeners[T any] struct {
	// items holds registered listeners in subscription order.
	items []ModelChangedListener[T]

	// mu protects items.
	mu sync.RWMutex
}

// Add registers l. It reports false when l was already registered.
func (s *Listeners[T]) Add(l ModelChangedListener[T]) (bool, error) {
	if err := checkListener(l); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(l) >= 0 {
		return false, nil
	}
	s.items = append(s.items, l)
	return true, nil
}

// Remove unregisters l. It reports whether l was registered.
func (s *Listeners[T]) Remove(l ModelChangedListener[T]) bool {
	if checkListener(l) != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(l)
	if i < 0 {
		return false
	}
	// Keep subscription order for deliveries.
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// Contains reports whether l is registered.
func (s *Listeners[T]) Contains(l ModelChangedListener[T]) bool {
	if checkListener(l) != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(l) >= 0
}

// Len returns the number of registered listeners.
func (s *Listeners[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Snapshot returns a copy of the registered listeners.
// Mutating the set afterwards does not affect the returned slice.
func (s *Listeners[T]) Snapshot() []ModelChangedListener[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ModelChangedListener[T], len(s.items))
	copy(out, s.items)
	return out
}

// subscribe adds l and, when notify is set and l is new, calls it once with
// model on the calling goroutine.
func (s *Listeners[T]) subscribe(l ModelChangedListener[T], notify bool, model T) error {
	added, err := s.Add(l)
	if err != nil || !added {
		return err
	}
	if notify {
		l.OnChanged(model)
	}
	return nil
}

// deliver calls every listener registered at call time and returns how many
// were called. Uses copy-before-notify so listeners may (un)subscribe from
// inside OnChanged.
func (s *Listeners[T]) deliver(model T) int {
	subs := s.Snapshot()
	for _, l := range subs {
		l.OnChanged(model)
	}
	return len(subs)
}

func (s *Listeners[T]) indexLocked(l ModelChangedListener[T]) int {
	for i, existing := range s.items {
		if existing == l {
			return i
		}
	}
	return -1
}

// checkListener rejects nil listeners, typed nil pointers and listeners that
// would panic when compared with ==. Comparability is checked on the dynamic
// value, so a struct whose interface field holds a slice is rejected too.
func checkListener[T any](l ModelChangedListener[T]) error {
	if l == nil {
		return ErrNilListener
	}
	v := reflect.ValueOf(l)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice, reflect.Interface:
		if v.IsNil() {
			return ErrNilListener
		}
	}
	if !v.Comparable() {
		return ErrUncomparableListener
	}
	return nil
}
