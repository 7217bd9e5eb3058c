package mvvm

import "errors"

// ErrNilListener is returned when a nil listener is subscribed.
// The listener set is left unchanged.
var ErrNilListener = errors.New("mvvm: nil listener")

// ErrUncomparableListener is returned when a listener's dynamic type cannot
// be compared by identity, for example a bare func value or a struct
// holding a slice. Wrap closures with NewListener instead.
var ErrUncomparableListener = errors.New("mvvm: listener type is not comparable")
