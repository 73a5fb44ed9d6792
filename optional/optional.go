// Package optional provides Optional, a container that holds exactly one
// value or nothing.
//
// Transformations chain and short-circuit: once an Optional is empty every
// later Map or FlatMap returns empty without calling its function.
//
//	inverse := func(x float64) optional.Optional[float64] {
//	    if x == 0 {
//	        return optional.Empty[float64]()
//	    }
//	    return optional.Of(1 / x)
//	}
//	r := optional.FlatMap(optional.FlatMap(optional.Of(4.0), inverse), squareRoot)
//	// r == Optional[0.5]
//
// Absence is represented by the container itself, never by a nil value. The
// only way to build an Optional from a possibly-nil pointer is OfNillable.
package optional

import "fmt"

// Optional holds either one value of type T or none. The zero value is empty.
type Optional[T any] struct {
	value   T
	present bool
}

// Of returns an Optional holding v.
func Of[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// Empty returns an Optional holding nothing.
func Empty[T any]() Optional[T] {
	return Optional[T]{}
}

// OfNillable returns an Optional holding *p, or Empty when p is nil.
func OfNillable[T any](p *T) Optional[T] {
	if p == nil {
		return Empty[T]()
	}
	return Of(*p)
}

// OfOK builds an Optional from the comma-ok idiom.
func OfOK[T any](v T, ok bool) Optional[T] {
	if !ok {
		return Empty[T]()
	}
	return Of(v)
}

// IsPresent reports whether a value is held.
func (o Optional[T]) IsPresent() bool { return o.present }

// IsEmpty reports whether no value is held.
func (o Optional[T]) IsEmpty() bool { return !o.present }

// Get returns the held value and true, or the zero value and false.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// OrElse returns the held value, or other when empty.
func (o Optional[T]) OrElse(other T) T {
	if o.present {
		return o.value
	}
	return other
}

// OrElseGet returns the held value, or the result of fn when empty. fn is
// only called when the Optional is empty.
func (o Optional[T]) OrElseGet(fn func() T) T {
	if o.present {
		return o.value
	}
	return fn()
}

// IfPresent calls fn with the held value. It does nothing when empty.
func (o Optional[T]) IfPresent(fn func(T)) {
	if o.present {
		fn(o.value)
	}
}

// IfPresentOrElse calls fn with the held value, or orElse when empty.
func (o Optional[T]) IfPresentOrElse(fn func(T), orElse func()) {
	if o.present {
		fn(o.value)
		return
	}
	orElse()
}

// Filter returns o when it holds a value matching pred, otherwise Empty.
func (o Optional[T]) Filter(pred func(T) bool) Optional[T] {
	if o.present && pred(o.value) {
		return o
	}
	return Empty[T]()
}

// String renders the Optional the way the demos print it:
// "Optional[v]" or "Optional.empty".
func (o Optional[T]) String() string {
	if !o.present {
		return "Optional.empty"
	}
	return fmt.Sprintf("Optional[%v]", o.value)
}

// Map applies fn to the held value and wraps the result. An empty input
// yields Empty without calling fn.
func Map[T, U any](o Optional[T], fn func(T) U) Optional[U] {
	if !o.present {
		return Empty[U]()
	}
	return Of(fn(o.value))
}

// MapNillable is Map for functions that signal absence with a nil pointer.
func MapNillable[T, U any](o Optional[T], fn func(T) *U) Optional[U] {
	if !o.present {
		return Empty[U]()
	}
	return OfNillable(fn(o.value))
}

// FlatMap applies fn, which itself returns an Optional, to the held value and
// returns its result directly. An empty input yields Empty without calling fn.
func FlatMap[T, U any](o Optional[T], fn func(T) Optional[U]) Optional[U] {
	if !o.present {
		return Empty[U]()
	}
	return fn(o.value)
}
