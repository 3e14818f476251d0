package enumptr

import (
	"fmt"
	"hash/maphash"
	"unsafe"

	"github.com/QuarticCat/enum-ptr/errors"
	"github.com/QuarticCat/enum-ptr/internal/codec"
)

// Copy is the compact form of a union whose payloads own nothing. Copies
// share the same payloads and never tear anything down.
//
// The zero Copy holds no value.
type Copy[T any] struct {
	w unsafe.Pointer
}

// NewCopy encodes v. It panics if T has owning variants.
func NewCopy[T any](v T) Copy[T] {
	l := layoutFor[T](errors.PhaseConstruct)
	if !l.plan.Trivial {
		panic(errors.Unsupported(errors.PhaseConstruct, l.Name(),
			"layout has owning variants, use Compact"))
	}
	return Copy[T]{w: l.encodePointer(errors.PhaseConstruct, v)}
}

func (c Copy[T]) open() slot[T] {
	l := layoutFor[T](errors.PhaseAccess)
	if c.w == nil {
		panic(errors.New(errors.PhaseAccess, errors.KindConsumed).
			Type(l.Name()).
			Detail("zero Copy holds no value").
			Build())
	}
	v, p := l.decodePointer(errors.PhaseAccess, c.w)
	return slot[T]{v: v, ptr: p}
}

// IsZero reports whether c is the zero Copy.
func (c Copy[T]) IsZero() bool { return c.w == nil }

// Get rebuilds the held value.
func (c Copy[T]) Get() T { return c.open().value() }

// Project returns a view of the active variant.
func (c Copy[T]) Project() View[T] { return View[T]{s: c.open()} }

// Variant returns the ordinal of the active variant.
func (c Copy[T]) Variant() int { return c.open().v.index }

// VariantName returns the name of the active variant.
func (c Copy[T]) VariantName() string { return c.open().v.name() }

// Raw returns the bit pattern of the compact word.
func (c Copy[T]) Raw() uintptr { return codec.Bits(c.w) }

// Equal reports whether c and o hold equal values, with the same rules as
// Compact.Equal.
func (c Copy[T]) Equal(o Copy[T]) bool { return c.open().equal(o.open()) }

// Compare orders c and o by ordinal and then by payload, unless the payload
// implements Compare(T) int.
func (c Copy[T]) Compare(o Copy[T]) int { return c.open().compare(o.open()) }

// Hash returns a hash of the held value consistent with Equal.
func (c Copy[T]) Hash(seed maphash.Seed) uint64 { return c.open().hash(seed) }

// Format implements fmt.Formatter.
func (c Copy[T]) Format(f fmt.State, verb rune) {
	if c.w == nil {
		f.Write([]byte("<zero>"))
		return
	}
	c.open().format(f, verb)
}
