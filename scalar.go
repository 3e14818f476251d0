package enumptr

import (
	"fmt"
	"hash/maphash"

	"github.com/QuarticCat/enum-ptr/align"
	"github.com/QuarticCat/enum-ptr/errors"
	"github.com/QuarticCat/enum-ptr/internal/codec"
	"github.com/QuarticCat/enum-ptr/plan"
)

// Scalar is the compact form of a union of custom words and unit variants.
// The word is a plain integer, so a Scalar can be copied freely and stored
// outside Go memory.
//
// The zero Scalar holds variant 0 with a zero payload.
type Scalar[T any] struct {
	w uintptr
}

// NewScalar encodes v. It panics if T does not use scalar storage.
func NewScalar[T any](v T) Scalar[T] {
	return Scalar[T]{w: layoutFor[T](errors.PhaseConstruct).encodeScalar(errors.PhaseConstruct, v)}
}

// ScalarFromRaw validates a word produced elsewhere, for instance read back
// from a file or guest memory.
func (l *Layout[T]) ScalarFromRaw(w uintptr) (Scalar[T], error) {
	if l.plan.Storage != plan.StorageScalar {
		return Scalar[T]{}, errors.New(errors.PhaseDecode, errors.KindStorageMismatch).
			Type(l.Name()).
			Detail("layout uses %s storage", l.plan.Storage).
			Build()
	}
	tag, payload := codec.Decode(w, l.plan.Mask)
	if tag >= uintptr(len(l.variants)) {
		return Scalar[T]{}, errors.InvalidVariant(errors.PhaseDecode, l.Name(), uint64(tag), len(l.variants))
	}
	v := l.variants[tag]
	if v.kind() == align.KindUnit && payload != 0 {
		return Scalar[T]{}, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Type(l.Name()).
			Variant(v.name()).
			Value(w).
			Detail("unit variant with payload bits %#x", payload).
			Build()
	}
	return Scalar[T]{w: w}, nil
}

func (s Scalar[T]) open() slot[T] {
	l := layoutFor[T](errors.PhaseAccess)
	v, b := l.decodeScalar(errors.PhaseAccess, s.w)
	return slot[T]{v: v, bits: b}
}

// Get rebuilds the held value.
func (s Scalar[T]) Get() T { return s.open().value() }

// Variant returns the ordinal of the active variant.
func (s Scalar[T]) Variant() int { return s.open().v.index }

// VariantName returns the name of the active variant.
func (s Scalar[T]) VariantName() string { return s.open().v.name() }

// Raw returns the compact word.
func (s Scalar[T]) Raw() uintptr { return s.w }

// Equal reports whether s and o hold equal values, with the same rules as
// Compact.Equal.
func (s Scalar[T]) Equal(o Scalar[T]) bool { return s.open().equal(o.open()) }

// Compare orders s and o by ordinal and then by payload, unless the payload
// implements Compare(T) int.
func (s Scalar[T]) Compare(o Scalar[T]) int { return s.open().compare(o.open()) }

// Hash returns a hash of the held value consistent with Equal.
func (s Scalar[T]) Hash(seed maphash.Seed) uint64 { return s.open().hash(seed) }

// Format implements fmt.Formatter.
func (s Scalar[T]) Format(f fmt.State, verb rune) { s.open().format(f, verb) }
