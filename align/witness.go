package align

import (
	"math/bits"
	"reflect"
)

// MaxAlignment is the alignment reported for payload-less variants.
const MaxAlignment uintptr = 1 << (bits.UintSize - 1)

// Witness is the alignment guarantee of one payload type.
type Witness struct {
	Elem      reflect.Type // pointee for pointers, the word type for custom words
	Alignment uintptr
	Kind      Kind
}

// Aligned is implemented by custom word types whose bit pattern always has
// log2(GuaranteedAlignment()) low bits cleared.
type Aligned interface {
	GuaranteedAlignment() uintptr
}

// Pointer returns the witness of a non-nil *P.
func Pointer[P any]() Witness {
	return Witness{
		Elem:      reflect.TypeFor[P](),
		Alignment: pointee[P](),
		Kind:      KindPointer,
	}
}

// OptionalPointer returns the witness of a possibly nil *P.
func OptionalPointer[P any]() Witness {
	w := Pointer[P]()
	w.Kind = KindOptionalPointer
	return w
}

// Custom returns the witness of a custom word type.
func Custom[W Aligned]() Witness {
	var w W
	return Witness{
		Elem:      reflect.TypeFor[W](),
		Alignment: w.GuaranteedAlignment(),
		Kind:      KindCustomWord,
	}
}

// Unit returns the witness of a payload-less variant.
func Unit() Witness {
	return Witness{Alignment: MaxAlignment, Kind: KindUnit}
}

// TagBits reports how many low bits the witness guarantees to be zero.
func (w Witness) TagBits() uint {
	if w.Alignment == 0 {
		return 0
	}
	return uint(bits.TrailingZeros(uint(w.Alignment)))
}

// Covers reports whether the witness can host a tag that requires minAlign.
func (w Witness) Covers(minAlign uintptr) bool {
	return w.Kind == KindUnit || w.Alignment >= minAlign
}

// pointee is the alignment a *P is guaranteed to have. Zero-size pointees all
// share one address and cannot hold an in-bounds tag, so they report 1.
func pointee[P any]() uintptr {
	t := reflect.TypeFor[P]()
	if t.Size() == 0 {
		return 1
	}
	return uintptr(t.Align())
}

// TagBits returns ceil(log2(n)), the number of tag bits n variants need.
func TagBits(n int) uint {
	if n <= 1 {
		return 0
	}
	return uint(bits.Len(uint(n - 1)))
}

// IsPowerOfTwo reports whether x is a power of two.
func IsPowerOfTwo(x uintptr) bool {
	return x != 0 && x&(x-1) == 0
}

// AlignTo rounds offset up to a multiple of align.
func AlignTo(offset, align uintptr) uintptr {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}
