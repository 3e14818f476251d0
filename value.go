package enumptr

import (
	"cmp"
	"fmt"
	"hash/maphash"
	"io"
	"reflect"
	"unsafe"

	"github.com/QuarticCat/enum-ptr/align"
)

// slot is a decoded compact word: the active variant and its payload.
type slot[T any] struct {
	v    *variantInfo[T]
	ptr  unsafe.Pointer // pointer payloads, nil for units and empty optionals
	bits uintptr        // custom-word payloads
}

// value rebuilds the temporary T. The result aliases the payload and must
// never be torn down by the caller.
func (s slot[T]) value() T {
	if s.v.kind() == align.KindCustomWord {
		return s.v.fromBits(s.bits)
	}
	return s.v.fromPtr(s.ptr)
}

// pointee returns the payload as an addressable reflect.Value.
func (s slot[T]) pointee() reflect.Value {
	return reflect.NewAt(s.v.desc.Witness.Elem, s.ptr).Elem()
}

// comparablePointee reports whether the payload value can be compared with
// ==. Interface fields are judged by their dynamic contents.
func (s slot[T]) comparablePointee() bool {
	return s.ptr != nil && s.pointee().Comparable()
}

type equaler[T any] interface{ Equal(T) bool }

type comparer[T any] interface{ Compare(T) int }

type hasher interface{ Hash(maphash.Seed) uint64 }

func (s slot[T]) equal(o slot[T]) bool {
	if e, ok := any(s.value()).(equaler[T]); ok {
		return e.Equal(o.value())
	}
	return s.equalPayload(o)
}

func (s slot[T]) equalPayload(o slot[T]) bool {
	if s.v != o.v {
		return false
	}
	switch s.v.kind() {
	case align.KindUnit:
		return true
	case align.KindCustomWord:
		return s.bits == o.bits
	}
	if s.ptr == o.ptr {
		return true
	}
	if !s.comparablePointee() || !o.comparablePointee() {
		return false
	}
	return s.pointee().Equal(o.pointee())
}

func (s slot[T]) compare(o slot[T]) int {
	if c, ok := any(s.value()).(comparer[T]); ok {
		return c.Compare(o.value())
	}
	if s.v != o.v {
		return cmp.Compare(s.v.index, o.v.index)
	}
	switch s.v.kind() {
	case align.KindUnit:
		return 0
	case align.KindCustomWord:
		return cmp.Compare(s.bits, o.bits)
	}
	switch {
	case s.ptr == o.ptr:
		return 0
	case s.ptr == nil:
		return -1
	case o.ptr == nil:
		return 1
	}
	if c, ok := comparePointees(s.pointee(), o.pointee()); ok {
		return c
	}
	if s.equalPayload(o) {
		return 0
	}
	return cmp.Compare(uintptr(s.ptr), uintptr(o.ptr))
}

func comparePointees(a, b reflect.Value) (int, bool) {
	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint()), true
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float()), true
	case reflect.String:
		return cmp.Compare(a.String(), b.String()), true
	case reflect.Bool:
		x, y := a.Bool(), b.Bool()
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func (s slot[T]) hash(seed maphash.Seed) uint64 {
	if h, ok := any(s.value()).(hasher); ok {
		return h.Hash(seed)
	}
	var h maphash.Hash
	h.SetSeed(seed)
	maphash.WriteComparable(&h, s.v.index)
	switch {
	case s.v.kind() == align.KindCustomWord:
		maphash.WriteComparable(&h, s.bits)
	case s.v.kind() == align.KindUnit, s.ptr == nil:
	case s.comparablePointee():
		maphash.WriteComparable(&h, s.pointee().Interface())
	default:
		maphash.WriteComparable(&h, s.ptr)
	}
	return h.Sum64()
}

// format writes the slot as Name(payload). %#v prints the rebuilt T instead.
func (s slot[T]) format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('#') {
		fmt.Fprintf(f, "%#v", s.value())
		return
	}
	io.WriteString(f, s.v.name())
	switch {
	case s.v.kind() == align.KindUnit:
	case s.v.kind() == align.KindCustomWord:
		fmt.Fprintf(f, "(%#x)", s.bits)
	case s.v.desc.Opaque:
		io.WriteString(f, "(..)")
	case s.ptr == nil:
		io.WriteString(f, "(nil)")
	default:
		io.WriteString(f, "(")
		fmt.Fprintf(f, fmt.FormatString(f, verb), s.pointee().Interface())
		io.WriteString(f, ")")
	}
}
