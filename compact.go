package enumptr

import (
	"fmt"
	"hash/maphash"
	"unsafe"

	"github.com/QuarticCat/enum-ptr/errors"
	"github.com/QuarticCat/enum-ptr/internal/codec"
)

// noCopy lets go vet's copylocks check flag accidental copies.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Compact holds one value of the union T in a single pointer-sized word and
// owns whatever the active payload owns.
//
// A Compact must not be copied; use Take to move it. The zero Compact holds
// nothing and behaves like a consumed value.
type Compact[T any] struct {
	_ noCopy
	w unsafe.Pointer
}

// New consumes v into a compact value using the layout registered for T.
func New[T any](v T) Compact[T] {
	return layoutFor[T](errors.PhaseConstruct).Construct(v)
}

func (c *Compact[T]) open(phase errors.Phase) (*Layout[T], slot[T]) {
	l := layoutFor[T](phase)
	if c.w == nil {
		panic(errors.Consumed(phase, l.Name()))
	}
	v, p := l.decodePointer(phase, c.w)
	return l, slot[T]{v: v, ptr: p}
}

// Alive reports whether c still holds a value.
func (c *Compact[T]) Alive() bool {
	return c.w != nil
}

// Destruct rebuilds the held value and hands its ownership to the caller.
// c is consumed.
func (c *Compact[T]) Destruct() T {
	_, s := c.open(errors.PhaseDestruct)
	c.w = nil
	return s.value()
}

// Drop tears the held value down. Owning payloads have Drop called exactly
// once. Dropping a consumed value does nothing.
func (c *Compact[T]) Drop() {
	if c.w == nil {
		return
	}
	_, s := c.open(errors.PhaseDestruct)
	c.w = nil
	if s.v.drop != nil && s.ptr != nil {
		s.v.drop(s.ptr)
	}
}

// Take moves the value out of c, leaving c consumed.
func (c *Compact[T]) Take() Compact[T] {
	w := c.w
	c.w = nil
	return Compact[T]{w: w}
}

// Replace stores v and returns the previous value, whose ownership passes to
// the caller.
func (c *Compact[T]) Replace(v T) T {
	l, s := c.open(errors.PhaseAccess)
	c.w = l.encodePointer(errors.PhaseConstruct, v)
	return s.value()
}

// ReplaceWith passes the held value to fn and stores its result. If fn
// panics, c is left consumed.
func (c *Compact[T]) ReplaceWith(fn func(T) T) {
	l, s := c.open(errors.PhaseAccess)
	c.w = nil
	c.w = l.encodePointer(errors.PhaseConstruct, fn(s.value()))
}

// InspectRef calls fn with a temporary copy of the held value. fn must not
// retain the value or tear it down.
func (c *Compact[T]) InspectRef(fn func(T)) {
	_, s := c.open(errors.PhaseAccess)
	fn(s.value())
}

// InspectMut calls fn with a temporary copy of the held value. Changes made
// through the payload are kept. Changing the variant or the payload address
// panics with KindLostMutation; use Replace for that.
func (c *Compact[T]) InspectMut(fn func(*T)) {
	l, s := c.open(errors.PhaseAccess)
	v := s.value()
	fn(&v)

	i, ok := l.VariantOf(v)
	if ok && l.variants[i] == s.v && l.payloadOf(s.v, v) == s.ptr {
		return
	}
	panic(errors.New(errors.PhaseAccess, errors.KindLostMutation).
		Type(l.Name()).
		Variant(s.v.name()).
		Value(any(v)).
		Detail("variant or payload address changed inside InspectMut, use Replace").
		Build())
}

func (l *Layout[T]) payloadOf(info *variantInfo[T], v T) unsafe.Pointer {
	if info.ptrOf == nil {
		return nil
	}
	return info.ptrOf(v)
}

// Map calls fn with a temporary copy of the held value and returns its
// result. fn must not retain the value or tear it down.
func Map[T, U any](c *Compact[T], fn func(T) U) U {
	_, s := c.open(errors.PhaseAccess)
	return fn(s.value())
}

// Project returns a non-owning view of the active variant.
func (c *Compact[T]) Project() View[T] {
	_, s := c.open(errors.PhaseAccess)
	return View[T]{s: s}
}

// Variant returns the ordinal of the active variant.
func (c *Compact[T]) Variant() int {
	_, s := c.open(errors.PhaseAccess)
	return s.v.index
}

// VariantName returns the name of the active variant.
func (c *Compact[T]) VariantName() string {
	_, s := c.open(errors.PhaseAccess)
	return s.v.name()
}

// Raw returns the bit pattern of the compact word.
func (c *Compact[T]) Raw() uintptr {
	return codec.Bits(c.w)
}

// Clone duplicates the held value. Payloads implementing Cloner are cloned
// through it; other non-owning payloads are shared. Cloning an owning
// payload without Cloner panics.
func (c *Compact[T]) Clone() Compact[T] {
	l, s := c.open(errors.PhaseAccess)
	v := s.value()
	if cl, ok := any(v).(Cloner[T]); ok {
		return l.Construct(cl.Clone())
	}
	if s.v.desc.Owning && s.ptr != nil {
		panic(errors.Unsupported(errors.PhaseAccess, l.Name(),
			fmt.Sprintf("owning variant %s is not cloneable", s.v.name())))
	}
	return Compact[T]{w: c.w}
}

// Equal reports whether c and o hold equal values. A payload implementing
// Equal(T) bool decides; otherwise variants must match and pointees are
// compared by value when comparable.
func (c *Compact[T]) Equal(o *Compact[T]) bool {
	_, a := c.open(errors.PhaseAccess)
	_, b := o.open(errors.PhaseAccess)
	return a.equal(b)
}

// Compare orders c and o: by Compare(T) int when the payload has it,
// otherwise by ordinal and then by payload.
func (c *Compact[T]) Compare(o *Compact[T]) int {
	_, a := c.open(errors.PhaseAccess)
	_, b := o.open(errors.PhaseAccess)
	return a.compare(b)
}

// Hash returns a hash of the held value consistent with Equal.
func (c *Compact[T]) Hash(seed maphash.Seed) uint64 {
	_, s := c.open(errors.PhaseAccess)
	return s.hash(seed)
}

// Format implements fmt.Formatter.
func (c *Compact[T]) Format(f fmt.State, verb rune) {
	if c.w == nil {
		f.Write([]byte("<consumed>"))
		return
	}
	_, s := c.open(errors.PhaseAccess)
	s.format(f, verb)
}
