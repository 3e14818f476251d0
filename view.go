package enumptr

import (
	"reflect"

	"github.com/QuarticCat/enum-ptr/align"
	"github.com/QuarticCat/enum-ptr/errors"
	"github.com/QuarticCat/enum-ptr/internal/codec"
)

// View is a non-owning projection of a compact value: the active variant and
// a pointer to its payload. A View must not be used after the value it came
// from is dropped.
type View[T any] struct {
	s slot[T]
}

// Variant returns the ordinal of the active variant.
func (v View[T]) Variant() int { return v.s.v.index }

// Name returns the name of the active variant.
func (v View[T]) Name() string { return v.s.v.name() }

// Opaque reports whether the active variant is excluded from projection.
func (v View[T]) Opaque() bool { return v.s.v.desc.Opaque }

// IsUnit reports whether the active variant carries no payload.
func (v View[T]) IsUnit() bool { return v.s.v.kind() == align.KindUnit }

func (v View[T]) String() string { return v.Name() }

// Borrow returns a pointer to the payload when it has type P. Optional
// variants holding nil yield (nil, true).
func Borrow[P, T any](v View[T]) (*P, bool) {
	if v.s.v == nil || v.Opaque() || !v.s.v.kind().IsPointer() {
		return nil, false
	}
	if v.s.v.desc.Witness.Elem != reflect.TypeFor[P]() {
		return nil, false
	}
	return codec.To[P](v.s.ptr), true
}

// Load returns a copy of the payload when it has type P and is present.
func Load[P, T any](v View[T]) (P, bool) {
	p, ok := Borrow[P](v)
	if !ok || p == nil {
		var zero P
		return zero, false
	}
	return *p, true
}

// Case is a pointer variant of T with payload *P, created by Ref.
type Case[T, P any] struct {
	vi *variantInfo[T]
}

func (c *Case[T, P]) info() *variantInfo[T] { return c.vi }

// Name returns the variant name.
func (c *Case[T, P]) Name() string { return c.vi.name() }

// Index returns the variant ordinal, or -1 before registration.
func (c *Case[T, P]) Index() int { return c.vi.index }

// Is reports whether x holds this variant.
func (c *Case[T, P]) Is(x *Compact[T]) bool {
	_, s := x.open(errors.PhaseAccess)
	return s.v == c.vi
}

// In returns the payload of v if v is this variant.
func (c *Case[T, P]) In(v View[T]) (*P, bool) {
	if v.s.v != c.vi || c.vi.desc.Opaque {
		return nil, false
	}
	return codec.To[P](v.s.ptr), true
}

// Ref returns the payload of x if x holds this variant.
func (c *Case[T, P]) Ref(x *Compact[T]) (*P, bool) {
	return c.In(x.Project())
}

// Mut calls fn with the payload of x if x holds this variant, and reports
// whether it did. The pointer must not outlive fn.
func (c *Case[T, P]) Mut(x *Compact[T], fn func(*P)) bool {
	p, ok := c.Ref(x)
	if ok {
		fn(p)
	}
	return ok
}

// Wrap constructs a compact value of this variant.
func (c *Case[T, P]) Wrap(p *P) Compact[T] {
	return New(any(p).(T))
}

// UnitCase is a payload-less variant of T, created by Unit.
type UnitCase[T, U any] struct {
	vi *variantInfo[T]
}

func (c *UnitCase[T, U]) info() *variantInfo[T] { return c.vi }

// Name returns the variant name.
func (c *UnitCase[T, U]) Name() string { return c.vi.name() }

// Index returns the variant ordinal, or -1 before registration.
func (c *UnitCase[T, U]) Index() int { return c.vi.index }

// Value returns the variant as a T.
func (c *UnitCase[T, U]) Value() T {
	return c.vi.fromPtr(nil)
}

// In reports whether v is this variant.
func (c *UnitCase[T, U]) In(v View[T]) bool {
	return v.s.v == c.vi
}

// Is reports whether x holds this variant.
func (c *UnitCase[T, U]) Is(x *Compact[T]) bool {
	return c.In(x.Project())
}

// WordCase is a custom-word variant of T, created by Word.
type WordCase[T any, W CustomWord] struct {
	vi *variantInfo[T]
}

func (c *WordCase[T, W]) info() *variantInfo[T] { return c.vi }

// Name returns the variant name.
func (c *WordCase[T, W]) Name() string { return c.vi.name() }

// Index returns the variant ordinal, or -1 before registration.
func (c *WordCase[T, W]) Index() int { return c.vi.index }

// Get returns the word held by s if s is this variant.
func (c *WordCase[T, W]) Get(s Scalar[T]) (W, bool) {
	d := s.open()
	if d.v != c.vi {
		return 0, false
	}
	return W(d.bits), true
}

// Wrap encodes w as this variant.
func (c *WordCase[T, W]) Wrap(w W) Scalar[T] {
	return NewScalar(any(w).(T))
}
