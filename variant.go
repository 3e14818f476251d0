package enumptr

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/QuarticCat/enum-ptr/align"
	"github.com/QuarticCat/enum-ptr/internal/codec"
	"github.com/QuarticCat/enum-ptr/plan"
)

// Dropper is implemented by payloads that own a resource. Owning variants call
// Drop exactly once when the compact value holding them dies.
type Dropper interface {
	Drop()
}

// Cloner is implemented by payloads that know how to duplicate themselves.
type Cloner[T any] interface {
	Clone() T
}

// Variant is one entry of a variant table, built by Ref, Unit or Word.
type Variant[T any] interface {
	info() *variantInfo[T]
}

// variantInfo is the type-erased form of a variant. The closures are the only
// place where a payload is converted between its Go type and a raw word.
type variantInfo[T any] struct {
	desc  plan.Variant
	typ   reflect.Type // dynamic type inside T
	index int          // ordinal, -1 until registered

	ptrOf    func(T) unsafe.Pointer
	fromPtr  func(unsafe.Pointer) T
	bitsOf   func(T) uintptr
	fromBits func(uintptr) T
	drop     func(unsafe.Pointer)

	problems []string // declaration problems reported at registration
}

func (v *variantInfo[T]) name() string { return v.desc.Name }

func (v *variantInfo[T]) kind() align.Kind { return v.desc.Witness.Kind }

// Option configures a pointer variant.
type Option func(*refConfig)

type refConfig struct {
	optional bool
	owning   bool
	opaque   bool
}

// Optional allows the payload pointer to be nil.
func Optional() Option {
	return func(c *refConfig) { c.optional = true }
}

// Owning marks the payload as the sole owner of its pointee. The pointer type
// must implement Dropper.
func Owning() Option {
	return func(c *refConfig) { c.owning = true }
}

// Opaque excludes the variant from projection. Its payload is reachable only
// through InspectRef, InspectMut and Destruct.
func Opaque() Option {
	return func(c *refConfig) { c.opaque = true }
}

var dropperType = reflect.TypeFor[Dropper]()

// Ref declares a variant whose dynamic type in T is *P.
func Ref[T, P any](name string, opts ...Option) *Case[T, P] {
	var cfg refConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	w := align.Pointer[P]()
	if cfg.optional {
		w = align.OptionalPointer[P]()
	}

	info := &variantInfo[T]{
		desc: plan.Variant{
			Witness: w,
			Name:    name,
			Fields:  1,
			Owning:  cfg.owning,
			Opaque:  cfg.opaque,
		},
		typ:   reflect.TypeFor[*P](),
		index: -1,
		ptrOf: func(v T) unsafe.Pointer {
			return codec.From(any(v).(*P))
		},
		fromPtr: func(p unsafe.Pointer) T {
			return any(codec.To[P](p)).(T)
		},
	}
	if cfg.owning {
		if info.typ.Implements(dropperType) {
			info.drop = func(p unsafe.Pointer) {
				any(codec.To[P](p)).(Dropper).Drop()
			}
		} else {
			info.problems = append(info.problems,
				fmt.Sprintf("owning payload %s does not implement Dropper", info.typ))
		}
	}
	return &Case[T, P]{vi: info}
}

// Unit declares a payload-less variant whose dynamic type in T is the
// zero-size type U.
func Unit[T, U any](name string) *UnitCase[T, U] {
	info := &variantInfo[T]{
		desc: plan.Variant{
			Witness: align.Unit(),
			Name:    name,
		},
		typ:   reflect.TypeFor[U](),
		index: -1,
		fromPtr: func(unsafe.Pointer) T {
			var u U
			return any(u).(T)
		},
		fromBits: func(uintptr) T {
			var u U
			return any(u).(T)
		},
	}
	if size := info.typ.Size(); size != 0 {
		info.problems = append(info.problems,
			fmt.Sprintf("unit type %s has size %d", info.typ, size))
	}
	return &UnitCase[T, U]{vi: info}
}

// CustomWord is a word-sized integer type that keeps its low bits clear.
type CustomWord interface {
	~uintptr
	align.Aligned
}

// Word declares a variant whose dynamic type in T is the custom word W.
func Word[T any, W CustomWord](name string) *WordCase[T, W] {
	info := &variantInfo[T]{
		desc: plan.Variant{
			Witness: align.Custom[W](),
			Name:    name,
			Fields:  1,
		},
		typ:   reflect.TypeFor[W](),
		index: -1,
		bitsOf: func(v T) uintptr {
			return uintptr(any(v).(W))
		},
		fromBits: func(b uintptr) T {
			return any(W(b)).(T)
		},
	}
	return &WordCase[T, W]{vi: info}
}
