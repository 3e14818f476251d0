// Package enumptr stores a tagged union in one machine word.
//
// A union is a Go interface whose variants are its dynamic types. The
// interface value itself is two words, a type word and a data word. When every
// variant's payload is a pointer aligned to at least 2^n bytes, a custom word
// with n clear low bits, or nothing at all, the variant ordinal fits in the
// low n bits of the payload and the whole value fits in one word.
//
// # Declaring a union
//
//	type Expr interface{ expr() }
//
//	type Lit struct{ V int64 }
//	type Neg struct{ X enumptr.Compact[Expr] }
//	type Nil struct{}
//
//	func (*Lit) expr() {}
//	func (*Neg) expr() {}
//	func (Nil) expr()  {}
//
//	func (n *Neg) Drop() { n.X.Drop() }
//
//	var (
//	    litCase = enumptr.Ref[Expr, Lit]("Lit")
//	    negCase = enumptr.Ref[Expr, Neg]("Neg", enumptr.Owning())
//	    nilCase = enumptr.Unit[Expr, Nil]("Nil")
//	)
//
//	func init() {
//	    enumptr.MustRegister[Expr](litCase, negCase, nilCase)
//	}
//
// Register checks every variant up front. Declare defers the alignment check
// of each variant to its first construct, where an insufficiently aligned
// variant panics with an *errors.Error naming it while the other variants keep
// working.
//
// # Compact values
//
// Compact owns its value and must not be copied:
//
//	c := enumptr.New[Expr](&Lit{V: 42})
//	defer c.Drop()
//
//	if lit, ok := litCase.Ref(&c); ok {
//	    lit.V++
//	}
//
// Destruct hands the value back to the caller; Drop tears it down, calling
// Drop on owning payloads exactly once. Every other operation leaves ownership
// where it is. Copy is the freely copyable form for unions that own nothing,
// and Scalar stores unions of custom words as a plain integer.
//
// # Access
//
// Project returns a View of the active variant; Borrow, Load and Case.In read
// the payload through it without rebuilding the union value. InspectRef,
// InspectMut and Map hand a temporary copy of the union value to a callback.
// InspectMut panics if the callback switches the variant or the payload
// address, since that change could not be stored back. Replace and
// ReplaceWith change the variant explicitly.
//
// # Package layout
//
//	enumptr/             Layouts, Compact, Copy, Scalar and views
//	├── align/           Alignment witnesses and the Slot custom word
//	├── plan/            Variant tables and tag plans
//	├── internal/codec/  Word and tagged pointer encoding
//	├── store/           Handle table of compact values
//	├── witplan/         Tag plans for WIT variant types
//	├── guest/           Compact words in WebAssembly linear memory
//	├── errors/          Structured error types
//	└── cmd/tagplan/     Tag plan inspector for WIT documents
package enumptr
