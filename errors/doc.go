// Package errors provides structured error types for enum-ptr.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type names the union type and, when one is at fault, the offending variant.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRegister, errors.KindStructure).
//		Type("Foo").
//		Variant("B").
//		Detail("expect at most one payload field").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InsufficientAlignment(errors.PhaseConstruct, "Foo", "B", 1, 2)
//	err := errors.Footprint("Foo", 24, 8)
//
// Precondition violations panic with an *Error value, so recovered panics can be
// matched with errors.Is/As like returned errors.
package errors
