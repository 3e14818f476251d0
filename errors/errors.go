package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseRegister  Phase = "register"  // layout registration
	PhaseConstruct Phase = "construct" // value to compact word
	PhaseDestruct  Phase = "destruct"  // compact word to value
	PhaseAccess    Phase = "access"    // inspection and projection
	PhaseEncode    Phase = "encode"    // guest word encoding
	PhaseDecode    Phase = "decode"    // guest word decoding
	PhaseLoad      Phase = "load"      // WIT document loading
)

// Kind categorizes the error
type Kind string

const (
	KindAlignment       Kind = "insufficient_alignment"
	KindStructure       Kind = "structure"
	KindDiscriminant    Kind = "explicit_discriminant"
	KindFootprint       Kind = "footprint"
	KindTagOverflow     Kind = "tag_overflow"
	KindMixedStorage    Kind = "mixed_storage"
	KindDuplicate       Kind = "duplicate"
	KindNotRegistered   Kind = "not_registered"
	KindConsumed        Kind = "consumed"
	KindUnknownVariant  Kind = "unknown_variant"
	KindNilPayload      Kind = "nil_payload"
	KindLostMutation    Kind = "lost_mutation"
	KindMisaligned      Kind = "misaligned"
	KindInvalidVariant  Kind = "invalid_variant"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindUnsupported     Kind = "unsupported"
	KindInvalidData     Kind = "invalid_data"
	KindStorageMismatch Kind = "storage_mismatch"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Type    string
	Variant string
	Detail  string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Type != "" {
		b.WriteString(": `")
		b.WriteString(e.Type)
		if e.Variant != "" {
			b.WriteString("::")
			b.WriteString(e.Variant)
		}
		b.WriteByte('`')
	} else if e.Variant != "" {
		b.WriteString(": variant `")
		b.WriteString(e.Variant)
		b.WriteByte('`')
	}

	if e.Detail != "" {
		if e.Type != "" || e.Variant != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Type sets the union type name
func (b *Builder) Type(name string) *Builder {
	b.err.Type = name
	return b
}

// Variant sets the offending variant name
func (b *Builder) Variant(name string) *Builder {
	b.err.Variant = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InsufficientAlignment reports a variant whose payload cannot host the tag bits.
func InsufficientAlignment(phase Phase, typeName, variant string, have, need uintptr) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindAlignment,
		Type:    typeName,
		Variant: variant,
		Detail:  fmt.Sprintf("has no enough alignment (guaranteed %d, required %d)", have, need),
		Value:   have,
	}
}

// Structure reports a malformed variant declaration.
func Structure(typeName, variant, detail string) *Error {
	return &Error{
		Phase:   PhaseRegister,
		Kind:    KindStructure,
		Type:    typeName,
		Variant: variant,
		Detail:  detail,
	}
}

// Discriminant reports an explicit discriminant on a variant.
func Discriminant(typeName, variant string, value uint64) *Error {
	return &Error{
		Phase:   PhaseRegister,
		Kind:    KindDiscriminant,
		Type:    typeName,
		Variant: variant,
		Detail:  fmt.Sprintf("discriminant %d is unsupported", value),
		Value:   value,
	}
}

// Footprint reports a type whose pre-compaction size is not two words.
func Footprint(typeName string, size, word uintptr) *Error {
	var detail string
	switch {
	case size <= word:
		detail = fmt.Sprintf("already %d bytes, nothing to compact", size)
	default:
		detail = fmt.Sprintf("%d bytes is not two %d-byte words, cannot compact", size, word)
	}
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindFootprint,
		Type:   typeName,
		Detail: detail,
		Value:  size,
	}
}

// TagOverflow reports a variant count whose tag does not fit the storage word.
func TagOverflow(typeName string, variants int, bits, limit uint) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindTagOverflow,
		Type:   typeName,
		Detail: fmt.Sprintf("%d variants need %d tag bits, limit is %d", variants, bits, limit),
		Value:  variants,
	}
}

// Duplicate reports a second registration of the same Go type.
func Duplicate(typeName string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindDuplicate,
		Type:   typeName,
		Detail: "layout already registered",
	}
}

// NotRegistered reports a lookup of a type without a layout.
func NotRegistered(phase Phase, typeName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotRegistered,
		Type:   typeName,
		Detail: "no layout registered",
	}
}

// Consumed reports an operation on a value that was already destructed or dropped.
func Consumed(phase Phase, typeName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindConsumed,
		Type:   typeName,
		Detail: "value already consumed",
	}
}

// UnknownVariant reports a value that matches no registered variant.
func UnknownVariant(phase Phase, typeName string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownVariant,
		Type:   typeName,
		Detail: fmt.Sprintf("dynamic type %T matches no variant", value),
		Value:  value,
	}
}

// InvalidVariant reports a decoded tag outside the variant table.
func InvalidVariant(phase Phase, typeName string, tag uint64, count int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidVariant,
		Type:   typeName,
		Detail: fmt.Sprintf("tag %d out of range (%d variants)", tag, count),
		Value:  tag,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, typeName, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Type:   typeName,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a WIT document loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
