package plan

import (
	"fmt"
	"math/bits"

	"go.uber.org/multierr"

	"github.com/QuarticCat/enum-ptr/align"
	"github.com/QuarticCat/enum-ptr/errors"
	"github.com/QuarticCat/enum-ptr/internal/codec"
)

// Storage is the machine representation of a compact word.
type Storage uint8

const (
	// StoragePointer keeps the word GC-visible as a tagged pointer.
	StoragePointer Storage = iota
	// StorageScalar keeps the word as a plain integer.
	StorageScalar
)

func (s Storage) String() string {
	if s == StorageScalar {
		return "scalar"
	}
	return "pointer"
}

// Variant describes one entry of a variant table.
type Variant struct {
	Witness      align.Witness
	Discriminant *uint64 // explicit discriminants are rejected
	Name         string
	Fields       int // payload fields, 0 for unit variants
	Owning       bool
	Opaque       bool // excluded from projection
}

// Table is the registration input: variants in declaration order.
type Table struct {
	Name      string
	Variants  []Variant
	Footprint uintptr // pre-compaction size in bytes
	WordBits  uint    // 0 selects the host word
}

// Plan is a structurally valid tag layout.
type Plan struct {
	Name        string
	Variants    []Variant
	Mask        uintptr
	MinAlign    uintptr
	TagBits     uint
	WordBits    uint
	Storage     Storage
	HasUnit     bool
	HasNullable bool
	Trivial     bool // no variant owns its payload
}

// Compute returns the tag width, mask and minimum alignment for n variants.
func Compute(n int) (tagBits uint, mask, minAlign uintptr) {
	tagBits = align.TagBits(n)
	minAlign = uintptr(1) << tagBits
	return tagBits, minAlign - 1, minAlign
}

// New validates the structure of t and computes its plan.
func New(t Table) (*Plan, error) {
	var errs error

	wordBits := t.WordBits
	if wordBits == 0 {
		wordBits = bits.UintSize
	}
	wordBytes := uintptr(wordBits / 8)

	if len(t.Variants) == 0 {
		errs = multierr.Append(errs, errors.Structure(t.Name, "", "no variants"))
	}
	if t.Footprint != 2*wordBytes {
		errs = multierr.Append(errs, errors.Footprint(t.Name, t.Footprint, wordBytes))
	}

	p := &Plan{
		Name:     t.Name,
		Variants: t.Variants,
		WordBits: wordBits,
		Trivial:  true,
	}

	seen := make(map[string]bool, len(t.Variants))
	pointers, words := 0, 0
	for _, v := range t.Variants {
		if seen[v.Name] {
			errs = multierr.Append(errs, errors.Structure(t.Name, v.Name, "duplicate variant name"))
		}
		seen[v.Name] = true

		if v.Fields > 1 {
			errs = multierr.Append(errs, errors.Structure(t.Name, v.Name,
				fmt.Sprintf("expect at most one payload field, got %d", v.Fields)))
		} else if (v.Fields == 0) != (v.Witness.Kind == align.KindUnit) {
			errs = multierr.Append(errs, errors.Structure(t.Name, v.Name,
				fmt.Sprintf("%s payload with %d fields", v.Witness.Kind, v.Fields)))
		}
		if v.Discriminant != nil {
			errs = multierr.Append(errs, errors.Discriminant(t.Name, v.Name, *v.Discriminant))
		}
		if v.Owning {
			p.Trivial = false
			if !v.Witness.Kind.IsPointer() {
				errs = multierr.Append(errs, errors.Structure(t.Name, v.Name,
					fmt.Sprintf("%s payload cannot own a resource", v.Witness.Kind)))
			}
		}
		if v.Witness.Kind.HasPayload() && !align.IsPowerOfTwo(v.Witness.Alignment) {
			errs = multierr.Append(errs, errors.Structure(t.Name, v.Name,
				fmt.Sprintf("alignment %d is not a power of two", v.Witness.Alignment)))
		}

		switch v.Witness.Kind {
		case align.KindPointer:
			pointers++
		case align.KindOptionalPointer:
			pointers++
			p.HasNullable = true
		case align.KindCustomWord:
			words++
		case align.KindUnit:
			p.HasUnit = true
			p.HasNullable = true
		}
	}

	if pointers > 0 && words > 0 {
		errs = multierr.Append(errs, errors.New(errors.PhaseRegister, errors.KindMixedStorage).
			Type(t.Name).
			Detail("%d pointer and %d custom-word variants cannot share one word", pointers, words).
			Build())
	}
	if words > 0 {
		p.Storage = StorageScalar
	}

	p.TagBits, p.Mask, p.MinAlign = Compute(len(t.Variants))

	limit := wordBits - 1
	if p.Storage == StoragePointer && limit > codec.MaxPointerTagBits {
		limit = codec.MaxPointerTagBits
	}
	if p.TagBits > limit {
		errs = multierr.Append(errs, errors.TagOverflow(t.Name, len(t.Variants), p.TagBits, limit))
	}

	if errs != nil {
		return nil, errs
	}
	return p, nil
}

// Validate checks every payload variant against the minimum alignment and
// reports all offenders.
func (p *Plan) Validate() error {
	var errs error
	for i := range p.Variants {
		errs = multierr.Append(errs, p.check(errors.PhaseRegister, i))
	}
	return errs
}

// CheckVariant checks a single variant against the minimum alignment.
func (p *Plan) CheckVariant(i int) error {
	return p.check(errors.PhaseConstruct, i)
}

func (p *Plan) check(phase errors.Phase, i int) error {
	v := &p.Variants[i]
	if v.Witness.Covers(p.MinAlign) {
		return nil
	}
	return errors.InsufficientAlignment(phase, p.Name, v.Name, v.Witness.Alignment, p.MinAlign)
}

// Index returns the ordinal of the named variant.
func (p *Plan) Index(name string) (int, bool) {
	for i := range p.Variants {
		if p.Variants[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// Len returns the number of variants.
func (p *Plan) Len() int {
	return len(p.Variants)
}

// Describe returns a one-line summary of the plan.
func (p *Plan) Describe() string {
	return fmt.Sprintf("%s: %d variants, %d tag bits, mask %#x, min align %d (%s storage, %d-bit word)",
		p.Name, len(p.Variants), p.TagBits, p.Mask, p.MinAlign, p.Storage, p.WordBits)
}
