package witplan

import (
	"fmt"

	"go.bytecodealliance.org/wit"
	"go.uber.org/multierr"

	"github.com/QuarticCat/enum-ptr/align"
	"github.com/QuarticCat/enum-ptr/errors"
	"github.com/QuarticCat/enum-ptr/plan"
)

// WordBits is the width of a guest word.
const WordBits = 32

const wordBytes = WordBits / 8

// DefaultRepAlign is the alignment assumed for resource reps, which guests
// usually hand out as pointers to 8-byte aligned structs.
const DefaultRepAlign = 8

// Option configures planning.
type Option func(*config)

type config struct {
	calc     *Calculator
	repAlign uintptr
}

// RepAlign sets the alignment guaranteed by resource reps behind own and
// borrow handles.
func RepAlign(n uintptr) Option {
	return func(c *config) { c.repAlign = n }
}

// WithCalculator shares a layout cache across calls.
func WithCalculator(calc *Calculator) Option {
	return func(c *config) { c.calc = calc }
}

func newConfig(opts []Option) config {
	cfg := config{repAlign: DefaultRepAlign}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.calc == nil {
		cfg.calc = NewCalculator()
	}
	return cfg
}

// Name returns the declared name of td.
func Name(td *wit.TypeDef) string {
	if td.Name != nil {
		return *td.Name
	}
	return "<anonymous>"
}

// variantOf follows type aliases down to a variant definition.
func variantOf(td *wit.TypeDef) (*wit.Variant, bool) {
	for td != nil {
		switch kind := td.Kind.(type) {
		case *wit.Variant:
			return kind, true
		case wit.Type:
			td, _ = kind.(*wit.TypeDef)
		default:
			return nil, false
		}
	}
	return nil, false
}

// handleOf reports whether t is an own or borrow handle, possibly behind
// aliases.
func handleOf(t wit.Type) bool {
	td, ok := t.(*wit.TypeDef)
	for ok {
		switch kind := td.Kind.(type) {
		case *wit.Own, *wit.Borrow:
			return true
		case wit.Type:
			td, ok = kind.(*wit.TypeDef)
		default:
			return false
		}
	}
	return false
}

// Table builds the variant table of a WIT variant type for a 32-bit guest.
// Cases without payload become unit variants; own and borrow handles become
// custom words aligned to the rep alignment; other payloads up to one word
// become custom words with no guaranteed clear bits.
func Table(td *wit.TypeDef, opts ...Option) (plan.Table, error) {
	cfg := newConfig(opts)
	name := Name(td)

	v, ok := variantOf(td)
	if !ok {
		return plan.Table{}, errors.Unsupported(errors.PhaseRegister, name, "not a variant type")
	}

	var errs error
	if !align.IsPowerOfTwo(cfg.repAlign) {
		errs = multierr.Append(errs, errors.Structure(name, "",
			fmt.Sprintf("rep alignment %d is not a power of two", cfg.repAlign)))
	}

	t := plan.Table{
		Name:      name,
		Variants:  make([]plan.Variant, len(v.Cases)),
		Footprint: cfg.calc.Calculate(td).Size,
		WordBits:  WordBits,
	}
	for i, cs := range v.Cases {
		pv := plan.Variant{Name: cs.Name}
		switch {
		case cs.Type == nil:
			pv.Witness = align.Unit()
		case handleOf(cs.Type):
			pv.Fields = 1
			pv.Witness = align.Witness{Alignment: cfg.repAlign, Kind: align.KindCustomWord}
		default:
			pv.Fields = 1
			pv.Witness = align.Witness{Alignment: 1, Kind: align.KindCustomWord}
			if size := cfg.calc.Calculate(cs.Type).Size; size > wordBytes {
				errs = multierr.Append(errs, errors.Structure(name, cs.Name,
					fmt.Sprintf("payload is %d bytes, wider than a %d-byte word", size, wordBytes)))
			}
		}
		t.Variants[i] = pv
	}

	if errs != nil {
		return plan.Table{}, errs
	}
	return t, nil
}

// Plan builds and fully validates the tag plan of a WIT variant type.
func Plan(td *wit.TypeDef, opts ...Option) (*plan.Plan, error) {
	t, err := Table(td, opts...)
	if err != nil {
		return nil, err
	}
	p, err := plan.New(t)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Result is the outcome of planning one variant type of a document.
type Result struct {
	TypeDef *wit.TypeDef
	Plan    *plan.Plan
	Err     error
	Name    string
}

// OK reports whether the variant can be compacted.
func (r Result) OK() bool { return r.Err == nil }

// Scan plans every variant type in r, in document order.
func Scan(r *wit.Resolve, opts ...Option) []Result {
	cfg := newConfig(opts)
	shared := []Option{RepAlign(cfg.repAlign), WithCalculator(cfg.calc)}

	var out []Result
	for _, td := range r.TypeDefs {
		if _, ok := td.Kind.(*wit.Variant); !ok {
			continue
		}
		p, err := Plan(td, shared...)
		out = append(out, Result{TypeDef: td, Plan: p, Err: err, Name: Name(td)})
	}
	return out
}
