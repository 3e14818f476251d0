package guest

import (
	"github.com/QuarticCat/enum-ptr/align"
	"github.com/QuarticCat/enum-ptr/errors"
	"github.com/QuarticCat/enum-ptr/internal/codec"
	"github.com/QuarticCat/enum-ptr/plan"
)

// WordBytes is the size of a guest compact word.
const WordBytes = 4

// Codec packs variant ordinals and payload bits into 32-bit words.
type Codec struct {
	plan *plan.Plan
	mask uint32
}

// NewCodec returns a codec for p, which must use scalar storage on a 32-bit
// word.
func NewCodec(p *plan.Plan) (*Codec, error) {
	if p.Storage != plan.StorageScalar {
		return nil, errors.New(errors.PhaseRegister, errors.KindStorageMismatch).
			Type(p.Name).
			Detail("guest words need scalar storage, plan uses %s", p.Storage).
			Build()
	}
	if p.WordBits != 8*WordBytes {
		return nil, errors.New(errors.PhaseRegister, errors.KindStorageMismatch).
			Type(p.Name).
			Detail("plan targets a %d-bit word, guest words are %d-bit", p.WordBits, 8*WordBytes).
			Build()
	}
	return &Codec{plan: p, mask: uint32(p.Mask)}, nil
}

// Plan returns the plan the codec was built for.
func (c *Codec) Plan() *plan.Plan { return c.plan }

func (c *Codec) variant(phase errors.Phase, tag uint32) (*plan.Variant, error) {
	if int(tag) >= len(c.plan.Variants) {
		return nil, errors.InvalidVariant(phase, c.plan.Name, uint64(tag), len(c.plan.Variants))
	}
	return &c.plan.Variants[tag], nil
}

// Encode packs payload under the given variant ordinal. Unit variants take
// a zero payload.
func (c *Codec) Encode(variant int, payload uint32) (uint32, error) {
	if variant < 0 {
		return 0, errors.InvalidVariant(errors.PhaseEncode, c.plan.Name, uint64(variant), len(c.plan.Variants))
	}
	v, err := c.variant(errors.PhaseEncode, uint32(variant))
	if err != nil {
		return 0, err
	}
	if v.Witness.Kind == align.KindUnit {
		if payload != 0 {
			return 0, errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Type(c.plan.Name).
				Variant(v.Name).
				Value(payload).
				Detail("unit variant takes no payload, got %#x", payload).
				Build()
		}
		return uint32(variant), nil
	}
	if !codec.Fits(payload, c.mask) {
		return 0, errors.New(errors.PhaseEncode, errors.KindMisaligned).
			Type(c.plan.Name).
			Variant(v.Name).
			Value(payload).
			Detail("payload %#x has tag bits set", payload).
			Build()
	}
	return codec.Encode(uint32(variant), payload), nil
}

// EncodeName is Encode with the variant picked by name.
func (c *Codec) EncodeName(name string, payload uint32) (uint32, error) {
	i, ok := c.plan.Index(name)
	if !ok {
		return 0, errors.New(errors.PhaseEncode, errors.KindUnknownVariant).
			Type(c.plan.Name).
			Variant(name).
			Build()
	}
	return c.Encode(i, payload)
}

// Decode splits w into its variant ordinal and payload bits.
func (c *Codec) Decode(w uint32) (variant int, payload uint32, err error) {
	tag, payload := codec.Decode(w, c.mask)
	v, err := c.variant(errors.PhaseDecode, tag)
	if err != nil {
		return 0, 0, err
	}
	if v.Witness.Kind == align.KindUnit && payload != 0 {
		return 0, 0, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Type(c.plan.Name).
			Variant(v.Name).
			Value(w).
			Detail("unit variant with payload bits %#x", payload).
			Build()
	}
	return int(tag), payload, nil
}

// Name returns the name of the variant with ordinal i.
func (c *Codec) Name(i int) string {
	if i < 0 || i >= len(c.plan.Variants) {
		return ""
	}
	return c.plan.Variants[i].Name
}
