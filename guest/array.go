package guest

import (
	"fmt"

	"github.com/QuarticCat/enum-ptr/errors"
)

// Array is a fixed run of compact words in guest memory.
type Array struct {
	mem   Memory
	codec *Codec
	base  uint32
	n     uint32
}

// NewArray maps n words starting at base. base must be word aligned and the
// whole run must lie inside mem.
func NewArray(mem Memory, c *Codec, base, n uint32) (*Array, error) {
	if base%WordBytes != 0 {
		return nil, errors.New(errors.PhaseAccess, errors.KindMisaligned).
			Type(c.plan.Name).
			Value(base).
			Detail("array base %#x is not %d-byte aligned", base, WordBytes).
			Build()
	}
	end := uint64(base) + uint64(n)*WordBytes
	if end > uint64(mem.Size()) {
		return nil, errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
			Type(c.plan.Name).
			Value(end).
			Detail("array end %d exceeds memory size %d", end, mem.Size()).
			Build()
	}
	return &Array{mem: mem, codec: c, base: base, n: n}, nil
}

// Len returns the number of words.
func (a *Array) Len() int { return int(a.n) }

func (a *Array) offset(phase errors.Phase, i int) (uint32, error) {
	if i < 0 || i >= int(a.n) {
		return 0, errors.OutOfBounds(phase, i, int(a.n))
	}
	return a.base + uint32(i)*WordBytes, nil
}

// Store encodes a value and writes it at index i.
func (a *Array) Store(i, variant int, payload uint32) error {
	off, err := a.offset(errors.PhaseEncode, i)
	if err != nil {
		return err
	}
	w, err := a.codec.Encode(variant, payload)
	if err != nil {
		return err
	}
	if err := a.mem.WriteU32(off, w); err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindOutOfBounds, err, fmt.Sprintf("store index %d", i))
	}
	return nil
}

// Load reads and decodes the value at index i.
func (a *Array) Load(i int) (variant int, payload uint32, err error) {
	w, err := a.LoadRaw(i)
	if err != nil {
		return 0, 0, err
	}
	return a.codec.Decode(w)
}

// LoadRaw reads the undecoded word at index i.
func (a *Array) LoadRaw(i int) (uint32, error) {
	off, err := a.offset(errors.PhaseDecode, i)
	if err != nil {
		return 0, err
	}
	w, err := a.mem.ReadU32(off)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseDecode, errors.KindOutOfBounds, err, fmt.Sprintf("load index %d", i))
	}
	return w, nil
}
