// Package witplan derives tag plans for WIT variant types.
//
// A WIT variant lowered by the canonical ABI takes a discriminant plus its
// widest payload. For a 32-bit guest, variants whose payloads are resource
// handles or nothing at all can instead live in one 32-bit word: the handle's
// rep is a guest pointer with RepAlign alignment, and the case index fits in
// its clear low bits.
//
//	p, err := witplan.Plan(td, witplan.RepAlign(16))
//	if err != nil {
//	    // err names every case that cannot be compacted
//	}
//	codec, err := guest.NewCodec(p)
//
// Scan plans every variant type of a resolved document at once.
package witplan
