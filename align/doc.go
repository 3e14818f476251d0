// Package align describes how many low bits of a payload's bit pattern are
// guaranteed to be zero.
//
// A Witness is computed once per payload type at registration time. Pointer
// payloads report the alignment of their pointee, optional pointers report the
// same (nil needs no low bits), Unit payloads report MaxAlignment because they
// carry no payload at all, and custom words report whatever their Aligned
// implementation promises.
//
// # Custom Words
//
// Any ~uintptr type can take part by implementing Aligned:
//
//	type Offset uintptr // always a multiple of 16
//
//	func (Offset) GuaranteedAlignment() uintptr { return 16 }
//
// The contract is not enforced: every mutator of such a type must keep the low
// bits zero. Slot is a ready-made custom word that stores an index pre-shifted
// by SlotShift bits.
package align
