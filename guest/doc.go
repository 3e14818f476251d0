// Package guest stores compact words in WebAssembly linear memory.
//
// A 32-bit guest has no room for a Go interface value, but a variant whose
// payloads are aligned handles still fits one uint32 per value. Codec packs
// and unpacks such words for a scalar plan built by witplan, and Array lays
// them out contiguously at a base offset in guest memory.
//
//	p, _ := witplan.Plan(td)
//	codec, _ := guest.NewCodec(p)
//	arr, _ := guest.NewArray(guest.WrapMemory(mod.ExportedMemory("memory")), codec, base, n)
//	err := arr.Store(0, 1, rep)
package guest
