package codec

import "unsafe"

// MaxPointerTagBits bounds the tag width of pointer words so every tag of a
// nil payload stays inside the null arena.
const MaxPointerTagBits = 6

const nullSpan = 1 << MaxPointerTagBits

// nullArena backs the sentinel that stands in for nil payloads. Live pointer
// words are therefore never nil, which leaves nil free to mean "no value".
var nullArena [2 * nullSpan]byte

var null = alignedNull()

func alignedNull() unsafe.Pointer {
	base := unsafe.Pointer(&nullArena[0])
	off := -uintptr(base) & (nullSpan - 1)
	return unsafe.Add(base, off)
}

// Null returns the sentinel payload for nil and unit variants.
func Null() unsafe.Pointer {
	return null
}

// IsNull reports whether payload is the nil sentinel.
func IsNull(payload unsafe.Pointer) bool {
	return payload == null
}

// EncodePointer stores tag in the low bits of payload. The result points
// inside the payload's object, since tag < alignment <= size.
func EncodePointer(tag uintptr, payload unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(payload, tag)
}

// EncodeNullable is EncodePointer with nil mapped to the sentinel.
func EncodeNullable(tag uintptr, payload unsafe.Pointer) unsafe.Pointer {
	if payload == nil {
		payload = Null()
	}
	return EncodePointer(tag, payload)
}

// DecodePointer splits a tagged pointer.
func DecodePointer(w unsafe.Pointer, mask uintptr) (uintptr, unsafe.Pointer) {
	tag := Tag(uintptr(w), mask)
	return tag, unsafe.Add(w, -int(tag))
}

// DecodeNullable is DecodePointer with the sentinel mapped back to nil.
func DecodeNullable(w unsafe.Pointer, mask uintptr) (uintptr, unsafe.Pointer) {
	tag, payload := DecodePointer(w, mask)
	if IsNull(payload) {
		payload = nil
	}
	return tag, payload
}

// PointerFits reports whether payload has the low bits required by mask clear.
func PointerFits(payload unsafe.Pointer, mask uintptr) bool {
	return uintptr(payload)&mask == 0
}

// Bits returns the raw bit pattern of a pointer word.
func Bits(w unsafe.Pointer) uintptr {
	return uintptr(w)
}

// To reinterprets a payload as *P.
func To[P any](payload unsafe.Pointer) *P {
	return (*P)(payload)
}

// From reinterprets *P as a payload.
func From[P any](p *P) unsafe.Pointer {
	return unsafe.Pointer(p)
}
