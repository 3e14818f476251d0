package codec

// Word is an integer compact word.
type Word interface {
	~uint32 | ~uint64 | ~uintptr
}

// Encode ORs tag into the clear low bits of payload.
func Encode[W Word](tag, payload W) W {
	return payload | tag
}

// Decode splits a compact word into its tag and payload.
func Decode[W Word](w, mask W) (tag, payload W) {
	return Tag(w, mask), w &^ mask
}

// Fits reports whether payload has the low bits required by mask clear.
func Fits[W Word](payload, mask W) bool {
	return payload&mask == 0
}

// Tag extracts the tag alone.
func Tag[W Word](w, mask W) W {
	return w & mask
}
