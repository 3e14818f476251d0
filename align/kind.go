package align

// Kind classifies a variant payload.
type Kind uint8

const (
	KindPointer Kind = iota
	KindOptionalPointer
	KindCustomWord
	KindUnit
)

var kindNames = [...]string{
	KindPointer:         "pointer",
	KindOptionalPointer: "optional-pointer",
	KindCustomWord:      "custom-word",
	KindUnit:            "unit",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// HasPayload reports whether the kind carries payload bits.
func (k Kind) HasPayload() bool {
	return k != KindUnit
}

// IsPointer reports whether the payload word is a GC-visible pointer.
func (k Kind) IsPointer() bool {
	return k == KindPointer || k == KindOptionalPointer
}

// Nullable reports whether an all-zero payload is a legal bit pattern.
func (k Kind) Nullable() bool {
	return k == KindOptionalPointer
}
