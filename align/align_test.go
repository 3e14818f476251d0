package align

import (
	"testing"
	"unsafe"
)

type word16 uintptr

func (word16) GuaranteedAlignment() uintptr { return 16 }

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindPointer, "pointer"},
		{KindOptionalPointer, "optional-pointer"},
		{KindCustomWord, "custom-word"},
		{KindUnit, "unit"},
		{Kind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKindPredicates(t *testing.T) {
	if KindUnit.HasPayload() {
		t.Error("unit has no payload")
	}
	if !KindCustomWord.HasPayload() {
		t.Error("custom word has a payload")
	}
	if !KindPointer.IsPointer() || !KindOptionalPointer.IsPointer() {
		t.Error("pointer kinds must report IsPointer")
	}
	if KindCustomWord.IsPointer() {
		t.Error("custom word is not a pointer")
	}
	if !KindOptionalPointer.Nullable() || KindPointer.Nullable() {
		t.Error("only optional pointers are nullable")
	}
}

func TestPointerWitness(t *testing.T) {
	tests := []struct {
		name string
		w    Witness
		want uintptr
	}{
		{"int64", Pointer[int64](), unsafe.Alignof(int64(0))},
		{"int32", Pointer[int32](), 4},
		{"int8", Pointer[int8](), 1},
		{"struct", Pointer[struct {
			a uint16
			b uint32
		}](), 4},
		{"zero size", Pointer[struct{}](), 1},
		{"zero length array", Pointer[[0]uint64](), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.w.Alignment != tt.want {
				t.Errorf("Alignment = %d, want %d", tt.w.Alignment, tt.want)
			}
			if tt.w.Kind != KindPointer {
				t.Errorf("Kind = %v, want pointer", tt.w.Kind)
			}
		})
	}
}

func TestOptionalPointerWitness(t *testing.T) {
	w := OptionalPointer[int32]()
	if w.Kind != KindOptionalPointer {
		t.Errorf("Kind = %v", w.Kind)
	}
	if w.Alignment != 4 {
		t.Errorf("Alignment = %d, want 4", w.Alignment)
	}
	if w.Elem.Name() != "int32" {
		t.Errorf("Elem = %v", w.Elem)
	}
}

func TestCustomAndUnitWitness(t *testing.T) {
	w := Custom[word16]()
	if w.Kind != KindCustomWord || w.Alignment != 16 || w.TagBits() != 4 {
		t.Errorf("custom witness = %+v", w)
	}

	s := Custom[Slot]()
	if s.Alignment != 1<<SlotShift {
		t.Errorf("slot alignment = %d", s.Alignment)
	}

	u := Unit()
	if u.Kind != KindUnit || u.Alignment != MaxAlignment {
		t.Errorf("unit witness = %+v", u)
	}
	if !u.Covers(1 << 20) {
		t.Error("unit must cover any requirement")
	}
}

func TestCovers(t *testing.T) {
	w := Pointer[int32]()
	if !w.Covers(4) || !w.Covers(2) {
		t.Error("4-byte alignment must cover 2 and 4")
	}
	if w.Covers(8) {
		t.Error("4-byte alignment must not cover 8")
	}
}

func TestTagBits(t *testing.T) {
	tests := []struct {
		n    int
		want uint
	}{
		{1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4}, {256, 8}, {257, 9},
	}
	for _, tt := range tests {
		if got := TagBits(tt.n); got != tt.want {
			t.Errorf("TagBits(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestPowerOfTwoAndAlignTo(t *testing.T) {
	for _, x := range []uintptr{1, 2, 4, 1024, MaxAlignment} {
		if !IsPowerOfTwo(x) {
			t.Errorf("IsPowerOfTwo(%d) = false", x)
		}
	}
	for _, x := range []uintptr{0, 3, 6, 1023} {
		if IsPowerOfTwo(x) {
			t.Errorf("IsPowerOfTwo(%d) = true", x)
		}
	}
	if got := AlignTo(5, 4); got != 8 {
		t.Errorf("AlignTo(5, 4) = %d", got)
	}
	if got := AlignTo(8, 4); got != 8 {
		t.Errorf("AlignTo(8, 4) = %d", got)
	}
	if got := AlignTo(3, 0); got != 3 {
		t.Errorf("AlignTo(3, 0) = %d", got)
	}
}

func TestSlot(t *testing.T) {
	s := NewSlot(5)
	if s.Index() != 5 {
		t.Errorf("Index() = %d", s.Index())
	}
	if uintptr(s)&(1<<SlotShift-1) != 0 {
		t.Errorf("low bits set: %#x", uintptr(s))
	}
	s = s.Add(3)
	if s.Index() != 8 || uintptr(s)&(1<<SlotShift-1) != 0 {
		t.Errorf("after Add: index %d bits %#x", s.Index(), uintptr(s))
	}
}
