package align

// SlotShift is the number of low bits a Slot keeps clear.
const SlotShift = 4

// Slot is an index stored pre-shifted left by SlotShift bits, so it can share
// a word with up to 1<<SlotShift tags.
type Slot uintptr

// NewSlot returns the slot for index i. Indexes above the representable range
// lose their high bits.
func NewSlot(i uintptr) Slot {
	return Slot(i << SlotShift)
}

// Index returns the stored index.
func (s Slot) Index() uintptr {
	return uintptr(s) >> SlotShift
}

// Add returns the slot delta positions away.
func (s Slot) Add(delta uintptr) Slot {
	return s + Slot(delta<<SlotShift)
}

func (Slot) GuaranteedAlignment() uintptr {
	return 1 << SlotShift
}
