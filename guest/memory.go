package guest

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// Memory is guest linear memory addressed by 32-bit offsets.
type Memory interface {
	ReadU32(offset uint32) (uint32, error)
	WriteU32(offset uint32, v uint32) error
	Size() uint32
}

// WrapMemory adapts a wazero api.Memory to Memory.
func WrapMemory(mem api.Memory) Memory {
	if mem == nil {
		return nil
	}
	return &Wrapper{Mem: mem}
}

// Wrapper adapts wazero api.Memory to the Memory interface.
type Wrapper struct {
	Mem api.Memory
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (m *Wrapper) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.Mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (m *Wrapper) WriteU32(offset uint32, v uint32) error {
	if !m.Mem.WriteUint32Le(offset, v) {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	return nil
}

// Size returns the memory size in bytes.
func (m *Wrapper) Size() uint32 {
	return m.Mem.Size()
}
