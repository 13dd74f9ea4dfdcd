package cache

import (
	"github.com/sarchlab/la32sim/emu"
)

// MemoryBacking wraps an emu.MemoryInterface as a BackingStore.
type MemoryBacking struct {
	memory emu.MemoryInterface
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory emu.MemoryInterface) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read fetches data from the backing memory.
func (m *MemoryBacking) Read(addr uint32, size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		data[i] = byte(m.memory.Read(addr+uint32(i), 1))
	}
	return data
}

// Write stores data to the backing memory.
func (m *MemoryBacking) Write(addr uint32, data []byte) {
	for i, b := range data {
		m.memory.Write(addr+uint32(i), 1, uint32(b))
	}
}
