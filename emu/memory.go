package emu

import "encoding/binary"

const (
	pageShift = 12
	pageSize  = 1 << pageShift
	pageMask  = pageSize - 1
)

// MemoryInterface is the byte-addressed little-endian memory seen by loads,
// stores and fetch. Width is 1, 2 or 4; there are no alignment checks.
type MemoryInterface interface {
	Read(addr uint32, width int) uint32
	Write(addr uint32, width int, value uint32)
}

// Memory is a sparse, paged 32-bit address space. Unwritten bytes read as 0.
type Memory struct {
	pages map[uint32]*[pageSize]byte
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{pages: make(map[uint32]*[pageSize]byte)}
}

func (m *Memory) page(addr uint32, create bool) *[pageSize]byte {
	p, ok := m.pages[addr>>pageShift]
	if !ok && create {
		p = new([pageSize]byte)
		m.pages[addr>>pageShift] = p
	}
	return p
}

// Read8 reads a byte.
func (m *Memory) Read8(addr uint32) uint8 {
	p := m.page(addr, false)
	if p == nil {
		return 0
	}
	return p[addr&pageMask]
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint32, value uint8) {
	m.page(addr, true)[addr&pageMask] = value
}

// Read16 reads a little-endian halfword.
func (m *Memory) Read16(addr uint32) uint16 {
	return uint16(m.Read8(addr)) | uint16(m.Read8(addr+1))<<8
}

// Write16 writes a little-endian halfword.
func (m *Memory) Write16(addr uint32, value uint16) {
	m.Write8(addr, uint8(value))
	m.Write8(addr+1, uint8(value>>8))
}

// Read32 reads a little-endian word.
func (m *Memory) Read32(addr uint32) uint32 {
	if addr&pageMask <= pageSize-4 {
		p := m.page(addr, false)
		if p == nil {
			return 0
		}
		off := addr & pageMask
		return binary.LittleEndian.Uint32(p[off : off+4])
	}
	return uint32(m.Read16(addr)) | uint32(m.Read16(addr+2))<<16
}

// Write32 writes a little-endian word.
func (m *Memory) Write32(addr uint32, value uint32) {
	if addr&pageMask <= pageSize-4 {
		off := addr & pageMask
		binary.LittleEndian.PutUint32(m.page(addr, true)[off:off+4], value)
		return
	}
	m.Write16(addr, uint16(value))
	m.Write16(addr+2, uint16(value>>16))
}

// Read implements MemoryInterface.
func (m *Memory) Read(addr uint32, width int) uint32 {
	switch width {
	case 1:
		return uint32(m.Read8(addr))
	case 2:
		return uint32(m.Read16(addr))
	default:
		return m.Read32(addr)
	}
}

// Write implements MemoryInterface.
func (m *Memory) Write(addr uint32, width int, value uint32) {
	switch width {
	case 1:
		m.Write8(addr, uint8(value))
	case 2:
		m.Write16(addr, uint16(value))
	default:
		m.Write32(addr, value)
	}
}

// LoadProgram copies data into memory starting at addr.
func (m *Memory) LoadProgram(addr uint32, data []byte) {
	for i, b := range data {
		m.Write8(addr+uint32(i), b)
	}
}

// Reset drops every page.
func (m *Memory) Reset() {
	clear(m.pages)
}

// Fetch reads the instruction word at *cursor and advances the cursor by 4.
func Fetch(mem MemoryInterface, cursor *uint32) uint32 {
	word := mem.Read(*cursor, 4)
	*cursor += 4
	return word
}
