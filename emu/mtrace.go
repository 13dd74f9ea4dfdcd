package emu

import (
	"fmt"

	"github.com/sarchlab/la32sim/log"
)

// TracedMemory logs every access to the wrapped memory at trace level under
// the mtrace module.
type TracedMemory struct {
	MemoryInterface
}

// NewTracedMemory wraps mem.
func NewTracedMemory(mem MemoryInterface) *TracedMemory {
	return &TracedMemory{MemoryInterface: mem}
}

// Read implements MemoryInterface.
func (m *TracedMemory) Read(addr uint32, width int) uint32 {
	value := m.MemoryInterface.Read(addr, width)
	if log.TraceEnabled(log.MTraceModule) {
		log.Trace(log.MTraceModule, "read",
			"addr", fmt.Sprintf("0x%08x", addr), "width", width, "value", fmt.Sprintf("0x%08x", value))
	}
	return value
}

// Write implements MemoryInterface.
func (m *TracedMemory) Write(addr uint32, width int, value uint32) {
	if log.TraceEnabled(log.MTraceModule) {
		log.Trace(log.MTraceModule, "write",
			"addr", fmt.Sprintf("0x%08x", addr), "width", width, "value", fmt.Sprintf("0x%08x", value))
	}
	m.MemoryInterface.Write(addr, width, value)
}
