// Package emu provides functional LoongArch32 emulation.
package emu

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// NumRegs is the number of general-purpose registers.
const NumRegs = 32

// RegisterFile is the register state an instruction effect reads and writes.
type RegisterFile interface {
	Get(idx uint8) uint32
	Set(idx uint8, value uint32)
}

var regNames = [NumRegs]string{
	"0", "ra", "tp", "sp", "a0", "a1", "a2", "a3",
	"a4", "a5", "a6", "a7", "t0", "t1", "t2", "t3",
	"t4", "t5", "t6", "t7", "t8", "r21", "fp", "s0",
	"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8",
}

// RegFile represents the LoongArch32 general-purpose register file.
// GPR[0] is hardwired to zero by the dispatcher after every instruction.
type RegFile struct {
	GPR [NumRegs]uint32
}

// Get reads a register. Indices past the file read as 0.
func (r *RegFile) Get(idx uint8) uint32 {
	if idx >= NumRegs {
		return 0
	}
	return r.GPR[idx]
}

// Set writes a register. Writes past the file are ignored.
func (r *RegFile) Set(idx uint8, value uint32) {
	if idx >= NumRegs {
		return
	}
	r.GPR[idx] = value
}

// Reset clears every register.
func (r *RegFile) Reset() {
	r.GPR = [NumRegs]uint32{}
}

// RegName returns the ABI name of register idx.
func RegName(idx uint8) string {
	if idx >= NumRegs {
		return fmt.Sprintf("r%d", idx)
	}
	return regNames[idx]
}

// RegIndex resolves a register name. It accepts ABI names, rN and an
// optional leading '$'. "zero" is an alias of r0.
func RegIndex(name string) (uint8, bool) {
	name = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "$")
	if name == "zero" {
		return 0, true
	}

	for i, n := range regNames {
		if n == name {
			return uint8(i), true
		}
	}

	if rest, ok := strings.CutPrefix(name, "r"); ok {
		n, err := strconv.Atoi(rest)
		if err == nil && n >= 0 && n < NumRegs {
			return uint8(n), true
		}
	}

	return 0, false
}

// Display prints every register followed by pc.
func (r *RegFile) Display(w io.Writer, pc uint32) {
	for i, v := range r.GPR {
		fmt.Fprintf(w, "%-4s 0x%08x %d\n", regNames[i], v, int32(v))
	}
	fmt.Fprintf(w, "%-4s 0x%08x\n", "pc", pc)
}
