package emu

import (
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/arch/loong64/loong64asm"
)

// ITraceEntry is one executed instruction.
type ITraceEntry struct {
	PC       uint32
	Word     uint32
	Mnemonic string
}

// ITrace is a ring buffer of the most recently executed instructions.
type ITrace struct {
	entries []ITraceEntry
	next    int
	full    bool
}

// NewITrace creates a ring buffer holding up to depth entries. A depth of 0
// or less disables recording.
func NewITrace(depth int) *ITrace {
	if depth < 0 {
		depth = 0
	}
	return &ITrace{entries: make([]ITraceEntry, depth)}
}

// Record appends an entry, overwriting the oldest one when full.
func (t *ITrace) Record(pc, word uint32, mnemonic string) {
	if len(t.entries) == 0 {
		return
	}

	t.entries[t.next] = ITraceEntry{PC: pc, Word: word, Mnemonic: mnemonic}
	t.next++
	if t.next == len(t.entries) {
		t.next = 0
		t.full = true
	}
}

// Entries returns the recorded entries, oldest first.
func (t *ITrace) Entries() []ITraceEntry {
	if !t.full {
		out := make([]ITraceEntry, t.next)
		copy(out, t.entries[:t.next])
		return out
	}

	out := make([]ITraceEntry, 0, len(t.entries))
	out = append(out, t.entries[t.next:]...)
	return append(out, t.entries[:t.next]...)
}

// Reset drops every entry.
func (t *ITrace) Reset() {
	t.next = 0
	t.full = false
}

// Dump writes the buffer oldest first. The newest entry at markPC is
// flagged with an arrow.
func (t *ITrace) Dump(w io.Writer, markPC uint32) {
	entries := t.Entries()

	mark := -1
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].PC == markPC {
			mark = i
			break
		}
	}

	for i, e := range entries {
		marker := "    "
		if i == mark {
			marker = "--> "
		}
		fmt.Fprintf(w, "%s0x%08x: %08x  %-9s %s\n", marker, e.PC, e.Word, e.Mnemonic, Disassemble(e.Word))
	}
}

// Disassemble renders word in GNU assembler syntax. Words the disassembler
// does not know render as a .word directive.
func Disassemble(word uint32) string {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], word)

	inst, err := loong64asm.Decode(buf[:])
	if err != nil {
		return fmt.Sprintf(".word 0x%08x", word)
	}
	return loong64asm.GNUSyntax(inst)
}
