// Package insts provides LoongArch32 instruction definitions and decoding.
package insts

import (
	"fmt"
	"strings"
)

// Op represents a LoongArch32 operation.
type Op uint16

// LoongArch32 operations, one per declared template.
const (
	OpUnknown Op = iota
	OpPCADDU12I
	OpLU12IW
	OpOR
	OpADDIW
	OpBL
	OpLDW
	OpLDH
	OpLDB
	OpLDBU
	OpLDHU
	OpSTW
	OpSTH
	OpSTB
	OpADDW
	OpSUBW
	OpDIVW
	OpMODW
	OpDIVWU
	OpMODWU
	OpSLTUI
	OpSLTI
	OpANDI
	OpORI
	OpXORI
	OpMULW
	OpMULHW
	OpMULHWU
	OpSLLW
	OpSRLW
	OpSRAW
	OpSLLIW
	OpSRLIW
	OpSRAIW
	OpXOR
	OpSLT
	OpSLTU
	OpAND
	OpNOR
	OpB
	OpJIRL
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpDBAR
	OpIBAR
	OpBREAK
	OpINV

	// NumOps is the number of defined operations, OpUnknown included.
	NumOps
)

var opNames = [NumOps]string{
	OpUnknown:   "unknown",
	OpPCADDU12I: "pcaddu12i",
	OpLU12IW:    "lu12i.w",
	OpOR:        "or",
	OpADDIW:     "addi.w",
	OpBL:        "bl",
	OpLDW:       "ld.w",
	OpLDH:       "ld.h",
	OpLDB:       "ld.b",
	OpLDBU:      "ld.bu",
	OpLDHU:      "ld.hu",
	OpSTW:       "st.w",
	OpSTH:       "st.h",
	OpSTB:       "st.b",
	OpADDW:      "add.w",
	OpSUBW:      "sub.w",
	OpDIVW:      "div.w",
	OpMODW:      "mod.w",
	OpDIVWU:     "div.wu",
	OpMODWU:     "mod.wu",
	OpSLTUI:     "sltui",
	OpSLTI:      "slti",
	OpANDI:      "andi",
	OpORI:       "ori",
	OpXORI:      "xori",
	OpMULW:      "mul.w",
	OpMULHW:     "mulh.w",
	OpMULHWU:    "mulh.wu",
	OpSLLW:      "sll.w",
	OpSRLW:      "srl.w",
	OpSRAW:      "sra.w",
	OpSLLIW:     "slli.w",
	OpSRLIW:     "srli.w",
	OpSRAIW:     "srai.w",
	OpXOR:       "xor",
	OpSLT:       "slt",
	OpSLTU:      "sltu",
	OpAND:       "and",
	OpNOR:       "nor",
	OpB:         "b",
	OpJIRL:      "jirl",
	OpBEQ:       "beq",
	OpBNE:       "bne",
	OpBLT:       "blt",
	OpBGE:       "bge",
	OpBLTU:      "bltu",
	OpBGEU:      "bgeu",
	OpDBAR:      "dbar",
	OpIBAR:      "ibar",
	OpBREAK:     "break",
	OpINV:       "inv",
}

// String returns the canonical mnemonic of the operation.
func (op Op) String() string {
	if op >= NumOps {
		return opNames[OpUnknown]
	}
	return opNames[op]
}

// Mode represents an addressing mode: which operand fields an instruction
// populates and how its immediate is assembled.
type Mode uint8

// Addressing modes.
const (
	ModeNoOperand        Mode = iota // no fields besides rd
	ModeRegImm20                     // rd, si20 << 12
	ModeRegImm12Signed               // rd, rj, si12
	ModeRegImm12Unsigned             // rd, rj, ui12 (sign-extended at decode)
	ModeThreeReg                     // rd, rj, rk
	ModeImm26                        // split 26-bit offset, word scaled
	ModeRegImm16                     // rd, rj, si16 << 2
	ModeRegUImm5                     // rd, rj, ui5 (sign-extended at decode)
	ModeBarrier                      // hint15
)

var modeNames = [...]string{
	ModeNoOperand:        "NoOperand",
	ModeRegImm20:         "RegImm20",
	ModeRegImm12Signed:   "RegImm12Signed",
	ModeRegImm12Unsigned: "RegImm12Unsigned",
	ModeThreeReg:         "ThreeReg",
	ModeImm26:            "Imm26",
	ModeRegImm16:         "RegImm16",
	ModeRegUImm5:         "RegUImm5",
	ModeBarrier:          "Barrier",
}

// Modes lists every addressing mode in declaration order.
func Modes() []Mode {
	return []Mode{
		ModeNoOperand, ModeRegImm20, ModeRegImm12Signed, ModeRegImm12Unsigned,
		ModeThreeReg, ModeImm26, ModeRegImm16, ModeRegUImm5, ModeBarrier,
	}
}

func (m Mode) String() string {
	if int(m) >= len(modeNames) {
		return "Mode(?)"
	}
	return modeNames[m]
}

// Operands holds the fields extracted from an instruction word for a given
// addressing mode. Register fields are indices; resolving them to values is
// up to the executor.
type Operands struct {
	Rd uint8 // bits [4:0], present for every mode
	Rj uint8 // bits [9:5], meaningful when UsesRj
	Rk uint8 // bits [14:10], meaningful when UsesRk

	UsesRj bool
	UsesRk bool

	// Imm is the assembled, sign-extended immediate.
	Imm int32
}

// Instruction represents a decoded LoongArch32 instruction.
type Instruction struct {
	Word     uint32
	Op       Op
	Mode     Mode
	Mnemonic string

	Operands
}

// String renders the mnemonic, mode and the operand fields the mode uses.
func (i *Instruction) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-9s %-16s rd=%d", i.Mnemonic, i.Mode, i.Rd)
	if i.UsesRj {
		fmt.Fprintf(&sb, " rj=%d", i.Rj)
	}
	if i.UsesRk {
		fmt.Fprintf(&sb, " rk=%d", i.Rk)
	}
	if i.Mode != ModeNoOperand && i.Mode != ModeThreeReg {
		fmt.Fprintf(&sb, " imm=%d", i.Imm)
	}
	return sb.String()
}

// Decoder matches instruction words against an ordered template table.
type Decoder struct {
	templates []Template
}

// NewDecoder creates a decoder over the canonical LoongArch32 table.
func NewDecoder() *Decoder {
	return &Decoder{templates: table}
}

// NewDecoderWithTable creates a decoder over a caller supplied table. The
// table is copied; later changes to the slice do not affect the decoder.
func NewDecoderWithTable(templates []Template) *Decoder {
	t := make([]Template, len(templates))
	copy(t, templates)
	return &Decoder{templates: t}
}

// Match returns the first template matching word, or nil if none does.
func (d *Decoder) Match(word uint32) *Template {
	for i := range d.templates {
		if d.templates[i].Matches(word) {
			return &d.templates[i]
		}
	}
	return nil
}

// Decode decodes a 32-bit instruction word. A word that matches no template
// decodes to OpUnknown with only Rd populated.
func (d *Decoder) Decode(word uint32) *Instruction {
	t := d.Match(word)
	if t == nil {
		return &Instruction{
			Word:     word,
			Op:       OpUnknown,
			Mnemonic: OpUnknown.String(),
			Operands: DecodeOperands(word, ModeNoOperand),
		}
	}

	return &Instruction{
		Word:     word,
		Op:       t.Op,
		Mode:     t.Mode,
		Mnemonic: t.Mnemonic,
		Operands: DecodeOperands(word, t.Mode),
	}
}

// DecodeOperands extracts the operand fields of word for the given mode.
// It is total over all words and modes.
func DecodeOperands(word uint32, mode Mode) Operands {
	ops := Operands{
		Rd: uint8(bits(word, 4, 0)),
		Rj: uint8(bits(word, 9, 5)),
		Rk: uint8(bits(word, 14, 10)),
	}

	switch mode {
	case ModeRegImm20:
		ops.Imm = SignExtend(bits(word, 24, 5), 20) << 12
	case ModeRegImm12Signed, ModeRegImm12Unsigned:
		ops.UsesRj = true
		ops.Imm = SignExtend(bits(word, 21, 10), 12)
	case ModeThreeReg:
		ops.UsesRj = true
		ops.UsesRk = true
	case ModeImm26:
		// Assembled as the reference simulator does: bits [9:0] are shifted
		// by 15, not 16, so bit 15 overlaps and far targets differ from the
		// ISA layout that Disassemble shows.
		raw := ((bits(word, 25, 10) | bits(word, 9, 0)<<15) << 2) & 0x3FFFFFF
		ops.Imm = SignExtend(raw, 26)
	case ModeRegImm16:
		ops.UsesRj = true
		ops.Imm = SignExtend(bits(word, 25, 10), 16) << 2
	case ModeRegUImm5:
		ops.UsesRj = true
		ops.Imm = SignExtend(bits(word, 14, 10), 5)
	case ModeBarrier:
		ops.Imm = SignExtend(bits(word, 15, 0), 16)
	}

	return ops
}

// SignExtend sign-extends the low n bits of value to 32 bits.
func SignExtend(value uint32, n uint) int32 {
	if n == 0 || n >= 32 {
		return int32(value)
	}
	shift := 32 - n
	return int32(value<<shift) >> shift
}

// bits extracts bits [hi:lo] of word.
func bits(word uint32, hi, lo uint) uint32 {
	return (word >> lo) & (1<<(hi-lo+1) - 1)
}
