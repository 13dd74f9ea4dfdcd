package insts

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// PatternLen is the number of symbols in a template pattern.
const PatternLen = 32

// Pattern errors.
var (
	ErrPatternLength = errors.New("pattern must have 32 symbols")
	ErrPatternSymbol = errors.New("pattern symbol must be 0, 1 or ?")
)

// Template describes one instruction encoding.
type Template struct {
	// Pattern is the 32-symbol bit pattern, MSB first, whitespace removed.
	Pattern  string
	Mnemonic string
	Mode     Mode
	Op       Op

	// Mask has a 1 for every fixed bit of the pattern, Match holds the
	// expected value of those bits.
	Mask  uint32
	Match uint32
}

// NewTemplate compiles a human readable pattern into a Template. Whitespace
// in the pattern is cosmetic and ignored.
func NewTemplate(pattern, mnemonic string, mode Mode, op Op) (Template, error) {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, pattern)

	if len(stripped) != PatternLen {
		return Template{}, fmt.Errorf("%s %q: %w (got %d)", mnemonic, pattern, ErrPatternLength, len(stripped))
	}

	var mask, match uint32
	for i := 0; i < PatternLen; i++ {
		bit := uint32(1) << (PatternLen - 1 - i)
		switch stripped[i] {
		case '0':
			mask |= bit
		case '1':
			mask |= bit
			match |= bit
		case '?':
		default:
			return Template{}, fmt.Errorf("%s %q: %w (got %q)", mnemonic, pattern, ErrPatternSymbol, stripped[i])
		}
	}

	return Template{
		Pattern:  stripped,
		Mnemonic: mnemonic,
		Mode:     mode,
		Op:       op,
		Mask:     mask,
		Match:    match,
	}, nil
}

// MustTemplate is like NewTemplate but panics on a malformed pattern.
func MustTemplate(pattern, mnemonic string, mode Mode, op Op) Template {
	t, err := NewTemplate(pattern, mnemonic, mode, op)
	if err != nil {
		panic(err)
	}
	return t
}

// Matches reports whether every fixed bit of the template agrees with word.
func (t *Template) Matches(word uint32) bool {
	return word&t.Mask == t.Match
}

// Covers reports whether every word matched by other is also matched by t.
func (t *Template) Covers(other *Template) bool {
	return t.Mask&^other.Mask == 0 && other.Match&t.Mask == t.Match
}

func (t Template) String() string {
	return fmt.Sprintf("%-9s %-16s %s", t.Mnemonic, t.Mode, t.Pattern)
}

// table is the canonical decode table. Order is significant: the first
// matching entry wins, so entries sharing a pattern with an earlier one are
// unreachable. They are kept as declared; see Shadowed.
var table = []Template{
	MustTemplate("0001110 ????? ????? ????? ????? ?????", "pcaddu12i", ModeRegImm20, OpPCADDU12I),
	MustTemplate("0001010 ????? ????? ????? ????? ?????", "lu12i.w", ModeRegImm20, OpLU12IW),
	MustTemplate("0000000000 0101010 ????? ????? ?????", "or", ModeThreeReg, OpOR),
	MustTemplate("0000001010 ??????? ????? ????? ?????", "addi.w", ModeRegImm12Signed, OpADDIW),
	MustTemplate("010101???? ??????? ????? ????? ?????", "bl", ModeImm26, OpBL),
	MustTemplate("0010100010 ???????????? ????? ?????", "ld.w", ModeRegImm12Signed, OpLDW),
	MustTemplate("0010100001 ???????????? ????? ?????", "ld.h", ModeRegImm12Signed, OpLDH),
	MustTemplate("0010100000 ???????????? ????? ?????", "ld.b", ModeRegImm12Signed, OpLDB),
	MustTemplate("0010101000 ???????????? ????? ?????", "ld.bu", ModeRegImm12Signed, OpLDBU),
	MustTemplate("0010101001 ???????????? ????? ?????", "ld.hu", ModeRegImm12Signed, OpLDHU),

	MustTemplate("0010100110 ???????????? ????? ?????", "st.w", ModeRegImm12Signed, OpSTW),
	MustTemplate("0010100101 ???????????? ????? ?????", "st.h", ModeRegImm12Signed, OpSTH),
	MustTemplate("0010100100 ???????????? ????? ?????", "st.b", ModeRegImm12Signed, OpSTB),

	MustTemplate("0000000000 0100000????? ????? ?????", "add.w", ModeThreeReg, OpADDW),
	MustTemplate("0000000000 0100010????? ????? ?????", "sub.w", ModeThreeReg, OpSUBW),
	MustTemplate("0000000000 1000000????? ????? ?????", "div.w", ModeThreeReg, OpDIVW),
	MustTemplate("0000000000 1000001????? ????? ?????", "mod.w", ModeThreeReg, OpMODW),
	MustTemplate("0000000000 1000010????? ????? ?????", "div.wu", ModeThreeReg, OpDIVWU),
	MustTemplate("0000000000 1000001????? ????? ?????", "mod.wu", ModeThreeReg, OpMODWU),
	MustTemplate("0000001010 ???????????? ????? ?????", "addi.w", ModeRegImm12Signed, OpADDIW),
	MustTemplate("0000001001 ???????????? ????? ?????", "sltui", ModeRegImm12Signed, OpSLTUI),
	MustTemplate("0000001001 ???????????? ????? ?????", "slti", ModeRegImm12Signed, OpSLTI),
	MustTemplate("0000001101 ???????????? ????? ?????", "andi", ModeRegImm12Unsigned, OpANDI),
	MustTemplate("0000001110 ???????????? ????? ?????", "ori", ModeRegImm12Unsigned, OpORI),
	MustTemplate("0000001101 ???????????? ????? ?????", "xori", ModeRegImm12Unsigned, OpXORI),
	MustTemplate("0000000000 0111000????? ????? ?????", "mul.w", ModeThreeReg, OpMULW),
	MustTemplate("0000000000 0111001????? ????? ?????", "mulh.w", ModeThreeReg, OpMULHW),
	MustTemplate("0000000000 0111001????? ????? ?????", "mulh.wu", ModeThreeReg, OpMULHWU),
	MustTemplate("0000000000 0101110????? ????? ?????", "sll.w", ModeThreeReg, OpSLLW),
	MustTemplate("0000000000 0101111????? ????? ?????", "srl.w", ModeThreeReg, OpSRLW),
	MustTemplate("0000000000 0110000????? ????? ?????", "sra.w", ModeThreeReg, OpSRAW),
	MustTemplate("0000000001 0000001????? ????? ?????", "slli.w", ModeRegUImm5, OpSLLIW),
	MustTemplate("0000000001 0001001????? ????? ?????", "srli.w", ModeRegUImm5, OpSRLIW),
	MustTemplate("0000000001 0001001????? ????? ?????", "srai.w", ModeRegUImm5, OpSRAIW),

	MustTemplate("0000000000 0101010????? ????? ?????", "or", ModeThreeReg, OpOR),
	MustTemplate("0000000000 0101011????? ????? ?????", "xor", ModeThreeReg, OpXOR),
	MustTemplate("0000000000 0100100????? ????? ?????", "slt", ModeThreeReg, OpSLT),
	MustTemplate("0000000000 0100101????? ????? ?????", "sltu", ModeThreeReg, OpSLTU),
	MustTemplate("0000000000 0101001????? ????? ?????", "and", ModeThreeReg, OpAND),
	MustTemplate("0000000000 0101000????? ????? ?????", "nor", ModeThreeReg, OpNOR),

	MustTemplate("010101???? ???????????? ????? ?????", "bl", ModeImm26, OpBL),
	MustTemplate("010100???? ???????????? ????? ?????", "b", ModeImm26, OpB),

	MustTemplate("010011???? ???????????? ????? ?????", "jirl", ModeRegImm16, OpJIRL),
	MustTemplate("010110???? ???????????? ????? ?????", "beq", ModeRegImm16, OpBEQ),
	MustTemplate("010111???? ???????????? ????? ?????", "bne", ModeRegImm16, OpBNE),
	MustTemplate("011000???? ???????????? ????? ?????", "blt", ModeRegImm16, OpBLT),
	MustTemplate("011001???? ???????????? ????? ?????", "bge", ModeRegImm16, OpBGE),
	MustTemplate("011010???? ???????????? ????? ?????", "bltu", ModeRegImm16, OpBLTU),
	MustTemplate("011011???? ???????????? ????? ?????", "bgeu", ModeRegImm16, OpBGEU),

	MustTemplate("0011100000 1110100????? ????? ?????", "dbar", ModeBarrier, OpDBAR),
	MustTemplate("0011100000 1110101????? ????? ?????", "ibar", ModeBarrier, OpIBAR),

	MustTemplate("0000 0000 0010 10100 ????? ????? ?????", "break", ModeNoOperand, OpBREAK),
	MustTemplate("????????????????? ????? ????? ?????", "inv", ModeNoOperand, OpINV),
}

// Templates returns a copy of the canonical decode table in declaration
// order.
func Templates() []Template {
	t := make([]Template, len(table))
	copy(t, table)
	return t
}

// Shadow records a template that can never be selected because an earlier
// template matches every word it matches.
type Shadow struct {
	Index    int // position of the unreachable template
	Template Template
	ByIndex  int // position of the first template covering it
	By       Template
}

// Shadowed reports every unreachable template of the canonical table.
func Shadowed() []Shadow {
	return ShadowedIn(table)
}

// ShadowedIn reports every unreachable template of templates.
func ShadowedIn(templates []Template) []Shadow {
	var shadows []Shadow
	for i := range templates {
		for j := 0; j < i; j++ {
			if templates[j].Covers(&templates[i]) {
				shadows = append(shadows, Shadow{
					Index:    i,
					Template: templates[i],
					ByIndex:  j,
					By:       templates[j],
				})
				break
			}
		}
	}
	return shadows
}
