package emu

import (
	"github.com/sarchlab/la32sim/insts"
)

// ExecContext is the per-instruction state handed to an effect. The run loop
// owns it and commits PC = NextPC once the instruction completes.
type ExecContext struct {
	PC     uint32
	NextPC uint32
	Word   uint32

	Regs RegisterFile
	Mem  MemoryInterface
}

// OperandSet holds the decoded operands with register indices already
// resolved to values.
type OperandSet struct {
	Rd   uint8
	Src1 uint32 // R(rj), 0 when the mode has no rj
	Src2 uint32 // R(rk), 0 when the mode has no rk
	Imm  int32
}

// DecodeOperands extracts the operands of word for mode and reads the source
// registers from regs.
func DecodeOperands(word uint32, mode insts.Mode, regs RegisterFile) OperandSet {
	fields := insts.DecodeOperands(word, mode)

	ops := OperandSet{Rd: fields.Rd, Imm: fields.Imm}
	if fields.UsesRj {
		ops.Src1 = regs.Get(fields.Rj)
	}
	if fields.UsesRk {
		ops.Src2 = regs.Get(fields.Rk)
	}

	return ops
}

// Effect applies the semantics of one operation to the execution context.
type Effect func(ctx *ExecContext, ops OperandSet) error

// Dispatcher matches instruction words against the decode table and runs the
// effect bound to the matching operation.
type Dispatcher struct {
	decoder *insts.Decoder
	effects [insts.NumOps]Effect
}

// NewDispatcher creates a dispatcher over the canonical decode table.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		decoder: insts.NewDecoder(),
		effects: defaultEffects(),
	}
}

// NewDispatcherWithTable creates a dispatcher over a caller supplied table.
func NewDispatcherWithTable(templates []insts.Template) *Dispatcher {
	return &Dispatcher{
		decoder: insts.NewDecoderWithTable(templates),
		effects: defaultEffects(),
	}
}

// Decoder returns the decoder backing the dispatcher.
func (d *Dispatcher) Decoder() *insts.Decoder {
	return d.decoder
}

// Bind replaces the effect of op. A nil effect makes op fault as an invalid
// instruction.
func (d *Dispatcher) Bind(op insts.Op, effect Effect) {
	if op < insts.NumOps {
		d.effects[op] = effect
	}
}

// Dispatch executes one instruction word against ctx.
func (d *Dispatcher) Dispatch(word uint32, ctx *ExecContext) error {
	_, err := d.Execute(word, ctx)
	return err
}

// Execute executes one instruction word against ctx and returns the
// template that matched it, or nil when none did.
//
// ctx.NextPC is set to PC+4 before the effect runs so that only control
// transfer effects touch it. r0 is forced back to zero afterwards, whatever
// the effect wrote.
func (d *Dispatcher) Execute(word uint32, ctx *ExecContext) (*insts.Template, error) {
	ctx.Word = word
	ctx.NextPC = ctx.PC + 4

	t := d.decoder.Match(word)
	if t == nil || d.effects[t.Op] == nil {
		ctx.Regs.Set(0, 0)
		return t, &InvalidInstructionError{PC: ctx.PC, Word: word}
	}

	ops := DecodeOperands(word, t.Mode, ctx.Regs)
	err := d.effects[t.Op](ctx, ops)
	ctx.Regs.Set(0, 0)

	return t, err
}

func defaultEffects() [insts.NumOps]Effect {
	var e [insts.NumOps]Effect

	e[insts.OpPCADDU12I] = pcaddu12i
	e[insts.OpLU12IW] = lu12iw

	e[insts.OpADDW] = threeReg(func(a, b uint32) uint32 { return a + b })
	e[insts.OpSUBW] = threeReg(func(a, b uint32) uint32 { return a - b })
	e[insts.OpOR] = threeReg(func(a, b uint32) uint32 { return a | b })
	e[insts.OpAND] = threeReg(func(a, b uint32) uint32 { return a & b })
	e[insts.OpXOR] = threeReg(func(a, b uint32) uint32 { return a ^ b })
	e[insts.OpNOR] = threeReg(func(a, b uint32) uint32 { return ^(a | b) })
	e[insts.OpSLT] = setIf(func(a, b uint32, _ int32) bool { return int32(a) < int32(b) })
	e[insts.OpSLTU] = setIf(func(a, b uint32, _ int32) bool { return a < b })
	e[insts.OpMULW] = threeReg(func(a, b uint32) uint32 { return a * b })
	e[insts.OpMULHW] = threeReg(mulhw)
	e[insts.OpMULHWU] = threeReg(mulhwu)
	e[insts.OpDIVW] = threeReg(divw)
	e[insts.OpMODW] = threeReg(modw)
	e[insts.OpDIVWU] = threeReg(divwu)
	e[insts.OpMODWU] = threeReg(modwu)
	e[insts.OpSLLW] = threeReg(func(a, b uint32) uint32 { return a << (b & 31) })
	e[insts.OpSRLW] = threeReg(func(a, b uint32) uint32 { return a >> (b & 31) })
	e[insts.OpSRAW] = threeReg(func(a, b uint32) uint32 { return uint32(int32(a) >> (b & 31)) })

	e[insts.OpADDIW] = regImm(func(a uint32, imm int32) uint32 { return a + uint32(imm) })
	e[insts.OpSLTI] = setIf(func(a, _ uint32, imm int32) bool { return int32(a) < imm })
	e[insts.OpSLTUI] = setIf(func(a, _ uint32, imm int32) bool { return a < uint32(imm) })
	e[insts.OpANDI] = regImm(func(a uint32, imm int32) uint32 { return a & uint32(imm) })
	e[insts.OpORI] = regImm(func(a uint32, imm int32) uint32 { return a | uint32(imm) })
	e[insts.OpXORI] = regImm(func(a uint32, imm int32) uint32 { return a ^ uint32(imm) })
	e[insts.OpSLLIW] = regImm(func(a uint32, imm int32) uint32 { return a << (uint32(imm) & 31) })
	e[insts.OpSRLIW] = regImm(func(a uint32, imm int32) uint32 { return a >> (uint32(imm) & 31) })
	e[insts.OpSRAIW] = regImm(func(a uint32, imm int32) uint32 { return uint32(int32(a) >> (uint32(imm) & 31)) })

	e[insts.OpLDB] = load(1, true)
	e[insts.OpLDH] = load(2, true)
	e[insts.OpLDW] = load(4, false)
	e[insts.OpLDBU] = load(1, false)
	e[insts.OpLDHU] = load(2, false)
	e[insts.OpSTB] = store(1)
	e[insts.OpSTH] = store(2)
	e[insts.OpSTW] = store(4)

	e[insts.OpB] = jump
	e[insts.OpBL] = bl
	e[insts.OpJIRL] = jirl
	e[insts.OpBEQ] = branchIf(func(rd, rj uint32) bool { return rd == rj })
	e[insts.OpBNE] = branchIf(func(rd, rj uint32) bool { return rd != rj })
	e[insts.OpBLT] = branchIf(func(rd, rj uint32) bool { return int32(rd) > int32(rj) })
	e[insts.OpBGE] = branchIf(func(rd, rj uint32) bool { return int32(rd) <= int32(rj) })
	e[insts.OpBLTU] = branchIf(func(rd, rj uint32) bool { return rd > rj })
	e[insts.OpBGEU] = branchIf(func(rd, rj uint32) bool { return rd <= rj })

	e[insts.OpDBAR] = barrier
	e[insts.OpIBAR] = barrier
	e[insts.OpBREAK] = breakTrap
	e[insts.OpINV] = invalid

	return e
}
