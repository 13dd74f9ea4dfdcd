package emu

import "github.com/sarchlab/la32sim/insts"

// load builds an effect reading width bytes at R(rj)+imm into rd, sign or
// zero extended.
func load(width int, signed bool) Effect {
	return func(ctx *ExecContext, ops OperandSet) error {
		addr := ops.Src1 + uint32(ops.Imm)
		value := ctx.Mem.Read(addr, width)
		if signed {
			value = uint32(insts.SignExtend(value, uint(width*8)))
		}
		ctx.Regs.Set(ops.Rd, value)
		return nil
	}
}

// store builds an effect writing the low width bytes of R(rd) at R(rj)+imm.
func store(width int) Effect {
	mask := uint32(1)<<(width*8) - 1
	if width >= 4 {
		mask = 0xFFFFFFFF
	}

	return func(ctx *ExecContext, ops OperandSet) error {
		addr := ops.Src1 + uint32(ops.Imm)
		ctx.Mem.Write(addr, width, ctx.Regs.Get(ops.Rd)&mask)
		return nil
	}
}
