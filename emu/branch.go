package emu

// Branch offsets are relative to the address of the branch itself.

func jump(ctx *ExecContext, ops OperandSet) error {
	ctx.NextPC = ctx.PC + uint32(ops.Imm)
	return nil
}

// bl links through ra (r1).
func bl(ctx *ExecContext, ops OperandSet) error {
	ctx.Regs.Set(1, ctx.PC+4)
	ctx.NextPC = ctx.PC + uint32(ops.Imm)
	return nil
}

func jirl(ctx *ExecContext, ops OperandSet) error {
	// Read the target first in case rd == rj.
	target := ops.Src1 + uint32(ops.Imm)
	ctx.Regs.Set(ops.Rd, ctx.PC+4)
	ctx.NextPC = target
	return nil
}

// branchIf builds a compare-and-branch effect. cond receives R(rd) and R(rj)
// in that order.
func branchIf(cond func(rd, rj uint32) bool) Effect {
	return func(ctx *ExecContext, ops OperandSet) error {
		if cond(ctx.Regs.Get(ops.Rd), ops.Src1) {
			ctx.NextPC = ctx.PC + uint32(ops.Imm)
		}
		return nil
	}
}
