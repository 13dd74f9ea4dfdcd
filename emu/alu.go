package emu

// threeReg builds an effect computing rd = fn(R(rj), R(rk)).
func threeReg(fn func(a, b uint32) uint32) Effect {
	return func(ctx *ExecContext, ops OperandSet) error {
		ctx.Regs.Set(ops.Rd, fn(ops.Src1, ops.Src2))
		return nil
	}
}

// regImm builds an effect computing rd = fn(R(rj), imm).
func regImm(fn func(a uint32, imm int32) uint32) Effect {
	return func(ctx *ExecContext, ops OperandSet) error {
		ctx.Regs.Set(ops.Rd, fn(ops.Src1, ops.Imm))
		return nil
	}
}

// setIf builds a conditional-write effect: rd is cleared, then set to 1 when
// cond holds.
func setIf(cond func(a, b uint32, imm int32) bool) Effect {
	return func(ctx *ExecContext, ops OperandSet) error {
		ctx.Regs.Set(ops.Rd, 0)
		if cond(ops.Src1, ops.Src2, ops.Imm) {
			ctx.Regs.Set(ops.Rd, 1)
		}
		return nil
	}
}

func pcaddu12i(ctx *ExecContext, ops OperandSet) error {
	ctx.Regs.Set(ops.Rd, ctx.PC+uint32(ops.Imm))
	return nil
}

func lu12iw(ctx *ExecContext, ops OperandSet) error {
	ctx.Regs.Set(ops.Rd, uint32(ops.Imm))
	return nil
}

func mulhw(a, b uint32) uint32 {
	return uint32(uint64(int64(int32(a))*int64(int32(b))) >> 32)
}

func mulhwu(a, b uint32) uint32 {
	return uint32((uint64(a) * uint64(b)) >> 32)
}

// Division never traps. A zero divisor yields a quotient of 0 and leaves the
// dividend as the remainder. MinInt32 / -1 wraps to MinInt32 with remainder 0.

func divw(a, b uint32) uint32 {
	if b == 0 {
		return 0
	}
	return uint32(int32(a) / int32(b))
}

func modw(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return uint32(int32(a) % int32(b))
}

func divwu(a, b uint32) uint32 {
	if b == 0 {
		return 0
	}
	return a / b
}

func modwu(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}
