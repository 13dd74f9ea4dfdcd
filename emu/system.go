package emu

// dbar and ibar order nothing in a single in-order hart.
func barrier(*ExecContext, OperandSet) error {
	return nil
}

// breakTrap ends the program. a0 (r4) carries the exit code.
func breakTrap(ctx *ExecContext, _ OperandSet) error {
	return &TrapError{PC: ctx.PC, ExitCode: ctx.Regs.Get(4)}
}

func invalid(ctx *ExecContext, _ OperandSet) error {
	return &InvalidInstructionError{PC: ctx.PC, Word: ctx.Word}
}
