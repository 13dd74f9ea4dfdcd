package emu

import (
	"errors"

	"github.com/sarchlab/la32sim/internal/translate"
)

var f = translate.From

var (
	// ErrInvalidInstruction is matched by every *InvalidInstructionError.
	ErrInvalidInstruction = errors.New(f("invalid instruction"))
	// ErrTrap is matched by every *TrapError.
	ErrTrap = errors.New(f("trap"))
	// ErrMaxInstructions is returned once the instruction limit is reached.
	ErrMaxInstructions = errors.New(f("max instructions reached"))
	// ErrHalted is returned when stepping a program that already ended.
	ErrHalted = errors.New(f("program execution has ended"))
)

// InvalidInstructionError is raised when a word decodes to inv or to no
// template at all.
type InvalidInstructionError struct {
	PC   uint32
	Word uint32
}

func (e *InvalidInstructionError) Error() string {
	return f("invalid instruction at pc = 0x%08x: 0x%08x", e.PC, e.Word)
}

func (e *InvalidInstructionError) Unwrap() error {
	return ErrInvalidInstruction
}

// TrapError is raised by break. ExitCode is the value of a0 at the trap;
// zero means the program ended successfully.
type TrapError struct {
	PC       uint32
	ExitCode uint32
}

func (e *TrapError) Error() string {
	return f("trap at pc = 0x%08x, a0 = 0x%08x", e.PC, e.ExitCode)
}

func (e *TrapError) Unwrap() error {
	return ErrTrap
}

// Good reports whether the trap signals a successful run.
func (e *TrapError) Good() bool {
	return e.ExitCode == 0
}
