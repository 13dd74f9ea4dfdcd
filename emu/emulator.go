package emu

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sarchlab/la32sim/log"
)

// State is the run state of the emulator.
type State int

// Run states.
const (
	StateStop    State = iota // paused, more instructions may run
	StateRunning              // inside Exec
	StateEnd                  // a break trap ended the program
	StateAbort                // a fault or the instruction limit stopped the program
	StateQuit                 // the user left the monitor
)

func (s State) String() string {
	switch s {
	case StateStop:
		return "stop"
	case StateRunning:
		return "running"
	case StateEnd:
		return "end"
	case StateAbort:
		return "abort"
	case StateQuit:
		return "quit"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Exited is true if the program terminated through a break trap.
	Exited bool

	// ExitCode is the value of a0 at the trap if Exited is true.
	ExitCode int64

	// Err is set if an error occurred during execution.
	Err error
}

// Emulator executes LoongArch32 instructions functionally.
type Emulator struct {
	regFile    *RegFile
	memory     *Memory
	bus        MemoryInterface
	dispatcher *Dispatcher
	pc         uint32

	wrappers []func(MemoryInterface) MemoryInterface
	layers   []MemoryInterface // built from wrappers, innermost first
	itrace   *ITrace

	// I/O
	stdout io.Writer
	stderr io.Writer

	// Execution state
	state            State
	haltPC           uint32
	haltRet          uint32
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stdout = w
	}
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stderr = w
	}
}

// WithMemory sets the backing memory.
func WithMemory(mem *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = mem
	}
}

// WithMemoryWrapper interposes a layer, such as a cache or a tracer, between
// the core and the backing memory. Wrappers apply in order, so the last one
// is outermost.
func WithMemoryWrapper(wrap func(MemoryInterface) MemoryInterface) EmulatorOption {
	return func(e *Emulator) {
		e.wrappers = append(e.wrappers, wrap)
	}
}

// WithMTrace logs every memory access of the core.
func WithMTrace() EmulatorOption {
	return WithMemoryWrapper(func(m MemoryInterface) MemoryInterface {
		return NewTracedMemory(m)
	})
}

// WithITrace keeps the last depth executed instructions.
func WithITrace(depth int) EmulatorOption {
	return func(e *Emulator) {
		e.itrace = NewITrace(depth)
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithDispatcher replaces the dispatcher.
func WithDispatcher(d *Dispatcher) EmulatorOption {
	return func(e *Emulator) {
		e.dispatcher = d
	}
}

// NewEmulator creates a new LoongArch32 emulator.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile:    &RegFile{},
		memory:     NewMemory(),
		dispatcher: NewDispatcher(),
		itrace:     NewITrace(0),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.bus = e.memory
	for _, wrap := range e.wrappers {
		e.bus = wrap(e.bus)
		e.layers = append(e.layers, e.bus)
	}

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the backing memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// Bus returns the memory as seen by the core, wrappers included.
func (e *Emulator) Bus() MemoryInterface {
	return e.bus
}

// Dispatcher returns the emulator's dispatcher.
func (e *Emulator) Dispatcher() *Dispatcher {
	return e.dispatcher
}

// ITrace returns the instruction trace buffer.
func (e *Emulator) ITrace() *ITrace {
	return e.itrace
}

// PC returns the program counter.
func (e *Emulator) PC() uint32 {
	return e.pc
}

// SetPC sets the program counter.
func (e *Emulator) SetPC(pc uint32) {
	e.pc = pc
}

// State returns the run state.
func (e *Emulator) State() State {
	return e.state
}

// Quit marks the emulator as left by the user.
func (e *Emulator) Quit() {
	e.state = StateQuit
}

// HaltPC returns the pc of the instruction that ended or aborted the run.
func (e *Emulator) HaltPC() uint32 {
	return e.haltPC
}

// HaltRet returns the exit code of the trap that ended the run.
func (e *Emulator) HaltRet() uint32 {
	return e.haltRet
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// RegValue reads a register by name. "pc" names the program counter.
func (e *Emulator) RegValue(name string) (uint32, bool) {
	if name == "pc" || name == "$pc" {
		return e.pc, true
	}

	idx, ok := RegIndex(name)
	if !ok {
		return 0, false
	}
	return e.regFile.Get(idx), true
}

// LoadProgram copies program into the backing memory at entry and points
// the program counter at it.
func (e *Emulator) LoadProgram(entry uint32, program []byte) {
	e.memory.LoadProgram(entry, program)
	e.pc = entry
	log.Debug(log.EmuModule, "program loaded", "entry", fmt.Sprintf("0x%08x", entry), "size", len(program))
}

// resetter is implemented by memory layers that hold state, such as caches.
type resetter interface {
	Reset()
}

// Reset clears registers, memory, every resettable memory layer, counters
// and the trace buffer.
func (e *Emulator) Reset() {
	e.regFile.Reset()
	e.memory.Reset()
	for i := len(e.layers) - 1; i >= 0; i-- {
		if r, ok := e.layers[i].(resetter); ok {
			r.Reset()
		}
	}
	e.itrace.Reset()
	e.pc = 0
	e.state = StateStop
	e.haltPC = 0
	e.haltRet = 0
	e.instructionCount = 0
}

// Step executes a single instruction.
// Returns a StepResult indicating whether execution should continue.
func (e *Emulator) Step() StepResult {
	if e.state == StateEnd || e.state == StateAbort {
		return StepResult{Err: ErrHalted}
	}

	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		e.halt(StateAbort, 0)
		return StepResult{Err: ErrMaxInstructions}
	}

	cursor := e.pc
	word := Fetch(e.bus, &cursor)

	ctx := ExecContext{PC: e.pc, Regs: e.regFile, Mem: e.bus}
	t, err := e.dispatcher.Execute(word, &ctx)
	e.instructionCount++

	mnemonic := "unknown"
	if t != nil {
		mnemonic = t.Mnemonic
	}
	e.itrace.Record(ctx.PC, word, mnemonic)
	if log.TraceEnabled(log.ITraceModule) {
		log.Trace(log.ITraceModule, mnemonic,
			"pc", fmt.Sprintf("0x%08x", ctx.PC), "word", fmt.Sprintf("%08x", word), "asm", Disassemble(word))
	}

	if err != nil {
		return e.fault(err)
	}

	e.pc = ctx.NextPC
	return StepResult{}
}

func (e *Emulator) fault(err error) StepResult {
	var trap *TrapError
	if errors.As(err, &trap) {
		e.halt(StateEnd, trap.ExitCode)
		return StepResult{Exited: true, ExitCode: int64(int32(trap.ExitCode))}
	}

	e.halt(StateAbort, 0)
	log.Error(log.EmuModule, "execution aborted", "pc", fmt.Sprintf("0x%08x", e.pc), "err", err)
	return StepResult{Err: err}
}

func (e *Emulator) halt(state State, ret uint32) {
	e.state = state
	e.haltPC = e.pc
	e.haltRet = ret
}

// Exec executes up to n instructions and returns the result of the last
// one. It stops early when the program ends or faults.
func (e *Emulator) Exec(n uint64) StepResult {
	if e.state == StateEnd || e.state == StateAbort {
		return StepResult{Err: ErrHalted}
	}

	e.state = StateRunning
	var result StepResult
	for i := uint64(0); i < n; i++ {
		result = e.Step()
		if result.Exited || result.Err != nil {
			break
		}
	}

	if e.state == StateRunning {
		e.state = StateStop
	}
	return result
}

// Run executes instructions until the program exits or an error occurs.
// Returns the exit code (-1 if error).
func (e *Emulator) Run() int64 {
	result := e.Exec(math.MaxUint64)
	e.Report()

	if result.Err != nil {
		_, _ = fmt.Fprintf(e.stderr, "Emulation error: %v\n", result.Err)
		return -1
	}
	return result.ExitCode
}

// Report prints the outcome of a finished run, dumping the instruction
// trace when the run aborted.
func (e *Emulator) Report() {
	switch e.state {
	case StateEnd:
		if e.haltRet == 0 {
			_, _ = fmt.Fprintln(e.stdout, f("HIT GOOD TRAP at pc = 0x%08x", e.haltPC))
			log.Info(log.EmuModule, "hit good trap", "pc", fmt.Sprintf("0x%08x", e.haltPC))
		} else {
			_, _ = fmt.Fprintln(e.stdout, f("HIT BAD TRAP at pc = 0x%08x", e.haltPC))
			log.Warn(log.EmuModule, "hit bad trap", "pc", fmt.Sprintf("0x%08x", e.haltPC), "a0", e.haltRet)
		}
	case StateAbort:
		_, _ = fmt.Fprintln(e.stdout, f("ABORT at pc = 0x%08x", e.haltPC))
		e.itrace.Dump(e.stderr, e.haltPC)
	default:
		return
	}

	_, _ = fmt.Fprintln(e.stdout, f("total guest instructions = %v", e.instructionCount))
}
