// Package monitor implements the interactive simple debugger that drives an
// emulator: stepping, register and memory inspection, expression
// evaluation and watchpoints.
package monitor

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sarchlab/la32sim/emu"
	"github.com/sarchlab/la32sim/internal/translate"
	"github.com/sarchlab/la32sim/log"
)

var f = translate.From

// Monitor errors.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArgument    = errors.New("bad argument")
)

// maxPrintSteps bounds how many instructions si echoes.
const maxPrintSteps = 10

// LineReader supplies input lines. *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
}

type command struct {
	name    string
	help    string
	handler func(m *Monitor, args string) error
}

var commands []command

func init() {
	commands = []command{
		{"help", "Display information about all supported commands", (*Monitor).cmdHelp},
		{"c", "Continue the execution of the program", (*Monitor).cmdContinue},
		{"q", "Exit the monitor", nil},
		{"si", "Step N instructions (default 1)", (*Monitor).cmdStep},
		{"info", "info r: print registers, info w: print watchpoints", (*Monitor).cmdInfo},
		{"x", "x N EXPR: examine N words of memory starting at EXPR", (*Monitor).cmdExamine},
		{"p", "p EXPR: evaluate and print EXPR", (*Monitor).cmdPrint},
		{"w", "w EXPR: stop when the value of EXPR changes", (*Monitor).cmdWatch},
		{"d", "d N: delete watchpoint N", (*Monitor).cmdDelete},
		{"decode", "decode WORD: decode an instruction word", (*Monitor).cmdDecode},
	}
}

// Monitor drives one emulator from a command line.
type Monitor struct {
	emu         *emu.Emulator
	out         io.Writer
	eval        *Evaluator
	watchpoints *Watchpoints
}

// New creates a monitor for e writing to out.
func New(e *emu.Emulator, out io.Writer) *Monitor {
	return &Monitor{
		emu:         e,
		out:         out,
		eval:        NewEvaluator(e),
		watchpoints: NewWatchpoints(),
	}
}

// Watchpoints returns the active watchpoint set.
func (m *Monitor) Watchpoints() *Watchpoints {
	return m.watchpoints
}

// Eval evaluates an expression against the current machine state.
func (m *Monitor) Eval(expr string) (uint32, error) {
	return m.eval.Eval(expr)
}

// Execute runs a single command line. It returns true when the user asked
// to quit.
func (m *Monitor) Execute(line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}

	name, args, _ := strings.Cut(line, " ")
	args = strings.TrimSpace(args)

	if name == "q" {
		m.emu.Quit()
		return true, nil
	}

	for _, c := range commands {
		if c.name == name {
			log.Debug(log.MonitorModule, "command", "name", name, "args", args)
			return false, c.handler(m, args)
		}
	}

	return false, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
}

// Loop reads and executes commands until EOF or q.
func (m *Monitor) Loop(r LineReader) error {
	for {
		line, err := r.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}

		quit, err := m.Execute(line)
		if err != nil {
			fmt.Fprintln(m.out, err)
		}
		if quit {
			return nil
		}
	}
}

// Run starts an interactive session on the terminal.
func (m *Monitor) Run(historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "(la32sim) ",
		HistoryFile: historyFile,
		Stdout:      m.out,
	})
	if err != nil {
		return fmt.Errorf("failed to start console: %w", err)
	}
	defer rl.Close()

	log.Info(log.MonitorModule, "monitor started", "history", historyFile)
	return m.Loop(rl)
}

// Batch runs the program to completion without prompting.
func (m *Monitor) Batch() {
	m.cont(math.MaxUint64)
}

func (m *Monitor) cmdHelp(args string) error {
	for _, c := range commands {
		if args != "" && c.name != args {
			continue
		}
		fmt.Fprintf(m.out, "%-6s - %s\n", c.name, c.help)
		if args != "" {
			return nil
		}
	}
	if args != "" {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args)
	}
	return nil
}

func (m *Monitor) cmdContinue(string) error {
	m.cont(math.MaxUint64)
	return nil
}

func (m *Monitor) cmdStep(args string) error {
	n := uint64(1)
	if args != "" {
		v, err := strconv.ParseUint(args, 0, 64)
		if err != nil || v == 0 {
			return fmt.Errorf("%w: si %q", ErrBadArgument, args)
		}
		n = v
	}
	m.cont(n)
	return nil
}

// cont executes up to n instructions, one at a time so that watchpoints
// are checked after every step.
func (m *Monitor) cont(n uint64) {
	switch m.emu.State() {
	case emu.StateEnd, emu.StateAbort:
		fmt.Fprintln(m.out, f("Program execution has ended. To restart the program, exit and run again."))
		return
	}

	echo := n < maxPrintSteps
	for i := uint64(0); i < n; i++ {
		pc := m.emu.PC()
		result := m.emu.Exec(1)

		if echo {
			word := m.emu.Bus().Read(pc, 4)
			fmt.Fprintf(m.out, "0x%08x: %08x  %s\n", pc, word, emu.Disassemble(word))
		}

		if result.Exited || result.Err != nil {
			m.emu.Report()
			return
		}

		if m.watchpoints.Check(m.eval.Eval, m.out) {
			return
		}
	}
}

func (m *Monitor) cmdInfo(args string) error {
	switch args {
	case "r":
		m.emu.RegFile().Display(m.out, m.emu.PC())
	case "w":
		m.watchpoints.Print(m.out)
	default:
		return fmt.Errorf("%w: info %q", ErrBadArgument, args)
	}
	return nil
}

func (m *Monitor) cmdExamine(args string) error {
	count, expr, ok := strings.Cut(args, " ")
	if !ok {
		return fmt.Errorf("%w: usage x N EXPR", ErrBadArgument)
	}

	n, err := strconv.ParseUint(count, 0, 32)
	if err != nil {
		return fmt.Errorf("%w: x %q", ErrBadArgument, count)
	}

	addr, err := m.eval.Eval(expr)
	if err != nil {
		return err
	}

	for i := uint64(0); i < n; i++ {
		fmt.Fprintf(m.out, "0x%08x: 0x%08x\n", addr, m.emu.Bus().Read(addr, 4))
		addr += 4
	}
	return nil
}

func (m *Monitor) cmdPrint(args string) error {
	v, err := m.eval.Eval(args)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "%d (0x%08x)\n", v, v)
	return nil
}

func (m *Monitor) cmdWatch(args string) error {
	v, err := m.eval.Eval(args)
	if err != nil {
		return err
	}
	wp := m.watchpoints.Add(args, v)
	fmt.Fprintf(m.out, "Watchpoint %d: %s\n", wp.ID, wp.Expr)
	return nil
}

func (m *Monitor) cmdDelete(args string) error {
	id, err := strconv.Atoi(args)
	if err != nil {
		return fmt.Errorf("%w: d %q", ErrBadArgument, args)
	}
	return m.watchpoints.Delete(id)
}

func (m *Monitor) cmdDecode(args string) error {
	word, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(args), "0x"), 16, 32)
	if err != nil {
		return fmt.Errorf("%w: decode %q", ErrBadArgument, args)
	}

	inst := m.emu.Dispatcher().Decoder().Decode(uint32(word))
	fmt.Fprintf(m.out, "%08x  %s  # %s\n", inst.Word, inst, emu.Disassemble(inst.Word))
	return nil
}
