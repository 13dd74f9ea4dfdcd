package monitor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"github.com/sarchlab/la32sim/emu"
)

// ErrBadExpr is wrapped by every expression evaluation failure.
var ErrBadExpr = errors.New("bad expression")

// Evaluator evaluates JavaScript expressions against emulator state.
// Registers are bound as $name and $rN, the program counter as $pc, and
// mem(addr[, width]) reads guest memory.
type Evaluator struct {
	emu *emu.Emulator
	vm  *goja.Runtime
}

// NewEvaluator creates an evaluator bound to e.
func NewEvaluator(e *emu.Emulator) *Evaluator {
	ev := &Evaluator{emu: e, vm: goja.New()}

	_ = ev.vm.Set("mem", func(addr int64, width ...int) uint32 {
		w := 4
		if len(width) > 0 {
			w = width[0]
		}
		if w != 1 && w != 2 && w != 4 {
			panic(ev.vm.NewTypeError("mem: width must be 1, 2 or 4"))
		}
		return e.Bus().Read(uint32(addr), w)
	})

	return ev
}

func (ev *Evaluator) bindRegisters() {
	regs := ev.emu.RegFile()
	for i := uint8(0); i < emu.NumRegs; i++ {
		v := regs.Get(i)
		_ = ev.vm.Set("$"+emu.RegName(i), v)
		_ = ev.vm.Set(fmt.Sprintf("$r%d", i), v)
	}
	_ = ev.vm.Set("$zero", regs.Get(0))
	_ = ev.vm.Set("$pc", ev.emu.PC())
}

// Eval evaluates expr and truncates the result to 32 bits. Booleans
// evaluate to 0 or 1.
func (ev *Evaluator) Eval(expr string) (uint32, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("%w: empty", ErrBadExpr)
	}

	ev.bindRegisters()

	v, err := ev.vm.RunString(expr)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadExpr, err)
	}
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return 0, fmt.Errorf("%w: %q has no value", ErrBadExpr, expr)
	}

	return uint32(v.ToInteger()), nil
}
