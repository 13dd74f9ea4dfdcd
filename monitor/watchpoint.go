package monitor

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// ErrNoWatchpoint is returned when deleting an unknown watchpoint.
var ErrNoWatchpoint = errors.New("no such watchpoint")

// Watchpoint stops execution when the value of Expr changes.
type Watchpoint struct {
	ID    int
	Expr  string
	Value uint32
}

// Watchpoints is the set of active watchpoints.
type Watchpoints struct {
	nextID int
	points map[int]*Watchpoint
}

// NewWatchpoints creates an empty set. IDs start at 0.
func NewWatchpoints() *Watchpoints {
	return &Watchpoints{points: make(map[int]*Watchpoint)}
}

// Add registers a watchpoint with its current value.
func (w *Watchpoints) Add(expr string, value uint32) *Watchpoint {
	wp := &Watchpoint{ID: w.nextID, Expr: expr, Value: value}
	w.points[wp.ID] = wp
	w.nextID++
	return wp
}

// Delete removes the watchpoint with the given ID.
func (w *Watchpoints) Delete(id int) error {
	if _, ok := w.points[id]; !ok {
		return fmt.Errorf("%w: %d", ErrNoWatchpoint, id)
	}
	delete(w.points, id)
	return nil
}

// List returns the watchpoints ordered by ID.
func (w *Watchpoints) List() []*Watchpoint {
	list := make([]*Watchpoint, 0, len(w.points))
	for _, wp := range w.points {
		list = append(list, wp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Len returns the number of active watchpoints.
func (w *Watchpoints) Len() int {
	return len(w.points)
}

// Check re-evaluates every watchpoint, records new values and reports each
// change to out. It returns true if any value changed.
func (w *Watchpoints) Check(eval func(string) (uint32, error), out io.Writer) bool {
	triggered := false
	for _, wp := range w.List() {
		v, err := eval(wp.Expr)
		if err != nil || v == wp.Value {
			continue
		}

		fmt.Fprintf(out, "Watchpoint %d: %s\n\nOld value = 0x%08x\nNew value = 0x%08x\n",
			wp.ID, wp.Expr, wp.Value, v)
		wp.Value = v
		triggered = true
	}
	return triggered
}

// Print writes a table of the watchpoints.
func (w *Watchpoints) Print(out io.Writer) {
	if w.Len() == 0 {
		fmt.Fprintln(out, "No watchpoints.")
		return
	}

	fmt.Fprintf(out, "%-4s %-10s %s\n", "Num", "Value", "What")
	for _, wp := range w.List() {
		fmt.Fprintf(out, "%-4d 0x%08x %s\n", wp.ID, wp.Value, wp.Expr)
	}
}
