package value

// Stack is the compile-time value stack (spec.md §5). Every push must be
// matched by a release on every exit path; Window below is the RAII-style
// guard spec.md §9 calls for.
type Stack struct {
	values []Value
}

func NewStack() *Stack { return &Stack{} }

// Len reports the current stack depth (spec.md §8 property 3: must equal
// its entry-time value after every public compiler entry point returns).
func (s *Stack) Len() int { return len(s.values) }

func (s *Stack) Push(v Value) { s.values = append(s.values, v) }

// Window owns a half-open range [start, len) of the Stack. Close releases
// every value still inside the window; Commit marks values as handed off
// (e.g. into a Variant's argument vector) so Close won't double-release
// them. This is the Go rendering of spec.md §9's RAII-with-partial-commit
// guard: there are no destructors, so every opener must `defer w.Close()`
// immediately after NewWindow.
type Window struct {
	stack     *Stack
	start     int
	committed bool
}

// NewWindow opens a window starting at the stack's current length.
func (s *Stack) NewWindow() *Window {
	return &Window{stack: s, start: len(s.values)}
}

// Commit hands the window's values off to a longer-lived owner (e.g. a
// Variant's retained argument vector) without releasing them, then pops
// them off the stack's bookkeeping slice (the owner now holds the
// retained copies).
func (w *Window) Commit() []Value {
	w.committed = true
	out := append([]Value(nil), w.stack.values[w.start:]...)
	w.stack.values = w.stack.values[:w.start]
	return out
}

// Close releases every value still in the window, unless Commit already
// ran. Safe to call unconditionally via defer even after a successful
// Commit (tolerates partial-commit per spec.md §9).
func (w *Window) Close() {
	if w.committed {
		return
	}
	for i := w.start; i < len(w.stack.values); i++ {
		w.stack.values[i].Release()
	}
	w.stack.values = w.stack.values[:w.start]
}
