// Package history provides undo/redo over an arbitrary document value as a
// (past, present, future) triple. It is the state machine behind the theme
// designer's editing sessions.
package history

// History tracks undoable edits to a value of type T. The zero value is not
// usable; construct with New. History is not safe for concurrent use — the
// owning session serializes access.
type History[T any] struct {
	past    []T
	present T
	future  []T

	// clone deep-copies a value so stack entries never alias the live
	// document. Nil means values are treated as immutable snapshots.
	clone func(T) T
}

// New creates a history seeded with the initial document. clone may be nil
// when T values are immutable or callers always pass fresh snapshots.
func New[T any](initial T, clone func(T) T) *History[T] {
	h := &History[T]{clone: clone}
	h.present = h.copy(initial)
	return h
}

func (h *History[T]) copy(v T) T {
	if h.clone == nil {
		return v
	}
	return h.clone(v)
}

// Present returns the current document.
func (h *History[T]) Present() T {
	return h.present
}

// Set records an undoable edit: the old present is pushed onto the past and
// the future branch is discarded, so redo is impossible until the next undo.
func (h *History[T]) Set(v T) {
	h.past = append(h.past, h.present)
	h.present = h.copy(v)
	h.future = nil
}

// Apply records an undoable edit computed from the current document. fn
// receives a private copy and returns the new present.
func (h *History[T]) Apply(fn func(T) T) {
	h.Set(fn(h.copy(h.present)))
}

// Replace swaps the present value without recording history. Used for
// programmatic syncs that must not be undoable.
func (h *History[T]) Replace(v T) {
	h.present = h.copy(v)
}

// Undo steps back one recorded edit. It reports whether a step was taken;
// with an empty past it is a no-op, never an error.
func (h *History[T]) Undo() bool {
	if len(h.past) == 0 {
		return false
	}
	last := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append([]T{h.present}, h.future...)
	h.present = last
	return true
}

// Redo steps forward one undone edit. No-op on an empty future.
func (h *History[T]) Redo() bool {
	if len(h.future) == 0 {
		return false
	}
	next := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, h.present)
	h.present = next
	return true
}

// Reset discards both stacks and replaces the present, so history never leaks
// across documents when the editor switches pages or applies a template.
func (h *History[T]) Reset(v T) {
	h.past = nil
	h.future = nil
	h.present = h.copy(v)
}

// CanUndo reports whether Undo would take a step.
func (h *History[T]) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether Redo would take a step.
func (h *History[T]) CanRedo() bool { return len(h.future) > 0 }

// Depth returns the sizes of the past and future stacks.
func (h *History[T]) Depth() (past, future int) {
	return len(h.past), len(h.future)
}
