// Package history keeps the undo and redo stacks for a show.
//
// A Stack records command pairs in the order they were executed. Undo
// reverts the most recent one, Redo re-applies the most recently undone one,
// and executing anything new discards the redo side.
package history

import (
	"errors"
	"fmt"

	"github.com/FocuswithJustin/FieldChart/core/show"
	"github.com/FocuswithJustin/FieldChart/internal/logging"
)

// ErrDiverged is returned when verification finds a show that does not
// match the state recorded when the command was executed.
var ErrDiverged = errors.New("show diverged from recorded history")

type entry struct {
	pair   show.Pair
	before string // fingerprints, set only with verification
	after  string
}

// Stack is an undo/redo history. The zero value is not usable; call New.
type Stack struct {
	undo   []entry
	redo   []entry
	saved  int // len(undo) at the last MarkSaved, -1 when unreachable
	verify bool
}

// Option configures a Stack.
type Option func(*Stack)

// WithVerification records show fingerprints around every command and
// checks them on undo and redo.
func WithVerification() Option {
	return func(h *Stack) { h.verify = true }
}

// New returns an empty history in the saved state.
func New(opts ...Option) *Stack {
	h := &Stack{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute applies p to s and records it. No-op pairs are not recorded and
// Execute reports false for them.
func (h *Stack) Execute(s *show.Show, p show.Pair) bool {
	if p.IsNoOp() {
		return false
	}
	e := entry{pair: p}
	if h.verify {
		e.before = s.Fingerprint()
	}
	p.Apply(s)
	if h.verify {
		e.after = s.Fingerprint()
	}
	if h.saved > len(h.undo) {
		h.saved = -1
	}
	h.undo = append(h.undo, e)
	h.redo = h.redo[:0]
	logging.CommandApplied(p.Name, p.Scope.String(), len(h.undo))
	return true
}

// Undo reverts the most recent command. It reports false when there is
// nothing to undo.
func (h *Stack) Undo(s *show.Show) (bool, error) {
	if len(h.undo) == 0 {
		return false, nil
	}
	e := h.undo[len(h.undo)-1]
	if h.verify && s.Fingerprint() != e.after {
		return false, fmt.Errorf("undo %s: %w", e.pair.Name, ErrDiverged)
	}
	e.pair.Revert(s)
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, e)
	logging.CommandReverted(e.pair.Name, e.pair.Scope.String(), len(h.undo))
	return true, nil
}

// Redo re-applies the most recently undone command.
func (h *Stack) Redo(s *show.Show) (bool, error) {
	if len(h.redo) == 0 {
		return false, nil
	}
	e := h.redo[len(h.redo)-1]
	if h.verify && s.Fingerprint() != e.before {
		return false, fmt.Errorf("redo %s: %w", e.pair.Name, ErrDiverged)
	}
	e.pair.Apply(s)
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, e)
	logging.CommandApplied(e.pair.Name, e.pair.Scope.String(), len(h.undo), "redo", true)
	return true, nil
}

// CanUndo reports whether Undo would do anything.
func (h *Stack) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would do anything.
func (h *Stack) CanRedo() bool { return len(h.redo) > 0 }

// UndoName returns the name of the command Undo would revert.
func (h *Stack) UndoName() string {
	if len(h.undo) == 0 {
		return ""
	}
	return h.undo[len(h.undo)-1].pair.Name
}

// RedoName returns the name of the command Redo would apply.
func (h *Stack) RedoName() string {
	if len(h.redo) == 0 {
		return ""
	}
	return h.redo[len(h.redo)-1].pair.Name
}

// Len returns the number of undoable commands.
func (h *Stack) Len() int { return len(h.undo) }

// MarkSaved records the current position as matching the file on disk.
func (h *Stack) MarkSaved() { h.saved = len(h.undo) }

// IsModified reports whether the show differs from the last saved state.
func (h *Stack) IsModified() bool { return h.saved != len(h.undo) }

// Clear drops all history. The show is treated as unsaved unless nothing
// had been done since the last save.
func (h *Stack) Clear() {
	if h.IsModified() {
		h.saved = -1
	} else {
		h.saved = 0
	}
	h.undo, h.redo = nil, nil
}
