package buffer

import (
	"errors"
	"time"
)

// Errors returned by undo and redo.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// changeSet is one undoable unit: the changes of a single edit call, a
// batch, or an explicit group, in application order.
type changeSet struct {
	changes []Change
	taken   time.Time
}

// history holds the undo and redo stacks. It is guarded by the owning
// buffer's mutex.
type history struct {
	undo  []changeSet
	redo  []changeSet
	depth int

	grouping bool
	group    []Change
}

// record files freshly applied changes, either into the open group or as a
// change set of their own. Any recorded change invalidates the redo stack.
func (h *history) record(changes []Change) {
	if h.grouping {
		h.group = append(h.group, changes...)
		h.redo = nil
		return
	}
	h.push(changeSet{changes: changes, taken: time.Now()})
}

func (h *history) push(set changeSet) {
	h.undo = append(h.undo, set)
	h.redo = nil
	if len(h.undo) > h.depth {
		h.undo = h.undo[len(h.undo)-h.depth:]
	}
}

// Group starts collecting subsequent edits into a single undo step.
// Nested calls are ignored; the group stays open until EndGroup.
func (b *Buffer) Group() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.hist.grouping {
		return
	}
	b.hist.grouping = true
	b.hist.group = nil
}

// EndGroup closes the open group and files it as one undo step. Ending
// without edits, or without an open group, does nothing.
func (b *Buffer) EndGroup() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.endGroupLocked()
}

func (b *Buffer) endGroupLocked() {
	if !b.hist.grouping {
		return
	}
	b.hist.grouping = false
	if len(b.hist.group) == 0 {
		return
	}
	b.hist.push(changeSet{changes: b.hist.group, taken: time.Now()})
	b.hist.group = nil
}

// Undo reverts the most recent change set and returns the inverse changes
// in the order they were applied. An open group is closed first.
func (b *Buffer) Undo() ([]Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.endGroupLocked()
	n := len(b.hist.undo)
	if n == 0 {
		return nil, ErrNothingToUndo
	}
	set := b.hist.undo[n-1]
	b.hist.undo = b.hist.undo[:n-1]

	// Walking the set backwards steps the content back state by state, so
	// every inverted range is valid when it is applied.
	applied := make([]Change, 0, len(set.changes))
	for i := len(set.changes) - 1; i >= 0; i-- {
		inv := set.changes[i].Invert()
		b.applyChangeLocked(inv)
		applied = append(applied, inv)
	}
	b.revision++
	b.hist.redo = append(b.hist.redo, set)
	return applied, nil
}

// Redo reapplies the most recently undone change set and returns the
// changes in the order they were applied.
func (b *Buffer) Redo() ([]Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.hist.redo)
	if n == 0 {
		return nil, ErrNothingToRedo
	}
	set := b.hist.redo[n-1]
	b.hist.redo = b.hist.redo[:n-1]

	applied := make([]Change, 0, len(set.changes))
	for _, c := range set.changes {
		b.applyChangeLocked(c)
		applied = append(applied, c)
	}
	b.revision++
	b.hist.undo = append(b.hist.undo, set)
	return applied, nil
}

// CanUndo returns true if undo is available.
func (b *Buffer) CanUndo() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.hist.undo) > 0 || len(b.hist.group) > 0
}

// CanRedo returns true if redo is available.
func (b *Buffer) CanRedo() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.hist.redo) > 0
}

// UndoDepth returns the number of undo steps available.
func (b *Buffer) UndoDepth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.hist.undo)
}

// RedoDepth returns the number of redo steps available.
func (b *Buffer) RedoDepth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.hist.redo)
}

// ClearHistory drops all undo and redo state.
func (b *Buffer) ClearHistory() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hist.undo = nil
	b.hist.redo = nil
	b.hist.grouping = false
	b.hist.group = nil
}
