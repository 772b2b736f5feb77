package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUndoRedo(t *testing.T) {
	b := mustNew(t, "Hello")

	_, err := b.Insert(5, " World")
	require.NoError(t, err)
	require.True(t, b.CanUndo())
	require.False(t, b.CanRedo())

	changes, err := b.Undo()
	require.NoError(t, err)
	require.Equal(t, "Hello", b.Text())
	require.Len(t, changes, 1)
	require.Equal(t, ChangeDelete, changes[0].Type)
	require.Equal(t, Range{Start: 5, End: 11}, changes[0].Range)
	require.Equal(t, " World", changes[0].OldText)
	require.True(t, b.CanRedo())

	changes, err = b.Redo()
	require.NoError(t, err)
	require.Equal(t, "Hello World", b.Text())
	require.Len(t, changes, 1)
	require.Equal(t, ChangeInsert, changes[0].Type)
	require.Equal(t, " World", changes[0].NewText)
}

func TestUndoNothing(t *testing.T) {
	b := mustNew(t, "Hello")

	_, err := b.Undo()
	require.ErrorIs(t, err, ErrNothingToUndo)

	_, err = b.Redo()
	require.ErrorIs(t, err, ErrNothingToRedo)
}

func TestUndoBumpsRevision(t *testing.T) {
	b := mustNew(t, "Hello")

	_, err := b.Insert(0, "x")
	require.NoError(t, err)
	rev := b.Revision()

	_, err = b.Undo()
	require.NoError(t, err)
	require.Equal(t, rev+1, b.Revision(), "undo is a mutation like any other")

	_, err = b.Redo()
	require.NoError(t, err)
	require.Equal(t, rev+2, b.Revision())
}

func TestUndoBatchIsOneStep(t *testing.T) {
	b := mustNew(t, "one two three")

	_, err := b.ApplyEdits([]Edit{
		NewEdit(Range{Start: 0, End: 3}, "ONE"),
		NewEdit(Range{Start: 8, End: 13}, "THREE"),
	})
	require.NoError(t, err)
	require.Equal(t, "ONE two THREE", b.Text())

	changes, err := b.Undo()
	require.NoError(t, err)
	require.Equal(t, "one two three", b.Text())
	require.Len(t, changes, 2)

	_, err = b.Redo()
	require.NoError(t, err)
	require.Equal(t, "ONE two THREE", b.Text())
}

func TestGroup(t *testing.T) {
	b := mustNew(t, "")

	b.Group()
	for _, word := range []string{"a", "b", "c"} {
		_, err := b.Insert(b.Len(), word)
		require.NoError(t, err)
	}
	b.EndGroup()
	require.Equal(t, "abc", b.Text())
	require.Equal(t, 1, b.UndoDepth())

	changes, err := b.Undo()
	require.NoError(t, err)
	require.Equal(t, "", b.Text())
	require.Len(t, changes, 3)

	_, err = b.Redo()
	require.NoError(t, err)
	require.Equal(t, "abc", b.Text())
}

func TestGroupEmpty(t *testing.T) {
	b := mustNew(t, "x")

	b.Group()
	b.EndGroup()
	require.False(t, b.CanUndo())
}

func TestGroupClosedByUndo(t *testing.T) {
	b := mustNew(t, "")

	b.Group()
	_, err := b.Insert(0, "hello")
	require.NoError(t, err)

	// Undo closes the open group and reverts it.
	changes, err := b.Undo()
	require.NoError(t, err)
	require.Equal(t, "", b.Text())
	require.Len(t, changes, 1)
}

func TestNestedGroupIgnored(t *testing.T) {
	b := mustNew(t, "")

	b.Group()
	_, err := b.Insert(0, "a")
	require.NoError(t, err)
	b.Group() // no-op, group stays open
	_, err = b.Insert(1, "b")
	require.NoError(t, err)
	b.EndGroup()

	_, err = b.Undo()
	require.NoError(t, err)
	require.Equal(t, "", b.Text())
}

func TestRedoClearedByEdit(t *testing.T) {
	b := mustNew(t, "")

	_, err := b.Insert(0, "a")
	require.NoError(t, err)
	_, err = b.Undo()
	require.NoError(t, err)
	require.True(t, b.CanRedo())

	_, err = b.Insert(0, "b")
	require.NoError(t, err)
	require.False(t, b.CanRedo())

	_, err = b.Redo()
	require.ErrorIs(t, err, ErrNothingToRedo)
}

func TestHistoryDepthBound(t *testing.T) {
	b := mustNew(t, "", WithHistoryDepth(3))

	for i := 0; i < 5; i++ {
		_, err := b.Insert(b.Len(), "x")
		require.NoError(t, err)
	}
	require.Equal(t, 3, b.UndoDepth())

	for i := 0; i < 3; i++ {
		_, err := b.Undo()
		require.NoError(t, err)
	}
	require.Equal(t, "xx", b.Text(), "oldest edits fell off the stack")

	_, err := b.Undo()
	require.ErrorIs(t, err, ErrNothingToUndo)
}

func TestUndoRedoSequence(t *testing.T) {
	b := mustNew(t, "the quick brown fox")

	steps := []struct {
		edit Edit
		want string
	}{
		{NewEdit(Range{Start: 4, End: 9}, "slow"), "the slow brown fox"},
		{NewDelete(8, 14), "the slow fox"},
		{NewInsert(12, " jumps"), "the slow fox jumps"},
	}
	texts := []string{"the quick brown fox"}
	for _, step := range steps {
		_, err := b.ApplyEdit(step.edit)
		require.NoError(t, err)
		require.Equal(t, step.want, b.Text())
		texts = append(texts, step.want)
	}

	for i := len(texts) - 2; i >= 0; i-- {
		_, err := b.Undo()
		require.NoError(t, err)
		require.Equal(t, texts[i], b.Text())
	}
	for i := 1; i < len(texts); i++ {
		_, err := b.Redo()
		require.NoError(t, err)
		require.Equal(t, texts[i], b.Text())
	}
}

func TestUndoMultiByte(t *testing.T) {
	b := mustNew(t, "héllo wörld")

	require.NoError(t, b.Delete(1, 3)) // é is two bytes
	require.Equal(t, "hllo wörld", b.Text())

	_, err := b.Undo()
	require.NoError(t, err)
	require.Equal(t, "héllo wörld", b.Text())
}

func TestClearHistory(t *testing.T) {
	b := mustNew(t, "")

	_, err := b.Insert(0, "a")
	require.NoError(t, err)
	_, err = b.Undo()
	require.NoError(t, err)

	b.ClearHistory()
	require.False(t, b.CanUndo())
	require.False(t, b.CanRedo())
	require.Equal(t, 0, b.UndoDepth())
	require.Equal(t, 0, b.RedoDepth())
}

func TestChangeInvert(t *testing.T) {
	insert := Change{
		Type:     ChangeInsert,
		Range:    Range{Start: 5, End: 5},
		NewRange: Range{Start: 5, End: 10},
		NewText:  "Hello",
	}
	inv := insert.Invert()
	require.Equal(t, ChangeDelete, inv.Type)
	require.Equal(t, Range{Start: 5, End: 10}, inv.Range)
	require.Equal(t, "Hello", inv.OldText)

	del := Change{
		Type:     ChangeDelete,
		Range:    Range{Start: 0, End: 5},
		NewRange: Range{Start: 0, End: 0},
		OldText:  "Hello",
	}
	inv = del.Invert()
	require.Equal(t, ChangeInsert, inv.Type)
	require.Equal(t, "Hello", inv.NewText)
	require.Equal(t, Range{Start: 0, End: 5}, inv.NewRange)

	repl := Change{
		Type:     ChangeReplace,
		Range:    Range{Start: 2, End: 4},
		NewRange: Range{Start: 2, End: 7},
		OldText:  "ab",
		NewText:  "12345",
	}
	inv = repl.Invert()
	require.Equal(t, ChangeReplace, inv.Type)
	require.Equal(t, repl.NewRange, inv.Range)
	require.Equal(t, repl.Range, inv.NewRange)
	require.Equal(t, repl, inv.Invert(), "inverting twice round-trips")
}
