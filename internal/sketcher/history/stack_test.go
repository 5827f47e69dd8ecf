package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floorplan-sketcher/internal/sketcher/models"
)

func snap(name string) models.Project {
	return models.Project{Name: name}
}

func TestUndoRedo(t *testing.T) {
	s := NewStack(10)
	s.PushToUndoStack(snap("v1"))
	s.PushToUndoStack(snap("v2"))

	prev, ok := s.Undo(snap("v3"))
	require.True(t, ok)
	assert.Equal(t, "v2", prev.Name)

	next, ok := s.Redo(prev)
	require.True(t, ok)
	assert.Equal(t, "v3", next.Name)
	assert.Equal(t, 2, s.UndoDepth())
}

func TestPushClearsRedo(t *testing.T) {
	s := NewStack(10)
	s.PushToUndoStack(snap("v1"))
	_, _ = s.Undo(snap("v2"))
	require.Equal(t, 1, s.RedoDepth())

	s.PushToUndoStack(snap("v1b"))
	assert.Zero(t, s.RedoDepth())
}

func TestLimitDropsOldest(t *testing.T) {
	s := NewStack(2)
	s.PushToUndoStack(snap("a"))
	s.PushToUndoStack(snap("b"))
	s.PushToUndoStack(snap("c"))
	assert.Equal(t, 2, s.UndoDepth())

	first, _ := s.Undo(snap("d"))
	second, _ := s.Undo(first)
	_, ok := s.Undo(second)
	assert.Equal(t, "c", first.Name)
	assert.Equal(t, "b", second.Name)
	assert.False(t, ok)
}

func TestEmpty(t *testing.T) {
	s := NewStack(0)
	_, ok := s.Undo(snap("x"))
	assert.False(t, ok)
	_, ok = s.Redo(snap("x"))
	assert.False(t, ok)
}
