package history

import (
	"floorplan-sketcher/internal/sketcher/models"
)

// Stack is a bounded snapshot undo/redo history. It is owned by one editor
// session and is not safe for concurrent use.
type Stack struct {
	limit  int
	past   []models.Project
	future []models.Project
}

func NewStack(limit int) *Stack {
	if limit <= 0 {
		limit = 100
	}
	return &Stack{limit: limit}
}

// PushToUndoStack records the snapshot taken before an edit and invalidates
// the redo branch.
func (s *Stack) PushToUndoStack(snapshot models.Project) {
	s.past = append(s.past, snapshot)
	if len(s.past) > s.limit {
		s.past = s.past[len(s.past)-s.limit:]
	}
	s.future = nil
}

// Undo returns the snapshot to restore, parking current on the redo branch.
func (s *Stack) Undo(current models.Project) (models.Project, bool) {
	if len(s.past) == 0 {
		return models.Project{}, false
	}
	prev := s.past[len(s.past)-1]
	s.past = s.past[:len(s.past)-1]
	s.future = append(s.future, current)
	return prev, true
}

func (s *Stack) Redo(current models.Project) (models.Project, bool) {
	if len(s.future) == 0 {
		return models.Project{}, false
	}
	next := s.future[len(s.future)-1]
	s.future = s.future[:len(s.future)-1]
	s.past = append(s.past, current)
	return next, true
}

func (s *Stack) UndoDepth() int { return len(s.past) }

func (s *Stack) RedoDepth() int { return len(s.future) }
