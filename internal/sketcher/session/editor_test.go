package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floorplan-sketcher/internal/sketcher/collab"
	"floorplan-sketcher/internal/sketcher/machine"
	"floorplan-sketcher/internal/sketcher/models"
	"floorplan-sketcher/internal/sketcher/propagate"
	"floorplan-sketcher/internal/sketcher/render"
)

func pt(x, y float64) models.Point { return models.Point{X: x, Y: y} }

func sequentialIDs() func(string) string {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	}
}

func joinedProject() models.Project {
	return models.Project{
		ID:   "p1",
		Name: "House",
		Levels: []models.Level{{
			ID:   "lvl",
			Name: "Ground Floor",
			Walls: []models.Wall{
				{ID: "w1", X1: 0, Y1: 0, X2: 100, Y2: 0, Thickness: 10, Height: 240},
				{ID: "w2", X1: 100, Y1: 0, X2: 100, Y2: 100, Thickness: 10, Height: 240},
			},
		}},
	}
}

func newEditor(project models.Project, deps Deps) *Editor {
	if deps.NewID == nil {
		deps.NewID = sequentialIDs()
	}
	return NewEditor(project, DefaultConfig(), deps, false)
}

func dispatch(t *testing.T, e *Editor, events ...machine.Event) Result {
	t.Helper()
	var res Result
	for _, ev := range events {
		var err error
		res, err = e.Dispatch(ev)
		require.NoError(t, err)
	}
	return res
}

func TestDrawWallThroughEditor(t *testing.T) {
	e := newEditor(models.Project{ID: "p1", Name: "Empty"}, Deps{})

	dispatch(t, e, machine.ToolChanged{Tool: machine.ToolWall})
	res := dispatch(t, e,
		machine.PointerDown{Screen: pt(12, 12)},
		machine.PointerMove{Screen: pt(60, 100)},
		machine.PointerUp{Screen: pt(97, 203)},
	)

	require.Len(t, res.Committed, 1)
	walls := e.Project().Levels[0].Walls
	require.Len(t, walls, 1)
	assert.Equal(t, pt(10, 10), walls[0].Start())
	assert.Equal(t, pt(100, 200), walls[0].End())
	assert.Equal(t, 10.0, walls[0].Thickness)
	assert.Equal(t, 240.0, walls[0].Height)
	assert.Equal(t, 1, e.UndoDepth())
}

func TestCascadeIsOneUndoEntry(t *testing.T) {
	e := newEditor(joinedProject(), Deps{})

	dispatch(t, e, machine.WallDragged{WallID: "w1", Start: pt(0, 0), End: pt(108, 1)})

	walls := e.Project().Levels[0].Walls
	assert.Equal(t, pt(110, 0), walls[0].End())
	assert.Equal(t, pt(110, 0), walls[1].Start())
	assert.Equal(t, pt(100, 100), walls[1].End())
	assert.Equal(t, 1, e.UndoDepth())

	require.True(t, e.Undo())
	walls = e.Project().Levels[0].Walls
	assert.Equal(t, pt(100, 0), walls[0].End())
	assert.Equal(t, pt(100, 0), walls[1].Start())

	require.True(t, e.Redo())
	assert.Equal(t, pt(110, 0), e.Project().Levels[0].Walls[1].Start())
}

func TestNoOpDragRecordsNothing(t *testing.T) {
	e := newEditor(joinedProject(), Deps{})
	dispatch(t, e, machine.WallDragged{WallID: "w1", Start: pt(1, 1), End: pt(99, 0)})
	assert.Equal(t, 0, e.UndoDepth())
}

func TestCollapsingDragLeavesDocumentUnchanged(t *testing.T) {
	e := newEditor(joinedProject(), Deps{})
	before := e.Project().Levels[0].Walls

	res := dispatch(t, e, machine.WallDragged{WallID: "w1", Start: pt(0, 0), End: pt(2, 1)})
	assert.Empty(t, res.Committed)
	assert.Equal(t, before, e.Project().Levels[0].Walls)
	assert.Equal(t, 0, e.UndoDepth())

	assert.ErrorIs(t, e.MoveWall("w1", pt(0, 0), pt(0, 0)), propagate.ErrCollapsedWall)
	assert.ErrorIs(t, e.MoveWall("w1", pt(0, 0), pt(100, 100)), propagate.ErrCollapsedWall, "w2 would collapse")
	assert.Equal(t, before, e.Project().Levels[0].Walls)
	assert.Equal(t, 0, e.UndoDepth())
}

func TestDoorFollowsStretchedWall(t *testing.T) {
	project := joinedProject()
	project.Levels[0].Walls = project.Levels[0].Walls[:1]
	e := newEditor(project, Deps{})

	dispatch(t, e, machine.ToolChanged{Tool: machine.ToolDoor})
	res := dispatch(t, e, machine.PointerDown{Screen: pt(50, 3)})
	require.Len(t, res.Committed, 1)

	placement := e.Project().Levels[0].Placements[0]
	assert.Equal(t, 0.5, placement.PositionRatio)
	door, ok := e.Scene().Tagged(placement.ID)
	require.True(t, ok)
	assert.Equal(t, pt(50, 0), door.Center)

	require.NoError(t, e.MoveWall("w1", pt(0, 0), pt(200, 0)))
	door, ok = e.Scene().Tagged(placement.ID)
	require.True(t, ok)
	assert.Equal(t, pt(100, 0), door.Center)
}

func TestDoorMissIsNoOp(t *testing.T) {
	e := newEditor(joinedProject(), Deps{})

	dispatch(t, e, machine.ToolChanged{Tool: machine.ToolWindow})
	res := dispatch(t, e, machine.PointerDown{Screen: pt(500, 500)})

	assert.Empty(t, res.Committed)
	assert.Empty(t, e.Project().Levels[0].Placements)
	assert.Equal(t, 0, e.UndoDepth())
}

func TestAbandonedGestureLeavesNoTrace(t *testing.T) {
	e := newEditor(joinedProject(), Deps{})
	before := e.Project().Levels[0].Walls

	dispatch(t, e,
		machine.ToolChanged{Tool: machine.ToolWall},
		machine.PointerDown{Screen: pt(200, 200)},
		machine.PointerMove{Screen: pt(300, 200)},
	)
	hasPreview := func() bool {
		for _, c := range e.Scene().Commands {
			if c.Phase == render.PhasePreview {
				return true
			}
		}
		return false
	}
	require.True(t, hasPreview())

	dispatch(t, e,
		machine.ToolChanged{Tool: machine.ToolSelect},
		machine.PointerUp{Screen: pt(300, 200)},
	)

	assert.Equal(t, before, e.Project().Levels[0].Walls)
	assert.False(t, hasPreview())
	assert.Equal(t, 0, e.UndoDepth())
}

func TestSelectionAndDeleteCascade(t *testing.T) {
	project := joinedProject()
	project.Levels[0].Placements = []models.Placement{{ID: "door", WallID: "w2", PositionRatio: 0.8, Type: models.PlacementDoor, Width: 80}}
	e := newEditor(project, Deps{})

	res := dispatch(t, e, machine.PointerDown{Screen: pt(100, 20)})
	require.NotNil(t, res.Selection)
	assert.Equal(t, "w2", res.Selection.ID)

	require.NoError(t, e.DeleteWall("w2"))
	assert.Nil(t, e.Selection())
	assert.Empty(t, e.Project().Levels[0].Placements)

	res = dispatch(t, e, machine.PointerDown{Screen: pt(700, 700)})
	assert.Nil(t, res.Selection)
}

func TestContextMenuTargetsEntity(t *testing.T) {
	e := newEditor(joinedProject(), Deps{})

	res := dispatch(t, e, machine.ContextMenu{Screen: pt(50, 2)})
	require.NotNil(t, res.ContextMenu)
	require.NotNil(t, res.ContextMenu.Target)
	assert.Equal(t, "w1", res.ContextMenu.Target.ID)
}

func TestPanicIsRecovered(t *testing.T) {
	e := newEditor(joinedProject(), Deps{NewID: func(prefix string) string {
		if prefix == "wall" {
			panic("id source exhausted")
		}
		return prefix
	}})

	dispatch(t, e, machine.ToolChanged{Tool: machine.ToolComment}, machine.PointerDown{Screen: pt(40, 40)})
	require.Equal(t, 1, e.UndoDepth())
	require.True(t, e.Undo())
	before := e.Project()

	dispatch(t, e, machine.ToolChanged{Tool: machine.ToolWall}, machine.PointerDown{Screen: pt(0, 200)})
	_, err := e.Dispatch(machine.PointerUp{Screen: pt(100, 200)})
	assert.ErrorIs(t, err, ErrEventPanic)

	assert.Equal(t, before, e.Project())
	assert.Equal(t, 0, e.UndoDepth())

	_, err = e.Dispatch(machine.PointerMove{Screen: pt(1, 1)})
	assert.NoError(t, err, "editor stays usable")

	require.True(t, e.Redo(), "redo branch survives the failed gesture")
	assert.Len(t, e.Project().Levels[0].Comments, 1)
}

func TestReadOnlyEditor(t *testing.T) {
	store := newMemStore()
	e := NewEditor(joinedProject(), DefaultConfig(), Deps{Store: store}, true)

	res, err := e.Dispatch(machine.WallDragged{WallID: "w1", End: pt(200, 0)})
	require.NoError(t, err)
	assert.Empty(t, res.Committed)
	assert.Equal(t, 0, e.UndoDepth())

	assert.ErrorIs(t, e.DeleteWall("w1"), ErrReadOnly)
	_, err = e.Save(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestFixPreviewApply(t *testing.T) {
	e := newEditor(joinedProject(), Deps{})

	e.SetFixPreview([]models.Wall{
		{X1: 100, Y1: 100, X2: 0, Y2: 100, Thickness: 10},
		{X1: 0, Y1: 100, X2: 0, Y2: 0, Thickness: 10},
	})
	dashed := 0
	for _, c := range e.Scene().Commands {
		if c.Phase == render.PhasePreview && len(c.Style.Dash) > 0 {
			dashed++
		}
	}
	assert.Equal(t, 2, dashed)

	require.NoError(t, e.ApplyFixPreview())
	assert.Len(t, e.Project().Levels[0].Walls, 4)
	assert.Equal(t, 1, e.UndoDepth())

	room, err := e.AddRoom("Hall", []string{"w1", "w2", e.Project().Levels[0].Walls[2].ID, e.Project().Levels[0].Walls[3].ID})
	require.NoError(t, err)
	require.NotNil(t, room.CalculatedArea)
	assert.InDelta(t, 10000, *room.CalculatedArea, 1e-9)
}

func TestLevelsSwitch(t *testing.T) {
	e := newEditor(joinedProject(), Deps{})

	idx, err := e.AddLevel("First Floor")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1, e.Project().ActiveLevelIndex)
	_, ok := e.Scene().Tagged("w1")
	assert.False(t, ok)

	require.NoError(t, e.SetActiveLevel(0))
	_, ok = e.Scene().Tagged("w1")
	assert.True(t, ok)

	assert.Error(t, e.SetActiveLevel(5))
}

func TestSaveUsesStore(t *testing.T) {
	store := newMemStore()
	e := newEditor(joinedProject(), Deps{Store: store})

	v, err := e.Save(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, "first", store.messages[0])

	_, err = newEditor(joinedProject(), Deps{}).Save(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestEditorExcludesOwnPresence(t *testing.T) {
	bridge := collab.NewBridge(collab.NewMemoryHub(4), "p1", collab.Identity{UserID: "me", UserName: "Me"}, collab.BridgeOptions{})
	e := newEditor(joinedProject(), Deps{Presence: bridge})

	bridge.Apply(collab.Message{Kind: collab.KindCursor, ProjectID: "p1", UserID: "me", X: 1, Y: 1})
	bridge.Apply(collab.Message{Kind: collab.KindCursor, ProjectID: "p1", UserID: "bob", UserName: "Bob", X: 5, Y: 5})
	bridge.Apply(collab.Message{Kind: collab.KindSelection, ProjectID: "p1", UserID: "me", ObjectID: "w1"})

	var texts []string
	rings := 0
	for _, c := range e.Scene().Commands {
		switch c.Phase {
		case render.PhaseCursors:
			texts = append(texts, c.Text)
		case render.PhaseSelections:
			rings++
		}
	}
	assert.Equal(t, []string{"▼", "Bob"}, texts)
	assert.Zero(t, rings)
	assert.NotContains(t, e.Presence().Cursors, "me")
}

func TestExports(t *testing.T) {
	e := newEditor(joinedProject(), Deps{})

	assert.Contains(t, e.SVG(), `data-id="w2"`)

	png, err := e.ExportPNG()
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}
