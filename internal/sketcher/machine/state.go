package machine

import (
	"floorplan-sketcher/internal/sketcher/models"
	"floorplan-sketcher/internal/sketcher/render"
)

type Mode int

const (
	ModeIdle Mode = iota
	ModePanning
	ModeDrawing
)

func (m Mode) String() string {
	switch m {
	case ModePanning:
		return "panning"
	case ModeDrawing:
		return "drawing"
	default:
		return "idle"
	}
}

type Tool string

const (
	ToolSelect  Tool = "select"
	ToolWall    Tool = "wall"
	ToolRoad    Tool = "road"
	ToolZone    Tool = "zone"
	ToolDoor    Tool = "door"
	ToolWindow  Tool = "window"
	ToolComment Tool = "comment"
)

func (t Tool) Valid() bool {
	switch t {
	case ToolSelect, ToolWall, ToolRoad, ToolZone, ToolDoor, ToolWindow, ToolComment:
		return true
	}
	return false
}

// State is the whole interaction state. It is a value: transitions return a
// new one and never mutate the input.
type State struct {
	Mode     Mode
	Tool     Tool
	Viewport render.Viewport

	// Drawing: snapped start and current preview end, model space.
	Start   models.Point
	Current models.Point

	// Panning: last raw screen position.
	LastScreen models.Point
}

func NewState(tool Tool) State {
	if !tool.Valid() {
		tool = ToolSelect
	}
	return State{Mode: ModeIdle, Tool: tool, Viewport: render.Viewport{Zoom: 1}}
}

// Preview is the in-progress gesture for the renderer, or nil when idle.
func (s State) Preview() *render.Preview {
	if s.Mode != ModeDrawing {
		return nil
	}
	shape := render.PreviewLine
	if s.Tool == ToolZone {
		shape = render.PreviewRect
	}
	return &render.Preview{Shape: shape, Start: s.Start, End: s.Current}
}
