package machine

import (
	"floorplan-sketcher/internal/sketcher/geometry"
	"floorplan-sketcher/internal/sketcher/models"
)

type Config struct {
	GridSize float64
	MinZoom  float64
	MaxZoom  float64
	ZoomBase float64

	WallThickness   float64
	WallHeight      float64
	PlacementWidth  float64
	PlacementHeight float64
	CommentText     string
	ZoneType        models.ZoneType
}

func DefaultConfig() Config {
	return Config{
		GridSize:        10,
		MinZoom:         0.1,
		MaxZoom:         20,
		ZoomBase:        0.999,
		WallThickness:   10,
		WallHeight:      240,
		PlacementWidth:  80,
		PlacementHeight: 210,
		CommentText:     "New Comment",
		ZoneType:        models.ZoneResidential,
	}
}

// Input is the per-event context the caller supplies.
type Input struct {
	// HitTest maps a model point to the topmost entity under it.
	HitTest  func(models.Point) *models.ObjectRef
	ReadOnly bool
}

func (in Input) hit(p models.Point) *models.ObjectRef {
	if in.HitTest == nil {
		return nil
	}
	return in.HitTest(p)
}

// ============================================================
// Machine
// ============================================================

type Machine struct {
	cfg  Config
	grid geometry.Grid
}

func New(cfg Config) *Machine {
	return &Machine{cfg: cfg, grid: geometry.NewGrid(cfg.GridSize)}
}

func (m *Machine) Config() Config { return m.cfg }

// Transition is pure: it returns the next state and the effects to apply.
func (m *Machine) Transition(s State, ev Event, in Input) (State, []Effect) {
	switch e := ev.(type) {
	case ToolChanged:
		return m.toolChanged(s, e)
	case Wheel:
		s.Viewport = ZoomAt(s.Viewport, e.Screen, e.DeltaY, m.cfg.ZoomBase, m.cfg.MinZoom, m.cfg.MaxZoom)
		return s, nil
	}

	if in.ReadOnly {
		return s, nil
	}

	switch e := ev.(type) {
	case PointerDown:
		return m.pointerDown(s, e, in)
	case PointerMove:
		return m.pointerMove(s, e)
	case PointerUp:
		return m.pointerUp(s, e)
	case ContextMenu:
		at := s.Viewport.ToModel(e.Screen)
		return s, []Effect{OpenContextMenu{Screen: e.Screen, Target: in.hit(at)}}
	case WallDragged:
		return s, []Effect{MoveWall{WallID: e.WallID, Start: e.Start, End: e.End}}
	}
	return s, nil
}

// toolChanged abandons any gesture in progress.
func (m *Machine) toolChanged(s State, e ToolChanged) (State, []Effect) {
	if e.Tool.Valid() {
		s.Tool = e.Tool
	}
	s.Mode = ModeIdle
	s.Start, s.Current = models.Point{}, models.Point{}
	return s, nil
}

func (m *Machine) pointerDown(s State, e PointerDown, in Input) (State, []Effect) {
	if s.Mode != ModeIdle {
		return s, nil
	}

	if e.Alt || e.Button == ButtonRight {
		s.Mode = ModePanning
		s.LastScreen = e.Screen
		return s, nil
	}

	pointer := s.Viewport.ToModel(e.Screen)

	switch s.Tool {
	case ToolWall, ToolRoad, ToolZone:
		s.Mode = ModeDrawing
		s.Start = m.grid.Snap(pointer)
		s.Current = s.Start
		return s, nil

	case ToolDoor, ToolWindow:
		target := in.hit(pointer)
		if target == nil || target.Type != models.EntityWall {
			return s, nil
		}
		kind := models.PlacementWindow
		if s.Tool == ToolDoor {
			kind = models.PlacementDoor
		}
		return s, []Effect{CommitPlacement{
			WallID:  target.ID,
			Type:    kind,
			Pointer: pointer,
			Width:   m.cfg.PlacementWidth,
			Height:  m.cfg.PlacementHeight,
		}}

	case ToolComment:
		return s, []Effect{CommitComment{At: pointer, Text: m.cfg.CommentText}}

	default:
		if target := in.hit(pointer); target != nil {
			return s, []Effect{Select{Ref: *target}}
		}
		return s, []Effect{ClearSelection{}}
	}
}

func (m *Machine) pointerMove(s State, e PointerMove) (State, []Effect) {
	effects := []Effect{EmitCursor{At: s.Viewport.ToModel(e.Screen)}}

	switch s.Mode {
	case ModePanning:
		s.Viewport = Pan(s.Viewport, e.Screen.Sub(s.LastScreen))
		s.LastScreen = e.Screen
	case ModeDrawing:
		s.Current = m.grid.Snap(s.Viewport.ToModel(e.Screen))
	}
	return s, effects
}

func (m *Machine) pointerUp(s State, e PointerUp) (State, []Effect) {
	switch s.Mode {
	case ModePanning:
		s.Mode = ModeIdle
		return s, nil
	case ModeDrawing:
	default:
		return s, nil
	}

	start := s.Start
	s.Mode = ModeIdle
	s.Start, s.Current = models.Point{}, models.Point{}

	if e.OffCanvas {
		return s, nil
	}

	end := m.grid.Snap(s.Viewport.ToModel(e.Screen))
	if commit := m.commit(s.Tool, start, end); commit != nil {
		return s, []Effect{commit}
	}
	return s, nil
}

// commit builds the entity for a finished drag. Degenerate gestures yield
// nothing: a click without drag, or a zone with no area.
func (m *Machine) commit(tool Tool, start, end models.Point) Effect {
	if start == end {
		return nil
	}

	switch tool {
	case ToolWall:
		return CommitWall{Start: start, End: end, Thickness: m.cfg.WallThickness, Height: m.cfg.WallHeight}
	case ToolRoad:
		return CommitInfrastructure{Path: []models.Point{start, end}}
	case ToolZone:
		if start.X == end.X || start.Y == end.Y {
			return nil
		}
		return CommitZone{Type: m.cfg.ZoneType, Path: []models.Point{
			start,
			{X: end.X, Y: start.Y},
			end,
			{X: start.X, Y: end.Y},
		}}
	}
	return nil
}
