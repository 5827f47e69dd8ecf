package machine

import (
	"floorplan-sketcher/internal/sketcher/models"
)

type Button int

const (
	ButtonLeft   Button = 0
	ButtonMiddle Button = 1
	ButtonRight  Button = 2
)

// ============================================================
// Input events
// ============================================================

// Event is a pointer, wheel or tool event. Pointer positions are in screen
// space; the machine maps them through the viewport.
type Event interface {
	event()
}

type PointerDown struct {
	Screen models.Point
	Button Button
	Alt    bool
}

type PointerMove struct {
	Screen models.Point
}

type PointerUp struct {
	Screen    models.Point
	OffCanvas bool
}

type Wheel struct {
	Screen models.Point
	DeltaY float64
}

type ContextMenu struct {
	Screen models.Point
}

type ToolChanged struct {
	Tool Tool
}

// WallDragged reports a wall whose endpoints were finalized by a drag
// handle, in model space.
type WallDragged struct {
	WallID string
	Start  models.Point
	End    models.Point
}

func (PointerDown) event() {}
func (PointerMove) event() {}
func (PointerUp) event()   {}
func (Wheel) event()       {}
func (ContextMenu) event() {}
func (ToolChanged) event() {}
func (WallDragged) event() {}

// ============================================================
// Effects
// ============================================================

// Effect is a request for the editor to act on the document or the outside
// world. The machine itself never mutates anything.
type Effect interface {
	effect()
}

type CommitWall struct {
	Start     models.Point
	End       models.Point
	Thickness float64
	Height    float64
}

type CommitInfrastructure struct {
	Path []models.Point
}

type CommitZone struct {
	Type models.ZoneType
	Path []models.Point
}

type CommitPlacement struct {
	WallID  string
	Type    models.PlacementType
	Pointer models.Point
	Width   float64
	Height  float64
}

type CommitComment struct {
	At   models.Point
	Text string
}

type Select struct {
	Ref models.ObjectRef
}

type ClearSelection struct{}

type OpenContextMenu struct {
	Screen models.Point
	Target *models.ObjectRef
}

type EmitCursor struct {
	At models.Point
}

type MoveWall struct {
	WallID string
	Start  models.Point
	End    models.Point
}

func (CommitWall) effect()           {}
func (CommitInfrastructure) effect() {}
func (CommitZone) effect()           {}
func (CommitPlacement) effect()      {}
func (CommitComment) effect()        {}
func (Select) effect()               {}
func (ClearSelection) effect()       {}
func (OpenContextMenu) effect()      {}
func (EmitCursor) effect()           {}
func (MoveWall) effect()             {}
