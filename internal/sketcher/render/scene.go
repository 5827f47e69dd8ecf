package render

import (
	"floorplan-sketcher/internal/sketcher/models"
)

// ============================================================
// Draw commands
// ============================================================

type Kind string

const (
	KindDot      Kind = "dot"
	KindLine     Kind = "line"
	KindRect     Kind = "rect"
	KindCircle   Kind = "circle"
	KindPolygon  Kind = "polygon"
	KindPolyline Kind = "polyline"
	KindText     Kind = "text"
)

// Phase orders commands back to front.
type Phase int

const (
	PhaseGrid Phase = iota
	PhaseWalls
	PhaseRoomLabels
	PhasePlacements
	PhaseComments
	PhaseZones
	PhaseInfrastructure
	PhasePreview
	PhaseSelections
	PhaseCursors
)

type Style struct {
	Stroke      string    `json:"stroke,omitempty"`
	Fill        string    `json:"fill,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	Dash        []float64 `json:"dash,omitempty"`
	FontSize    float64   `json:"fontSize,omitempty"`
	Background  string    `json:"background,omitempty"`
}

// Command is one primitive in model space. Lines, polygons and polylines use
// Points; rects, circles, dots and text use Center. Tag is nil for overlays
// that must not be hit-testable.
type Command struct {
	Kind   Kind              `json:"kind"`
	Phase  Phase             `json:"phase"`
	Points []models.Point    `json:"points,omitempty"`
	Center models.Point      `json:"center"`
	Width  float64           `json:"width,omitempty"`
	Height float64           `json:"height,omitempty"`
	Angle  float64           `json:"angle,omitempty"`
	Radius float64           `json:"radius,omitempty"`
	Text   string            `json:"text,omitempty"`
	Style  Style             `json:"style"`
	Tag    *models.ObjectRef `json:"tag,omitempty"`
}

// Viewport maps model space to screen space: screen = model*Zoom + Offset.
type Viewport struct {
	Zoom    float64 `json:"zoom"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

func (v Viewport) ToModel(screen models.Point) models.Point {
	z := v.zoomOrOne()
	return models.Point{X: (screen.X - v.OffsetX) / z, Y: (screen.Y - v.OffsetY) / z}
}

func (v Viewport) ToScreen(model models.Point) models.Point {
	z := v.zoomOrOne()
	return models.Point{X: model.X*z + v.OffsetX, Y: model.Y*z + v.OffsetY}
}

func (v Viewport) zoomOrOne() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

type Scene struct {
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Viewport   Viewport  `json:"viewport"`
	LevelIndex int       `json:"levelIndex"`
	Commands   []Command `json:"commands"`
}

// Tagged returns the first command tagged with the given entity id.
func (s Scene) Tagged(id string) (Command, bool) {
	for _, c := range s.Commands {
		if c.Tag != nil && c.Tag.ID == id {
			return c, true
		}
	}
	return Command{}, false
}

// ============================================================
// Overlay state
// ============================================================

type PreviewShape string

const (
	PreviewLine PreviewShape = "line"
	PreviewRect PreviewShape = "rect"
)

// Preview is the in-progress drawing gesture.
type Preview struct {
	Shape PreviewShape
	Start models.Point
	End   models.Point
}

// FixPreview is a proposed edit shown dashed on top of the plan.
type FixPreview struct {
	AddedWalls []models.Wall
}

type Cursor struct {
	UserID   string
	UserName string
	X        float64
	Y        float64
	Color    string
}

type Selection struct {
	UserID   string
	ObjectID string
	Color    string
}

// Overlay is everything ephemeral drawn over the level.
type Overlay struct {
	Width       float64
	Height      float64
	Viewport    Viewport
	Preview     *Preview
	FixPreview  *FixPreview
	Cursors     []Cursor
	Selections  []Selection
	LocalUserID string
}
