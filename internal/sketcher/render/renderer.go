package render

import (
	"fmt"
	"math"
	"sort"

	"floorplan-sketcher/internal/sketcher/geometry"
	"floorplan-sketcher/internal/sketcher/models"
)

const (
	gridColor     = "#334155"
	wallColor     = "#e2e8f0"
	roomLabelFill = "#94a3b8"
	doorFill      = "#a78bfa"
	windowFill    = "#38bdf8"
	resolvedFill  = "#10b981"
	openFill      = "#f59e0b"
	roadStroke    = "#64748b"
	zoneStroke    = "#ffffff"

	defaultRoadWidth = 10.0
	commentRadius    = 10.0
	maxDotsPerAxis   = 200
)

var zoneFills = map[models.ZoneType]string{
	models.ZoneResidential: "rgba(37, 99, 235, 0.5)",
	models.ZoneCommercial:  "rgba(245, 158, 11, 0.5)",
	models.ZoneGreenSpace:  "rgba(16, 185, 129, 0.5)",
}

const zoneFallbackFill = "rgba(100, 116, 139, 0.5)"

// ============================================================
// Renderer
// ============================================================

// Renderer rebuilds the whole scene from the level and the overlay. It keeps
// no state between calls.
type Renderer struct {
	GridSize float64
}

func NewRenderer(gridSize float64) *Renderer {
	return &Renderer{GridSize: gridSize}
}

func (r *Renderer) Render(level *models.Level, levelIndex int, overlay Overlay) Scene {
	scene := Scene{
		Width:      overlay.Width,
		Height:     overlay.Height,
		Viewport:   overlay.Viewport,
		LevelIndex: levelIndex,
	}
	if scene.Viewport.Zoom <= 0 {
		scene.Viewport.Zoom = 1
	}

	tag := func(id string, t models.EntityType) *models.ObjectRef {
		return &models.ObjectRef{ID: id, Type: t, LevelIndex: levelIndex}
	}

	var cmds []Command
	cmds = append(cmds, r.renderGrid(overlay.Width, overlay.Height, scene.Viewport.Zoom)...)
	cmds = append(cmds, r.renderWalls(level, tag)...)
	cmds = append(cmds, r.renderRoomLabels(level, tag)...)
	cmds = append(cmds, r.renderPlacements(level, tag)...)
	cmds = append(cmds, r.renderComments(level, tag)...)
	cmds = append(cmds, r.renderZones(level, tag)...)
	cmds = append(cmds, r.renderInfrastructure(level, tag)...)
	cmds = append(cmds, r.renderPreviews(overlay)...)
	cmds = append(cmds, r.renderSelections(cmds, overlay)...)
	cmds = append(cmds, r.renderCursors(overlay)...)

	scene.Commands = cmds
	return scene
}

// ============================================================
// Element renderers
// ============================================================

func (r *Renderer) renderGrid(width, height, zoom float64) []Command {
	if r.GridSize <= 0 || width <= 0 || height <= 0 {
		return nil
	}

	cols := int(math.Ceil(width / (r.GridSize * zoom)))
	rows := int(math.Ceil(height / (r.GridSize * zoom)))
	stride := 1
	for cols/stride > maxDotsPerAxis || rows/stride > maxDotsPerAxis {
		stride *= 2
	}

	out := make([]Command, 0, (cols/stride+1)*(rows/stride+1))
	for i := 0; i < cols; i += stride {
		for j := 0; j < rows; j += stride {
			out = append(out, Command{
				Kind:   KindDot,
				Phase:  PhaseGrid,
				Center: models.Point{X: float64(i) * r.GridSize, Y: float64(j) * r.GridSize},
				Radius: 0.5,
				Style:  Style{Fill: gridColor},
			})
		}
	}
	return out
}

func (r *Renderer) renderWalls(level *models.Level, tag func(string, models.EntityType) *models.ObjectRef) []Command {
	out := make([]Command, 0, len(level.Walls))
	for _, w := range level.Walls {
		out = append(out, Command{
			Kind:   KindLine,
			Phase:  PhaseWalls,
			Points: []models.Point{w.Start(), w.End()},
			Style:  Style{Stroke: wallColor, StrokeWidth: w.Thickness},
			Tag:    tag(w.ID, models.EntityWall),
		})
	}
	return out
}

func (r *Renderer) renderRoomLabels(level *models.Level, tag func(string, models.EntityType) *models.ObjectRef) []Command {
	var out []Command
	for _, room := range level.Rooms {
		center, ok := geometry.LabelPosition(geometry.RoomWalls(level, room))
		if !ok {
			continue
		}

		out = append(out, Command{
			Kind:   KindText,
			Phase:  PhaseRoomLabels,
			Center: center,
			Text:   RoomLabel(room),
			Style:  Style{Fill: roomLabelFill, FontSize: 12},
			Tag:    tag(room.ID, models.EntityRoom),
		})
	}
	return out
}

// RoomLabel is the room name plus the area line when an area is known.
func RoomLabel(room models.Room) string {
	if room.CalculatedArea == nil || *room.CalculatedArea == 0 {
		return room.Name
	}
	return fmt.Sprintf("%s\n%.1f sq. ft.", room.Name, *room.CalculatedArea/100)
}

// renderPlacements skips placements whose wall no longer resolves.
func (r *Renderer) renderPlacements(level *models.Level, tag func(string, models.EntityType) *models.ObjectRef) []Command {
	var out []Command
	for _, p := range level.Placements {
		wall, idx := level.FindWall(p.WallID)
		if idx < 0 {
			continue
		}

		fill := windowFill
		if p.Type == models.PlacementDoor {
			fill = doorFill
		}

		out = append(out, Command{
			Kind:   KindRect,
			Phase:  PhasePlacements,
			Center: geometry.PointOnWall(wall, p.PositionRatio),
			Width:  p.Width,
			Height: wall.Thickness,
			Angle:  geometry.WallAngle(wall),
			Style:  Style{Fill: fill},
			Tag:    tag(p.ID, models.EntityPlacement),
		})
	}
	return out
}

func (r *Renderer) renderComments(level *models.Level, tag func(string, models.EntityType) *models.ObjectRef) []Command {
	out := make([]Command, 0, len(level.Comments))
	for _, c := range level.Comments {
		fill := openFill
		if c.Resolved {
			fill = resolvedFill
		}
		out = append(out, Command{
			Kind:   KindCircle,
			Phase:  PhaseComments,
			Center: models.Point{X: c.X, Y: c.Y},
			Radius: commentRadius,
			Style:  Style{Fill: fill},
			Tag:    tag(c.ID, models.EntityComment),
		})
	}
	return out
}

func (r *Renderer) renderZones(level *models.Level, tag func(string, models.EntityType) *models.ObjectRef) []Command {
	out := make([]Command, 0, len(level.Zones))
	for _, z := range level.Zones {
		fill, ok := zoneFills[z.Type]
		if !ok {
			fill = zoneFallbackFill
		}
		out = append(out, Command{
			Kind:   KindPolygon,
			Phase:  PhaseZones,
			Points: append([]models.Point(nil), z.Path...),
			Style:  Style{Fill: fill, Stroke: zoneStroke, StrokeWidth: 1, Dash: []float64{3, 3}},
			Tag:    tag(z.ID, models.EntityZone),
		})
	}
	return out
}

func (r *Renderer) renderInfrastructure(level *models.Level, tag func(string, models.EntityType) *models.ObjectRef) []Command {
	out := make([]Command, 0, len(level.Infrastructure))
	for _, s := range level.Infrastructure {
		width := defaultRoadWidth
		if s.Width != nil && *s.Width > 0 {
			width = *s.Width
		}
		out = append(out, Command{
			Kind:   KindPolyline,
			Phase:  PhaseInfrastructure,
			Points: append([]models.Point(nil), s.Path...),
			Style:  Style{Stroke: roadStroke, StrokeWidth: width},
			Tag:    tag(s.ID, models.EntityInfrastructure),
		})
	}
	return out
}

// ============================================================
// Overlays
// ============================================================

func (r *Renderer) renderPreviews(overlay Overlay) []Command {
	var out []Command

	if overlay.FixPreview != nil {
		for _, w := range overlay.FixPreview.AddedWalls {
			out = append(out, Command{
				Kind:   KindLine,
				Phase:  PhasePreview,
				Points: []models.Point{w.Start(), w.End()},
				Style:  Style{Stroke: "rgba(139, 92, 246, 0.7)", StrokeWidth: 10, Dash: []float64{5, 5}},
			})
		}
	}

	if p := overlay.Preview; p != nil {
		switch p.Shape {
		case PreviewLine:
			out = append(out, Command{
				Kind:   KindLine,
				Phase:  PhasePreview,
				Points: []models.Point{p.Start, p.End},
				Style:  Style{Stroke: "rgba(255, 255, 255, 0.5)", StrokeWidth: 10},
			})
		case PreviewRect:
			out = append(out, Command{
				Kind:   KindRect,
				Phase:  PhasePreview,
				Center: models.Point{X: (p.Start.X + p.End.X) / 2, Y: (p.Start.Y + p.End.Y) / 2},
				Width:  math.Abs(p.End.X - p.Start.X),
				Height: math.Abs(p.End.Y - p.Start.Y),
				Style: Style{
					Fill:        "rgba(37, 99, 235, 0.3)",
					Stroke:      "rgba(59, 130, 246, 0.7)",
					StrokeWidth: 1,
					Dash:        []float64{5, 5},
				},
			})
		}
	}
	return out
}

// renderSelections rings the object each remote user has selected with that
// user's color. The local user is never drawn.
func (r *Renderer) renderSelections(drawn []Command, overlay Overlay) []Command {
	selections := append([]Selection(nil), overlay.Selections...)
	sort.SliceStable(selections, func(i, j int) bool { return selections[i].UserID < selections[j].UserID })

	var out []Command
	for _, sel := range selections {
		if sel.UserID == overlay.LocalUserID || sel.ObjectID == "" {
			continue
		}
		for _, c := range drawn {
			if c.Tag == nil || c.Tag.ID != sel.ObjectID {
				continue
			}
			ring := c
			ring.Phase = PhaseSelections
			ring.Tag = nil
			ring.Points = append([]models.Point(nil), c.Points...)
			ring.Style.Stroke = sel.Color
			ring.Style.StrokeWidth = c.Style.StrokeWidth + 4
			ring.Style.Fill = "none"
			out = append(out, ring)
			break
		}
	}
	return out
}

func (r *Renderer) renderCursors(overlay Overlay) []Command {
	cursors := append([]Cursor(nil), overlay.Cursors...)
	sort.SliceStable(cursors, func(i, j int) bool { return cursors[i].UserID < cursors[j].UserID })

	var out []Command
	for _, c := range cursors {
		if c.UserID == overlay.LocalUserID {
			continue
		}
		out = append(out,
			Command{
				Kind:   KindText,
				Phase:  PhaseCursors,
				Center: models.Point{X: c.X, Y: c.Y},
				Text:   "▼",
				Style:  Style{Fill: c.Color, FontSize: 16},
			},
			Command{
				Kind:   KindText,
				Phase:  PhaseCursors,
				Center: models.Point{X: c.X + 8, Y: c.Y + 8},
				Text:   c.UserName,
				Style:  Style{Fill: "#ffffff", FontSize: 10, Background: c.Color},
			},
		)
	}
	return out
}
