package geometry

import (
	"math"

	"floorplan-sketcher/internal/sketcher/models"
)

// ============================================================
// Grid snapping
// ============================================================

// Grid snaps model coordinates to multiples of Size.
type Grid struct {
	Size float64
}

func NewGrid(size float64) Grid {
	return Grid{Size: size}
}

// Snap rounds each axis to the nearest multiple of the grid size. Ties at
// exactly half a cell round toward +Inf (15 -> 20, -15 -> -10).
func (g Grid) Snap(p models.Point) models.Point {
	return models.Point{X: g.snapValue(p.X), Y: g.snapValue(p.Y)}
}

func (g Grid) snapValue(v float64) float64 {
	if g.Size <= 0 {
		return v
	}
	snapped := math.Floor(v/g.Size+0.5) * g.Size
	if snapped == 0 {
		return 0 // no negative zero
	}
	return snapped
}

// IsAligned reports whether p already sits on a grid intersection.
func (g Grid) IsAligned(p models.Point) bool {
	return g.Snap(p) == p
}

// SnapToGrid is the free-function form of Grid.Snap.
func SnapToGrid(p models.Point, size float64) models.Point {
	return NewGrid(size).Snap(p)
}
