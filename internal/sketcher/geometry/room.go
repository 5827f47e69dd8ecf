package geometry

import (
	"fmt"
	"math"

	"github.com/twpayne/go-geom"

	"floorplan-sketcher/internal/sketcher/models"
)

// ============================================================
// Room labels
// ============================================================

// RoomWalls resolves the room's wall ids against the level, dropping ids that
// no longer exist.
func RoomWalls(level *models.Level, room models.Room) []models.Wall {
	var walls []models.Wall
	for _, id := range room.WallIDs {
		if w, idx := level.FindWall(id); idx >= 0 {
			walls = append(walls, w)
		}
	}
	return walls
}

// LabelPosition is the centroid of the unique endpoint set of the bounding
// walls. ok is false when no wall resolves.
func LabelPosition(walls []models.Wall) (models.Point, bool) {
	seen := make(map[string]bool)
	var sum models.Point
	n := 0
	for _, w := range walls {
		for _, p := range []models.Point{w.Start(), w.End()} {
			key := fmt.Sprintf("%g,%g", p.X, p.Y)
			if seen[key] {
				continue
			}
			seen[key] = true
			sum = sum.Add(p)
			n++
		}
	}
	if n == 0 {
		return models.Point{}, false
	}
	return sum.Scale(1 / float64(n)), true
}

// ============================================================
// Wall loops
// ============================================================

// WallLoop chains the walls end to end (joined within eps) and returns the
// ring of corner points when they form a single closed loop.
func WallLoop(walls []models.Wall, eps float64) ([]models.Point, bool) {
	if len(walls) < 3 {
		return nil, false
	}

	used := make([]bool, len(walls))
	used[0] = true
	ring := []models.Point{walls[0].Start()}
	cursor := walls[0].End()

	for step := 1; step < len(walls); step++ {
		found := false
		for i, w := range walls {
			if used[i] {
				continue
			}
			switch {
			case Coincident(w.Start(), cursor, eps):
				ring = append(ring, w.Start())
				cursor = w.End()
			case Coincident(w.End(), cursor, eps):
				ring = append(ring, w.End())
				cursor = w.Start()
			default:
				continue
			}
			used[i] = true
			found = true
			break
		}
		if !found {
			return nil, false
		}
	}

	if !Coincident(cursor, ring[0], eps) {
		return nil, false
	}
	return ring, true
}

// PolygonArea returns the unsigned area of the ring.
func PolygonArea(ring []models.Point) float64 {
	if len(ring) < 3 {
		return 0
	}
	flat := make([]float64, 0, 2*(len(ring)+1))
	for _, p := range ring {
		flat = append(flat, p.X, p.Y)
	}
	flat = append(flat, ring[0].X, ring[0].Y)

	poly := geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
	return math.Abs(poly.Area())
}

// PolylineLength is the summed segment length of an infrastructure path.
func PolylineLength(path []models.Point) float64 {
	if len(path) < 2 {
		return 0
	}
	flat := make([]float64, 0, 2*len(path))
	for _, p := range path {
		flat = append(flat, p.X, p.Y)
	}
	return geom.NewLineStringFlat(geom.XY, flat).Length()
}

// RoomArea computes the floor area of a room whose walls close a loop.
func RoomArea(level *models.Level, room models.Room, eps float64) (float64, bool) {
	ring, ok := WallLoop(RoomWalls(level, room), eps)
	if !ok {
		return 0, false
	}
	return PolygonArea(ring), true
}
