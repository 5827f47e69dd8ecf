package geometry

import (
	"math"

	"floorplan-sketcher/internal/sketcher/models"
)

func Distance(a, b models.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func Dot(a, b models.Point) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Coincident reports whether two endpoints are joined under tolerance eps.
func Coincident(a, b models.Point, eps float64) bool {
	return Distance(a, b) < eps
}

// ============================================================
// Placement parametrization
// ============================================================

// ProjectionRatio is the scalar projection of p onto the wall direction,
// normalized by the squared wall length. ok is false for a zero-length wall.
func ProjectionRatio(w models.Wall, p models.Point) (ratio float64, ok bool) {
	dir := w.End().Sub(w.Start())
	lenSq := Dot(dir, dir)
	if lenSq == 0 {
		return 0, false
	}
	return Dot(p.Sub(w.Start()), dir) / lenSq, true
}

// PointOnWall maps a position ratio back to model space.
func PointOnWall(w models.Wall, ratio float64) models.Point {
	dir := w.End().Sub(w.Start())
	return w.Start().Add(dir.Scale(ratio))
}

// WallAngle is the wall direction in degrees.
func WallAngle(w models.Wall) float64 {
	return math.Atan2(w.Y2-w.Y1, w.X2-w.X1) * 180 / math.Pi
}

func WallLength(w models.Wall) float64 {
	return Distance(w.Start(), w.End())
}

// ============================================================
// Hit-testing math
// ============================================================

// DistanceToSegment returns the distance from p to segment a-b and the
// clamped parameter t of the closest point.
func DistanceToSegment(p, a, b models.Point) (float64, float64) {
	d := b.Sub(a)
	lenSq := Dot(d, d)
	if lenSq == 0 {
		return Distance(p, a), 0
	}

	t := Dot(p.Sub(a), d) / lenSq
	t = Clamp(t, 0, 1)

	closest := a.Add(d.Scale(t))
	return Distance(p, closest), t
}

// PointInPolygon uses the even-odd rule; the polygon is closed implicitly.
func PointInPolygon(p models.Point, poly []models.Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := range poly {
		pi, pj := poly[i], poly[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
