package render

import (
	"math"
	"strings"
	"unicode/utf8"

	"floorplan-sketcher/internal/sketcher/geometry"
	"floorplan-sketcher/internal/sketcher/models"
)

// HitTest returns the topmost tagged command under p (model coordinates).
// tolerance widens thin strokes so they stay clickable when zoomed out.
func (s Scene) HitTest(p models.Point, tolerance float64) *models.ObjectRef {
	for i := len(s.Commands) - 1; i >= 0; i-- {
		c := s.Commands[i]
		if c.Tag == nil {
			continue
		}
		if c.contains(p, tolerance) {
			ref := *c.Tag
			return &ref
		}
	}
	return nil
}

func (c Command) contains(p models.Point, tolerance float64) bool {
	switch c.Kind {
	case KindLine, KindPolyline:
		half := c.Style.StrokeWidth/2 + tolerance
		for i := 1; i < len(c.Points); i++ {
			if d, _ := geometry.DistanceToSegment(p, c.Points[i-1], c.Points[i]); d <= half {
				return true
			}
		}
		return false

	case KindPolygon:
		return geometry.PointInPolygon(p, c.Points)

	case KindCircle, KindDot:
		return geometry.Distance(p, c.Center) <= c.Radius+tolerance

	case KindRect:
		lx, ly := toLocal(p, c.Center, c.Angle)
		return math.Abs(lx) <= c.Width/2+tolerance && math.Abs(ly) <= c.Height/2+tolerance

	case KindText:
		w, h := textBox(c.Text, c.Style.FontSize)
		return math.Abs(p.X-c.Center.X) <= w/2+tolerance && math.Abs(p.Y-c.Center.Y) <= h/2+tolerance
	}
	return false
}

// toLocal rotates p into the frame of a rect centered at center and rotated
// by angle degrees.
func toLocal(p, center models.Point, angle float64) (float64, float64) {
	dx, dy := p.X-center.X, p.Y-center.Y
	if angle == 0 {
		return dx, dy
	}
	rad := -angle * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	return dx*cos - dy*sin, dx*sin + dy*cos
}

// textBox approximates the extent of a centered text block.
func textBox(text string, fontSize float64) (float64, float64) {
	if fontSize <= 0 {
		fontSize = 12
	}
	lines := strings.Split(text, "\n")
	longest := 0
	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > longest {
			longest = n
		}
	}
	return float64(longest) * fontSize * 0.6, float64(len(lines)) * fontSize * 1.2
}
