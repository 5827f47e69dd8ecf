package importer

import (
	"fmt"
	"math"
	"sort"

	"floorplan-sketcher/internal/sketcher/geometry"
	"floorplan-sketcher/internal/sketcher/models"
)

// ============================================================
// Wall Graph Builder
// ============================================================

const (
	connectTolerance = 15.0 // Допуск для поиска пересечения и снаппинга
	mergeTolerance   = 8.0  // Радиус склейки близких концов стен
)

type wallSegment struct {
	id        string
	p1        models.Point
	p2        models.Point
	thickness float64
}

type segmentInfo struct {
	segment     wallSegment
	horizontal  bool
	start       float64
	end         float64
	constant    float64
	splitPoints []float64
}

// wallBuilder превращает нарисованные стены в осевые линии, концы которых
// совпадают точно там, где на чертеже есть стык.
type wallBuilder struct {
	grid     geometry.Grid
	height   float64
	segments []wallSegment
}

func newWallBuilder(grid geometry.Grid, height float64) *wallBuilder {
	return &wallBuilder{grid: grid, height: height}
}

func (b *wallBuilder) add(elem Element) error {
	if elem.Rect != nil {
		b.addRect(elem.ID, *elem.Rect)
		return nil
	}

	points, err := ParsePath(elem.Path)
	if err != nil {
		return err
	}
	if len(points) < 2 {
		return nil
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	width, height := maxX-minX, maxY-minY

	seg := wallSegment{id: elem.ID, thickness: math.Min(width, height)}
	switch {
	case width == 0 && height == 0:
		return nil
	case width == 0 || height == 0:
		// голая линия: оставляем концы как есть
		seg.p1, seg.p2 = points[0], points[len(points)-1]
		seg.thickness = 0
	case width >= height:
		midY := minY + height/2
		seg.p1, seg.p2 = models.Point{X: minX, Y: midY}, models.Point{X: maxX, Y: midY}
	default:
		midX := minX + width/2
		seg.p1, seg.p2 = models.Point{X: midX, Y: minY}, models.Point{X: midX, Y: maxY}
	}
	b.segments = append(b.segments, seg)
	return nil
}

func (b *wallBuilder) addRect(id string, rect Rect) {
	seg := wallSegment{id: id, thickness: math.Min(rect.Width, rect.Height)}
	if rect.Width > rect.Height {
		seg.p1 = models.Point{X: rect.X, Y: rect.Y + rect.Height/2}
		seg.p2 = models.Point{X: rect.X + rect.Width, Y: rect.Y + rect.Height/2}
	} else {
		seg.p1 = models.Point{X: rect.X + rect.Width/2, Y: rect.Y}
		seg.p2 = models.Point{X: rect.X + rect.Width/2, Y: rect.Y + rect.Height}
	}
	b.segments = append(b.segments, seg)
}

// build режет стены в T- и X-стыках, склеивает близкие концы и снапит всё к сетке.
func (b *wallBuilder) build(defaultThickness float64) []models.Wall {
	segments := splitSegments(b.segments)
	joints := mergeEndpoints(segments)

	walls := make([]models.Wall, 0, len(segments))
	for _, seg := range segments {
		p1 := b.grid.Snap(joints[keyOf(seg.p1)])
		p2 := b.grid.Snap(joints[keyOf(seg.p2)])
		if p1 == p2 {
			continue
		}

		thickness := seg.thickness
		if thickness <= 0 {
			thickness = defaultThickness
		}
		walls = append(walls, models.Wall{
			ID:        seg.id,
			X1:        p1.X,
			Y1:        p1.Y,
			X2:        p2.X,
			Y2:        p2.Y,
			Thickness: thickness,
			Height:    b.height,
		})
	}
	return walls
}

// ============================================================
// Wall segments connection
// ============================================================

func splitSegments(segments []wallSegment) []wallSegment {
	if len(segments) == 0 {
		return nil
	}

	infos := make([]*segmentInfo, 0, len(segments))
	for _, seg := range segments {
		horizontal := math.Abs(seg.p1.Y-seg.p2.Y) <= math.Abs(seg.p1.X-seg.p2.X)
		start, end := seg.p1.X, seg.p2.X
		constant := seg.p1.Y

		if !horizontal {
			start, end = seg.p1.Y, seg.p2.Y
			constant = seg.p1.X
		}
		if start > end {
			start, end = end, start
		}

		infos = append(infos, &segmentInfo{
			segment:     seg,
			horizontal:  horizontal,
			start:       start,
			end:         end,
			constant:    constant,
			splitPoints: []float64{start, end},
		})
	}

	for i := 0; i < len(infos); i++ {
		for j := i + 1; j < len(infos); j++ {
			a, c := infos[i], infos[j]
			if a.horizontal == c.horizontal {
				continue
			}
			if a.horizontal {
				addIntersection(a, c)
			} else {
				addIntersection(c, a)
			}
		}
	}

	var result []wallSegment
	for _, info := range infos {
		points := append([]float64{}, info.splitPoints...)
		sort.Float64s(points)
		points = uniquePoints(points)
		if len(points) < 2 {
			continue
		}

		parts := len(points) - 1
		for idx := 0; idx < parts; idx++ {
			start, end := points[idx], points[idx+1]

			var p1, p2 models.Point
			if info.horizontal {
				p1 = models.Point{X: start, Y: info.constant}
				p2 = models.Point{X: end, Y: info.constant}
			} else {
				p1 = models.Point{X: info.constant, Y: start}
				p2 = models.Point{X: info.constant, Y: end}
			}

			id := info.segment.id
			if parts > 1 {
				id = fmt.Sprintf("%s_%d", info.segment.id, idx+1)
			}
			result = append(result, wallSegment{id: id, p1: p1, p2: p2, thickness: info.segment.thickness})
		}
	}
	return result
}

// addIntersection запоминает пересечение вертикального и горизонтального
// сегментов, даже если конец немного не дотягивает.
func addIntersection(h, v *segmentInfo) {
	vx := v.constant
	hy := h.constant

	if vx < h.start-connectTolerance || vx > h.end+connectTolerance {
		return
	}
	if hy < v.start-connectTolerance || hy > v.end+connectTolerance {
		return
	}

	h.splitPoints = append(h.splitPoints, geometry.Clamp(vx, h.start, h.end))
	v.splitPoints = append(v.splitPoints, geometry.Clamp(hy, v.start, v.end))
}

func uniquePoints(points []float64) []float64 {
	if len(points) == 0 {
		return points
	}
	out := points[:1]
	for i := 1; i < len(points); i++ {
		if !almostEqual(points[i], points[i-1]) {
			out = append(out, points[i])
		}
	}
	return out
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// mergeEndpoints сопоставляет каждому концу представителя его кластера.
// Кластеры строятся в отсортированном порядке, результат детерминирован.
func mergeEndpoints(segments []wallSegment) map[string]models.Point {
	var points []models.Point
	seen := map[string]bool{}
	for _, seg := range segments {
		for _, p := range []models.Point{seg.p1, seg.p2} {
			if k := keyOf(p); !seen[k] {
				seen[k] = true
				points = append(points, p)
			}
		}
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].X != points[j].X {
			return points[i].X < points[j].X
		}
		return points[i].Y < points[j].Y
	})

	rep := make(map[string]models.Point, len(points))
	for i, p := range points {
		if _, ok := rep[keyOf(p)]; ok {
			continue
		}
		rep[keyOf(p)] = p
		for _, other := range points[i+1:] {
			if _, ok := rep[keyOf(other)]; ok {
				continue
			}
			if geometry.Distance(p, other) <= mergeTolerance {
				rep[keyOf(other)] = p
			}
		}
	}
	return rep
}

func keyOf(p models.Point) string {
	return fmt.Sprintf("%g,%g", p.X, p.Y)
}
