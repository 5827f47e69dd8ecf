package importer

import (
	"io"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"floorplan-sketcher/internal/sketcher/geometry"
	"floorplan-sketcher/internal/sketcher/models"
)

var ErrNoWalls = eris.New("importer: drawing contains no walls")

type Options struct {
	GridSize        float64
	WallThickness   float64
	WallHeight      float64
	PlacementHeight float64
	JointEpsilon    float64
	// MaxPlacementGap is how far a door or window may sit from its wall.
	MaxPlacementGap float64
}

func DefaultOptions() Options {
	return Options{
		GridSize:        10,
		WallThickness:   10,
		WallHeight:      240,
		PlacementHeight: 210,
		JointEpsilon:    1.0,
		MaxPlacementGap: 30,
	}
}

// ============================================================
// Importer
// ============================================================

// Importer converts a labelled SVG floor plan into a Level.
type Importer struct {
	opts Options
	grid geometry.Grid
}

func New(opts Options) *Importer {
	return &Importer{opts: opts, grid: geometry.NewGrid(opts.GridSize)}
}

func (im *Importer) Import(r io.Reader, levelName string) (models.Level, error) {
	elements, err := ParseSVG(r)
	if err != nil {
		return models.Level{}, err
	}

	var walls, doors, windows, rooms, zones, roads []Element
	for _, elem := range elements {
		switch elem.Kind {
		case KindWall:
			walls = append(walls, elem)
		case KindDoor:
			doors = append(doors, elem)
		case KindWindow:
			windows = append(windows, elem)
		case KindRoom:
			rooms = append(rooms, elem)
		case KindZone:
			zones = append(zones, elem)
		case KindRoad:
			roads = append(roads, elem)
		}
	}

	builder := newWallBuilder(im.grid, im.opts.WallHeight)
	for _, w := range walls {
		if err := builder.add(w); err != nil {
			return models.Level{}, eris.Wrapf(err, "wall %s", w.ID)
		}
	}

	level := models.Level{
		Name:   levelName,
		Walls:  builder.build(im.opts.WallThickness),
		Layers: []models.Layer{{ID: "layer-1", Name: "Default", Visible: true}},
	}
	level.ActiveLayerID = "layer-1"
	for i := range level.Walls {
		level.Walls[i].LayerID = level.ActiveLayerID
	}
	if len(level.Walls) == 0 {
		return models.Level{}, ErrNoWalls
	}

	for _, d := range doors {
		if p, ok := im.placement(level.Walls, d, models.PlacementDoor); ok {
			level.Placements = append(level.Placements, p)
		}
	}
	for _, w := range windows {
		if p, ok := im.placement(level.Walls, w, models.PlacementWindow); ok {
			level.Placements = append(level.Placements, p)
		}
	}
	for _, r := range rooms {
		if room, ok := im.room(&level, r); ok {
			level.Rooms = append(level.Rooms, room)
		}
	}
	for _, z := range zones {
		if zone, ok := im.zone(z); ok {
			level.Zones = append(level.Zones, zone)
		}
	}
	for _, r := range roads {
		if seg, ok := im.road(r); ok {
			level.Infrastructure = append(level.Infrastructure, seg)
		}
	}

	return level, nil
}

// ============================================================
// Element mapping
// ============================================================

func (im *Importer) placement(walls []models.Wall, elem Element, kind models.PlacementType) (models.Placement, bool) {
	points := elementPoints(elem)
	if len(points) == 0 {
		return models.Placement{}, false
	}
	center := centroid(points)

	best, bestDist := -1, math.MaxFloat64
	for i, w := range walls {
		if d, _ := geometry.DistanceToSegment(center, w.Start(), w.End()); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || bestDist > im.opts.MaxPlacementGap {
		return models.Placement{}, false
	}

	wall := walls[best]
	ratio, ok := geometry.ProjectionRatio(wall, center)
	if !ok {
		return models.Placement{}, false
	}

	return models.Placement{
		ID:            elem.ID,
		WallID:        wall.ID,
		PositionRatio: geometry.Clamp(ratio, 0, 1),
		Type:          kind,
		Width:         openingWidth(points, wall),
		Height:        im.opts.PlacementHeight,
	}, true
}

// room binds every wall lying on the room outline.
func (im *Importer) room(level *models.Level, elem Element) (models.Room, bool) {
	outline := openRing(elementPoints(elem))
	if len(outline) < 3 {
		return models.Room{}, false
	}

	tolerance := math.Max(im.opts.GridSize, mergeTolerance)
	room := models.Room{ID: elem.ID, Name: roomName(elem.ID)}
	for _, w := range level.Walls {
		if onOutline(w.Start(), outline, tolerance) && onOutline(w.End(), outline, tolerance) {
			room.WallIDs = append(room.WallIDs, w.ID)
		}
	}

	area, ok := geometry.RoomArea(level, room, im.opts.JointEpsilon)
	if !ok {
		area = geometry.PolygonArea(outline)
	}
	room.CalculatedArea = &area
	return room, true
}

func (im *Importer) zone(elem Element) (models.Zone, bool) {
	path := openRing(elementPoints(elem))
	if len(path) < 3 {
		return models.Zone{}, false
	}
	for i := range path {
		path[i] = im.grid.Snap(path[i])
	}
	return models.Zone{ID: elem.ID, Type: zoneType(elem.ID), Path: path}, true
}

func (im *Importer) road(elem Element) (models.Infrastructure, bool) {
	if elem.Rect != nil {
		b := newWallBuilder(im.grid, 0)
		b.addRect(elem.ID, *elem.Rect)
		seg := b.segments[0]
		width := seg.thickness
		return models.Infrastructure{
			ID:    elem.ID,
			Path:  []models.Point{im.grid.Snap(seg.p1), im.grid.Snap(seg.p2)},
			Width: &width,
		}, true
	}

	points, err := ParsePath(elem.Path)
	if err != nil || len(points) < 2 {
		return models.Infrastructure{}, false
	}
	for i := range points {
		points[i] = im.grid.Snap(points[i])
	}
	return models.Infrastructure{ID: elem.ID, Path: points}, true
}

// ============================================================
// Geometry helpers
// ============================================================

func elementPoints(elem Element) []models.Point {
	if elem.Rect != nil {
		r := elem.Rect
		return []models.Point{
			{X: r.X, Y: r.Y},
			{X: r.X + r.Width, Y: r.Y},
			{X: r.X + r.Width, Y: r.Y + r.Height},
			{X: r.X, Y: r.Y + r.Height},
		}
	}
	points, err := ParsePath(elem.Path)
	if err != nil {
		return nil
	}
	return points
}

func centroid(points []models.Point) models.Point {
	var sum models.Point
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(points)))
}

// openingWidth is the extent of the shape along its wall.
func openingWidth(points []models.Point, wall models.Wall) float64 {
	length := geometry.WallLength(wall)
	if length == 0 {
		return 0
	}
	dir := wall.End().Sub(wall.Start()).Scale(1 / length)

	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, p := range points {
		t := geometry.Dot(p.Sub(wall.Start()), dir)
		lo, hi = math.Min(lo, t), math.Max(hi, t)
	}
	return hi - lo
}

func onOutline(p models.Point, outline []models.Point, tolerance float64) bool {
	for i := range outline {
		a, b := outline[i], outline[(i+1)%len(outline)]
		if d, _ := geometry.DistanceToSegment(p, a, b); d <= tolerance {
			return true
		}
	}
	return false
}

// roomName turns "Room_Kitchen" or "Hall_room" into a label.
func roomName(id string) string {
	name := strings.TrimPrefix(id, "Room_")
	name = strings.TrimSuffix(name, "_room")
	name = strings.TrimSuffix(name, "_Room")
	name = strings.ReplaceAll(name, "_", " ")
	if name == "" {
		return id
	}
	return name
}

// zoneType reads the type from ids like "Zone_commercial_1".
func zoneType(id string) models.ZoneType {
	rest := strings.ToLower(strings.TrimPrefix(id, "Zone_"))
	for _, t := range []models.ZoneType{models.ZoneResidential, models.ZoneCommercial, models.ZoneGreenSpace} {
		if strings.HasPrefix(rest, string(t)) {
			return t
		}
	}
	return models.ZoneOther
}
