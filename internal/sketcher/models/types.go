package models

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }

func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

func (p Point) Scale(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

// ============================================================
// Entity kinds
// ============================================================

type EntityType string

const (
	EntityWall           EntityType = "wall"
	EntityRoom           EntityType = "room"
	EntityPlacement      EntityType = "placement"
	EntityComment        EntityType = "comment"
	EntityZone           EntityType = "zone"
	EntityInfrastructure EntityType = "infrastructure"
)

type PlacementType string

const (
	PlacementDoor   PlacementType = "door"
	PlacementWindow PlacementType = "window"
)

type ZoneType string

const (
	ZoneResidential ZoneType = "residential"
	ZoneCommercial  ZoneType = "commercial"
	ZoneGreenSpace  ZoneType = "green_space"
	ZoneOther       ZoneType = "other"
)

// ObjectRef identifies a drawn entity: what selection, hit-testing and the
// context menu report back.
type ObjectRef struct {
	ID         string     `json:"id"`
	Type       EntityType `json:"type"`
	LevelIndex int        `json:"levelIndex"`
}

// ============================================================
// Level collections
// ============================================================

type Wall struct {
	ID        string  `json:"id"`
	X1        float64 `json:"x1"`
	Y1        float64 `json:"y1"`
	X2        float64 `json:"x2"`
	Y2        float64 `json:"y2"`
	Thickness float64 `json:"thickness"`
	Height    float64 `json:"height"`
	LayerID   string  `json:"layerId,omitempty"`
}

func (w Wall) Start() Point { return Point{X: w.X1, Y: w.Y1} }

func (w Wall) End() Point { return Point{X: w.X2, Y: w.Y2} }

// WithEndpoints returns a copy of w moved to the given endpoints.
func (w Wall) WithEndpoints(start, end Point) Wall {
	w.X1, w.Y1 = start.X, start.Y
	w.X2, w.Y2 = end.X, end.Y
	return w
}

type Room struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	WallIDs        []string `json:"wallIds"`
	CalculatedArea *float64 `json:"calculatedArea,omitempty"`
}

type Placement struct {
	ID            string        `json:"id"`
	WallID        string        `json:"wallId"`
	PositionRatio float64       `json:"positionRatio"`
	Type          PlacementType `json:"type"`
	Width         float64       `json:"width"`
	Height        float64       `json:"height"`
}

type Zone struct {
	ID   string   `json:"id"`
	Type ZoneType `json:"type"`
	Path []Point  `json:"path"`
}

type Infrastructure struct {
	ID    string   `json:"id"`
	Path  []Point  `json:"path"`
	Width *float64 `json:"width,omitempty"`
}

type Comment struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Text     string  `json:"text"`
	Resolved bool    `json:"resolved"`
}

type Layer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

type Level struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Walls          []Wall           `json:"walls"`
	Rooms          []Room           `json:"rooms"`
	Placements     []Placement      `json:"placements"`
	Zones          []Zone           `json:"zones"`
	Infrastructure []Infrastructure `json:"infrastructure"`
	Comments       []Comment        `json:"comments"`
	Layers         []Layer          `json:"layers"`
	ActiveLayerID  string           `json:"activeLayerId"`
}

// FindWall returns the wall with the given id and its index, or -1.
func (l *Level) FindWall(id string) (Wall, int) {
	for i, w := range l.Walls {
		if w.ID == id {
			return w, i
		}
	}
	return Wall{}, -1
}

// Clone deep-copies the level so that mutations on the copy never alias the
// original slices.
func (l Level) Clone() Level {
	out := l
	out.Walls = append([]Wall(nil), l.Walls...)
	out.Placements = append([]Placement(nil), l.Placements...)
	out.Comments = append([]Comment(nil), l.Comments...)
	out.Layers = append([]Layer(nil), l.Layers...)

	out.Rooms = make([]Room, len(l.Rooms))
	for i, r := range l.Rooms {
		r.WallIDs = append([]string(nil), r.WallIDs...)
		if r.CalculatedArea != nil {
			area := *r.CalculatedArea
			r.CalculatedArea = &area
		}
		out.Rooms[i] = r
	}

	out.Zones = make([]Zone, len(l.Zones))
	for i, z := range l.Zones {
		z.Path = append([]Point(nil), z.Path...)
		out.Zones[i] = z
	}

	out.Infrastructure = make([]Infrastructure, len(l.Infrastructure))
	for i, s := range l.Infrastructure {
		s.Path = append([]Point(nil), s.Path...)
		if s.Width != nil {
			width := *s.Width
			s.Width = &width
		}
		out.Infrastructure[i] = s
	}
	return out
}

// ============================================================
// Project data contract
// ============================================================

// Project is the snapshot exchanged with the persistence collaborator.
type Project struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Levels           []Level `json:"levels"`
	ActiveLevelIndex int     `json:"activeLevelIndex"`
}

func (p Project) Clone() Project {
	out := p
	out.Levels = make([]Level, len(p.Levels))
	for i, l := range p.Levels {
		out.Levels[i] = l.Clone()
	}
	return out
}
