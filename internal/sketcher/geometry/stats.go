package geometry

import (
	"floorplan-sketcher/internal/sketcher/models"
)

// Stats summarizes the measurable quantities of one level.
type Stats struct {
	Walls        int     `json:"walls"`
	WallLength   float64 `json:"wallLength"`
	Rooms        int     `json:"rooms"`
	RoomArea     float64 `json:"roomArea"`
	Zones        int     `json:"zones"`
	ZoneArea     float64 `json:"zoneArea"`
	Roads        int     `json:"roads"`
	RoadLength   float64 `json:"roadLength"`
	Placements   int     `json:"placements"`
	OpenComments int     `json:"openComments"`
}

// LevelStats measures the level. Rooms whose walls do not close a loop count
// toward Rooms but not RoomArea.
func LevelStats(level *models.Level, eps float64) Stats {
	s := Stats{
		Walls:      len(level.Walls),
		Rooms:      len(level.Rooms),
		Zones:      len(level.Zones),
		Roads:      len(level.Infrastructure),
		Placements: len(level.Placements),
	}
	for _, w := range level.Walls {
		s.WallLength += WallLength(w)
	}
	for _, r := range level.Rooms {
		if area, ok := RoomArea(level, r, eps); ok {
			s.RoomArea += area
		}
	}
	for _, z := range level.Zones {
		s.ZoneArea += PolygonArea(z.Path)
	}
	for _, seg := range level.Infrastructure {
		s.RoadLength += PolylineLength(seg.Path)
	}
	for _, c := range level.Comments {
		if !c.Resolved {
			s.OpenComments++
		}
	}
	return s
}
