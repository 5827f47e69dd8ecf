package document

import (
	"slices"

	"github.com/rotisserie/eris"

	"floorplan-sketcher/internal/sketcher/geometry"
	"floorplan-sketcher/internal/sketcher/models"
)

// ============================================================
// Walls
// ============================================================

func (d *Document) AddWall(start, end models.Point, thickness, height float64) (wall models.Wall, err error) {
	if start == end {
		return models.Wall{}, ErrZeroLengthWall
	}

	err = d.mutate(func(level *models.Level) error {
		wall = models.Wall{
			ID:        d.opts.NewID("wall"),
			X1:        start.X,
			Y1:        start.Y,
			X2:        end.X,
			Y2:        end.Y,
			Thickness: thickness,
			Height:    height,
			LayerID:   level.ActiveLayerID,
		}
		level.Walls = append(level.Walls, wall)
		return nil
	})
	return wall, err
}

// ReplaceWalls swaps in a full wall collection computed elsewhere (a
// propagation cascade) as one undoable edit.
func (d *Document) ReplaceWalls(walls []models.Wall) {
	_ = d.mutate(func(level *models.Level) error {
		level.Walls = append([]models.Wall(nil), walls...)
		d.recalculateRooms(level)
		return nil
	})
}

// DeleteWall removes the wall and cascades to the placements that reference
// it; rooms drop the id from their boundary.
func (d *Document) DeleteWall(id string) error {
	return d.mutate(func(level *models.Level) error {
		if _, idx := level.FindWall(id); idx < 0 {
			return eris.Wrapf(ErrWallNotFound, "id %s", id)
		}
		level.Walls = slices.DeleteFunc(level.Walls, func(w models.Wall) bool { return w.ID == id })
		level.Placements = slices.DeleteFunc(level.Placements, func(p models.Placement) bool { return p.WallID == id })
		for i := range level.Rooms {
			level.Rooms[i].WallIDs = slices.DeleteFunc(level.Rooms[i].WallIDs, func(w string) bool { return w == id })
			level.Rooms[i].CalculatedArea = nil
		}
		d.recalculateRooms(level)
		return nil
	})
}

// ============================================================
// Placements, comments, zones, infrastructure, rooms
// ============================================================

// AddPlacement attaches a door/window to a wall at the ratio computed from
// the pointer. The ratio is clamped to [0,1].
func (d *Document) AddPlacement(wallID string, kind models.PlacementType, pointer models.Point, width, height float64) (placement models.Placement, err error) {
	if kind != models.PlacementDoor && kind != models.PlacementWindow {
		return models.Placement{}, eris.Wrapf(ErrUnknownPlacement, "type %q", kind)
	}

	err = d.mutate(func(level *models.Level) error {
		wall, idx := level.FindWall(wallID)
		if idx < 0 {
			return eris.Wrapf(ErrWallNotFound, "id %s", wallID)
		}
		ratio, ok := geometry.ProjectionRatio(wall, pointer)
		if !ok {
			return eris.Wrapf(ErrZeroLengthWall, "id %s", wallID)
		}
		placement = models.Placement{
			ID:            d.opts.NewID("placement"),
			WallID:        wallID,
			PositionRatio: geometry.Clamp(ratio, 0, 1),
			Type:          kind,
			Width:         width,
			Height:        height,
		}
		level.Placements = append(level.Placements, placement)
		return nil
	})
	return placement, err
}

func (d *Document) AddComment(at models.Point, text string) (comment models.Comment) {
	_ = d.mutate(func(level *models.Level) error {
		comment = models.Comment{ID: d.opts.NewID("comment"), X: at.X, Y: at.Y, Text: text}
		level.Comments = append(level.Comments, comment)
		return nil
	})
	return comment
}

func (d *Document) ResolveComment(id string, resolved bool) error {
	return d.mutate(func(level *models.Level) error {
		idx := slices.IndexFunc(level.Comments, func(c models.Comment) bool { return c.ID == id })
		if idx < 0 {
			return eris.Wrapf(ErrCommentNotFound, "id %s", id)
		}
		level.Comments[idx].Resolved = resolved
		return nil
	})
}

func (d *Document) AddZone(kind models.ZoneType, path []models.Point) (zone models.Zone, err error) {
	if len(path) < 3 {
		return models.Zone{}, ErrDegenerateZone
	}

	err = d.mutate(func(level *models.Level) error {
		zone = models.Zone{ID: d.opts.NewID("zone"), Type: kind, Path: append([]models.Point(nil), path...)}
		level.Zones = append(level.Zones, zone)
		return nil
	})
	return zone, err
}

func (d *Document) AddInfrastructure(path []models.Point, width *float64) (segment models.Infrastructure, err error) {
	if len(path) < 2 {
		return models.Infrastructure{}, ErrDegeneratePath
	}

	err = d.mutate(func(level *models.Level) error {
		segment = models.Infrastructure{ID: d.opts.NewID("infra"), Path: append([]models.Point(nil), path...), Width: width}
		level.Infrastructure = append(level.Infrastructure, segment)
		return nil
	})
	return segment, err
}

// AddRoom registers a room bounded by the given walls; its area is filled in
// when the walls close a loop.
func (d *Document) AddRoom(name string, wallIDs []string) (room models.Room, err error) {
	err = d.mutate(func(level *models.Level) error {
		for _, id := range wallIDs {
			if _, idx := level.FindWall(id); idx < 0 {
				return eris.Wrapf(ErrWallNotFound, "id %s", id)
			}
		}
		room = models.Room{ID: d.opts.NewID("room"), Name: name, WallIDs: append([]string(nil), wallIDs...)}
		if area, ok := geometry.RoomArea(level, room, d.opts.JointEpsilon); ok {
			room.CalculatedArea = &area
		}
		level.Rooms = append(level.Rooms, room)
		return nil
	})
	return room, err
}
