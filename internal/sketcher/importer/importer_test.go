package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floorplan-sketcher/internal/sketcher/models"
)

const boxPlan = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="500" height="400">
  <rect id="Wall_top" x="0" y="-5" width="200" height="10" />
  <rect id="Wall_bottom" x="0" y="95" width="200" height="10" />
  <g>
    <rect id="Wall_left" x="-5" y="0" width="10" height="100" />
    <rect id="Wall_right" x="195" y="0" width="10" height="100" />
  </g>
  <rect id="Door_1" x="80" y="-5" width="40" height="10" />
  <rect id="Window_1" x="195" y="40" width="10" height="20" />
  <rect id="Room_Kitchen" x="0" y="0" width="200" height="100" />
  <path id="Zone_commercial_1" d="M 300 0 L 400 0 L 400 100 Z" />
  <path id="Road_1" d="M 0 300 H 300" />
  <rect id="decoration" x="0" y="0" width="5" height="5" />
</svg>`

func findWall(t *testing.T, level models.Level, id string) models.Wall {
	t.Helper()
	w, idx := level.FindWall(id)
	require.GreaterOrEqual(t, idx, 0, id)
	return w
}

func TestImportBoxPlan(t *testing.T) {
	level, err := New(DefaultOptions()).Import(strings.NewReader(boxPlan), "Imported")
	require.NoError(t, err)

	assert.Equal(t, "Imported", level.Name)
	require.Len(t, level.Walls, 4)

	top := findWall(t, level, "Wall_top")
	assert.Equal(t, models.Point{X: 0, Y: 0}, top.Start())
	assert.Equal(t, models.Point{X: 200, Y: 0}, top.End())
	assert.Equal(t, 10.0, top.Thickness)
	assert.Equal(t, 240.0, top.Height)
	assert.Equal(t, "layer-1", top.LayerID)

	right := findWall(t, level, "Wall_right")
	assert.Equal(t, models.Point{X: 200, Y: 0}, right.Start())
	assert.Equal(t, models.Point{X: 200, Y: 100}, right.End())

	require.Len(t, level.Placements, 2)
	door := level.Placements[0]
	assert.Equal(t, models.PlacementDoor, door.Type)
	assert.Equal(t, "Wall_top", door.WallID)
	assert.InDelta(t, 0.5, door.PositionRatio, 1e-9)
	assert.InDelta(t, 40, door.Width, 1e-9)

	window := level.Placements[1]
	assert.Equal(t, "Wall_right", window.WallID)
	assert.InDelta(t, 0.5, window.PositionRatio, 1e-9)
	assert.InDelta(t, 20, window.Width, 1e-9)

	require.Len(t, level.Rooms, 1)
	room := level.Rooms[0]
	assert.Equal(t, "Kitchen", room.Name)
	assert.ElementsMatch(t, []string{"Wall_top", "Wall_bottom", "Wall_left", "Wall_right"}, room.WallIDs)
	require.NotNil(t, room.CalculatedArea)
	assert.InDelta(t, 20000, *room.CalculatedArea, 1e-9)

	require.Len(t, level.Zones, 1)
	assert.Equal(t, models.ZoneCommercial, level.Zones[0].Type)
	assert.Len(t, level.Zones[0].Path, 3)

	require.Len(t, level.Infrastructure, 1)
	assert.Equal(t, []models.Point{{X: 0, Y: 300}, {X: 300, Y: 300}}, level.Infrastructure[0].Path)
}

func TestImportSplitsAtJunctions(t *testing.T) {
	plan := `<svg>
  <rect id="Wall_a" x="0" y="-5" width="200" height="10" />
  <rect id="Wall_b" x="95" y="5" width="10" height="95" />
</svg>`

	level, err := New(DefaultOptions()).Import(strings.NewReader(plan), "T")
	require.NoError(t, err)
	require.Len(t, level.Walls, 3)

	left := findWall(t, level, "Wall_a_1")
	right := findWall(t, level, "Wall_a_2")
	stem := findWall(t, level, "Wall_b")

	assert.Equal(t, models.Point{X: 100, Y: 0}, left.End())
	assert.Equal(t, models.Point{X: 100, Y: 0}, right.Start())
	assert.Equal(t, models.Point{X: 100, Y: 0}, stem.Start(), "short wall end is pulled onto the joint")
}

func TestImportWithoutWalls(t *testing.T) {
	_, err := New(DefaultOptions()).Import(strings.NewReader(`<svg><rect id="Room_1" width="10" height="10"/></svg>`), "x")
	assert.ErrorIs(t, err, ErrNoWalls)

	_, err = New(DefaultOptions()).Import(strings.NewReader(`<svg><rect`), "x")
	assert.Error(t, err)
}

func TestParsePath(t *testing.T) {
	points, err := ParsePath("m 10,10 l 20 0 v 30 h -20 z")
	require.NoError(t, err)
	assert.Equal(t, []models.Point{
		{X: 10, Y: 10}, {X: 30, Y: 10}, {X: 30, Y: 40}, {X: 10, Y: 40}, {X: 10, Y: 10},
	}, points)

	points, err = ParsePath("M 0 0 L 10 0 20 0")
	require.NoError(t, err)
	assert.Len(t, points, 3)

	_, err = ParsePath("  ")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestClassifyElementByID(t *testing.T) {
	assert.Equal(t, KindRoom, classifyElementByID("Hall_room"))
	assert.Equal(t, KindWall, classifyElementByID("Wall_12"))
	assert.Equal(t, KindRoad, classifyElementByID("Road_main"))
	assert.Equal(t, ElementKind(""), classifyElementByID("decoration"))
	assert.Equal(t, models.ZoneGreenSpace, zoneType("Zone_green_space_2"))
	assert.Equal(t, models.ZoneOther, zoneType("Zone_parking"))
	assert.Equal(t, "Hall", roomName("Hall_room"))
}
