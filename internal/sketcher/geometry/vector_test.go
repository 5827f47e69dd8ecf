package geometry

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"floorplan-sketcher/internal/sketcher/models"
)

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func TestProjectionRatio(t *testing.T) {
	w := models.Wall{X1: 0, Y1: 0, X2: 100, Y2: 0}

	ratio, ok := ProjectionRatio(w, models.Point{X: 50, Y: 4})
	assert.True(t, ok)
	assert.InDelta(t, 0.5, ratio, 1e-9)

	_, ok = ProjectionRatio(models.Wall{X1: 5, Y1: 5, X2: 5, Y2: 5}, models.Point{X: 1, Y: 1})
	assert.False(t, ok)
}

func TestPointOnWallFollowsStretch(t *testing.T) {
	w := models.Wall{X1: 0, Y1: 0, X2: 100, Y2: 0}
	assert.Equal(t, models.Point{X: 50, Y: 0}, PointOnWall(w, 0.5))

	w.X2 = 200
	assert.Equal(t, models.Point{X: 100, Y: 0}, PointOnWall(w, 0.5))
}

func TestDistanceToSegment(t *testing.T) {
	d, tt := DistanceToSegment(models.Point{X: 50, Y: 3}, models.Point{X: 0, Y: 0}, models.Point{X: 100, Y: 0})
	assert.InDelta(t, 3, d, 1e-9)
	assert.InDelta(t, 0.5, tt, 1e-9)

	d, tt = DistanceToSegment(models.Point{X: -4, Y: 3}, models.Point{X: 0, Y: 0}, models.Point{X: 100, Y: 0})
	assert.InDelta(t, 5, d, 1e-9)
	assert.Zero(t, tt)
}

func TestPointInPolygon(t *testing.T) {
	square := []models.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	assert.True(t, PointInPolygon(models.Point{X: 5, Y: 5}, square))
	assert.False(t, PointInPolygon(models.Point{X: 15, Y: 5}, square))
	assert.False(t, PointInPolygon(models.Point{X: 1, Y: 1}, square[:2]))
}

func TestWallAngle(t *testing.T) {
	assert.InDelta(t, 90, WallAngle(models.Wall{X2: 0, Y2: 10}), 1e-9)
	assert.InDelta(t, 0, WallAngle(models.Wall{X2: 10}), 1e-9)
}
