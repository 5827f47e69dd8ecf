package propagate

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floorplan-sketcher/internal/sketcher/geometry"
	"floorplan-sketcher/internal/sketcher/models"
)

func pt(x, y float64) models.Point { return models.Point{X: x, Y: y} }

func newPropagator() *Propagator {
	return New(geometry.NewGrid(10), 1.0)
}

func TestMoveDragsJoinedWall(t *testing.T) {
	walls := []models.Wall{
		{ID: "w1", X1: 0, Y1: 0, X2: 100, Y2: 0},
		{ID: "w2", X1: 100, Y1: 0, X2: 100, Y2: 100},
	}

	c, err := newPropagator().Move(walls, "w1", pt(0, 0), pt(108, 1))
	require.NoError(t, err)

	assert.Equal(t, pt(110, 0), c.Walls[0].End())
	assert.Equal(t, pt(110, 0), c.Walls[1].Start())
	assert.Equal(t, pt(100, 100), c.Walls[1].End())
	assert.Equal(t, []string{"w1", "w2"}, c.Affected)

	// input untouched
	assert.Equal(t, pt(100, 0), walls[0].End())
}

func TestMoveTranslatesEachEndpointByItsJoint(t *testing.T) {
	// w1 translated as a whole; w0 joins its start, w2 joins its end.
	walls := []models.Wall{
		{ID: "w0", X1: 0, Y1: -100, X2: 0, Y2: 0},
		{ID: "w1", X1: 0, Y1: 0, X2: 100, Y2: 0},
		{ID: "w2", X1: 100, Y1: 100, X2: 100, Y2: 0},
	}

	c, err := newPropagator().Move(walls, "w1", pt(0, 20), pt(100, 20))
	require.NoError(t, err)

	assert.Equal(t, pt(0, -100), c.Walls[0].Start())
	assert.Equal(t, pt(0, 20), c.Walls[0].End())
	assert.Equal(t, pt(100, 100), c.Walls[2].Start())
	assert.Equal(t, pt(100, 20), c.Walls[2].End())
}

func TestMoveIgnoresDistantEndpoints(t *testing.T) {
	walls := []models.Wall{
		{ID: "w1", X1: 0, Y1: 0, X2: 100, Y2: 0},
		{ID: "w2", X1: 101, Y1: 0, X2: 200, Y2: 0}, // 1.0 away: not joined
	}

	c, err := newPropagator().Move(walls, "w1", pt(0, 0), pt(50, 0))
	require.NoError(t, err)
	assert.Equal(t, walls[1], c.Walls[1])
	assert.Equal(t, []string{"w1"}, c.Affected)
}

func TestMoveDoubleMatchLaterWins(t *testing.T) {
	// w1 collapsed to a point: every endpoint of w2 at that point matches
	// both the moved start and the moved end. The end displacement wins.
	walls := []models.Wall{
		{ID: "w1", X1: 50, Y1: 50, X2: 50, Y2: 50},
		{ID: "w2", X1: 50, Y1: 50, X2: 0, Y2: 0},
	}

	c, err := newPropagator().Move(walls, "w1", pt(40, 50), pt(70, 50))
	require.NoError(t, err)
	assert.Equal(t, pt(70, 50), c.Walls[1].Start())
	assert.Equal(t, pt(0, 0), c.Walls[1].End())

	again, err := newPropagator().Move(walls, "w1", pt(40, 50), pt(70, 50))
	require.NoError(t, err)
	assert.Equal(t, c, again)
}

func TestMoveUnknownWall(t *testing.T) {
	_, err := newPropagator().Move(nil, "ghost", pt(0, 0), pt(1, 1))
	assert.True(t, eris.Is(err, ErrWallNotFound))
}

func TestMoveRejectsCollapsedWalls(t *testing.T) {
	walls := []models.Wall{
		{ID: "w1", X1: 0, Y1: 0, X2: 100, Y2: 0},
		{ID: "w2", X1: 100, Y1: 0, X2: 100, Y2: 100},
	}

	tests := []struct {
		name       string
		start, end models.Point
		collapsed  string
	}{
		{name: "moved wall snaps to a point", start: pt(0, 0), end: pt(2, 1), collapsed: "w1"},
		{name: "joined wall dragged onto its far end", start: pt(0, 0), end: pt(100, 100), collapsed: "w2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newPropagator().Move(walls, "w1", tt.start, tt.end)
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrCollapsedWall))
			assert.Contains(t, err.Error(), tt.collapsed)
			assert.Empty(t, c.Walls)
		})
	}

	assert.Equal(t, pt(100, 0), walls[0].End())
	assert.Equal(t, pt(100, 0), walls[1].Start())
}

func TestJoined(t *testing.T) {
	walls := []models.Wall{
		{ID: "a", X1: 0, Y1: 0, X2: 100, Y2: 0},
		{ID: "b", X1: 100, Y1: 0.5, X2: 100, Y2: 100},
		{ID: "c", X1: 300, Y1: 300, X2: 400, Y2: 300},
		{ID: "d", X1: 0, Y1: 100, X2: 0, Y2: 0},
	}
	assert.Equal(t, []string{"b", "d"}, newPropagator().Joined(walls, "a"))
	assert.Nil(t, newPropagator().Joined(walls, "zz"))
}
