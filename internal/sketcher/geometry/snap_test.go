package geometry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"floorplan-sketcher/internal/sketcher/models"
)

func TestSnapNearest(t *testing.T) {
	g := NewGrid(10)
	assert.Equal(t, models.Point{X: 10, Y: 30}, g.Snap(models.Point{X: 14, Y: 26}))
}

func TestSnapHalfBoundary(t *testing.T) {
	g := NewGrid(10)

	tests := []struct {
		in   models.Point
		want models.Point
	}{
		{models.Point{X: 15, Y: 25}, models.Point{X: 20, Y: 30}},
		{models.Point{X: -15, Y: -25}, models.Point{X: -10, Y: -20}},
		{models.Point{X: 4.999, Y: 5}, models.Point{X: 0, Y: 10}},
		{models.Point{X: -4, Y: -0.1}, models.Point{X: 0, Y: 0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.Snap(tt.in), "snap(%v)", tt.in)
	}
}

func TestSnapIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, size := range []float64{1, 5, 10, 25} {
		g := NewGrid(size)
		for i := 0; i < 500; i++ {
			p := models.Point{X: rng.Float64()*2000 - 1000, Y: rng.Float64()*2000 - 1000}
			once := g.Snap(p)
			assert.Equal(t, once, g.Snap(once))
			assert.True(t, g.IsAligned(once))
		}
	}
}

func TestSnapNoNegativeZero(t *testing.T) {
	p := NewGrid(10).Snap(models.Point{X: -0.2, Y: -3})
	assert.Equal(t, "0,0", formatPair(p))
}

func TestSnapZeroSizePassesThrough(t *testing.T) {
	p := models.Point{X: 3.3, Y: 4.4}
	assert.Equal(t, p, NewGrid(0).Snap(p))
}

func formatPair(p models.Point) string {
	return fmtFloat(p.X) + "," + fmtFloat(p.Y)
}
