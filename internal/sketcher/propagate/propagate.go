package propagate

import (
	"github.com/rotisserie/eris"

	"floorplan-sketcher/internal/sketcher/geometry"
	"floorplan-sketcher/internal/sketcher/models"
)

var (
	ErrWallNotFound  = eris.New("propagate: moved wall not found")
	ErrCollapsedWall = eris.New("propagate: move collapses a wall to zero length")
)

// ============================================================
// Constraint propagator
// ============================================================

// Propagator drags joined walls along when one wall is moved. Joints are not
// stored: two walls are joined where their endpoints lie within Epsilon.
type Propagator struct {
	Grid    geometry.Grid
	Epsilon float64
}

func New(grid geometry.Grid, epsilon float64) *Propagator {
	return &Propagator{Grid: grid, Epsilon: epsilon}
}

// Cascade is the outcome of one drag: the full updated wall collection plus
// the ids touched, moved wall first.
type Cascade struct {
	Walls    []models.Wall
	Affected []string
}

// Move finalizes a drag of wall movedID to the (unsnapped) endpoints start,
// end. The input slice is never modified; the result is applied by the caller
// as a single edit.
//
// Each other wall's endpoints are tested against the moved wall's original
// endpoints in a fixed order: its start against the moved start then the
// moved end, then its end against the moved start then the moved end. When an
// endpoint matches both, the later match wins.
//
// A move that leaves the moved wall or any joined wall with zero length is
// rejected with ErrCollapsedWall.
func (p *Propagator) Move(walls []models.Wall, movedID string, start, end models.Point) (Cascade, error) {
	movedIdx := -1
	for i, w := range walls {
		if w.ID == movedID {
			movedIdx = i
			break
		}
	}
	if movedIdx < 0 {
		return Cascade{}, eris.Wrapf(ErrWallNotFound, "id %s", movedID)
	}

	original := walls[movedIdx]
	origStart, origEnd := original.Start(), original.End()
	newStart, newEnd := p.Grid.Snap(start), p.Grid.Snap(end)

	d1 := newStart.Sub(origStart)
	d2 := newEnd.Sub(origEnd)

	out := append([]models.Wall(nil), walls...)
	out[movedIdx] = original.WithEndpoints(newStart, newEnd)
	cascade := Cascade{Walls: out, Affected: []string{movedID}}

	for i, w := range walls {
		if i == movedIdx {
			continue
		}

		s, e := w.Start(), w.End()
		nextStart, nextEnd := s, e
		touched := false

		if geometry.Coincident(s, origStart, p.Epsilon) {
			nextStart = s.Add(d1)
			touched = true
		}
		if geometry.Coincident(s, origEnd, p.Epsilon) {
			nextStart = s.Add(d2)
			touched = true
		}
		if geometry.Coincident(e, origStart, p.Epsilon) {
			nextEnd = e.Add(d1)
			touched = true
		}
		if geometry.Coincident(e, origEnd, p.Epsilon) {
			nextEnd = e.Add(d2)
			touched = true
		}

		if touched {
			out[i] = w.WithEndpoints(nextStart, nextEnd)
			cascade.Affected = append(cascade.Affected, w.ID)
		}
	}

	for i, w := range out {
		if (i == movedIdx || w != walls[i]) && w.Start() == w.End() {
			return Cascade{}, eris.Wrapf(ErrCollapsedWall, "id %s", w.ID)
		}
	}

	return cascade, nil
}

// Joined lists the walls whose endpoints coincide with either endpoint of
// wall id, in collection order.
func (p *Propagator) Joined(walls []models.Wall, id string) []string {
	var target *models.Wall
	for i := range walls {
		if walls[i].ID == id {
			target = &walls[i]
			break
		}
	}
	if target == nil {
		return nil
	}

	var out []string
	for _, w := range walls {
		if w.ID == id {
			continue
		}
		for _, a := range []models.Point{w.Start(), w.End()} {
			if geometry.Coincident(a, target.Start(), p.Epsilon) || geometry.Coincident(a, target.End(), p.Epsilon) {
				out = append(out, w.ID)
				break
			}
		}
	}
	return out
}
