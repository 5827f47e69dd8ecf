package machine

import (
	"math"

	"floorplan-sketcher/internal/sketcher/geometry"
	"floorplan-sketcher/internal/sketcher/models"
	"floorplan-sketcher/internal/sketcher/render"
)

// Pan shifts the viewport origin by a raw screen delta.
func Pan(v render.Viewport, delta models.Point) render.Viewport {
	v.OffsetX += delta.X
	v.OffsetY += delta.Y
	return v
}

// ZoomAt scales the viewport by base^deltaY, clamped to [min, max], keeping
// the model point under the pointer fixed on screen.
func ZoomAt(v render.Viewport, screen models.Point, deltaY, base, min, max float64) render.Viewport {
	if v.Zoom <= 0 {
		v.Zoom = 1
	}

	anchor := v.ToModel(screen)
	zoom := geometry.Clamp(v.Zoom*math.Pow(base, deltaY), min, max)

	v.Zoom = zoom
	v.OffsetX = screen.X - anchor.X*zoom
	v.OffsetY = screen.Y - anchor.Y*zoom
	return v
}
