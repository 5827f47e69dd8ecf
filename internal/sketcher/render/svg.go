package render

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"floorplan-sketcher/internal/sketcher/models"
)

// ============================================================
// SVG output
// ============================================================

// SVG serializes a scene. The viewBox is the visible model rectangle, so the
// document matches what the canvas shows.
func (s Scene) SVG() string {
	z := s.Viewport.zoomOrOne()
	minX := -s.Viewport.OffsetX / z
	minY := -s.Viewport.OffsetY / z

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s">`,
		formatFloat(s.Width), formatFloat(s.Height),
		formatFloat(minX), formatFloat(minY), formatFloat(s.Width/z), formatFloat(s.Height/z)))
	builder.WriteString("\n")

	for _, c := range s.Commands {
		elem := c.svgElement()
		if elem == "" {
			continue
		}
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String()
}

func (c Command) svgElement() string {
	attrs := c.svgAttrs()

	switch c.Kind {
	case KindDot, KindCircle:
		return fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s"%s />`,
			formatFloat(c.Center.X), formatFloat(c.Center.Y), formatFloat(c.Radius), attrs)

	case KindLine:
		if len(c.Points) < 2 {
			return ""
		}
		a, b := c.Points[0], c.Points[1]
		return fmt.Sprintf(`<line x1="%s" y1="%s" x2="%s" y2="%s"%s />`,
			formatFloat(a.X), formatFloat(a.Y), formatFloat(b.X), formatFloat(b.Y), attrs)

	case KindRect:
		return fmt.Sprintf(`<path d="%s"%s />`,
			pathData(rectanglePoints(c.Center.X, c.Center.Y, c.Width, c.Height, c.Angle), true), attrs)

	case KindPolygon:
		if len(c.Points) < 3 {
			return ""
		}
		return fmt.Sprintf(`<path d="%s"%s />`, pathData(c.Points, true), attrs)

	case KindPolyline:
		if len(c.Points) < 2 {
			return ""
		}
		return fmt.Sprintf(`<path d="%s"%s />`, pathData(c.Points, false), attrs)

	case KindText:
		return c.svgText(attrs)
	}
	return ""
}

func (c Command) svgAttrs() string {
	var b strings.Builder
	if c.Tag != nil {
		fmt.Fprintf(&b, ` data-id="%s" data-type="%s"`, html.EscapeString(c.Tag.ID), c.Tag.Type)
	}

	fill := c.Style.Fill
	if fill == "" {
		fill = "none"
	}
	fmt.Fprintf(&b, ` fill="%s"`, fill)

	if c.Style.Stroke != "" && c.Kind != KindText {
		fmt.Fprintf(&b, ` stroke="%s" stroke-width="%s"`, c.Style.Stroke, formatFloat(c.Style.StrokeWidth))
		if c.Kind == KindPolyline || c.Kind == KindLine {
			b.WriteString(` stroke-linecap="round" stroke-linejoin="round"`)
		}
	}
	if len(c.Style.Dash) > 0 {
		parts := make([]string, len(c.Style.Dash))
		for i, d := range c.Style.Dash {
			parts[i] = formatFloat(d)
		}
		fmt.Fprintf(&b, ` stroke-dasharray="%s"`, strings.Join(parts, " "))
	}
	return b.String()
}

func (c Command) svgText(attrs string) string {
	size := c.Style.FontSize
	if size <= 0 {
		size = 12
	}

	lines := strings.Split(c.Text, "\n")
	var b strings.Builder

	if c.Style.Background != "" {
		w, h := textBox(c.Text, size)
		fmt.Fprintf(&b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s" /> `,
			formatFloat(c.Center.X-w/2), formatFloat(c.Center.Y-h/2), formatFloat(w), formatFloat(h), c.Style.Background)
	}

	top := c.Center.Y - float64(len(lines)-1)*size*1.2/2
	fmt.Fprintf(&b, `<text x="%s" y="%s" font-size="%s" text-anchor="middle" dominant-baseline="middle"%s>`,
		formatFloat(c.Center.X), formatFloat(top), formatFloat(size), attrs)
	for i, line := range lines {
		if i == 0 {
			b.WriteString(html.EscapeString(line))
			continue
		}
		fmt.Fprintf(&b, `<tspan x="%s" dy="%s">%s</tspan>`,
			formatFloat(c.Center.X), formatFloat(size*1.2), html.EscapeString(line))
	}
	b.WriteString(`</text>`)
	return b.String()
}

// ============================================================
// Geometry helpers
// ============================================================

func pathData(points []models.Point, closed bool) string {
	var path strings.Builder
	path.WriteString("M ")
	path.WriteString(formatPoint(points[0]))
	for _, p := range points[1:] {
		path.WriteString(" L ")
		path.WriteString(formatPoint(p))
	}
	if closed {
		path.WriteString(" Z")
	}
	return path.String()
}

func rectanglePoints(cx, cy, width, height, rotationDeg float64) []models.Point {
	halfW := width / 2
	halfH := height / 2

	points := []models.Point{
		{X: cx - halfW, Y: cy - halfH},
		{X: cx + halfW, Y: cy - halfH},
		{X: cx + halfW, Y: cy + halfH},
		{X: cx - halfW, Y: cy + halfH},
	}

	if rotationDeg == 0 {
		return points
	}

	rad := rotationDeg * math.Pi / 180
	sin := math.Sin(rad)
	cos := math.Cos(rad)

	for i, p := range points {
		dx := p.X - cx
		dy := p.Y - cy
		points[i] = models.Point{
			X: cx + dx*cos - dy*sin,
			Y: cy + dx*sin + dy*cos,
		}
	}

	return points
}

// ============================================================
// Formatting helpers
// ============================================================

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func formatPoint(p models.Point) string {
	return formatFloat(p.X) + " " + formatFloat(p.Y)
}
