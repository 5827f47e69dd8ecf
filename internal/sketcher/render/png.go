package render

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/rotisserie/eris"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const canvasBackground = "#1e293b"

var ErrEmptyCanvas = eris.New("render: canvas has no area")

var (
	fontOnce sync.Once
	fontErr  error
	baseFont *truetype.Font
)

// ============================================================
// PNG export
// ============================================================

// ExportPNG rasterizes the scene at multiplier times the canvas resolution.
func ExportPNG(scene Scene, multiplier float64) ([]byte, error) {
	if multiplier <= 0 {
		multiplier = 1
	}

	w := int(math.Round(scene.Width * multiplier))
	h := int(math.Round(scene.Height * multiplier))
	if w <= 0 || h <= 0 {
		return nil, eris.Wrapf(ErrEmptyCanvas, "size %dx%d", w, h)
	}

	zoom := scene.Viewport.zoomOrOne()
	p := &painter{
		dc:    gg.NewContext(w, h),
		scale: zoom * multiplier,
		faces: map[float64]font.Face{},
	}

	p.dc.SetColor(mustColor(canvasBackground))
	p.dc.Clear()

	p.dc.Scale(multiplier, multiplier)
	p.dc.Translate(scene.Viewport.OffsetX, scene.Viewport.OffsetY)
	p.dc.Scale(zoom, zoom)

	for _, c := range scene.Commands {
		if err := p.draw(c); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := p.dc.EncodePNG(&buf); err != nil {
		return nil, eris.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}

// DataURL wraps PNG bytes the way a browser canvas export does.
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// ============================================================
// Painter
// ============================================================

type painter struct {
	dc *gg.Context
	// scale converts model units to device pixels for stroke widths and
	// fonts, which gg does not transform.
	scale float64
	// faces are cached per export; truetype faces are not safe to share.
	faces map[float64]font.Face
}

func (p *painter) draw(c Command) error {
	dc := p.dc

	switch c.Kind {
	case KindDot, KindCircle:
		dc.DrawCircle(c.Center.X, c.Center.Y, c.Radius)
		return p.paint(c.Style)

	case KindLine, KindPolyline:
		if len(c.Points) < 2 {
			return nil
		}
		dc.NewSubPath()
		dc.MoveTo(c.Points[0].X, c.Points[0].Y)
		for _, pt := range c.Points[1:] {
			dc.LineTo(pt.X, pt.Y)
		}
		dc.SetLineCap(gg.LineCapRound)
		dc.SetLineJoin(gg.LineJoinRound)
		return p.paint(c.Style)

	case KindRect:
		dc.Push()
		dc.RotateAbout(gg.Radians(c.Angle), c.Center.X, c.Center.Y)
		dc.DrawRectangle(c.Center.X-c.Width/2, c.Center.Y-c.Height/2, c.Width, c.Height)
		err := p.paint(c.Style)
		dc.Pop()
		return err

	case KindPolygon:
		if len(c.Points) < 3 {
			return nil
		}
		dc.NewSubPath()
		dc.MoveTo(c.Points[0].X, c.Points[0].Y)
		for _, pt := range c.Points[1:] {
			dc.LineTo(pt.X, pt.Y)
		}
		dc.ClosePath()
		return p.paint(c.Style)

	case KindText:
		return p.text(c)
	}
	return nil
}

// paint fills then strokes the current path.
func (p *painter) paint(style Style) error {
	dc := p.dc

	fill, hasFill, err := optionalColor(style.Fill)
	if err != nil {
		return err
	}
	stroke, hasStroke, err := optionalColor(style.Stroke)
	if err != nil {
		return err
	}

	if hasFill {
		dc.SetColor(fill)
		if hasStroke {
			dc.FillPreserve()
		} else {
			dc.Fill()
		}
	}
	if hasStroke {
		dc.SetColor(stroke)
		dc.SetLineWidth(math.Max(style.StrokeWidth*p.scale, 1))
		if len(style.Dash) > 0 {
			dashes := make([]float64, len(style.Dash))
			for i, d := range style.Dash {
				dashes[i] = d * p.scale
			}
			dc.SetDash(dashes...)
		}
		dc.Stroke()
		dc.SetDash()
	}
	dc.ClearPath()
	return nil
}

func (p *painter) text(c Command) error {
	dc := p.dc

	size := c.Style.FontSize
	if size <= 0 {
		size = 12
	}
	face, err := p.fontFace(size * p.scale)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	if c.Style.Background != "" {
		bg, err := ParseColor(c.Style.Background)
		if err != nil {
			return err
		}
		w, h := textBox(c.Text, size)
		dc.SetColor(bg)
		dc.DrawRectangle(c.Center.X-w/2, c.Center.Y-h/2, w, h)
		dc.Fill()
	}

	fill, ok, err := optionalColor(c.Style.Fill)
	if err != nil || !ok {
		return err
	}
	dc.SetColor(fill)

	lines := strings.Split(c.Text, "\n")
	lineHeight := size * 1.2
	top := c.Center.Y - float64(len(lines)-1)*lineHeight/2
	for i, line := range lines {
		dc.DrawStringAnchored(line, c.Center.X, top+float64(i)*lineHeight, 0.5, 0.5)
	}
	return nil
}

// ============================================================
// Helpers
// ============================================================

func optionalColor(s string) (color.NRGBA, bool, error) {
	if s == "" || s == "none" {
		return color.NRGBA{}, false, nil
	}
	c, err := ParseColor(s)
	if err != nil {
		return color.NRGBA{}, false, err
	}
	return c, true, nil
}

func mustColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (p *painter) fontFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		baseFont, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, eris.Wrap(fontErr, "parse font")
	}

	size = math.Max(math.Round(size*2)/2, 1)

	if face, ok := p.faces[size]; ok {
		return face, nil
	}
	face := truetype.NewFace(baseFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	p.faces[size] = face
	return face, nil
}
