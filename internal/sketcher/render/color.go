package render

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

var ErrBadColor = eris.New("render: unsupported color")

// ParseColor understands "#rgb", "#rrggbb", "rgb(...)" and "rgba(...)".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))

	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgba("):len(s)-1], 4)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgb("):len(s)-1], 3)
	}
	return color.NRGBA{}, eris.Wrapf(ErrBadColor, "color %q", s)
}

func parseHex(h string) (color.NRGBA, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.NRGBA{}, eris.Wrapf(ErrBadColor, "hex %q", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, eris.Wrapf(ErrBadColor, "hex %q", h)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func parseFunc(body string, n int) (color.NRGBA, error) {
	parts := strings.Split(body, ",")
	if len(parts) != n {
		return color.NRGBA{}, eris.Wrapf(ErrBadColor, "components %q", body)
	}

	var vals [4]float64
	vals[3] = 1
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return color.NRGBA{}, eris.Wrapf(ErrBadColor, "component %q", part)
		}
		vals[i] = f
	}

	return color.NRGBA{
		R: channel(vals[0]),
		G: channel(vals[1]),
		B: channel(vals[2]),
		A: channel(vals[3] * 255),
	}, nil
}

func channel(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
