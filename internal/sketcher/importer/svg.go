package importer

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// ============================================================
// XML Structures
// ============================================================

type svgDoc struct {
	XMLName xml.Name  `xml:"svg"`
	Rects   []svgRect `xml:"rect"`
	Paths   []svgPath `xml:"path"`
	Groups  []svgDoc  `xml:"g"`
}

type svgRect struct {
	ID     string  `xml:"id,attr"`
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

type svgPath struct {
	ID string `xml:"id,attr"`
	D  string `xml:"d,attr"`
}

// ============================================================
// Elements
// ============================================================

type ElementKind string

const (
	KindWall   ElementKind = "wall"
	KindDoor   ElementKind = "door"
	KindWindow ElementKind = "window"
	KindRoom   ElementKind = "room"
	KindZone   ElementKind = "zone"
	KindRoad   ElementKind = "road"
)

type Rect struct {
	X, Y, Width, Height float64
}

// Element это одна распознанная фигура. Задан ровно один из Rect или Path.
type Element struct {
	ID   string
	Kind ElementKind
	Rect *Rect
	Path string
}

var ErrBadSVG = eris.New("importer: malformed svg")

// ParseSVG извлекает элементы, чьи id следуют схеме именования плана.
// Нераспознанные фигуры пропускаются.
func ParseSVG(r io.Reader) ([]Element, error) {
	var doc svgDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, eris.Wrapf(ErrBadSVG, "decode svg: %v", err)
	}

	var elements []Element
	collect(&doc, &elements)
	return elements, nil
}

func collect(doc *svgDoc, out *[]Element) {
	for _, rect := range doc.Rects {
		kind := classifyElementByID(rect.ID)
		if kind == "" {
			continue
		}
		*out = append(*out, Element{
			ID:   rect.ID,
			Kind: kind,
			Rect: &Rect{X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height},
		})
	}

	for _, path := range doc.Paths {
		kind := classifyElementByID(path.ID)
		if kind == "" {
			continue
		}
		*out = append(*out, Element{ID: path.ID, Kind: kind, Path: path.D})
	}

	for i := range doc.Groups {
		collect(&doc.Groups[i], out)
	}
}

func classifyElementByID(id string) ElementKind {
	switch {
	case strings.HasPrefix(id, "Wall_"):
		return KindWall
	case strings.HasPrefix(id, "Door_"):
		return KindDoor
	case strings.HasPrefix(id, "Window_"):
		return KindWindow
	case strings.HasPrefix(id, "Room_"),
		strings.HasSuffix(id, "_room"), // Hall_room, Toilet_room
		strings.HasSuffix(id, "_Room"):
		return KindRoom
	case strings.HasPrefix(id, "Zone_"):
		return KindZone
	case strings.HasPrefix(id, "Road_"):
		return KindRoad
	}
	return ""
}
