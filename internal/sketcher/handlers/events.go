package handlers

import (
	"github.com/rotisserie/eris"

	"floorplan-sketcher/internal/sketcher/machine"
	"floorplan-sketcher/internal/sketcher/models"
)

// eventRequest is the wire form of one input event. Pointer coordinates are
// in screen space; drag endpoints are in model space.
type eventRequest struct {
	Type      string        `json:"type"`
	X         float64       `json:"x"`
	Y         float64       `json:"y"`
	Button    int           `json:"button"`
	Alt       bool          `json:"alt"`
	OffCanvas bool          `json:"offCanvas"`
	DeltaY    float64       `json:"deltaY"`
	Tool      string        `json:"tool"`
	WallID    string        `json:"wallId"`
	Start     *models.Point `json:"start"`
	End       *models.Point `json:"end"`
}

var errBadEvent = eris.New("bad event")

func (r eventRequest) toEvent() (machine.Event, error) {
	screen := models.Point{X: r.X, Y: r.Y}

	switch r.Type {
	case "pointerDown":
		return machine.PointerDown{Screen: screen, Button: machine.Button(r.Button), Alt: r.Alt}, nil
	case "pointerMove":
		return machine.PointerMove{Screen: screen}, nil
	case "pointerUp":
		return machine.PointerUp{Screen: screen, OffCanvas: r.OffCanvas}, nil
	case "wheel":
		return machine.Wheel{Screen: screen, DeltaY: r.DeltaY}, nil
	case "contextMenu":
		return machine.ContextMenu{Screen: screen}, nil
	case "toolChanged":
		tool := machine.Tool(r.Tool)
		if !tool.Valid() {
			return nil, eris.Wrapf(errBadEvent, "unknown tool %q", r.Tool)
		}
		return machine.ToolChanged{Tool: tool}, nil
	case "wallDragged":
		if r.WallID == "" || r.Start == nil || r.End == nil {
			return nil, eris.Wrap(errBadEvent, "wallDragged needs wallId, start and end")
		}
		return machine.WallDragged{WallID: r.WallID, Start: *r.Start, End: *r.End}, nil
	}
	return nil, eris.Wrapf(errBadEvent, "unknown event type %q", r.Type)
}
