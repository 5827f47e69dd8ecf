package collab

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"floorplan-sketcher/internal/sketcher/models"
)

type Kind string

const (
	KindCursor    Kind = "cursor"
	KindSelection Kind = "selection"
	KindLeave     Kind = "leave"
)

var ErrBadMessage = eris.New("collab: malformed presence message")

// Message is one presence event on a project channel.
type Message struct {
	Kind       Kind              `json:"kind"`
	ProjectID  string            `json:"projectId"`
	UserID     string            `json:"userId"`
	UserName   string            `json:"userName,omitempty"`
	X          float64           `json:"x,omitempty"`
	Y          float64           `json:"y,omitempty"`
	ObjectID   string            `json:"objectId,omitempty"`
	ObjectType models.EntityType `json:"type,omitempty"`
	LevelIndex int               `json:"levelIndex,omitempty"`
}

func (m Message) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, eris.Wrap(err, "encode presence message")
	}
	return data, nil
}

func DecodeMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, eris.Wrap(ErrBadMessage, err.Error())
	}
	if m.UserID == "" || m.ProjectID == "" {
		return Message{}, eris.Wrap(ErrBadMessage, "missing userId or projectId")
	}
	switch m.Kind {
	case KindCursor, KindSelection, KindLeave:
	default:
		return Message{}, eris.Wrapf(ErrBadMessage, "unknown kind %q", m.Kind)
	}
	return m, nil
}
