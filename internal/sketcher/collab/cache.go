package collab

import (
	"hash/fnv"
	"sort"
	"sync"

	"floorplan-sketcher/internal/sketcher/render"
)

var palette = []string{
	"#ef4444", "#f97316", "#eab308", "#22c55e",
	"#06b6d4", "#3b82f6", "#8b5cf6", "#ec4899",
}

// ColorForUserID assigns a stable color per collaborator.
func ColorForUserID(userID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return palette[h.Sum32()%uint32(len(palette))]
}

type LiveCursor struct {
	UserID   string  `json:"userId"`
	UserName string  `json:"userName"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Color    string  `json:"color"`
}

type LiveSelection struct {
	UserID     string `json:"userId"`
	ObjectID   string `json:"objectId"`
	ObjectType string `json:"type,omitempty"`
	LevelIndex int    `json:"levelIndex"`
	Color      string `json:"color"`
}

// Presence is a point-in-time copy of the cache.
type Presence struct {
	Cursors    map[string]LiveCursor    `json:"liveCursors"`
	Selections map[string]LiveSelection `json:"liveSelections"`
}

// Overlay converts presence into renderer input, dropping selections made on
// other levels.
func (p Presence) Overlay(levelIndex int) ([]render.Cursor, []render.Selection) {
	cursors := make([]render.Cursor, 0, len(p.Cursors))
	for _, c := range p.Cursors {
		cursors = append(cursors, render.Cursor{UserID: c.UserID, UserName: c.UserName, X: c.X, Y: c.Y, Color: c.Color})
	}
	sort.Slice(cursors, func(i, j int) bool { return cursors[i].UserID < cursors[j].UserID })

	selections := make([]render.Selection, 0, len(p.Selections))
	for _, s := range p.Selections {
		if s.LevelIndex != levelIndex {
			continue
		}
		selections = append(selections, render.Selection{UserID: s.UserID, ObjectID: s.ObjectID, Color: s.Color})
	}
	sort.Slice(selections, func(i, j int) bool { return selections[i].UserID < selections[j].UserID })

	return cursors, selections
}

// ============================================================
// Cache
// ============================================================

// Cache holds the latest cursor and selection per remote user. Last write
// wins per userId.
type Cache struct {
	mu         sync.RWMutex
	cursors    map[string]LiveCursor
	selections map[string]LiveSelection
}

func NewCache() *Cache {
	return &Cache{
		cursors:    make(map[string]LiveCursor),
		selections: make(map[string]LiveSelection),
	}
}

func (c *Cache) Apply(m Message) {
	switch m.Kind {
	case KindCursor:
		c.mu.Lock()
		c.cursors[m.UserID] = LiveCursor{
			UserID:   m.UserID,
			UserName: m.UserName,
			X:        m.X,
			Y:        m.Y,
			Color:    ColorForUserID(m.UserID),
		}
		c.mu.Unlock()

	case KindSelection:
		c.mu.Lock()
		if m.ObjectID == "" {
			delete(c.selections, m.UserID)
		} else {
			c.selections[m.UserID] = LiveSelection{
				UserID:     m.UserID,
				ObjectID:   m.ObjectID,
				ObjectType: string(m.ObjectType),
				LevelIndex: m.LevelIndex,
				Color:      ColorForUserID(m.UserID),
			}
		}
		c.mu.Unlock()

	case KindLeave:
		c.Evict(m.UserID)
	}
}

func (c *Cache) Evict(userID string) {
	c.mu.Lock()
	delete(c.cursors, userID)
	delete(c.selections, userID)
	c.mu.Unlock()
}

// Snapshot copies the cache, leaving out excludeUserID.
func (c *Cache) Snapshot(excludeUserID string) Presence {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := Presence{
		Cursors:    make(map[string]LiveCursor, len(c.cursors)),
		Selections: make(map[string]LiveSelection, len(c.selections)),
	}
	for id, cur := range c.cursors {
		if id != excludeUserID {
			p.Cursors[id] = cur
		}
	}
	for id, sel := range c.selections {
		if id != excludeUserID {
			p.Selections[id] = sel
		}
	}
	return p
}
