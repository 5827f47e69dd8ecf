package document

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"floorplan-sketcher/internal/sketcher/geometry"
	"floorplan-sketcher/internal/sketcher/models"
)

var (
	ErrWallNotFound     = eris.New("document: wall not found")
	ErrCommentNotFound  = eris.New("document: comment not found")
	ErrLevelOutOfRange  = eris.New("document: level index out of range")
	ErrDegenerateZone   = eris.New("document: zone needs at least three points")
	ErrDegeneratePath   = eris.New("document: infrastructure path needs at least two points")
	ErrZeroLengthWall   = eris.New("document: zero-length wall")
	ErrUnknownPlacement = eris.New("document: unknown placement type")
)

// UndoRecorder receives the pre-mutation snapshot before every atomic edit.
type UndoRecorder interface {
	PushToUndoStack(snapshot models.Project)
}

type Options struct {
	// JointEpsilon is used to detect closed wall loops for room areas.
	JointEpsilon float64
	// NewID generates entity ids; defaults to "<prefix>_<uuid>".
	NewID func(prefix string) string
}

// ============================================================
// Document
// ============================================================

// Document exclusively owns the level collections of one project. All writes
// go through its methods, each of which records one undo entry.
type Document struct {
	project models.Project
	undo    UndoRecorder
	opts    Options
}

func New(project models.Project, undo UndoRecorder, opts Options) *Document {
	if opts.NewID == nil {
		opts.NewID = func(prefix string) string { return prefix + "_" + uuid.NewString() }
	}
	if opts.JointEpsilon <= 0 {
		opts.JointEpsilon = 1.0
	}

	d := &Document{project: project.Clone(), undo: undo, opts: opts}
	if len(d.project.Levels) == 0 {
		d.project.Levels = []models.Level{d.NewLevel("Ground Floor")}
	}
	if d.project.ActiveLevelIndex < 0 || d.project.ActiveLevelIndex >= len(d.project.Levels) {
		d.project.ActiveLevelIndex = 0
	}
	return d
}

// NewLevel builds an empty level with one visible default layer.
func (d *Document) NewLevel(name string) models.Level {
	layerID := d.opts.NewID("layer")
	return models.Level{
		ID:            d.opts.NewID("level"),
		Name:          name,
		Layers:        []models.Layer{{ID: layerID, Name: "Default", Visible: true}},
		ActiveLayerID: layerID,
	}
}

// Project returns a deep copy of the current snapshot.
func (d *Document) Project() models.Project {
	return d.project.Clone()
}

func (d *Document) ActiveLevelIndex() int {
	return d.project.ActiveLevelIndex
}

// ActiveLevel returns a copy of the active level.
func (d *Document) ActiveLevel() models.Level {
	return d.project.Levels[d.project.ActiveLevelIndex].Clone()
}

func (d *Document) LevelCount() int {
	return len(d.project.Levels)
}

// SetActiveLevel is a view change, not a geometry edit: no undo entry.
func (d *Document) SetActiveLevel(index int) error {
	if index < 0 || index >= len(d.project.Levels) {
		return eris.Wrapf(ErrLevelOutOfRange, "index %d", index)
	}
	d.project.ActiveLevelIndex = index
	return nil
}

// Restore replaces the whole snapshot (undo/redo, reload). No undo entry.
func (d *Document) Restore(project models.Project) {
	d.project = project.Clone()
	if len(d.project.Levels) == 0 {
		d.project.Levels = []models.Level{d.NewLevel("Ground Floor")}
	}
	if d.project.ActiveLevelIndex < 0 || d.project.ActiveLevelIndex >= len(d.project.Levels) {
		d.project.ActiveLevelIndex = 0
	}
}

// AddLevel appends a level and makes it active.
func (d *Document) AddLevel(level models.Level) int {
	level = level.Clone()
	if level.ID == "" {
		level.ID = d.opts.NewID("level")
	}
	d.record()
	d.project.Levels = append(d.project.Levels, level)
	d.project.ActiveLevelIndex = len(d.project.Levels) - 1
	return d.project.ActiveLevelIndex
}

// ============================================================
// Internals
// ============================================================

// mutate runs fn on a copy of the active level. Only when fn returns
// without error or panic is one undo entry recorded and the copy swapped in.
func (d *Document) mutate(fn func(level *models.Level) error) error {
	level := d.project.Levels[d.project.ActiveLevelIndex].Clone()
	if err := fn(&level); err != nil {
		return err
	}
	d.record()
	d.project.Levels[d.project.ActiveLevelIndex] = level
	return nil
}

func (d *Document) record() {
	if d.undo != nil {
		d.undo.PushToUndoStack(d.project.Clone())
	}
}

func (d *Document) recalculateRooms(level *models.Level) {
	for i := range level.Rooms {
		if area, ok := geometry.RoomArea(level, level.Rooms[i], d.opts.JointEpsilon); ok {
			level.Rooms[i].CalculatedArea = &area
		}
	}
}
