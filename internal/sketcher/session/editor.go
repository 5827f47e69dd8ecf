package session

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"floorplan-sketcher/internal/sketcher/collab"
	"floorplan-sketcher/internal/sketcher/document"
	"floorplan-sketcher/internal/sketcher/geometry"
	"floorplan-sketcher/internal/sketcher/history"
	"floorplan-sketcher/internal/sketcher/machine"
	"floorplan-sketcher/internal/sketcher/models"
	"floorplan-sketcher/internal/sketcher/propagate"
	"floorplan-sketcher/internal/sketcher/render"
)

var (
	ErrEventPanic = eris.New("session: event handler panicked")
	ErrReadOnly   = eris.New("session: session is read-only")
	ErrNoStore    = eris.New("session: no project store configured")
)

type Config struct {
	Machine          machine.Config
	JointEpsilon     float64
	UndoLimit        int
	CanvasWidth      float64
	CanvasHeight     float64
	ExportMultiplier float64
	// HitTolerance is in screen pixels.
	HitTolerance float64
}

func DefaultConfig() Config {
	return Config{
		Machine:          machine.DefaultConfig(),
		JointEpsilon:     1.0,
		UndoLimit:        100,
		CanvasWidth:      1200,
		CanvasHeight:     800,
		ExportMultiplier: 2,
		HitTolerance:     4,
	}
}

// Saver is the persistence collaborator.
type Saver interface {
	Save(ctx context.Context, project models.Project, message string) (int, error)
}

type Deps struct {
	Store    Saver
	Presence *collab.Bridge
	Logger   *zap.Logger
	// NewID overrides entity id generation.
	NewID func(prefix string) string
}

// Result is what one dispatched event changed.
type Result struct {
	Mode        string                   `json:"mode"`
	Tool        machine.Tool             `json:"tool"`
	Committed   []string                 `json:"committed,omitempty"`
	Selection   *models.ObjectRef        `json:"selection"`
	ContextMenu *machine.OpenContextMenu `json:"contextMenu,omitempty"`
	Viewport    render.Viewport          `json:"viewport"`
}

// ============================================================
// Editor
// ============================================================

// Editor is one user's view of a project. Its mutex is the event loop: every
// event, edit and render runs serialized, in arrival order.
type Editor struct {
	mu sync.Mutex

	cfg        Config
	doc        *document.Document
	history    *history.Stack
	machine    *machine.Machine
	state      machine.State
	propagator *propagate.Propagator
	renderer   *render.Renderer

	store    Saver
	bridge   *collab.Bridge
	logger   *zap.Logger
	readOnly bool

	selection  *models.ObjectRef
	fixPreview *render.FixPreview
}

func NewEditor(project models.Project, cfg Config, deps Deps, readOnly bool) *Editor {
	if deps.Logger == nil {
		deps.Logger = zap.L()
	}

	stack := history.NewStack(cfg.UndoLimit)
	e := &Editor{
		cfg:        cfg,
		history:    stack,
		machine:    machine.New(cfg.Machine),
		state:      machine.NewState(machine.ToolSelect),
		propagator: propagate.New(geometry.NewGrid(cfg.Machine.GridSize), cfg.JointEpsilon),
		renderer:   render.NewRenderer(cfg.Machine.GridSize),
		store:      deps.Store,
		bridge:     deps.Presence,
		logger:     deps.Logger.With(zap.String("project_id", project.ID)),
		readOnly:   readOnly,
	}
	e.doc = document.New(project, stack, document.Options{JointEpsilon: cfg.JointEpsilon, NewID: deps.NewID})
	return e
}

// Dispatch runs one input event through the state machine and applies the
// resulting effects. It never panics.
func (e *Editor) Dispatch(ev machine.Event) (res Result, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.recoverInto(&err, fmt.Sprintf("%T", ev))

	scene := e.sceneLocked()
	tolerance := e.cfg.HitTolerance / scene.Viewport.Zoom
	input := machine.Input{
		HitTest:  func(p models.Point) *models.ObjectRef { return scene.HitTest(p, tolerance) },
		ReadOnly: e.readOnly,
	}

	next, effects := e.machine.Transition(e.state, ev, input)
	e.state = next

	for _, eff := range effects {
		if id := e.apply(eff); id != "" {
			res.Committed = append(res.Committed, id)
		}
		if menu, ok := eff.(machine.OpenContextMenu); ok {
			res.ContextMenu = &menu
		}
	}

	res.Mode = e.state.Mode.String()
	res.Tool = e.state.Tool
	res.Selection = e.selection
	res.Viewport = e.state.Viewport
	return res, nil
}

// apply performs one effect and returns the id of anything it created.
// Gesture-level failures are logged and absorbed.
func (e *Editor) apply(eff machine.Effect) string {
	switch f := eff.(type) {
	case machine.CommitWall:
		wall, err := e.doc.AddWall(f.Start, f.End, f.Thickness, f.Height)
		if err != nil {
			e.logger.Debug("wall discarded", zap.Error(err))
			return ""
		}
		return wall.ID

	case machine.CommitInfrastructure:
		seg, err := e.doc.AddInfrastructure(f.Path, nil)
		if err != nil {
			e.logger.Debug("road discarded", zap.Error(err))
			return ""
		}
		return seg.ID

	case machine.CommitZone:
		zone, err := e.doc.AddZone(f.Type, f.Path)
		if err != nil {
			e.logger.Debug("zone discarded", zap.Error(err))
			return ""
		}
		return zone.ID

	case machine.CommitPlacement:
		p, err := e.doc.AddPlacement(f.WallID, f.Type, f.Pointer, f.Width, f.Height)
		if err != nil {
			e.logger.Debug("placement discarded", zap.Error(err))
			return ""
		}
		return p.ID

	case machine.CommitComment:
		return e.doc.AddComment(f.At, f.Text).ID

	case machine.Select:
		ref := f.Ref
		e.selection = &ref
		e.publishSelection()

	case machine.ClearSelection:
		if e.selection != nil {
			e.selection = nil
			e.publishSelection()
		}

	case machine.EmitCursor:
		if e.bridge != nil {
			e.bridge.CursorMoved(f.At)
		}

	case machine.MoveWall:
		if err := e.moveWallLocked(f.WallID, f.Start, f.End); err != nil {
			e.logger.Debug("wall move ignored", zap.String("wall_id", f.WallID), zap.Error(err))
		}
	}
	return ""
}

// moveWallLocked runs the propagator and commits the whole cascade as one
// undo entry.
func (e *Editor) moveWallLocked(id string, start, end models.Point) error {
	level := e.doc.ActiveLevel()
	cascade, err := e.propagator.Move(level.Walls, id, start, end)
	if err != nil {
		return err
	}
	if slices.Equal(level.Walls, cascade.Walls) {
		return nil
	}

	e.doc.ReplaceWalls(cascade.Walls)
	e.logger.Debug("wall moved", zap.String("wall_id", id), zap.Strings("affected", cascade.Affected))
	return nil
}

func (e *Editor) publishSelection() {
	if e.bridge != nil {
		e.bridge.SelectionChanged(e.selection)
	}
}

func (e *Editor) recoverInto(err *error, what string) {
	if r := recover(); r != nil {
		e.logger.Error("recovered from panic", zap.String("event", what), zap.Any("panic", r))
		*err = eris.Wrapf(ErrEventPanic, "%s: %v", what, r)
	}
}

// ============================================================
// Direct edits
// ============================================================

func (e *Editor) edit(fn func() error) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.recoverInto(&err, "edit")

	if e.readOnly {
		return ErrReadOnly
	}
	return fn()
}

func (e *Editor) MoveWall(id string, start, end models.Point) error {
	return e.edit(func() error { return e.moveWallLocked(id, start, end) })
}

func (e *Editor) DeleteWall(id string) error {
	return e.edit(func() error {
		if err := e.doc.DeleteWall(id); err != nil {
			return err
		}
		if e.selection != nil && e.selection.ID == id {
			e.selection = nil
			e.publishSelection()
		}
		return nil
	})
}

func (e *Editor) ResolveComment(id string, resolved bool) error {
	return e.edit(func() error { return e.doc.ResolveComment(id, resolved) })
}

func (e *Editor) AddRoom(name string, wallIDs []string) (room models.Room, err error) {
	err = e.edit(func() error {
		var err error
		room, err = e.doc.AddRoom(name, wallIDs)
		return err
	})
	return room, err
}

func (e *Editor) AddLevel(name string) (index int, err error) {
	err = e.edit(func() error {
		index = e.doc.AddLevel(e.doc.NewLevel(name))
		e.selection = nil
		return nil
	})
	return index, err
}

func (e *Editor) SetActiveLevel(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.doc.SetActiveLevel(index); err != nil {
		return err
	}
	e.selection = nil
	e.state, _ = e.machine.Transition(e.state, machine.ToolChanged{Tool: e.state.Tool}, machine.Input{})
	return nil
}

// SetFixPreview shows proposed walls dashed over the plan; nil hides them.
func (e *Editor) SetFixPreview(walls []models.Wall) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if walls == nil {
		e.fixPreview = nil
		return
	}
	e.fixPreview = &render.FixPreview{AddedWalls: append([]models.Wall(nil), walls...)}
}

// ApplyFixPreview commits the previewed walls as one undoable edit.
func (e *Editor) ApplyFixPreview() error {
	return e.edit(func() error {
		if e.fixPreview == nil || len(e.fixPreview.AddedWalls) == 0 {
			return nil
		}
		walls := e.doc.ActiveLevel().Walls
		for _, w := range e.fixPreview.AddedWalls {
			if w.Start() == w.End() {
				continue
			}
			if w.ID == "" {
				w.ID = "wall_" + uuid.NewString()
			}
			walls = append(walls, w)
		}
		e.doc.ReplaceWalls(walls)
		e.fixPreview = nil
		return nil
	})
}

// ============================================================
// History
// ============================================================

func (e *Editor) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev, ok := e.history.Undo(e.doc.Project())
	if ok {
		e.doc.Restore(prev)
		e.dropStaleSelection()
	}
	return ok
}

func (e *Editor) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, ok := e.history.Redo(e.doc.Project())
	if ok {
		e.doc.Restore(next)
		e.dropStaleSelection()
	}
	return ok
}

func (e *Editor) UndoDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.UndoDepth()
}

func (e *Editor) dropStaleSelection() {
	if e.selection == nil {
		return
	}
	if _, ok := e.sceneLocked().Tagged(e.selection.ID); !ok {
		e.selection = nil
		e.publishSelection()
	}
}

// ============================================================
// Views
// ============================================================

func (e *Editor) Project() models.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Project()
}

func (e *Editor) State() machine.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Editor) Selection() *models.ObjectRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selection == nil {
		return nil
	}
	ref := *e.selection
	return &ref
}

func (e *Editor) Scene() render.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sceneLocked()
}

func (e *Editor) Stats() geometry.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	level := e.doc.ActiveLevel()
	return geometry.LevelStats(&level, e.cfg.JointEpsilon)
}

func (e *Editor) SVG() string {
	return e.Scene().SVG()
}

func (e *Editor) ExportPNG() ([]byte, error) {
	return render.ExportPNG(e.Scene(), e.cfg.ExportMultiplier)
}

func (e *Editor) sceneLocked() render.Scene {
	level := e.doc.ActiveLevel()
	index := e.doc.ActiveLevelIndex()

	overlay := render.Overlay{
		Width:      e.cfg.CanvasWidth,
		Height:     e.cfg.CanvasHeight,
		Viewport:   e.state.Viewport,
		Preview:    e.state.Preview(),
		FixPreview: e.fixPreview,
	}
	if e.bridge != nil {
		overlay.LocalUserID = e.bridge.Self().UserID
		overlay.Cursors, overlay.Selections = e.bridge.Snapshot().Overlay(index)
	}
	return e.renderer.Render(&level, index, overlay)
}

// Presence returns the remote collaborators currently visible.
func (e *Editor) Presence() collab.Presence {
	if e.bridge == nil {
		return collab.Presence{Cursors: map[string]collab.LiveCursor{}, Selections: map[string]collab.LiveSelection{}}
	}
	return e.bridge.Snapshot()
}

// ============================================================
// Persistence
// ============================================================

// Save hands the current snapshot to the store. The store call runs outside
// the event loop so input keeps flowing while it is in flight.
func (e *Editor) Save(ctx context.Context, message string) (int, error) {
	if e.store == nil {
		return 0, ErrNoStore
	}
	if e.readOnly {
		return 0, ErrReadOnly
	}

	project := e.Project()
	version, err := e.store.Save(ctx, project, message)
	if err != nil {
		return 0, eris.Wrap(err, "save project")
	}
	e.logger.Info("project saved", zap.Int("version", version))
	return version, nil
}

// Close leaves the presence channel.
func (e *Editor) Close(ctx context.Context) {
	if e.bridge != nil {
		e.bridge.Leave(ctx)
	}
}
