package handlers

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"floorplan-sketcher/internal/sketcher/collab"
	"floorplan-sketcher/internal/sketcher/machine"
	"floorplan-sketcher/internal/sketcher/models"
	"floorplan-sketcher/internal/sketcher/render"
	"floorplan-sketcher/internal/sketcher/session"
)

// ============================================================
// Session Handler
// ============================================================

type SessionHandler struct {
	manager *session.Manager
	log     *zap.Logger
}

func NewSessionHandler(manager *session.Manager, log *zap.Logger) *SessionHandler {
	if log == nil {
		log = zap.L()
	}
	return &SessionHandler{manager: manager, log: log}
}

type openSessionRequest struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	ReadOnly bool   `json:"readOnly"`
}

// with resolves the :token path parameter before calling fn.
func (h *SessionHandler) with(fn func(c fiber.Ctx, e *session.Editor) error) fiber.Handler {
	return func(c fiber.Ctx) error {
		e, err := h.manager.Resolve(c.Params("token"))
		if err != nil {
			return fail(c, h.log, err)
		}
		return fn(c, e)
	}
}

func decodeBody(c fiber.Ctx, v any) bool {
	if len(c.Body()) == 0 {
		return false
	}
	return json.Unmarshal(c.Body(), v) == nil
}

func (h *SessionHandler) Open(c fiber.Ctx) error {
	var req openSessionRequest
	if len(c.Body()) > 0 && !decodeBody(c, &req) {
		return badRequest(c, "invalid json")
	}

	info, err := h.manager.Open(c.Context(), c.Params("id"), collab.Identity{
		UserID:   req.UserID,
		UserName: req.UserName,
	}, req.ReadOnly)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(info)
}

func (h *SessionHandler) Close(c fiber.Ctx) error {
	if err := h.manager.Close(c.Context(), c.Params("token")); err != nil {
		return fail(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ============================================================
// Input
// ============================================================

// Events dispatches one event object or an array of them in order. An array
// answers with the result of every event. Every event is validated before
// any is dispatched, so a bad entry rejects the whole batch.
func (h *SessionHandler) Events(c fiber.Ctx, e *session.Editor) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return badRequest(c, "body required")
	}

	var reqs []eventRequest
	batch := body[0] == '['
	if batch {
		if err := json.Unmarshal(body, &reqs); err != nil {
			return badRequest(c, "invalid json")
		}
	} else {
		var one eventRequest
		if err := json.Unmarshal(body, &one); err != nil {
			return badRequest(c, "invalid json")
		}
		reqs = []eventRequest{one}
	}

	events := make([]machine.Event, 0, len(reqs))
	for _, r := range reqs {
		ev, err := r.toEvent()
		if err != nil {
			return fail(c, h.log, err)
		}
		events = append(events, ev)
	}

	results := make([]session.Result, 0, len(events))
	for _, ev := range events {
		res, err := e.Dispatch(ev)
		if err != nil {
			return fail(c, h.log, err)
		}
		results = append(results, res)
	}

	if batch {
		return c.JSON(fiber.Map{"results": results})
	}
	return c.JSON(results[0])
}

// ============================================================
// Edits
// ============================================================

type moveWallRequest struct {
	Start models.Point `json:"start"`
	End   models.Point `json:"end"`
}

func (h *SessionHandler) MoveWall(c fiber.Ctx, e *session.Editor) error {
	var req moveWallRequest
	if !decodeBody(c, &req) {
		return badRequest(c, "invalid json")
	}
	if err := e.MoveWall(c.Params("wallId"), req.Start, req.End); err != nil {
		return fail(c, h.log, err)
	}
	p := e.Project()
	return c.JSON(p.Levels[p.ActiveLevelIndex].Walls)
}

func (h *SessionHandler) DeleteWall(c fiber.Ctx, e *session.Editor) error {
	if err := e.DeleteWall(c.Params("wallId")); err != nil {
		return fail(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type resolveCommentRequest struct {
	Resolved *bool `json:"resolved"`
}

// ResolveComment marks a comment resolved, or sets the given state.
func (h *SessionHandler) ResolveComment(c fiber.Ctx, e *session.Editor) error {
	resolved := true
	var req resolveCommentRequest
	if len(c.Body()) > 0 {
		if !decodeBody(c, &req) {
			return badRequest(c, "invalid json")
		}
		if req.Resolved != nil {
			resolved = *req.Resolved
		}
	}
	if err := e.ResolveComment(c.Params("commentId"), resolved); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"id": c.Params("commentId"), "resolved": resolved})
}

type addRoomRequest struct {
	Name    string   `json:"name"`
	WallIDs []string `json:"wallIds"`
}

func (h *SessionHandler) AddRoom(c fiber.Ctx, e *session.Editor) error {
	var req addRoomRequest
	if !decodeBody(c, &req) || req.Name == "" {
		return badRequest(c, "name and wallIds required")
	}
	room, err := e.AddRoom(req.Name, req.WallIDs)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

type fixPreviewRequest struct {
	Walls []models.Wall `json:"walls"`
}

// FixPreview shows proposed walls dashed over the plan. An empty list hides
// the preview.
func (h *SessionHandler) FixPreview(c fiber.Ctx, e *session.Editor) error {
	var req fixPreviewRequest
	if !decodeBody(c, &req) {
		return badRequest(c, "invalid json")
	}
	if len(req.Walls) == 0 {
		req.Walls = nil
	}
	e.SetFixPreview(req.Walls)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SessionHandler) ApplyFixPreview(c fiber.Ctx, e *session.Editor) error {
	if err := e.ApplyFixPreview(); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"undoDepth": e.UndoDepth()})
}

// ============================================================
// Levels & History
// ============================================================

type levelRequest struct {
	Index *int   `json:"index"`
	Name  string `json:"name"`
}

// SetLevel switches the active level.
func (h *SessionHandler) SetLevel(c fiber.Ctx, e *session.Editor) error {
	var req levelRequest
	if !decodeBody(c, &req) || req.Index == nil {
		return badRequest(c, "index required")
	}
	if err := e.SetActiveLevel(*req.Index); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"activeLevelIndex": *req.Index})
}

// AddLevel appends an empty level and makes it active.
func (h *SessionHandler) AddLevel(c fiber.Ctx, e *session.Editor) error {
	var req levelRequest
	if !decodeBody(c, &req) || req.Name == "" {
		return badRequest(c, "name required")
	}
	index, err := e.AddLevel(req.Name)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"activeLevelIndex": index})
}

func (h *SessionHandler) Undo(c fiber.Ctx, e *session.Editor) error {
	return c.JSON(fiber.Map{"applied": e.Undo(), "undoDepth": e.UndoDepth()})
}

func (h *SessionHandler) Redo(c fiber.Ctx, e *session.Editor) error {
	return c.JSON(fiber.Map{"applied": e.Redo(), "undoDepth": e.UndoDepth()})
}

type saveRequest struct {
	Message string `json:"message"`
}

func (h *SessionHandler) Save(c fiber.Ctx, e *session.Editor) error {
	var req saveRequest
	if len(c.Body()) > 0 && !decodeBody(c, &req) {
		return badRequest(c, "invalid json")
	}
	version, err := e.Save(c.Context(), req.Message)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"version": version})
}

// ============================================================
// Views
// ============================================================

func (h *SessionHandler) Project(c fiber.Ctx, e *session.Editor) error {
	return c.JSON(e.Project())
}

func (h *SessionHandler) Scene(c fiber.Ctx, e *session.Editor) error {
	return c.JSON(e.Scene())
}

func (h *SessionHandler) SceneSVG(c fiber.Ctx, e *session.Editor) error {
	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(e.SVG())
}

// ExportPNG returns image/png, or a data URL with ?format=dataurl.
func (h *SessionHandler) ExportPNG(c fiber.Ctx, e *session.Editor) error {
	png, err := e.ExportPNG()
	if err != nil {
		return fail(c, h.log, err)
	}
	if c.Query("format") == "dataurl" {
		return c.JSON(fiber.Map{"dataUrl": render.DataURL(png)})
	}
	c.Set("Content-Type", "image/png")
	return c.Send(png)
}

func (h *SessionHandler) Presence(c fiber.Ctx, e *session.Editor) error {
	return c.JSON(e.Presence())
}

func (h *SessionHandler) Stats(c fiber.Ctx, e *session.Editor) error {
	return c.JSON(e.Stats())
}
