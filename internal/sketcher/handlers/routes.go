package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Routes
// ============================================================

// Register mounts the sketcher API on the router.
func Register(r fiber.Router, health *Health, projects *ProjectHandler, sessions *SessionHandler) {
	r.Get("/health/live", health.Live)
	r.Get("/health/ready", health.Ready)

	r.Post("/render", projects.Render)

	p := r.Group("/projects")
	p.Post("/", projects.Create)
	p.Get("/", projects.List)
	p.Get("/:id", projects.Get)
	p.Put("/:id", projects.Save)
	p.Get("/:id/versions", projects.Versions)
	p.Get("/:id/versions/:version", projects.Version)
	p.Post("/:id/import", projects.Import)
	p.Post("/:id/sessions", sessions.Open)

	s := r.Group("/sessions/:token")
	s.Delete("/", sessions.Close)
	s.Post("/events", sessions.with(sessions.Events))
	s.Post("/undo", sessions.with(sessions.Undo))
	s.Post("/redo", sessions.with(sessions.Redo))
	s.Post("/save", sessions.with(sessions.Save))
	s.Post("/level", sessions.with(sessions.SetLevel))
	s.Post("/levels", sessions.with(sessions.AddLevel))
	s.Put("/walls/:wallId", sessions.with(sessions.MoveWall))
	s.Delete("/walls/:wallId", sessions.with(sessions.DeleteWall))
	s.Post("/comments/:commentId/resolve", sessions.with(sessions.ResolveComment))
	s.Post("/rooms", sessions.with(sessions.AddRoom))
	s.Put("/fix-preview", sessions.with(sessions.FixPreview))
	s.Post("/fix-preview/apply", sessions.with(sessions.ApplyFixPreview))
	s.Get("/project", sessions.with(sessions.Project))
	s.Get("/scene", sessions.with(sessions.Scene))
	s.Get("/scene.svg", sessions.with(sessions.SceneSVG))
	s.Get("/export.png", sessions.with(sessions.ExportPNG))
	s.Get("/presence", sessions.with(sessions.Presence))
	s.Get("/stats", sessions.with(sessions.Stats))
}
