package handlers

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"floorplan-sketcher/internal/sketcher/document"
	"floorplan-sketcher/internal/sketcher/importer"
	"floorplan-sketcher/internal/sketcher/models"
	"floorplan-sketcher/internal/sketcher/render"
	"floorplan-sketcher/internal/sketcher/store"
)

// ProjectRepository is the persistence surface the handlers need.
type ProjectRepository interface {
	Create(ctx context.Context, project models.Project) (models.Project, error)
	Save(ctx context.Context, project models.Project, message string) (int, error)
	Load(ctx context.Context, id string) (models.Project, error)
	LoadVersion(ctx context.Context, id string, version int) (models.Project, error)
	ListVersions(ctx context.Context, id string) ([]store.Version, error)
	ListProjects(ctx context.Context) ([]store.Summary, error)
}

// ============================================================
// Project Handler
// ============================================================

type ProjectHandler struct {
	repo         ProjectRepository
	importer     *importer.Importer
	renderer     *render.Renderer
	jointEpsilon float64
	canvas       render.Overlay
	log          *zap.Logger
}

// ProjectOptions carries the editor constants the stateless routes use.
type ProjectOptions struct {
	Importer     importer.Options
	JointEpsilon float64
	CanvasWidth  float64
	CanvasHeight float64
}

func NewProjectHandler(repo ProjectRepository, opts ProjectOptions, log *zap.Logger) *ProjectHandler {
	if log == nil {
		log = zap.L()
	}
	return &ProjectHandler{
		repo:         repo,
		importer:     importer.New(opts.Importer),
		renderer:     render.NewRenderer(opts.Importer.GridSize),
		jointEpsilon: opts.JointEpsilon,
		canvas: render.Overlay{
			Width:    opts.CanvasWidth,
			Height:   opts.CanvasHeight,
			Viewport: render.Viewport{Zoom: 1},
		},
		log: log,
	}
}

type createProjectRequest struct {
	Name   string         `json:"name"`
	Levels []models.Level `json:"levels"`
}

type saveProjectRequest struct {
	Project models.Project `json:"project"`
	Message string         `json:"message"`
}

// Create stores version 1 of a new project with one empty level unless
// levels are supplied.
func (h *ProjectHandler) Create(c fiber.Ctx) error {
	var req createProjectRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid json")
	}
	if strings.TrimSpace(req.Name) == "" {
		return badRequest(c, "name required")
	}

	doc := document.New(models.Project{
		ID:     uuid.NewString(),
		Name:   req.Name,
		Levels: req.Levels,
	}, nil, document.Options{JointEpsilon: h.jointEpsilon})

	project, err := h.repo.Create(c.Context(), doc.Project())
	if err != nil {
		return fail(c, h.log, err)
	}
	h.log.Info("project created", zap.String("project_id", project.ID))
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (h *ProjectHandler) List(c fiber.Ctx) error {
	projects, err := h.repo.ListProjects(c.Context())
	if err != nil {
		return fail(c, h.log, err)
	}
	if projects == nil {
		projects = []store.Summary{}
	}
	return c.JSON(fiber.Map{"projects": projects})
}

func (h *ProjectHandler) Get(c fiber.Ctx) error {
	project, err := h.repo.Load(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(project)
}

// Save appends a new version. The path id wins over the body's.
func (h *ProjectHandler) Save(c fiber.Ctx) error {
	var req saveProjectRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid json")
	}
	req.Project.ID = c.Params("id")

	version, err := h.repo.Save(c.Context(), req.Project, req.Message)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"id": req.Project.ID, "version": version})
}

func (h *ProjectHandler) Versions(c fiber.Ctx) error {
	versions, err := h.repo.ListVersions(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	if versions == nil {
		versions = []store.Version{}
	}
	return c.JSON(fiber.Map{"versions": versions})
}

func (h *ProjectHandler) Version(c fiber.Ctx) error {
	n, err := strconv.Atoi(c.Params("version"))
	if err != nil || n < 1 {
		return badRequest(c, "version must be a positive integer")
	}
	project, err := h.repo.LoadVersion(c.Context(), c.Params("id"), n)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(project)
}

// ============================================================
// Import & Render
// ============================================================

// Import converts an uploaded SVG into a new level, appends it to the project
// and saves a version.
func (h *ProjectHandler) Import(c fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file required in multipart/form-data")
	}

	f, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer f.Close()

	name := c.FormValue("name")
	if name == "" {
		name = strings.TrimSuffix(file.Filename, ".svg")
	}

	level, err := h.importer.Import(io.LimitReader(f, file.Size), name)
	if err != nil {
		return fail(c, h.log, err)
	}

	project, err := h.repo.Load(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	doc := document.New(project, nil, document.Options{JointEpsilon: h.jointEpsilon})
	index := doc.AddLevel(level)

	version, err := h.repo.Save(c.Context(), doc.Project(), "import "+file.Filename)
	if err != nil {
		return fail(c, h.log, err)
	}

	h.log.Info("level imported",
		zap.String("project_id", project.ID),
		zap.Int("walls", len(level.Walls)),
		zap.Int("placements", len(level.Placements)),
		zap.Int("rooms", len(level.Rooms)),
	)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"version":    version,
		"levelIndex": index,
		"level":      doc.Project().Levels[index],
	})
}

// Render draws a Level JSON body as SVG at zoom 1 without overlays.
func (h *ProjectHandler) Render(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return badRequest(c, "body required")
	}

	var level models.Level
	if err := json.Unmarshal(c.Body(), &level); err != nil {
		return badRequest(c, "invalid JSON payload")
	}

	scene := h.renderer.Render(&level, 0, h.canvas)
	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(scene.SVG())
}
