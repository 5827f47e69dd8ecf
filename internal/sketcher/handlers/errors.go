package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"floorplan-sketcher/internal/sketcher/document"
	"floorplan-sketcher/internal/sketcher/importer"
	"floorplan-sketcher/internal/sketcher/propagate"
	"floorplan-sketcher/internal/sketcher/render"
	"floorplan-sketcher/internal/sketcher/session"
	"floorplan-sketcher/internal/sketcher/store"
)

// ============================================================
// Error mapping
// ============================================================

var statusBySentinel = []struct {
	err    error
	status int
}{
	{store.ErrProjectNotFound, fiber.StatusNotFound},
	{store.ErrVersionNotFound, fiber.StatusNotFound},
	{session.ErrSessionNotFound, fiber.StatusNotFound},
	{document.ErrWallNotFound, fiber.StatusNotFound},
	{document.ErrCommentNotFound, fiber.StatusNotFound},
	{propagate.ErrWallNotFound, fiber.StatusNotFound},
	{propagate.ErrCollapsedWall, fiber.StatusBadRequest},
	{session.ErrReadOnly, fiber.StatusForbidden},
	{store.ErrEmptyName, fiber.StatusBadRequest},
	{document.ErrLevelOutOfRange, fiber.StatusBadRequest},
	{document.ErrDegenerateZone, fiber.StatusBadRequest},
	{document.ErrDegeneratePath, fiber.StatusBadRequest},
	{document.ErrZeroLengthWall, fiber.StatusBadRequest},
	{document.ErrUnknownPlacement, fiber.StatusBadRequest},
	{importer.ErrNoWalls, fiber.StatusBadRequest},
	{importer.ErrEmptyPath, fiber.StatusBadRequest},
	{importer.ErrBadSVG, fiber.StatusBadRequest},
	{render.ErrEmptyCanvas, fiber.StatusBadRequest},
	{errBadEvent, fiber.StatusBadRequest},
}

func statusFor(err error) int {
	for _, s := range statusBySentinel {
		if eris.Is(err, s.err) {
			return s.status
		}
	}
	return fiber.StatusInternalServerError
}

// fail writes {"error": ...} with the status matching err. Unexpected errors
// are logged with their full chain and reported without internals.
func fail(c fiber.Ctx, log *zap.Logger, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("path", c.Path()),
			zap.String("error", eris.ToString(err, true)),
		)
		return c.Status(status).JSON(fiber.Map{"error": "internal error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
