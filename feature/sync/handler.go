package sync

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"vendsync/core/logger"
	"vendsync/core/scheduler"
)

// Handler handles HTTP requests for the reconciliation feature.
type Handler struct {
	service *Service
	sched   *scheduler.Scheduler
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler. sched may be nil when the scheduler
// is disabled; the status endpoint then only reports run state.
func NewHandler(service *Service, sched *scheduler.Scheduler, log *zap.Logger) *Handler {
	return &Handler{service: service, sched: sched, logger: log}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/trigger", h.HandleTrigger)
	group.Get("/status", h.HandleStatus)
	group.Get("/history", h.HandleHistory)
	group.Get("/snapshot", h.HandleSnapshot)
	group.Delete("/snapshot", h.HandleDeleteSnapshot)
	group.Get("/references", h.HandleGetReferences)
	group.Put("/references", h.HandlePutReferences)
}

// HandleTrigger starts a run immediately. Returns 409 when one is in flight.
func (h *Handler) HandleTrigger(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	report, err := h.service.Run(c.Context(), "manual")
	if err != nil {
		if errors.Is(err, ErrBusy) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Manual sync trigger failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}

// HandleStatus reports the scheduler state and the last run summary.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	status := fiber.Map{
		"busy":    h.service.Busy(),
		"lastRun": h.service.LastReport(),
	}
	if h.sched != nil {
		status["scheduler"] = h.sched.Status()
	}
	return c.JSON(status)
}

// HandleHistory returns recent run records, newest first.
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	runs, err := h.service.History(c.QueryInt("limit", 20))
	if err != nil {
		if errors.Is(err, ErrNoDatabase) {
			return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Failed to load run history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"runs": runs})
}

// HandleSnapshot returns the persisted snapshot for this scope.
func (h *Handler) HandleSnapshot(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	snap, err := h.service.Snapshot(c.Context())
	if err != nil {
		l.Error("Failed to load snapshot", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(snap)
}

// HandleDeleteSnapshot discards the persisted snapshot for this scope.
func (h *Handler) HandleDeleteSnapshot(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	if err := h.service.ClearSnapshot(c.Context()); err != nil {
		l.Error("Failed to delete snapshot", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetReferences returns the tracked reference set.
func (h *Handler) HandleGetReferences(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	refs, err := h.service.References()
	if err != nil {
		l.Error("Failed to load tracked references", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"references": refs})
}

// HandlePutReferences replaces the tracked reference set.
func (h *Handler) HandlePutReferences(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var body struct {
		References []string `json:"references"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.service.ReplaceReferences(body.References); err != nil {
		if errors.Is(err, ErrNoDatabase) {
			return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Failed to replace tracked references", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	refs, err := h.service.References()
	if err != nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(fiber.Map{"references": refs})
}
