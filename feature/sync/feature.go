package sync

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"vendsync/core/scheduler"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the sync feature around an already wired service.
func NewFeature(service *Service, sched *scheduler.Scheduler, logger *zap.Logger) *Feature {
	return &Feature{
		service: service,
		handler: NewHandler(service, sched, logger),
	}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "sync"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service exposes the underlying service for the scheduler task and CLI.
func (f *Feature) Service() *Service {
	return f.service
}
