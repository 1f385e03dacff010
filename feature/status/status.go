package status

import (
	"context"
	"errors"
	"net/http"

	"inventree-connect/core/logger"
	"inventree-connect/feature/cycle"
	"inventree-connect/feature/report"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"
)

// Cycles is what the status API needs from the cycle engine.
type Cycles interface {
	LastReport() *report.Report
	Running() bool
	Trigger(ctx context.Context) (string, error)
}

// Feature serves the cycle status, the cycle trigger and the metrics.
type Feature struct {
	ctx     context.Context
	cycles  Cycles
	metrics http.Handler
	logger  *zap.Logger
}

// NewFeature creates the status feature. Triggered cycles inherit ctx's values;
// metrics may be nil to leave /metrics unmounted.
func NewFeature(ctx context.Context, cycles Cycles, metrics http.Handler, l *zap.Logger) *Feature {
	return &Feature{ctx: ctx, cycles: cycles, metrics: metrics, logger: l.Named("status")}
}

// Name implements loader.Feature.
func (f *Feature) Name() string { return "status" }

// IsEnabled implements loader.Feature.
func (f *Feature) IsEnabled() bool { return f.cycles != nil }

// Load implements loader.Feature.
func (f *Feature) Load(app fiber.Router) error {
	app.Get("/status", f.handleStatus)
	app.Post("/cycle", f.handleTrigger)
	if f.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(f.metrics))
	}
	return nil
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Running    bool           `json:"running"`
	LastReport *report.Report `json:"last_report"`
}

func (f *Feature) handleStatus(c *fiber.Ctx) error {
	return c.JSON(StatusResponse{
		Running:    f.cycles.Running(),
		LastReport: f.cycles.LastReport(),
	})
}

func (f *Feature) handleTrigger(c *fiber.Ctx) error {
	l := logger.WithRayID(f.logger, c)

	id, err := f.cycles.Trigger(f.ctx)
	if errors.Is(err, cycle.ErrCycleRunning) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Cycle trigger failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Cycle triggered", zap.String("cycle_id", id))
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"cycle_id": id})
}
