package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docmark/internal/http/middleware"
	"docmark/internal/service"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouteOptions carries the settings routes need beyond the services.
type RouteOptions struct {
	JWTSecret     []byte
	MaxUploadSize int64
	UploadRPS     float64
	UploadBurst   int
	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Everything under /documents requires a bearer token; health and metrics do not.
func RegisterRoutes(app *fiber.App, db Pinger, docSvc service.DocumentService, hlSvc service.HighlightService, opt RouteOptions) {
	if opt.MaxUploadSize <= 0 {
		opt.MaxUploadSize = service.DefaultMaxUploadSize
	}
	gatherer := opt.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	docs := app.Group("/documents", middleware.Auth(opt.JWTSecret))
	docs.Get("", ListDocuments(docSvc))
	docs.Post("", middleware.RateLimit(opt.UploadRPS, opt.UploadBurst), UploadDocument(docSvc, opt.MaxUploadSize))
	docs.Get("/:id", GetDocument(docSvc))
	docs.Delete("/:id", DeleteDocument(docSvc))

	docs.Get("/:id/highlights", ListHighlights(hlSvc))
	docs.Post("/:id/highlights", AddHighlight(hlSvc))
	docs.Put("/:id/highlights/:hid", UpdateHighlight(hlSvc))
	docs.Delete("/:id/highlights/:hid", DeleteHighlight(hlSvc))
	docs.Post("/:id/pages/:page/locate", LocateHighlights(hlSvc))
}

// HealthCheck checks DB connectivity only.
//
//	@Summary	Readiness probe
//	@Tags		health
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	errorPayload
//	@Router		/health [get]
func HealthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a backward-compatible simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
