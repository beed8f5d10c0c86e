package server

import (
	"github.com/MARDON1989/gearbox-live-telemetry/internal/bus"
	"github.com/MARDON1989/gearbox-live-telemetry/internal/config"
	"github.com/MARDON1989/gearbox-live-telemetry/internal/hub"
	"github.com/MARDON1989/gearbox-live-telemetry/internal/lap"
	"github.com/MARDON1989/gearbox-live-telemetry/internal/metrics"
	"github.com/MARDON1989/gearbox-live-telemetry/internal/session"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	App *fiber.App
	Cfg config.Config
	Hub *hub.Hub
}

func NewServer(cfg config.Config) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	promReg := prometheus.NewRegistry()
	b := bus.New(cfg.TelemetryBuffer, cfg.ControlBacklogWarn)
	h := hub.New(session.NewRegistry(), lap.NewLedger(), b, metrics.New(promReg), cfg.RecentLapsSnapshot)

	s := &Server{
		App: app,
		Cfg: cfg,
		Hub: h,
	}

	registerRoutes(s, promReg)
	return s
}

func registerRoutes(s *Server, promReg *prometheus.Registry) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))

	hub.RegisterRoutes(s.App, s.Hub)

	api := s.App.Group("/api")
	session.RegisterRoutes(api, s.Hub.Registry())
	lap.RegisterRoutes(api, s.Hub.Ledger())
	hub.RegisterAPIRoutes(api, s.Hub)
}
