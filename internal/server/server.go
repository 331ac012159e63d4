package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dylan-park/LastMile/internal/admin"
	"github.com/dylan-park/LastMile/internal/config"
	"github.com/dylan-park/LastMile/internal/maintenance"
	"github.com/dylan-park/LastMile/internal/session"
	"github.com/dylan-park/LastMile/internal/shift"
	"github.com/dylan-park/LastMile/internal/stats"
	"github.com/dylan-park/LastMile/internal/store"
)

type Server struct {
	App   *fiber.App
	Cfg   config.Config
	Store store.Provider
}

func NewServer(cfg config.Config, provider store.Provider) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:   app,
		Cfg:   cfg,
		Store: provider,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(s.Store.Health(c.Context()))
	})

	api := s.App.Group("/api", session.Middleware(s.Cfg.SessionSecret))

	shift.RegisterRoutes(api.Group("/shifts"), shift.NewService(s.Store))
	maintenance.RegisterRoutes(api.Group("/maintenance"), maintenance.NewService(s.Store))
	stats.RegisterRoutes(api.Group("/stats"), stats.NewService(s.Store))
	admin.RegisterRoutes(api.Group("/test"), s.Store)
}
