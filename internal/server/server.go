package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/remitpay/remitpay/internal/config"
	"github.com/remitpay/remitpay/internal/routes"
)

// Server wraps the Fiber application accepting API traffic.
type Server struct {
	app *fiber.App
	cfg config.Config
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, deps routes.Deps) *Server {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	routes.Setup(app, deps)

	return &Server{app: app, cfg: cfg}
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
