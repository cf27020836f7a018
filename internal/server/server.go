// internal/server/server.go
package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	stderrors "newme-engine/internal/common/errors"
	"newme-engine/internal/common/logger"
	"newme-engine/internal/engine"
)

// Server is the engine's HTTP surface.
type Server struct {
	app    *fiber.App
	engine *engine.Engine
	logger logger.Logger
}

func New(eng *engine.Engine, readTimeout, writeTimeout time.Duration, log logger.Logger) *Server {
	s := &Server{
		engine: eng,
		logger: log.WithFields(map[string]interface{}{"component": "server"}),
	}

	s.app = fiber.New(fiber.Config{
		ErrorHandler:          s.handleError,
		ReadTimeout:           readTimeout,
		WriteTimeout:          writeTimeout,
		DisableStartupMessage: true,
	})
	s.registerRoutes()
	return s
}

// App exposes the underlying Fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(address string) error {
	return s.app.Listen(address)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api/tests")
	api.Post("/start", s.handleStart)
	api.Get("/history", s.handleHistory)
	api.Get("/sessions/:id", s.handleSession)
	api.Post("/sessions/:id/answers", s.handleAnswer)
	api.Post("/sessions/:id/navigate", s.handleNavigate)
	api.Post("/sessions/:id/restart", s.handleRestart)
	api.Post("/sessions/:id/submit", s.handleSubmit)
}

// handleError translates StandardError codes into HTTP statuses; anything
// else becomes an opaque 500.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	if fiberErr, ok := err.(*fiber.Error); ok {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiber.Map{"code": "HTTP_ERROR", "message": fiberErr.Message},
		})
	}

	stdErr := stderrors.Normalize(err)
	status := stderrors.HTTPStatus(stdErr)
	if status >= 500 {
		s.logger.Error("request failed", map[string]interface{}{
			"path":  c.Path(),
			"code":  string(stdErr.Code),
			"error": stdErr.Details,
		})
	}

	payload := fiber.Map{
		"code":      string(stdErr.Code),
		"message":   stdErr.Message,
		"retryable": stdErr.Retryable,
	}
	if len(stdErr.Metadata) > 0 {
		payload["metadata"] = stdErr.Metadata
	}
	return c.Status(status).JSON(fiber.Map{"error": payload})
}

// bearerToken extracts the caller's token; an absent or malformed header
// yields the empty token, which the access gate rejects.
func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
