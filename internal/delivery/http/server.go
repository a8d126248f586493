package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"go.uber.org/zap"

	"github.com/siteintel-service/internal/config"
	"github.com/siteintel-service/internal/delivery/http/handler"
	"github.com/siteintel-service/internal/delivery/http/middleware"
	"github.com/siteintel-service/internal/pkg/errors"
	"github.com/siteintel-service/internal/pkg/utils"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	intelligenceHandler *handler.IntelligenceHandler
	placesHandler       *handler.PlacesHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	intelligenceHandler *handler.IntelligenceHandler,
	placesHandler *handler.PlacesHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "SiteIntel Microservice",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:                 app,
		config:              cfg,
		logger:              logger,
		intelligenceHandler: intelligenceHandler,
		placesHandler:       placesHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Полный пайплайн: агрегация + скоринг + рекомендация
	api.Get("/intelligence", s.intelligenceHandler.GetIntelligence)

	// Приблизительный результат из ward-кеша
	api.Get("/intelligence/cached", s.intelligenceHandler.GetCachedIntelligence)

	// Интерактивный текстовый поиск мест
	api.Get("/places/search", s.placesHandler.TextSearch)
}

// Start запускает HTTP сервер
func (s *Server) Start() error {
	return s.app.Listen(s.config.GetServerAddr())
}

// Shutdown останавливает сервер gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler переводит ошибки Fiber в единый формат ответа
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return c.Status(fiberErr.Code).JSON(utils.ErrorResponse{
				Error: errors.New("HTTP_ERROR", fiberErr.Message, fiberErr.Code),
			})
		}

		logger.Error("Unhandled error", zap.Error(err))
		return utils.SendError(c, err)
	}
}
