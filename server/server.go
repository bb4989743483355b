package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"foodcatalog/internal/api/routes"
	"foodcatalog/internal/container"
	"foodcatalog/internal/infrastructure/logging"
	"foodcatalog/server/middleware"
)

// Server HTTP сервер каталога продуктов
type Server struct {
	container  *container.Container
	logger     *logging.Logger
	httpServer *http.Server

	handlerOnce sync.Once
	httpHandler http.Handler

	mu           sync.Mutex
	pollerCancel context.CancelFunc
	pollerDone   chan struct{}
}

// NewServer создает сервер поверх инициализированного контейнера
func NewServer(c *container.Container) *Server {
	return &Server{container: c, logger: c.Logger}
}

// Handler возвращает HTTP handler, создавая его при первом вызове
func (s *Server) Handler() http.Handler {
	s.handlerOnce.Do(func() {
		s.httpHandler = s.buildHTTPHandler()
	})
	return s.httpHandler
}

func (s *Server) buildHTTPHandler() http.Handler {
	cfg := s.container.Config
	responder := s.container.Responder

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(s.logger))
	router.Use(middleware.Recovery(s.logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.Gzip())

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{
			Error:     true,
			Message:   "Route not found",
			RequestID: middleware.GetRequestID(c),
		})
	})

	routes.NewRouter(router, s.container.ProductsHandler, responder).RegisterAllRoutes(routes.RegisterOptions{
		ReclusterLimiter: s.container.ReclusterLimiter,
	})
	return router
}

// StartPoller запускает фоновый триггер поступления данных
func (s *Server) StartPoller(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pollerCancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.pollerCancel = cancel
	s.pollerDone = done

	go func() {
		defer close(done)
		s.container.Poller.Run(ctx)
	}()
	s.logger.Info("ingestion poller started", "interval", s.container.Config.Dedup.PollInterval.String())
}

func (s *Server) stopPoller() {
	s.mu.Lock()
	cancel, done := s.pollerCancel, s.pollerDone
	s.pollerCancel, s.pollerDone = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Start запускает опросчик и HTTP сервер. Блокирует до остановки сервера.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.container.Config
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // проход кластеризации на большом каталоге
		IdleTimeout:  120 * time.Second,
	}

	s.StartPoller(ctx)

	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.stopPoller()
		return fmt.Errorf("failed to start HTTP server on %s: %w", s.httpServer.Addr, err)
	}
	return nil
}

// Shutdown останавливает опросчик и сервер
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")
	s.stopPoller()

	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("graceful shutdown completed")
	return nil
}
