// Package devserver serves the task REST contract from a sqlite database.
// It backs local demos and end-to-end tests of the client.
package devserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sandeepkv93/taskmaster/internal/logging"
	"github.com/sandeepkv93/taskmaster/internal/storage"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	repo   storage.Repository
	router *gin.Engine
	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Server)

func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Server) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func New(repo storage.Repository, opts ...Option) *Server {
	s := &Server{
		repo:   repo,
		logger: logging.Discard(),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	s.router = router

	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleList)
		api.POST("/tasks", s.handleCreate)
		api.PUT("/tasks/:id", s.handleUpdate)
		api.DELETE("/tasks/:id", s.handleDelete)
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dev server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("dev server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(started),
		)
	}
}
