// Package http serves the notifier's webhook, quote and health endpoints with gin.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/message-notifier/internal/platform/config"
)

// Server owns the gin engine and the listener it is served on.
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	logger *slog.Logger

	bound atomic.Pointer[string]
}

// New builds a server for cfg. Request bodies larger than cfg.MaxRequestSize
// fail to read.
func New(cfg *config.ServerConfig, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(limitBody(cfg.MaxRequestSize))

	return &Server{
		engine: engine,
		srv: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:      engine,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// Engine is where SetupRouter mounts middleware and routes.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr is the listening address after Start (with port 0 resolved) and the
// configured address before.
func (s *Server) Addr() string {
	if addr := s.bound.Load(); addr != nil {
		return *addr
	}

	return s.srv.Addr
}

// Start listens synchronously and serves in the background. The channel
// yields a bind or serve error, if any, and is closed once serving stops.
func (s *Server) Start() <-chan error {
	done := make(chan error, 1)

	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		done <- fmt.Errorf("http server listen: %w", err)
		close(done)

		return done
	}

	addr := ln.Addr().String()
	s.bound.Store(&addr)

	s.logger.Info("starting HTTP server",
		slog.String("addr", addr),
		slog.Duration("read_timeout", s.srv.ReadTimeout),
		slog.Duration("write_timeout", s.srv.WriteTimeout),
	)

	go func() {
		defer close(done)

		if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			done <- fmt.Errorf("http server error: %w", err)
		}
	}()

	return done
}

// Shutdown stops accepting requests and waits for in-flight webhooks to
// finish sending, or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	s.logger.Info("HTTP server stopped")

	return nil
}

func limitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()
	}
}
