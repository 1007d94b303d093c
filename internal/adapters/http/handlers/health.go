// Package handlers provides HTTP request handlers for the service.
package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/message-notifier/internal/ports"
)

// defaultReadyTimeout bounds the readiness checks when none is configured.
const defaultReadyTimeout = 5 * time.Second

// BuildInfo contains build-time information injected with ldflags.
type BuildInfo struct {
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	BuildTime   string `json:"buildTime"`
	GoVersion   string `json:"goVersion"`
	MailBackend string `json:"mailBackend,omitempty"`
}

// NewBuildInfo creates a BuildInfo with the Go version set.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// HealthHandler serves the /-/ health endpoints.
type HealthHandler struct {
	registry     ports.HealthRegistry
	buildInfo    BuildInfo
	gatherer     prometheus.Gatherer
	readyTimeout time.Duration
}

// HealthOption customizes a HealthHandler.
type HealthOption func(*HealthHandler)

// WithGatherer serves metrics from g instead of the default Prometheus registry.
func WithGatherer(g prometheus.Gatherer) HealthOption {
	return func(h *HealthHandler) { h.gatherer = g }
}

// WithReadyTimeout bounds each readiness evaluation.
func WithReadyTimeout(d time.Duration) HealthOption {
	return func(h *HealthHandler) {
		if d > 0 {
			h.readyTimeout = d
		}
	}
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo, opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{
		registry:     registry,
		buildInfo:    buildInfo,
		gatherer:     prometheus.DefaultGatherer,
		readyTimeout: defaultReadyTimeout,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

type livenessResponse struct {
	Status string `json:"status"`
}

// Liveness always returns 200 while the process runs. It checks no dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{Status: "ok"})
}

type readinessResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Readiness runs the registered checks (mail transport, site registry) and
// returns 503 if any fails.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.readyTimeout)
	defer cancel()

	result := h.registry.CheckAll(ctx)

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, readinessResponse{
		Status: string(result.Status),
		Checks: result.Checks,
	})
}

// BuildInfoHandler returns the build information.
func (h *HealthHandler) BuildInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// RegisterRoutes mounts the health endpoints under /-/:
//   - GET /-/live
//   - GET /-/ready
//   - GET /-/build
//   - GET /-/metrics (Prometheus)
func (h *HealthHandler) RegisterRoutes(engine *gin.Engine) {
	health := engine.Group("/-")
	health.GET("/live", h.Liveness)
	health.GET("/ready", h.Readiness)
	health.GET("/build", h.BuildInfoHandler)
	health.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
}
