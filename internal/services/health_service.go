package services

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"time"
)

// HealthChecker probes one dependency. Store backends satisfy it through
// their Ping method.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	checks    map[string]HealthChecker
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. checks may be nil.
func NewHealthService(version string, checks map[string]HealthChecker, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	if checks == nil {
		checks = make(map[string]HealthChecker)
	}

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.Any("checks", names))

	return &HealthService{
		version:   version,
		checks:    checks,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("version", hs.version),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck probes every registered dependency
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]ServiceHealth, len(hs.checks)),
	}

	for name, check := range hs.checks {
		if err := check.Ping(ctx); err != nil {
			status.Services[name] = ServiceHealth{Status: "not_ready", Message: err.Error()}
			status.Status = "not_ready"

			hs.logger.WarnContext(ctx, "ReadinessCheck: dependency unavailable",
				slog.String("service", name),
				slog.String("error", err.Error()))
			continue
		}
		status.Services[name] = ServiceHealth{Status: "ready"}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}
