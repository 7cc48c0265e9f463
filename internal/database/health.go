package database

import (
	"context"
	"time"
)

// Health check statuses
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus is the result of a single health probe
type HealthStatus struct {
	Status       string        `json:"status"`
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
}

// Pinger is anything with a context-aware liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check runs p.Ping with timeout and reports the outcome.
func Check(ctx context.Context, p Pinger, timeout time.Duration) *HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	status := &HealthStatus{Status: StatusHealthy, ResponseTime: time.Since(start)}
	if err != nil {
		status.Status = StatusUnhealthy
		status.Error = err.Error()
	}
	return status
}

// Ping verifies the Postgres pool
func (m *Manager) Ping(ctx context.Context) error {
	return m.DB().PingContext(ctx)
}
