package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	serviceName    = "healthcare-chatbot"
	serviceVersion = "1.0.0"
)

// HealthStatus represents the health status of the service
type HealthStatus struct {
	Status       string                      `json:"status"`
	Service      string                      `json:"service"`
	Version      string                      `json:"version"`
	Timestamp    string                      `json:"timestamp"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus represents the status of a dependency
type DependencyStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

// HealthCheckFunc probes one dependency
type HealthCheckFunc func(ctx context.Context) (bool, error)

// HealthCheckHandler handles health check requests
func HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := HealthStatus{
			Status:    "healthy",
			Service:   serviceName,
			Version:   serviceVersion,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		writeStatus(w, http.StatusOK, status)
	}
}

// ReadinessHandler handles readiness check requests.
// Checks run concurrently; a nil check is skipped.
func ReadinessHandler(checks map[string]HealthCheckFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		dependencies := RunChecks(ctx, checks)

		status := HealthStatus{
			Status:       "ready",
			Service:      serviceName,
			Version:      serviceVersion,
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
			Dependencies: dependencies,
		}

		code := http.StatusOK
		for _, dep := range dependencies {
			if dep.Status != "healthy" {
				status.Status = "not_ready"
				code = http.StatusServiceUnavailable
				break
			}
		}

		writeStatus(w, code, status)
	}
}

// RunChecks executes every check and collects the per-dependency status
func RunChecks(ctx context.Context, checks map[string]HealthCheckFunc) map[string]DependencyStatus {
	var (
		mu           sync.Mutex
		dependencies = make(map[string]DependencyStatus, len(checks))
	)

	g, gctx := errgroup.WithContext(ctx)
	for name, check := range checks {
		if check == nil {
			continue
		}
		name, check := name, check
		g.Go(func() error {
			start := time.Now()
			healthy, err := check(gctx)
			dep := DependencyStatus{
				Status:    "healthy",
				LatencyMs: time.Since(start).Milliseconds(),
			}
			if err != nil || !healthy {
				dep.Status = "unhealthy"
				if err != nil {
					dep.Message = err.Error()
				}
			}

			mu.Lock()
			dependencies[name] = dep
			mu.Unlock()
			// Failures are reported per dependency, never cancel siblings.
			return nil
		})
	}
	_ = g.Wait()

	return dependencies
}

func writeStatus(w http.ResponseWriter, code int, status HealthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}
