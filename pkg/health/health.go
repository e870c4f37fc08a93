// Package health provides Kubernetes-style liveness and readiness probes.
//
// All registered checks run from a single scheduler goroutine on one shared
// interval. A check flips to unhealthy only after three consecutive
// failures, and recovers on the first success, so a transient blip does not
// take the service out of rotation.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// failAfter is the number of consecutive failures before a check is
// reported unhealthy.
const failAfter = 3

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	// Guarded by Health.mu.
	fails   int
	healthy bool
	lastErr error
}

// Health manages the registered checks and serves the probe endpoints.
type Health struct {
	ready atomic.Bool

	mu        sync.Mutex
	liveness  []*check
	readiness []*check
	cancel    context.CancelFunc
}

// New creates a Health service. It starts not ready; call SetReady(true)
// once initialization is complete.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check for /livez. Liveness covers the
// process itself, such as goroutine counts or GC pauses.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, &check{name: name, timeout: timeout, fn: fn, healthy: true})
}

// AddReadinessCheck registers a check for /readyz. Readiness covers
// dependencies the service needs to answer traffic, such as the database.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, &check{name: name, timeout: timeout, fn: fn, healthy: true})
}

// Start launches the scheduler goroutine. Every interval it runs all
// registered checks in registration order. Register checks before Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	h.mu.Unlock()

	go func() {
		h.runAll(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.runAll(ctx)
			}
		}
	}()
}

// Stop cancels the scheduler. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

func (h *Health) runAll(ctx context.Context) {
	h.mu.Lock()
	checks := make([]*check, 0, len(h.liveness)+len(h.readiness))
	checks = append(checks, h.liveness...)
	checks = append(checks, h.readiness...)
	h.mu.Unlock()

	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.fn(checkCtx)
		cancel()

		h.mu.Lock()
		c.lastErr = err
		if err != nil {
			c.fails++
			if c.fails >= failAfter {
				c.healthy = false
			}
		} else {
			c.fails = 0
			c.healthy = true
		}
		h.mu.Unlock()
	}
}

// SetReady flips the manual readiness gate. Graceful shutdown sets it to
// false first so load balancers stop routing before the listener closes.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the service is ready: the manual gate is open and
// every readiness check is passing.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.readiness {
		if !c.healthy {
			return false
		}
	}
	return true
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 while all liveness checks pass, 503 with
// the failing checks otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	failures := failuresOf(h.liveness)
	h.mu.Unlock()

	writeStatus(w, failures)
}

// ReadyEndpoint serves /readyz: 200 when the manual gate is open and all
// readiness checks pass, 503 with details otherwise.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	failures := failuresOf(h.readiness)
	h.mu.Unlock()

	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

// failuresOf must be called with Health.mu held.
func failuresOf(checks []*check) map[string]string {
	failures := make(map[string]string)
	for _, c := range checks {
		if c.healthy {
			continue
		}
		if c.lastErr != nil {
			failures[c.name] = c.lastErr.Error()
		} else {
			failures[c.name] = "check is unhealthy"
		}
	}
	return failures
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	resp := statusResponse{Status: "ok"}
	status := http.StatusOK
	if len(failures) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failures
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
