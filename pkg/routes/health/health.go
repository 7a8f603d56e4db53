// Package health serves liveness, readiness and dependency probes
package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"

	probeTimeout = 2 * time.Second
)

// Pinger is a dependency that can report whether it is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type probe struct {
	name string
	dep  Pinger
}

type Checker struct {
	mu      sync.RWMutex
	probes  []probe
	version string
	started time.Time
	ready   atomic.Bool
}

func NewChecker(version string) *Checker {
	return &Checker{version: version, started: time.Now()}
}

// AddCheck probes dep under name on every health request
func (c *Checker) AddCheck(name string, dep Pinger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes = append(c.probes, probe{name: name, dep: dep})
}

func (c *Checker) SetReady(ready bool) {
	c.ready.Store(ready)
}

func (c *Checker) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/health")
	g.GET("", c.Health)
	g.GET("/live", c.Live)
	g.GET("/ready", c.Ready)
}

type Report struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]Result `json:"checks"`
}

type Result struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

// Check pings every dependency concurrently, each bounded by a short timeout
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.RLock()
	probes := append([]probe(nil), c.probes...)
	c.mu.RUnlock()

	results := make([]Result, len(probes))
	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = ping(ctx, p.dep)
		}()
	}
	wg.Wait()

	report := Report{
		Status:  statusHealthy,
		Version: c.version,
		Uptime:  time.Since(c.started).Truncate(time.Second).String(),
		Checks:  make(map[string]Result, len(probes)),
	}
	for i, p := range probes {
		report.Checks[p.name] = results[i]
		if results[i].Status != statusHealthy {
			report.Status = statusUnhealthy
		}
	}
	return report
}

func ping(ctx context.Context, dep Pinger) Result {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	began := time.Now()
	err := dep.Ping(ctx)
	r := Result{Status: statusHealthy, Latency: time.Since(began).String()}
	if err != nil {
		r.Status, r.Error = statusUnhealthy, err.Error()
	}
	return r
}

// Health responds 503 when any dependency is unhealthy
func (c *Checker) Health(ctx echo.Context) error {
	report := c.Check(ctx.Request().Context())
	code := http.StatusOK
	if report.Status != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	return ctx.JSON(code, report)
}

func (c *Checker) Live(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "alive"})
}

// Ready responds 503 until the server has finished starting and after shutdown begins
func (c *Checker) Ready(ctx echo.Context) error {
	if !c.ready.Load() {
		return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
