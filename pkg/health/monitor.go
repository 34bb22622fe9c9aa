package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status represents health check status
type Status int

const (
	StatusUnknown Status = iota
	StatusHealthy
	StatusUnhealthy
	StatusDegraded
	StatusDisabled
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusUnhealthy:
		return "unhealthy"
	case StatusDegraded:
		return "degraded"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckFunc probes one dependency. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// CheckResult represents the result of a health check
type CheckResult struct {
	Name         string        `json:"-"`
	Required     bool          `json:"required"`
	Status       Status        `json:"status"`
	Latency      time.Duration `json:"latency"`
	LastCheck    time.Time     `json:"last_check"`
	LastError    string        `json:"error,omitempty"`
	CheckCount   int           `json:"check_count"`
	FailureCount int           `json:"failure_count"`
}

type checker struct {
	fn       CheckFunc
	required bool
}

// Monitor runs registered checks on an interval and keeps the latest result
// per dependency. Required checks decide overall health; optional ones only
// degrade it.
type Monitor struct {
	mu       sync.RWMutex
	checkers map[string]checker
	results  map[string]*CheckResult
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}
	now      func() time.Time
}

// NewMonitor creates a new health monitor
func NewMonitor(interval time.Duration, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Monitor{
		checkers: make(map[string]checker),
		results:  make(map[string]*CheckResult),
		interval: interval,
		timeout:  5 * time.Second,
		logger:   logger,
		now:      time.Now,
	}
}

// Register adds a named check. Registering a name twice replaces it.
func (m *Monitor) Register(name string, required bool, fn CheckFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkers[name] = checker{fn: fn, required: required}

	m.logger.Info("Registered health check",
		zap.String("name", name),
		zap.Bool("required", required),
	)
}

// Disable records name as intentionally switched off.
func (m *Monitor) Disable(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.checkers, name)
	m.results[name] = &CheckResult{Name: name, Status: StatusDisabled, LastCheck: m.now()}
}

// Start runs the checks once synchronously, then every interval until Stop.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	m.CheckAll(ctx)
	go m.run(ctx)
}

// Stop stops the health monitor and waits for the loop to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}

// CheckAll probes every registered dependency now.
func (m *Monitor) CheckAll(ctx context.Context) {
	m.mu.RLock()
	checkers := make(map[string]checker, len(m.checkers))
	for name, c := range m.checkers {
		checkers[name] = c
	}
	m.mu.RUnlock()

	for name, c := range checkers {
		checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
		start := m.now()
		err := c.fn(checkCtx)
		cancel()

		result := CheckResult{
			Name:      name,
			Required:  c.required,
			Status:    StatusHealthy,
			Latency:   m.now().Sub(start),
			LastCheck: start,
		}
		if err != nil {
			result.Status = StatusUnhealthy
			result.LastError = err.Error()
		}

		m.mu.Lock()
		if existing, ok := m.results[name]; ok {
			result.CheckCount = existing.CheckCount + 1
			result.FailureCount = existing.FailureCount
		} else {
			result.CheckCount = 1
		}
		if err != nil {
			result.FailureCount++
		}
		m.results[name] = &result
		m.mu.Unlock()

		if err != nil {
			m.logger.Warn("Health check failed",
				zap.String("name", name),
				zap.Bool("required", c.required),
				zap.Duration("latency", result.Latency),
				zap.Error(err),
			)
		}
	}
}

// Overall folds the latest results: any failing required check is
// unhealthy, any failing optional check is degraded.
func (m *Monitor) Overall() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	overall := StatusHealthy
	for _, r := range m.results {
		switch {
		case r.Status == StatusUnhealthy && r.Required:
			return StatusUnhealthy
		case r.Status == StatusUnhealthy:
			overall = StatusDegraded
		}
	}
	return overall
}

// IsHealthy reports whether name passed its last check. Untracked names
// count as healthy.
func (m *Monitor) IsHealthy(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if result, ok := m.results[name]; ok {
		return result.Status != StatusUnhealthy
	}
	return true
}

// GetAllResults returns copies of the latest results keyed by name.
func (m *Monitor) GetAllResults() map[string]CheckResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make(map[string]CheckResult, len(m.results))
	for name, result := range m.results {
		results[name] = *result
	}
	return results
}
