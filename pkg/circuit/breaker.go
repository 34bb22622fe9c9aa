// Package circuit stops calling a dependency that keeps failing and lets a
// few probes through once a cool-down has passed.
package circuit

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

var (
	ErrOpen            = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

type Config struct {
	Threshold        int           // consecutive failures that open the circuit
	Cooldown         time.Duration // open -> half-open delay
	SuccessThreshold int           // half-open successes needed to close
	MaxHalfOpen      int           // concurrent probes while half-open
}

func DefaultConfig() Config {
	return Config{
		Threshold:        5,
		Cooldown:         30 * time.Second,
		SuccessThreshold: 2,
		MaxHalfOpen:      1,
	}
}

type Breaker struct {
	name   string
	config Config
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	probes    int
	openedAt  time.Time
}

func NewBreaker(name string, config Config, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Breaker{name: name, config: config, logger: logger, now: time.Now}
}

// Execute runs fn unless the circuit is open. Context cancellation by the
// caller is not counted as a dependency failure.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := b.allow(); err != nil {
		return err
	}

	err := fn(ctx)
	if err != nil && ctx.Err() != nil {
		b.release()
		return err
	}
	b.record(err)
	return err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.config.Cooldown {
			return ErrOpen
		}
		b.transition(StateHalfOpen)
		b.probes = 1
		return nil
	case StateHalfOpen:
		if b.probes >= b.config.MaxHalfOpen {
			return ErrTooManyRequests
		}
		b.probes++
		return nil
	default:
		return nil
	}
}

func (b *Breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateHalfOpen && b.probes > 0 {
		b.probes--
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen && b.probes > 0 {
		b.probes--
	}

	if err != nil {
		b.failures++
		b.successes = 0
		if b.state == StateHalfOpen || b.failures >= b.config.Threshold {
			b.openedAt = b.now()
			b.transition(StateOpen)
		}
		return
	}

	b.failures = 0
	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.transition(StateClosed)
		}
	}
}

// transition must be called with mu held.
func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	if to != StateHalfOpen {
		b.probes = 0
	}
	if to == StateClosed {
		b.failures = 0
		b.successes = 0
	}

	b.logger.Warn("Circuit breaker state changed",
		zap.String("name", b.name),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Stats() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return map[string]any{
		"name":      b.name,
		"state":     b.state.String(),
		"failures":  b.failures,
		"threshold": b.config.Threshold,
		"cooldown":  b.config.Cooldown.String(),
	}
}
