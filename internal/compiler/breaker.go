package compiler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonathan/talentsync/internal/observability"
	"github.com/sony/gobreaker/v2"
)

// BreakerSettings configures the compile circuit breaker.
type BreakerSettings struct {
	Enabled bool
	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32
	// Interval is the closed-state window after which counts reset.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// DefaultBreakerSettings trips after 5 calls with at least 60% infrastructure failures.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		MinRequests:      5,
		FailureThreshold: 0.6,
	}
}

// Breaker wraps a PDFCompiler with a circuit breaker. Only toolchain and
// timeout failures count against it; a document that fails to compile is
// the caller's problem, not the service's.
type Breaker struct {
	next    PDFCompiler
	cb      *gobreaker.CircuitBreaker[*Result]
	metrics *observability.Metrics
}

// NewBreaker wraps next. When s.Enabled is false the breaker passes calls through.
func NewBreaker(next PDFCompiler, s BreakerSettings, logger *log.Logger, metrics *observability.Metrics) *Breaker {
	b := &Breaker{next: next, metrics: metrics}
	if !s.Enabled {
		return b
	}
	if logger == nil {
		logger = log.Default()
	}

	settings := gobreaker.Settings{
		Name:        "latex-compile",
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= s.MinRequests && failureRatio >= s.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsInfrastructure(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String())
		},
	}
	b.cb = gobreaker.NewCircuitBreaker[*Result](settings)
	return b
}

// Compile runs the wrapped compiler unless the circuit is open.
func (b *Breaker) Compile(ctx context.Context, source string) (*Result, error) {
	if b.cb == nil {
		return b.next.Compile(ctx, source)
	}

	res, err := b.cb.Execute(func() (*Result, error) {
		return b.next.Compile(ctx, source)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.metrics.ObserveCompile(observability.OutcomeCircuitOpen, 0)
		return nil, &CompilationError{
			Message: "PDF compilation is temporarily unavailable",
			Cause:   fmt.Errorf("%w: %v", ErrCircuitOpen, err),
		}
	}
	return res, err
}

// State returns "closed", "half-open", "open", or "disabled".
func (b *Breaker) State() string {
	if b.cb == nil {
		return "disabled"
	}
	return b.cb.State().String()
}

var _ PDFCompiler = (*Breaker)(nil)
