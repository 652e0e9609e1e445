package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/congo-pay/bankcore/internal/metrics"
	"github.com/congo-pay/bankcore/internal/payment"
)

// Config tunes the breaker and per-call timeout around a capability.
type Config struct {
	// Timeout bounds each call; zero disables it.
	Timeout time.Duration
	// MaxFailures consecutive faults open the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// IsFault reports whether a failed outcome should count against the
	// breaker. By default only calls that outlived their context count.
	IsFault func(ctx context.Context, out payment.Outcome) bool
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Timeout:     3 * time.Second,
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	}
}

var errFault = errors.New("capability fault")

// guard runs capability calls through a circuit breaker and converts breaker
// and timeout errors into failed outcomes.
type guard struct {
	name    string
	cb      *gobreaker.CircuitBreaker
	cfg     Config
	logger  *slog.Logger
	metrics metrics.Recorder
}

func newGuard(name string, cfg Config, logger *slog.Logger, recorder metrics.Recorder) *guard {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NoOp{}
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = DefaultConfig().MaxFailures
	}
	if cfg.IsFault == nil {
		cfg.IsFault = func(ctx context.Context, _ payment.Outcome) bool { return ctx.Err() != nil }
	}

	g := &guard{name: name, cfg: cfg, logger: logger, metrics: recorder}
	g.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("capability breaker state changed",
				slog.String("capability", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			recorder.RecordBreakerState(name, to.String())
		},
	})
	return g
}

func (g *guard) run(ctx context.Context, call func(context.Context) payment.Outcome) payment.Outcome {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	var out payment.Outcome
	_, err := g.cb.Execute(func() (interface{}, error) {
		out = call(ctx)
		if !out.Success && g.cfg.IsFault(ctx, out) {
			return nil, errFault
		}
		return nil, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		g.logger.Warn("capability call rejected", slog.String("capability", g.name), slog.Any("error", err))
		return payment.Fail(fmt.Sprintf("%s temporarily unavailable", g.name))
	case errors.Is(err, errFault) && errors.Is(ctx.Err(), context.DeadlineExceeded):
		return payment.Fail(fmt.Sprintf("%s timed out", g.name))
	}
	return out
}

// State reports the breaker state, e.g. "closed" or "open".
func (g *guard) State() string {
	return g.cb.State().String()
}

// VendorDirectory guards a payment.VendorDirectory.
type VendorDirectory struct {
	*guard
	next payment.VendorDirectory
}

// NewVendorDirectory wraps next.
func NewVendorDirectory(next payment.VendorDirectory, cfg Config, logger *slog.Logger, recorder metrics.Recorder) *VendorDirectory {
	return &VendorDirectory{guard: newGuard("vendor directory", cfg, logger, recorder), next: next}
}

func (v *VendorDirectory) EnsureVendorExists(ctx context.Context, vendorID string) payment.Outcome {
	return v.run(ctx, func(ctx context.Context) payment.Outcome {
		return v.next.EnsureVendorExists(ctx, vendorID)
	})
}

// SecureChannel guards a payment.SecureChannel.
type SecureChannel struct {
	*guard
	next payment.SecureChannel
}

// NewSecureChannel wraps next.
func NewSecureChannel(next payment.SecureChannel, cfg Config, logger *slog.Logger, recorder metrics.Recorder) *SecureChannel {
	return &SecureChannel{guard: newGuard("secure channel", cfg, logger, recorder), next: next}
}

func (s *SecureChannel) PerformHandshake(ctx context.Context, vendorID string) payment.Outcome {
	return s.run(ctx, func(ctx context.Context) payment.Outcome {
		return s.next.PerformHandshake(ctx, vendorID)
	})
}

// ConsentService guards a payment.ConsentService.
type ConsentService struct {
	*guard
	next payment.ConsentService
}

// NewConsentService wraps next.
func NewConsentService(next payment.ConsentService, cfg Config, logger *slog.Logger, recorder metrics.Recorder) *ConsentService {
	return &ConsentService{guard: newGuard("consent service", cfg, logger, recorder), next: next}
}

func (c *ConsentService) VerifyUserConsent(ctx context.Context, payerID string, amount decimal.Decimal) payment.Outcome {
	return c.run(ctx, func(ctx context.Context) payment.Outcome {
		return c.next.VerifyUserConsent(ctx, payerID, amount)
	})
}
