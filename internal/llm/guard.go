package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// GuardConfig bounds calls to a provider.
type GuardConfig struct {
	// Timeout bounds one Generate call including retries.
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64

	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
}

// DefaultGuardConfig derives guard settings from a provider configuration.
func DefaultGuardConfig(cfg *Config) GuardConfig {
	return GuardConfig{
		Timeout:             cfg.Timeout,
		MaxAttempts:         cfg.MaxRetries + 1,
		InitialBackoff:      500 * time.Millisecond,
		MaxBackoff:          4 * time.Second,
		Multiplier:          2,
		BreakerMinRequests:  3,
		BreakerFailureRatio: 0.6,
		BreakerOpenTimeout:  time.Minute,
	}
}

func (c GuardConfig) normalize() GuardConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.Multiplier < 1 {
		c.Multiplier = 1
	}
	if c.MaxBackoff < c.InitialBackoff {
		c.MaxBackoff = c.InitialBackoff
	}
	if c.BreakerMinRequests == 0 {
		c.BreakerMinRequests = 1
	}
	if c.BreakerFailureRatio <= 0 {
		c.BreakerFailureRatio = 1
	}
	return c
}

// namer is implemented by providers that can report their name.
type namer interface {
	Name() string
}

// Guard wraps a Generator with a timeout, retry with backoff and a per-tier circuit breaker.
// Every failure it returns is an *ExternalCapabilityError.
type Guard struct {
	next     Generator
	provider string
	cfg      GuardConfig
	logger   *zap.Logger

	mu       sync.Mutex
	breakers map[ModelTier]*gobreaker.CircuitBreaker[string]
}

// NewGuard wraps next. A nil logger discards log output.
func NewGuard(next Generator, cfg GuardConfig, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := "llm"
	if n, ok := next.(namer); ok {
		provider = n.Name()
	}
	return &Guard{
		next:     next,
		provider: provider,
		cfg:      cfg.normalize(),
		logger:   logger,
		breakers: make(map[ModelTier]*gobreaker.CircuitBreaker[string]),
	}
}

// Name returns the wrapped provider's name.
func (g *Guard) Name() string {
	return g.provider
}

// Generate calls the wrapped provider. It never blocks longer than the configured timeout.
func (g *Guard) Generate(ctx context.Context, prompt string, c Constraints) (string, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	text, err := g.breaker(c.Tier).Execute(func() (string, error) {
		return g.withRetry(ctx, prompt, c)
	})
	if err != nil {
		return "", g.wrap(ctx, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", &ExternalCapabilityError{Provider: g.provider, Op: "generate", Message: "empty response"}
	}
	return text, nil
}

// Close releases the wrapped provider's resources when it holds any.
func (g *Guard) Close() error {
	if c, ok := g.next.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (g *Guard) withRetry(ctx context.Context, prompt string, c Constraints) (string, error) {
	backoff := g.cfg.InitialBackoff
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return "", lastErr
			}
			return "", err
		}

		text, err := g.next.Generate(ctx, prompt, c)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable(ctx, err) || attempt == g.cfg.MaxAttempts {
			return "", err
		}

		wait := backoff
		if wait > g.cfg.MaxBackoff {
			wait = g.cfg.MaxBackoff
		}
		g.logger.Warn("llm retry",
			zap.String("provider", g.provider),
			zap.String("tier", string(c.Tier)),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", g.cfg.MaxAttempts),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)

		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", err
			case <-timer.C:
			}
		}
		backoff = time.Duration(float64(backoff) * g.cfg.Multiplier)
	}
	return "", lastErr
}

func (g *Guard) breaker(tier ModelTier) *gobreaker.CircuitBreaker[string] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if b, ok := g.breakers[tier]; ok {
		return b
	}

	settings := gobreaker.Settings{
		Name:        g.provider + ":" + string(tier),
		MaxRequests: 1,
		Timeout:     g.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < g.cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= g.cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not a provider failure
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.logger.Warn("llm circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	b := gobreaker.NewCircuitBreaker[string](settings)
	g.breakers[tier] = b
	return b
}

func (g *Guard) wrap(ctx context.Context, err error) error {
	msg := "request failed"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		msg = "circuit open"
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		msg = "timed out"
	case errors.Is(err, context.Canceled):
		msg = "canceled"
	}
	return &ExternalCapabilityError{Provider: g.provider, Op: "generate", Message: msg, Cause: err}
}

// retryable reports whether another attempt could succeed.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// IsCircuitOpen reports whether err came from an open circuit breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
