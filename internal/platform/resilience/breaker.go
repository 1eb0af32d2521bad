package resilience

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type BreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

func (c BreakerConfig) normalized() BreakerConfig {
	defaults := DefaultBreakerConfig()
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaults.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaults.OpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return c
}

// Breaker guards calls to one upstream dependency. A disabled breaker runs
// every call directly.
type Breaker struct {
	cb      *gobreaker.CircuitBreaker
	enabled bool
}

// NewBreaker builds a breaker that trips after FailureThreshold consecutive
// failures. Errors for which countable returns false do not move the state.
func NewBreaker(name string, cfg BreakerConfig, countable func(error) bool, onStateChange func(name, from, to string)) *Breaker {
	cfg = cfg.normalized()
	threshold := uint32(cfg.FailureThreshold)
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(cfg.HalfOpenMaxReq),
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	}
	if countable != nil {
		settings.IsSuccessful = func(err error) bool {
			return err == nil || !countable(err)
		}
	}
	if onStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			onStateChange(name, from.String(), to.String())
		}
	}
	return &Breaker{
		cb:      gobreaker.NewCircuitBreaker(settings),
		enabled: cfg.Enabled,
	}
}

func (b *Breaker) State() string {
	if b == nil || !b.enabled {
		return "disabled"
	}
	return b.cb.State().String()
}

// Execute runs fn through the breaker. An open breaker returns ErrCircuitOpen.
func Execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	if b == nil || !b.enabled {
		return fn()
	}
	out, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, ErrCircuitOpen
	}
	if out == nil {
		var zero T
		return zero, err
	}
	return out.(T), err
}
