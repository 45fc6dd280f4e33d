package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// Retryable is implemented by errors that know whether another attempt can succeed.
type Retryable interface {
	Retryable() bool
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:   1,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialDelay == 0 {
		c.InitialDelay = 500 * time.Millisecond
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = 5 * time.Second
	}
	if c.Multiplier == 0 {
		c.Multiplier = 2.0
	}
	return c
}

// Do runs fn until it succeeds, returns a non-retryable error, or the retry
// budget is spent. The last error is returned unchanged.
func Do(ctx context.Context, config Config, fn func(ctx context.Context) error) error {
	config = config.withDefaults()
	delay := config.InitialDelay

	var err error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(applyJitter(delay))
			select {
			case <-ctx.Done():
				timer.Stop()
				return err
			case <-timer.C:
			}
			delay = min(time.Duration(float64(delay)*config.Multiplier), config.MaxDelay)
		}

		err = fn(ctx)
		if !ShouldRetry(err) {
			return err
		}
	}

	return err
}

// Value is Do for functions that produce a result.
func Value[T any](ctx context.Context, config Config, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, config, func(ctx context.Context) error {
		var callErr error
		result, callErr = fn(ctx)
		return callErr
	})
	return result, err
}

func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var r Retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}

func applyJitter(delay time.Duration) time.Duration {
	jitterFactor := 0.9 + rand.Float64()*0.2
	return time.Duration(float64(delay) * jitterFactor)
}
