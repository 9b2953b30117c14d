package client

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ReconnectPolicy controls how push channels redial after a failure.
type ReconnectPolicy struct {
	Initial    time.Duration `yaml:"initial" env:"INITIAL"`
	Max        time.Duration `yaml:"max" env:"MAX"`
	Multiplier float64       `yaml:"multiplier" env:"MULTIPLIER"`
	Jitter     float64       `yaml:"jitter" env:"JITTER"`
}

// DefaultReconnectPolicy returns 1s doubling up to 30s with 50% jitter.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		Initial:    1 * time.Second,
		Max:        30 * time.Second,
		Multiplier: 2,
		Jitter:     0.5,
	}
}

func (p ReconnectPolicy) newBackOff() *backoff.ExponentialBackOff {
	d := DefaultReconnectPolicy()
	if p.Initial <= 0 {
		p.Initial = d.Initial
	}
	if p.Max <= 0 {
		p.Max = d.Max
	}
	if p.Multiplier < 1 {
		p.Multiplier = d.Multiplier
	}
	if p.Jitter < 0 || p.Jitter > 1 {
		p.Jitter = d.Jitter
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Initial
	b.MaxInterval = p.Max
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.Jitter
	b.Reset()
	return b
}

// sleepCtx waits for d or until ctx is done. It reports whether the full
// delay elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
