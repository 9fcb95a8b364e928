package enrichment

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler runs a job detached from the request that produced it.
type Scheduler interface {
	Schedule(job func(ctx context.Context))
}

// GoroutineScheduler runs each job in its own goroutine with a fresh
// background context and a hard timeout, so a stuck classification cannot
// leak goroutines forever.
type GoroutineScheduler struct {
	timeout time.Duration
	log     zerolog.Logger
}

func NewGoroutineScheduler(timeout time.Duration, log zerolog.Logger) *GoroutineScheduler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GoroutineScheduler{
		timeout: timeout,
		log:     log.With().Str("component", "enrichment-scheduler").Logger(),
	}
}

func (s *GoroutineScheduler) Schedule(job func(ctx context.Context)) {
	go func() {
		// Request context must not cancel background work.
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error().Interface("panic", r).Msg("enrichment job panicked")
			}
		}()
		job(ctx)
	}()
}
