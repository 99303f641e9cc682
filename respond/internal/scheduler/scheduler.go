// Package scheduler runs periodic maintenance for the respond service.
package scheduler

import (
	"context"
	"time"

	"github.com/axisir/axisir-stack/common/database"
	"github.com/axisir/axisir-stack/common/logging"
	"github.com/axisir/axisir-stack/respond/internal/metrics"
)

// TokenPruner deletes whitelist rows issued before a cutoff.
type TokenPruner interface {
	DeleteIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler prunes whitelisted tokens that can no longer pass signature
// validation because their expiry has passed.
type Scheduler struct {
	tokens   TokenPruner
	ttl      time.Duration
	interval time.Duration
	logger   *logging.Logger
	now      func() time.Time
	stop     chan struct{}
	stopped  chan struct{}
}

// NewScheduler creates a pruner that runs every interval and removes rows
// older than ttl.
func NewScheduler(tokens TokenPruner, ttl, interval time.Duration, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		tokens:   tokens,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins the scheduler loop. This should be called in a goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	defer close(s.stopped)

	s.logger.InfoContext(ctx, "token pruner started", "interval", s.interval.String(), "ttl", s.ttl.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.prune(ctx)

	for {
		select {
		case <-ticker.C:
			s.prune(ctx)
		case <-s.stop:
			s.logger.InfoContext(ctx, "token pruner stopped")
			return
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "token pruner context cancelled")
			return
		}
	}
}

// Stop signals the scheduler to stop and waits for it to finish.
func (s *Scheduler) Stop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.stopped
}

func (s *Scheduler) prune(ctx context.Context) {
	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	cutoff := s.now().Add(-s.ttl)
	n, err := s.tokens.DeleteIssuedBefore(ctx, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "token prune failed", logging.Error(err))
		return
	}
	metrics.TokensPruned.Add(float64(n))
	if n > 0 {
		s.logger.InfoContext(ctx, "pruned expired tokens", "count", n, "cutoff", cutoff)
	}
}
