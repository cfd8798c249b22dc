// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-quiz/metrics"
	"github.com/danielhkuo/quickly-quiz/store"
)

const DefaultInterval = time.Hour

type Sweeper struct {
	store    store.Store
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a stopped sweeper. A nil logger uses slog.Default and a
// non-positive interval uses DefaultInterval.
func New(st store.Store, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		store:    st,
		interval: interval,
		logger:   logger.With("component", "sweeper"),
		metrics:  m,
		now:      time.Now,
	}
}

// Start launches the sweep loop. Calling Start on a running sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)
	s.logger.Info("Expiry sweeper started", "interval", s.interval.String())
}

// Stop cancels the loop and waits for an in-flight run to finish. Safe to
// call more than once.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Info("Expiry sweeper stopped")
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one sweep with panic recovery so a bad run never kills the loop.
func (s *Sweeper) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic in expiry sweep", "panic", r)
		}
	}()

	if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("Expiry sweep failed", "error", err)
	}
}

// RunOnce deletes every active poll whose expiry has passed, along with its
// votes, and returns how many polls were removed.
func (s *Sweeper) RunOnce(ctx context.Context) (n int64, err error) {
	began := time.Now()
	defer func() {
		s.metrics.SweepFinished(time.Since(began), err)
	}()

	ids, err := s.store.Polls().ListExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to list expired polls: %w", err)
	}
	if len(ids) == 0 {
		s.logger.Debug("No expired polls")
		return 0, nil
	}

	votes, err := s.store.Votes().DeleteByPolls(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete votes of expired polls: %w", err)
	}

	n, err = s.store.Polls().DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired polls: %w", err)
	}

	s.metrics.PollsDeleted("expired", int(n))
	s.logger.Info("Removed expired polls",
		"polls", humanize.Comma(n),
		"votes", humanize.Comma(votes),
	)
	return n, nil
}
