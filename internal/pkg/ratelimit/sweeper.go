package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper periodically evicts idle keys from a MemoryStore.
type Sweeper struct {
	store    *MemoryStore
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSweeper constructs a sweeper; a nil store makes Start a no-op.
func NewSweeper(store *MemoryStore, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{store: store, interval: interval, logger: logger}
}

// Start launches the sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case now := <-ticker.C:
				if n := s.store.Sweep(now); n > 0 {
					s.logger.Debug("rate limit keys evicted", slog.Int("count", n))
				}
			}
		}
	}()
}

// Stop ends the loop and waits for it.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}
