package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

// ReconcileFacade exposes the subset of application functionality required by the sweeper.
type ReconcileFacade interface {
	CompletedSessions(ctx context.Context, since time.Time, limit int) ([]string, error)
	EnsureOrder(ctx context.Context, sessionID string) (uuid.UUID, error)
}

// SweepReport summarises one pass over recently completed sessions.
type SweepReport struct {
	Checked    int
	Reconciled int
	Failed     int
}

// SessionSweeper periodically reconciles completed checkout sessions whose
// webhook or success page never produced an order.
type SessionSweeper struct {
	facade    ReconcileFacade
	interval  time.Duration
	lookback  time.Duration
	batchSize int
	workers   int
	logger    *slog.Logger
	now       func() time.Time

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewSessionSweeper constructs the sweeper worker pool.
func NewSessionSweeper(facade ReconcileFacade, interval, lookback time.Duration, batchSize, workers int, logger *slog.Logger) *SessionSweeper {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &SessionSweeper{
		facade:    facade,
		interval:  interval,
		lookback:  lookback,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
		now:       time.Now,
	}
}

// Start launches periodic sweeping. A non-positive interval disables it.
func (s *SessionSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interval <= 0 {
		s.logger.Info("session sweeper disabled")
		return
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(runCtx)
}

// Stop waits for the running pass to finish.
func (s *SessionSweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *SessionSweeper) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := s.SweepOnce(ctx)
			if err != nil {
				s.logger.Error("session sweep failed", slog.String("error", err.Error()))
				continue
			}
			if report.Failed > 0 {
				s.logger.Warn("session sweep finished with failures",
					slog.Int("checked", report.Checked), slog.Int("failed", report.Failed))
			}
		}
	}
}

// SweepOnce lists sessions completed within the lookback window and
// reconciles each of them through the worker pool.
func (s *SessionSweeper) SweepOnce(ctx context.Context) (SweepReport, error) {
	sessions, err := s.facade.CompletedSessions(ctx, s.now().Add(-s.lookback), s.batchSize)
	if err != nil {
		return SweepReport{}, err
	}

	jobs := make(chan string)
	var reconciled, failed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sessionID := range jobs {
				if s.handleSession(ctx, sessionID) {
					reconciled.Add(1)
				} else {
					failed.Add(1)
				}
			}
		}()
	}

dispatch:
	for _, sessionID := range sessions {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- sessionID:
		}
	}
	close(jobs)
	wg.Wait()

	return SweepReport{
		Checked:    len(sessions),
		Reconciled: int(reconciled.Load()),
		Failed:     int(failed.Load()),
	}, nil
}

func (s *SessionSweeper) handleSession(ctx context.Context, sessionID string) bool {
	orderID, err := s.facade.EnsureOrder(ctx, sessionID)
	if err == nil {
		s.logger.Debug("session reconciled", slog.String("session_id", sessionID), slog.String("order_id", orderID.String()))
		return true
	}
	if errors.Is(err, domainErrors.ErrSessionNotPaid) || errors.Is(err, domainErrors.ErrSessionRefunded) {
		return true
	}
	s.logger.Error("session reconciliation failed", slog.String("session_id", sessionID), slog.String("error", err.Error()))
	return false
}
