package test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// SweeperFacadeStub mimics the reconciliation surface used by the session sweeper.
type SweeperFacadeStub struct {
	Sessions []string
	Errors   map[string]error
	ListErr  error

	Since time.Time
	Limit int

	mu    sync.Mutex
	calls []string
}

// CompletedSessions records the requested window and returns configured sessions.
func (s *SweeperFacadeStub) CompletedSessions(_ context.Context, since time.Time, limit int) ([]string, error) {
	s.mu.Lock()
	s.Since = since
	s.Limit = limit
	s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return append([]string(nil), s.Sessions...), nil
}

// EnsureOrder records the session and returns its configured error.
func (s *SweeperFacadeStub) EnsureOrder(_ context.Context, sessionID string) (uuid.UUID, error) {
	s.mu.Lock()
	s.calls = append(s.calls, sessionID)
	s.mu.Unlock()
	if err := s.Errors[sessionID]; err != nil {
		return uuid.Nil, err
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(sessionID)), nil
}

// Calls returns reconciled session ids in call order.
func (s *SweeperFacadeStub) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// VisitRecorderStub collects visits recorded by middleware.
type VisitRecorderStub struct {
	mu     sync.Mutex
	Visits []model.Visit
}

// RecordVisit stores the visit.
func (s *VisitRecorderStub) RecordVisit(_ context.Context, visit model.Visit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Visits = append(s.Visits, visit)
}

// Recorded returns a copy of stored visits.
func (s *VisitRecorderStub) Recorded() []model.Visit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Visit(nil), s.Visits...)
}
