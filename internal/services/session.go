package services

import (
	"context"
	"errors"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/platform/metrics"
	"sync"
	"time"
)

// ErrSuperseded is returned to a request that was overtaken by a newer one
// in the same Session.
var ErrSuperseded = errors.New("superseded by a newer request")

// Session serializes the requests of one client so that the latest one wins.
// Each Submit takes a new generation and cancels the run it supersedes; a
// result is published only while its generation is still the latest.
type Session struct {
	pipeline *Pipeline

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	latest     *domain.PipelineResult
	lastUsed   time.Time
}

func NewSession(p *Pipeline) *Session {
	return &Session{pipeline: p, lastUsed: time.Now()}
}

// Submit runs req as the newest request of the session.
func (s *Session) Submit(ctx context.Context, req RouteRequest) (*domain.PipelineResult, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.lastUsed = time.Now()
	s.mu.Unlock()

	defer cancel()

	result, err := s.pipeline.run(runCtx, gen, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		metrics.PipelineRuns.WithLabelValues("superseded").Inc()
		return nil, ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		return nil, err
	}
	s.latest = result
	return result, nil
}

// Latest returns the most recent published result, or nil.
func (s *Session) Latest() *domain.PipelineResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Generation returns the generation of the newest submitted request.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// SessionRegistry hands out one Session per client id, evicting the least
// recently used session once max is reached.
type SessionRegistry struct {
	pipeline *Pipeline
	max      int

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionRegistry(p *Pipeline, max int) *SessionRegistry {
	if max < 1 {
		max = 1
	}
	return &SessionRegistry{
		pipeline: p,
		max:      max,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id, creating it when needed.
func (r *SessionRegistry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		return s
	}

	if len(r.sessions) >= r.max {
		var (
			oldestID string
			oldest   time.Time
		)
		for k, s := range r.sessions {
			if t := s.idleSince(); oldestID == "" || t.Before(oldest) {
				oldestID, oldest = k, t
			}
		}
		delete(r.sessions, oldestID)
	}

	s := NewSession(r.pipeline)
	r.sessions[id] = s
	return s
}

// Len returns the number of tracked sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
