package session

import (
	"context"
	"sync"
	"time"

	"github.com/lfmotta/cargobot/logging"
)

// DefaultIdleTimeout is how long a flow may sit untouched before the
// sweeper evicts it.
const DefaultIdleTimeout = 15 * time.Minute

// DefaultSweepInterval is the cadence of the background sweeper.
const DefaultSweepInterval = 5 * time.Minute

// Options configure the in-memory store.
type Options struct {
	// IdleTimeout is the eviction threshold applied by Sweep.
	IdleTimeout time.Duration
	// SweepInterval is the cadence used by StartSweeper.
	SweepInterval time.Duration
	// Now overrides the clock; tests use it for deterministic sweeps.
	Now func() time.Time
	// Logger receives eviction events. Nil means silent.
	Logger logging.Logger
}

// InMemoryStore is a process-local store of per-user dialogue state. It is
// safe for concurrent access, although queue consumption is sequential in
// the base deployment, so contention is rare.
type InMemoryStore struct {
	mu          sync.Mutex
	states      map[string]*State
	idleTimeout time.Duration
	sweepEvery  time.Duration
	now         func() time.Time
	logger      logging.Logger
}

// NewInMemoryStore constructs an empty store with optional overrides.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{
		IdleTimeout:   DefaultIdleTimeout,
		SweepInterval: DefaultSweepInterval,
		Now:           time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	var l logging.Logger = logging.NoOpLogger{}
	if opts.Logger != nil {
		l = opts.Logger
	}
	return &InMemoryStore{
		states:      make(map[string]*State),
		idleTimeout: opts.IdleTimeout,
		sweepEvery:  opts.SweepInterval,
		now:         opts.Now,
		logger:      l,
	}
}

// GetOrCreate returns the live state for a user key, creating a default
// (flowless) state on first contact. Never fails. The returned pointer is
// the live record; its methods synchronize against the sweeper.
func (s *InMemoryStore) GetOrCreate(userKey string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[userKey]
	if !ok {
		st = newState(userKey, s.now())
		s.states[userKey] = st
	}
	return st
}

// Clear removes a user's state. Called on terminal success, cancellation
// and idle eviction.
func (s *InMemoryStore) Clear(userKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userKey)
}

// Sweep evicts every state idle longer than the configured threshold,
// returning the number evicted.
func (s *InMemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for key, st := range s.states {
		if now.Sub(st.LastActivity()) > s.idleTimeout {
			delete(s.states, key)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Debug("swept idle sessions", "evicted", evicted)
	}
	return evicted
}

// StartSweeper runs Sweep on the configured cadence until ctx is done.
func (s *InMemoryStore) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep(s.now())
			}
		}
	}()
}

// Len returns the number of active states.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// FlowCounts returns how many users sit in each flow, for the admin surface.
func (s *InMemoryStore) FlowCounts() map[Flow]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[Flow]int)
	for _, st := range s.states {
		counts[st.Flow()]++
	}
	return counts
}
