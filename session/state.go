package session

import (
	"sync"
	"time"
)

// Flow names a guided multi-step dialogue owned by the flow engine.
type Flow string

// Known flows. FlowNone means the user is in free conversation.
const (
	FlowNone       Flow = ""
	FlowTracking   Flow = "tracking"
	FlowRecruiting Flow = "recruiting"
	FlowSupplier   Flow = "supplier"
)

// Field is one collected value. Fields preserve collection order so
// confirmation summaries replay them in the order the user provided them.
type Field struct {
	Key   string
	Value string
}

// State is the mutable per-user dialogue record. The store mutex only
// guards its map, so the state carries its own lock: the queue consumer
// mutates it through the methods below while the background sweeper reads
// the flow label and idle timestamp concurrently.
//
// Invariant: Step is only meaningful while Flow != FlowNone, and is always a
// member of that flow's transition table (enforced by the step handlers).
type State struct {
	UserKey string

	mu           sync.Mutex
	flow         Flow
	step         string
	lastActivity time.Time
	data         map[string]string
	keys         []string
}

func newState(userKey string, now time.Time) *State {
	return &State{UserKey: userKey, lastActivity: now, data: map[string]string{}}
}

// Flow returns the current flow label.
func (s *State) Flow() Flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow
}

// Step returns the current step within the active flow.
func (s *State) Step() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Active reports whether the user is inside a guided flow.
func (s *State) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow != FlowNone
}

// Begin seeds a new flow, resetting any previously collected data.
func (s *State) Begin(flow Flow, step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flow = flow
	s.step = step
	s.data = map[string]string{}
	s.keys = nil
}

// Advance moves the active flow to the given step.
func (s *State) Advance(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = step
}

// Set stores a collected field value, recording first-seen key order.
func (s *State) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.data[key] = value
}

// Get returns a collected value and whether it was set.
func (s *State) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Fields returns the collected values in collection order.
func (s *State) Fields() []Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Field, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, Field{Key: k, Value: s.data[k]})
	}
	return out
}

// Touch refreshes the idle timestamp.
func (s *State) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = now
}

// LastActivity returns the idle timestamp the sweeper compares against.
func (s *State) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}
