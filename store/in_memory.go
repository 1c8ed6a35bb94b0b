package store

import (
	"context"
	"sync"
	"time"

	"github.com/lfmotta/cargobot/core"
)

// InMemoryOptions configure an InMemoryStore.
type InMemoryOptions struct {
	Now func() time.Time
}

// InMemoryStore keeps everything in process memory. Data is lost on
// restart; use it for tests, examples and local development.
type InMemoryStore struct {
	mu         sync.RWMutex
	nextID     core.CustomerID
	byExternal map[string]core.CustomerID
	profiles   map[core.CustomerID]core.CustomerProfile
	history    map[core.CustomerID][]core.HistoryEntry
	openings   []core.Opening
	apps       map[string]core.Application
	suppliers  map[string]core.SupplierRecord
	now        func() time.Time
}

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore(optFns ...func(o *InMemoryOptions)) *InMemoryStore {
	opts := InMemoryOptions{Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &InMemoryStore{
		nextID:     1,
		byExternal: make(map[string]core.CustomerID),
		profiles:   make(map[core.CustomerID]core.CustomerProfile),
		history:    make(map[core.CustomerID][]core.HistoryEntry),
		apps:       make(map[string]core.Application),
		suppliers:  make(map[string]core.SupplierRecord),
		now:        opts.Now,
	}
}

// GetOrCreateCustomer implements core.CustomerStore.
func (s *InMemoryStore) GetOrCreateCustomer(_ context.Context, externalID string) (core.CustomerID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byExternal[externalID]; ok {
		return id, nil
	}
	id := s.nextID
	s.nextID++
	s.byExternal[externalID] = id
	s.profiles[id] = core.CustomerProfile{ID: id}
	return id, nil
}

// AppendHistory implements core.CustomerStore.
func (s *InMemoryStore) AppendHistory(_ context.Context, id core.CustomerID, role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return core.ErrNotFound
	}
	s.history[id] = append(s.history[id], core.HistoryEntry{
		Role:      role,
		Text:      text,
		Timestamp: s.now(),
	})
	return nil
}

// GetRecentHistory implements core.CustomerStore.
func (s *InMemoryStore) GetRecentHistory(_ context.Context, id core.CustomerID, limit int) ([]core.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.history[id]
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]core.HistoryEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// GetCustomerProfile implements core.CustomerStore.
func (s *InMemoryStore) GetCustomerProfile(_ context.Context, id core.CustomerID) (core.CustomerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[id]
	if !ok {
		return core.CustomerProfile{}, core.ErrNotFound
	}
	return profile, nil
}

// UpdateCustomerBranch implements core.CustomerStore.
func (s *InMemoryStore) UpdateCustomerBranch(_ context.Context, id core.CustomerID, branch string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[id]
	if !ok {
		return core.ErrNotFound
	}
	profile.Branch = branch
	s.profiles[id] = profile
	return nil
}

// SetOpenings replaces the published job openings.
func (s *InMemoryStore) SetOpenings(openings []core.Opening) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openings = append([]core.Opening(nil), openings...)
}

// ListOpenings implements core.RecruitingStore.
func (s *InMemoryStore) ListOpenings(_ context.Context) ([]core.Opening, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Opening, len(s.openings))
	copy(out, s.openings)
	return out, nil
}

// SaveApplication implements core.RecruitingStore.
func (s *InMemoryStore) SaveApplication(_ context.Context, record core.Application) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[record.Protocol] = record
	return record.Protocol, nil
}

// GetApplication returns a stored application by protocol.
func (s *InMemoryStore) GetApplication(_ context.Context, protocol string) (core.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[protocol]
	if !ok {
		return core.Application{}, core.ErrNotFound
	}
	return app, nil
}

// SaveSupplier implements core.SupplierStore.
func (s *InMemoryStore) SaveSupplier(_ context.Context, _ core.CustomerID, record core.SupplierRecord) (core.SupplierRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppliers[record.Protocol] = record
	return record, nil
}

// GetSupplier returns a stored supplier registration by protocol.
func (s *InMemoryStore) GetSupplier(_ context.Context, protocol string) (core.SupplierRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.suppliers[protocol]
	if !ok {
		return core.SupplierRecord{}, core.ErrNotFound
	}
	return record, nil
}
