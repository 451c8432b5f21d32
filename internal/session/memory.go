package session

import (
	"context"
	"sync"
)

// MemoryStore keeps in-progress orders in a process-local map. It is the
// default backend for single-instance deployments.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]*Order
	locks  *keyedMutex
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[string]*Order),
		locks:  newKeyedMutex(),
	}
}

// Get returns a copy of the session's order, if any
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Order, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[sessionID]
	if !ok {
		return nil, false, nil
	}
	return order.Clone(), true, nil
}

// Put stores a copy of the order under the session id
func (s *MemoryStore) Put(_ context.Context, sessionID string, order *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[sessionID] = order.Clone()
	return nil
}

// Delete removes the session's order
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.orders, sessionID)
	return nil
}

// Lock acquires the per-session mutex
func (s *MemoryStore) Lock(sessionID string) func() {
	return s.locks.lock(sessionID)
}
