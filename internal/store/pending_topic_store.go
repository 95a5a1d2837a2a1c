package store

import (
	"sync"
	"time"

	"github.com/miloszkon/supportbot/internal/domain"
)

// PendingTopicStore maps requester ID to the topic they selected, with
// single-use pop semantics and a validity window. An expired entry is
// indistinguishable from a missing one.
type PendingTopicStore struct {
	mu      sync.Mutex
	pending map[string]domain.PendingTopic
}

func NewPendingTopicStore() *PendingTopicStore {
	return &PendingTopicStore{pending: make(map[string]domain.PendingTopic)}
}

// Put records the requester's selection, replacing any earlier one.
func (s *PendingTopicStore) Put(p domain.PendingTopic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[p.RequesterID] = p
}

// Pop atomically reads and removes the pending topic for the requester.
// It reports false when no selection exists or the selection has expired;
// an expired entry is removed as a side effect.
func (s *PendingTopicStore) Pop(requesterID string, now time.Time) (domain.PendingTopic, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[requesterID]
	if !ok {
		return domain.PendingTopic{}, false
	}
	delete(s.pending, requesterID)
	if now.After(p.ExpiresAt) {
		return domain.PendingTopic{}, false
	}
	return p, true
}

// Sweep drops every expired entry and returns how many were removed.
// Expiry is otherwise passive; the sweep only bounds memory.
func (s *PendingTopicStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, p := range s.pending {
		if now.After(p.ExpiresAt) {
			delete(s.pending, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored selections, expired or not.
func (s *PendingTopicStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
