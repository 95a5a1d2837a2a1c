package store

import (
	"sync"
	"time"

	"github.com/miloszkon/supportbot/internal/domain"
)

// TicketStore is the concurrency-safe registry of tickets keyed by
// requester ID. All transitions on a single ticket are serialized through
// its atomic operations; no lock is held across calls into collaborators.
type TicketStore struct {
	mu      sync.RWMutex
	tickets map[string]*domain.Ticket
}

func NewTicketStore() *TicketStore {
	return &TicketStore{tickets: make(map[string]*domain.Ticket)}
}

// Get returns a copy of the ticket for the requester, if present.
func (s *TicketStore) Get(requesterID string) (*domain.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[requesterID]
	if !ok {
		return nil, false
	}
	return cloneTicket(t), true
}

// Put inserts the ticket if no record exists for its requester. It
// reports false when a ticket is already present, leaving it unmodified.
func (s *TicketStore) Put(t *domain.Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tickets[t.RequesterID]; exists {
		return false
	}
	s.tickets[t.RequesterID] = cloneTicket(t)
	return true
}

// Remove deletes the ticket record. Removal is unconditional; a missing
// record is not an error.
func (s *TicketStore) Remove(requesterID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tickets, requesterID)
}

// CompareAndSwapStatus atomically transitions the ticket's status from
// expected to next. It reports false if the ticket is absent or its
// status differs from expected.
func (s *TicketStore) CompareAndSwapStatus(requesterID string, expected, next domain.TicketStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[requesterID]
	if !ok || t.Status != expected {
		return false
	}
	t.Status = next
	return true
}

// ScheduleDeletion stamps the deletion time exactly once. Later calls
// leave the original timestamp in place.
func (s *TicketStore) ScheduleDeletion(requesterID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[requesterID]
	if !ok || t.ScheduledDeletionAt != nil {
		return
	}
	stamp := at
	t.ScheduledDeletionAt = &stamp
}

// Touch refreshes the activity timestamp if the ticket exists and is
// still open. The timestamp never moves backwards.
func (s *TicketStore) Touch(requesterID string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[requesterID]
	if !ok || t.Status != domain.TicketStatusOpen {
		return false
	}
	if now.After(t.LastActivityAt) {
		t.LastActivityAt = now
	}
	return true
}

// SetOwner records the management member who claimed the ticket.
func (s *TicketStore) SetOwner(requesterID, ownerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[requesterID]
	if !ok || t.Status != domain.TicketStatusOpen {
		return false
	}
	t.OwnerID = ownerID
	return true
}

// List returns copies of all tickets, in no particular order.
func (s *TicketStore) List() []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, *cloneTicket(t))
	}
	return out
}

// Len reports the number of tracked tickets.
func (s *TicketStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}

func cloneTicket(t *domain.Ticket) *domain.Ticket {
	c := *t
	if t.ScheduledDeletionAt != nil {
		stamp := *t.ScheduledDeletionAt
		c.ScheduledDeletionAt = &stamp
	}
	return &c
}
