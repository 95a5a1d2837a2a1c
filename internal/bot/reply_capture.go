package bot

import (
	"sync"
	"time"

	"github.com/miloszkon/supportbot/internal/clock"
)

// replyCapture remembers which requester an admin is about to answer.
// Like a pending topic it is single-use and windowed: pressing Reply
// arms it, the admin's next message consumes it.
type replyCapture struct {
	mu     sync.Mutex
	window time.Duration
	clock  clock.Clock
	armed  map[string]captureEntry
}

type captureEntry struct {
	requesterID string
	expiresAt   time.Time
}

func newReplyCapture(window time.Duration, clk clock.Clock) *replyCapture {
	return &replyCapture{
		window: window,
		clock:  clk,
		armed:  make(map[string]captureEntry),
	}
}

func (r *replyCapture) arm(adminID, requesterID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.armed[adminID] = captureEntry{
		requesterID: requesterID,
		expiresAt:   r.clock.Now().Add(r.window),
	}
}

func (r *replyCapture) consume(adminID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.armed[adminID]
	if !ok {
		return "", false
	}
	delete(r.armed, adminID)
	if r.clock.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.requesterID, true
}
