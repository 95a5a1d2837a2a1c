package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/miloszkon/supportbot/internal/domain"
)

// startWatchdog schedules the per-ticket inactivity check. Exactly one
// watchdog exists per ticket lifetime; it self-terminates the first time
// it observes the ticket absent or no longer Open and is never restarted.
func (m *LifecycleManager) startWatchdog(requesterID string) {
	m.clock.AfterFunc(m.cfg.PollInterval, func() {
		m.watchdogTick(requesterID)
	})
}

func (m *LifecycleManager) watchdogTick(requesterID string) {
	ticket, ok := m.tickets.Get(requesterID)
	if !ok || ticket.Status != domain.TicketStatusOpen {
		// another path closed or removed the ticket; terminate silently
		return
	}

	idle := m.clock.Now().Sub(ticket.LastActivityAt)
	if idle >= m.cfg.InactivityThreshold {
		m.logger.Info("ticket inactive, closing",
			zap.String("ref", ticket.Ref),
			zap.String("requester_id", requesterID),
			zap.Duration("idle", idle))
		m.closeTicket(context.Background(), requesterID, "", domain.CloseReasonTimeout)
		return
	}

	m.startWatchdog(requesterID)
}
