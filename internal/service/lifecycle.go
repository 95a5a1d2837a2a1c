package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/miloszkon/supportbot/internal/clock"
	"github.com/miloszkon/supportbot/internal/domain"
	"github.com/miloszkon/supportbot/internal/events"
	"github.com/miloszkon/supportbot/internal/observability"
	"github.com/miloszkon/supportbot/internal/platform"
	"github.com/miloszkon/supportbot/internal/store"
	apperrors "github.com/miloszkon/supportbot/pkg/util"
)

// LifecycleConfig holds the constants governing ticket lifetimes.
type LifecycleConfig struct {
	SupportCategory     string
	InactivityThreshold time.Duration
	PollInterval        time.Duration
	DeletionDelay       time.Duration
}

// LifecycleManager orchestrates ticket creation, closure and deletion.
// It owns the ticket store and spawns one watchdog per open ticket plus
// one deletion timer per closure.
type LifecycleManager struct {
	cfg        LifecycleConfig
	tickets    *store.TicketStore
	channels   platform.ChannelProvisioner
	notifier   platform.NotificationGateway
	identity   platform.IdentityProvider
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// LifecycleDependencies bundles collaborators for the manager.
type LifecycleDependencies struct {
	Tickets    *store.TicketStore
	Channels   platform.ChannelProvisioner
	Notifier   platform.NotificationGateway
	Identity   platform.IdentityProvider
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewLifecycleManager constructs the manager.
func NewLifecycleManager(cfg LifecycleConfig, deps LifecycleDependencies) *LifecycleManager {
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &LifecycleManager{
		cfg:        cfg,
		tickets:    deps.Tickets,
		channels:   deps.Channels,
		notifier:   deps.Notifier,
		identity:   deps.Identity,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// CreateTicket provisions a support channel for the requester, records
// the ticket as Open and starts its inactivity watchdog. It fails with
// DUPLICATE_TICKET while a non-removed ticket exists for the requester
// and with CHANNEL_UNAVAILABLE when provisioning prerequisites are
// missing.
func (m *LifecycleManager) CreateTicket(ctx context.Context, requesterID, requesterName string) (*domain.Ticket, error) {
	if _, exists := m.tickets.Get(requesterID); exists {
		return nil, apperrors.NewDuplicateTicket(requesterID)
	}

	handle, err := m.channels.CreateSupportChannel(ctx, requesterID, requesterName, m.cfg.SupportCategory)
	if err != nil {
		return nil, apperrors.NewChannelUnavailable(err)
	}

	now := m.clock.Now()
	ticket := &domain.Ticket{
		Ref:            generateTicketRef(),
		RequesterID:    requesterID,
		RequesterName:  requesterName,
		Status:         domain.TicketStatusOpen,
		Channel:        handle,
		CreatedAt:      now,
		LastActivityAt: now,
	}

	if !m.tickets.Put(ticket) {
		// lost a concurrent creation race; release the extra channel
		if derr := m.channels.DeleteChannel(ctx, handle); derr != nil {
			m.logger.Warn("orphaned channel after create race",
				zap.String("requester_id", requesterID), zap.Error(derr))
		}
		return nil, apperrors.NewDuplicateTicket(requesterID)
	}

	welcome := platform.Content{
		Title: fmt.Sprintf("Ticket %s opened", ticket.Ref),
		Body:  fmt.Sprintf("%s opened a ticket. Management can respond here.", requesterName),
	}
	actions := &platform.ChannelActions{RequesterID: requesterID, Claim: true, Close: true}
	if err := m.notifier.SendToChannel(ctx, handle, welcome, nil, actions); err != nil {
		m.logger.Warn("welcome message not delivered",
			zap.String("requester_id", requesterID), zap.Error(err))
	}

	m.publish(ctx, events.Event{
		Type:        events.EventTicketOpened,
		RequesterID: requesterID,
		Payload:     events.TicketOpenedPayload{Ref: ticket.Ref, Channel: handle},
	})
	m.metrics.TicketOpened()
	m.logger.Info("ticket opened",
		zap.String("ref", ticket.Ref),
		zap.String("requester_id", requesterID),
		zap.String("channel", string(handle)))

	m.startWatchdog(requesterID)
	return ticket, nil
}

// CloseTicketManually closes the requester's ticket on behalf of actorID.
// The actor must hold the management capability; otherwise the call fails
// with PERMISSION_DENIED and performs no mutation.
func (m *LifecycleManager) CloseTicketManually(ctx context.Context, actorID, requesterID string) error {
	allowed, err := m.identity.HasManagementCapability(ctx, actorID)
	if err != nil {
		m.logger.Warn("capability lookup failed", zap.String("actor_id", actorID), zap.Error(err))
		return apperrors.NewPermissionDenied("management capability could not be verified")
	}
	if !allowed {
		return apperrors.NewPermissionDenied("closing tickets requires the management capability")
	}
	if _, ok := m.tickets.Get(requesterID); !ok {
		return apperrors.NewNotFound("ticket", map[string]any{"requester_id": requesterID})
	}
	m.closeTicket(ctx, requesterID, actorID, domain.CloseReasonManual)
	return nil
}

// ClaimTicket records actorID as the ticket owner and announces the
// claim in the ticket channel. Management capability is required.
func (m *LifecycleManager) ClaimTicket(ctx context.Context, actorID, actorName, requesterID string) error {
	allowed, err := m.identity.HasManagementCapability(ctx, actorID)
	if err != nil || !allowed {
		return apperrors.NewPermissionDenied("claiming tickets requires the management capability")
	}
	ticket, ok := m.tickets.Get(requesterID)
	if !ok || ticket.Status != domain.TicketStatusOpen {
		return apperrors.NewNotFound("open ticket", map[string]any{"requester_id": requesterID})
	}
	if !m.tickets.SetOwner(requesterID, actorID) {
		return apperrors.NewNotFound("open ticket", map[string]any{"requester_id": requesterID})
	}
	notice := platform.Content{Body: fmt.Sprintf("%s took over the ticket.", actorName)}
	if err := m.notifier.SendToChannel(ctx, ticket.Channel, notice, nil, nil); err != nil {
		m.logger.Warn("claim notice not delivered", zap.String("requester_id", requesterID), zap.Error(err))
	}
	return nil
}

// closeTicket performs the idempotent Open -> PendingClosure transition.
// Exactly one caller wins the swap; everyone else observes a no-op.
func (m *LifecycleManager) closeTicket(ctx context.Context, requesterID, actorID string, reason domain.CloseReason) {
	ticket, ok := m.tickets.Get(requesterID)
	if !ok {
		return
	}
	if !m.tickets.CompareAndSwapStatus(requesterID, domain.TicketStatusOpen, domain.TicketStatusPendingClosure) {
		return
	}

	deleteAt := m.clock.Now().Add(m.cfg.DeletionDelay)
	m.tickets.ScheduleDeletion(requesterID, deleteAt)

	notice := platform.Content{Body: closureNotice(reason, m.cfg.DeletionDelay)}
	if err := m.notifier.SendToChannel(ctx, ticket.Channel, notice, nil, nil); err != nil {
		m.logger.Warn("closure notice not delivered",
			zap.String("requester_id", requesterID), zap.Error(err))
	}

	m.clock.AfterFunc(m.cfg.DeletionDelay, func() {
		m.DeleteExpiredTicket(context.Background(), requesterID)
	})

	m.publish(ctx, events.Event{
		Type:        events.EventTicketClosed,
		RequesterID: requesterID,
		Payload: events.TicketClosedPayload{
			Ref:        ticket.Ref,
			Reason:     reason,
			ActorID:    actorID,
			DeletionAt: deleteAt,
		},
	})
	m.metrics.TicketClosed(string(reason))
	m.logger.Info("ticket closed",
		zap.String("ref", ticket.Ref),
		zap.String("requester_id", requesterID),
		zap.String("reason", string(reason)),
		zap.Time("deletion_at", deleteAt))
}

// DeleteExpiredTicket removes the ticket record and requests channel
// deletion. The record is removed even when the channel deletion fails;
// an orphaned channel is preferred over a leaked ticket slot.
func (m *LifecycleManager) DeleteExpiredTicket(ctx context.Context, requesterID string) {
	ticket, ok := m.tickets.Get(requesterID)
	if !ok {
		return
	}
	m.tickets.Remove(requesterID)

	channelRemoved := true
	if err := m.channels.DeleteChannel(ctx, ticket.Channel); err != nil {
		channelRemoved = false
		m.logger.Warn("channel deletion failed",
			zap.String("ref", ticket.Ref),
			zap.String("channel", string(ticket.Channel)),
			zap.Error(err))
	}

	m.publish(ctx, events.Event{
		Type:        events.EventTicketDeleted,
		RequesterID: requesterID,
		Payload: events.TicketDeletedPayload{
			Ref:            ticket.Ref,
			Channel:        ticket.Channel,
			ChannelRemoved: channelRemoved,
		},
	})
	m.metrics.TicketDeleted()
	m.logger.Info("ticket removed",
		zap.String("ref", ticket.Ref),
		zap.String("requester_id", requesterID))
}

// RefreshActivity stamps the ticket's activity time if it is still open.
func (m *LifecycleManager) RefreshActivity(requesterID string) {
	m.tickets.Touch(requesterID, m.clock.Now())
}

// Tickets exposes the store for read-only consumers (ops API, router).
func (m *LifecycleManager) Tickets() *store.TicketStore {
	return m.tickets
}

func (m *LifecycleManager) publish(ctx context.Context, event events.Event) {
	if m.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = m.clock.Now()
	}
	_ = m.dispatcher.Publish(ctx, event)
}

func closureNotice(reason domain.CloseReason, delay time.Duration) string {
	minutes := int(delay.Minutes())
	if reason == domain.CloseReasonTimeout {
		return fmt.Sprintf("Ticket closed due to inactivity. The channel will be removed in %d minutes.", minutes)
	}
	return fmt.Sprintf("Ticket closed by management. The channel will be removed in %d minutes.", minutes)
}

func generateTicketRef() string {
	return "SUP-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
