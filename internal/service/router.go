package service

import (
	"context"
	"errors"
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

// RouteOutcome describes how an inbound direct message was handled.
type RouteOutcome string

const (
	// RoutedToAdmin means the message elaborated a pending topic and was
	// forwarded to the admin channel.
	RoutedToAdmin RouteOutcome = "ROUTED_TO_ADMIN"
	// TicketTraffic means the requester has an open ticket; the chat
	// platform routes that conversation natively, nothing is re-forwarded.
	TicketTraffic RouteOutcome = "TICKET_TRAFFIC"
	// Unhandled means the message falls through to ordinary command
	// processing.
	Unhandled RouteOutcome = "UNHANDLED"
)

// InboundMessage is a direct message received from a requester.
type InboundMessage struct {
	RequesterID   string
	RequesterName string
	Text          string
}

// RouterConfig holds the routing constants.
type RouterConfig struct {
	AdminChannel    domain.ChannelHandle
	SelectionWindow time.Duration
}

// MessageRouter decides whether an inbound message is ticket elaboration,
// a fresh topic pick, or ordinary traffic, and relays admin replies back
// to requesters.
type MessageRouter struct {
	cfg        RouterConfig
	pending    *store.PendingTopicStore
	lifecycle  *LifecycleManager
	notifier   platform.NotificationGateway
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// RouterDependencies bundles collaborators for the router.
type RouterDependencies struct {
	Pending    *store.PendingTopicStore
	Lifecycle  *LifecycleManager
	Notifier   platform.NotificationGateway
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewMessageRouter constructs the router.
func NewMessageRouter(cfg RouterConfig, deps RouterDependencies) *MessageRouter {
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &MessageRouter{
		cfg:        cfg,
		pending:    deps.Pending,
		lifecycle:  deps.Lifecycle,
		notifier:   deps.Notifier,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// HandleTopicSelection processes a requester's pick from the topic menu.
// The assistant topic bypasses the pending-topic buffer and opens a
// ticket directly; every other topic is buffered for one follow-up
// message within the selection window.
func (r *MessageRouter) HandleTopicSelection(ctx context.Context, requesterID, requesterName string, topic domain.Topic) (*domain.Ticket, error) {
	if !topic.Valid() {
		return nil, apperrors.NewValidationError("unknown topic", map[string]any{"topic": string(topic)})
	}

	if topic == domain.TopicAssistant {
		return r.lifecycle.CreateTicket(ctx, requesterID, requesterName)
	}

	expiresAt := r.clock.Now().Add(r.cfg.SelectionWindow)
	r.pending.Put(domain.PendingTopic{
		RequesterID: requesterID,
		Topic:       topic,
		ExpiresAt:   expiresAt,
	})
	r.metrics.SetPendingTopics(r.pending.Len())

	prompt := platform.Content{
		Body: fmt.Sprintf("You picked: %s.\nNow describe your problem in this chat.", topic.Label()),
	}
	if err := r.notifier.SendDirectMessage(ctx, requesterID, prompt); err != nil {
		r.logger.Warn("selection prompt not delivered",
			zap.String("requester_id", requesterID), zap.Error(err))
	}

	r.publish(ctx, events.Event{
		Type:        events.EventTopicSelected,
		RequesterID: requesterID,
		Payload:     events.TopicSelectedPayload{Topic: topic, ExpiresAt: expiresAt},
	})
	return nil, nil
}

// HandleDirectMessage routes one inbound direct message. A live pending
// topic turns the message into ticket elaboration forwarded to the admin
// channel; an expired or absent one falls through.
func (r *MessageRouter) HandleDirectMessage(ctx context.Context, msg InboundMessage) (RouteOutcome, error) {
	now := r.clock.Now()
	if selection, ok := r.pending.Pop(msg.RequesterID, now); ok {
		r.metrics.SetPendingTopics(r.pending.Len())
		return r.forwardElaboration(ctx, msg, selection)
	}
	r.metrics.SetPendingTopics(r.pending.Len())

	if ticket, ok := r.lifecycle.Tickets().Get(msg.RequesterID); ok && ticket.Status == domain.TicketStatusOpen {
		return TicketTraffic, nil
	}
	return Unhandled, nil
}

func (r *MessageRouter) forwardElaboration(ctx context.Context, msg InboundMessage, selection domain.PendingTopic) (RouteOutcome, error) {
	r.lifecycle.RefreshActivity(msg.RequesterID)

	notification := platform.Content{
		Title:  fmt.Sprintf("New message: %s", selection.Topic.Label()),
		Body:   msg.Text,
		Footer: fmt.Sprintf("%s (ID: %s)", msg.RequesterName, msg.RequesterID),
	}
	binding := &platform.ReplyBinding{RequesterID: msg.RequesterID}
	if err := r.notifier.SendToChannel(ctx, r.cfg.AdminChannel, notification, binding, nil); err != nil {
		r.logger.Error("admin forward failed",
			zap.String("requester_id", msg.RequesterID), zap.Error(err))
		return Unhandled, apperrors.NewDeliveryFailed("your message could not be forwarded, try again later", err)
	}

	confirmation := platform.Content{Body: "Your message has been recorded and forwarded to the administration."}
	if err := r.notifier.SendDirectMessage(ctx, msg.RequesterID, confirmation); err != nil {
		r.logger.Warn("receipt confirmation not delivered",
			zap.String("requester_id", msg.RequesterID), zap.Error(err))
	}

	r.publish(ctx, events.Event{
		Type:        events.EventMessageForwarded,
		RequesterID: msg.RequesterID,
		Payload: events.MessageForwardedPayload{
			Topic:       selection.Topic,
			BodyPreview: preview(msg.Text, 120),
		},
	})
	r.metrics.MessageForwarded()
	return RoutedToAdmin, nil
}

// DeliverAdminReply sends an admin's reply to the requester as a direct
// message. Blocked DMs are a local, recoverable condition reported as
// DELIVERY_FAILED; nothing is raised beyond that and no ticket state is
// touched.
func (r *MessageRouter) DeliverAdminReply(ctx context.Context, adminID, adminName, requesterID, text string) error {
	content := platform.Content{
		Title:  "Reply from the administration",
		Body:   text,
		Footer: fmt.Sprintf("Reply from: %s", adminName),
	}
	err := r.notifier.SendDirectMessage(ctx, requesterID, content)
	delivered := err == nil

	r.publish(ctx, events.Event{
		Type:        events.EventReplyDelivered,
		RequesterID: requesterID,
		Payload:     events.ReplyDeliveredPayload{AdminID: adminID, Delivered: delivered},
	})

	switch {
	case err == nil:
		r.metrics.ReplyDelivered("ok")
		return nil
	case errors.Is(err, platform.ErrForbidden):
		r.metrics.ReplyDelivered("blocked")
		return apperrors.NewDeliveryFailed("the user does not accept direct messages", err)
	case errors.Is(err, platform.ErrNotFound):
		r.metrics.ReplyDelivered("not_found")
		return apperrors.NewNotFound("user", map[string]any{"requester_id": requesterID})
	default:
		r.metrics.ReplyDelivered("error")
		return apperrors.NewDeliveryFailed("the reply could not be delivered", err)
	}
}

func (r *MessageRouter) publish(ctx context.Context, event events.Event) {
	if r.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = r.clock.Now()
	}
	_ = r.dispatcher.Publish(ctx, event)
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
