package events

import (
	"time"

	"github.com/miloszkon/supportbot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened     EventType = "ticket_opened"
	EventTicketClosed     EventType = "ticket_closed"
	EventTicketDeleted    EventType = "ticket_deleted"
	EventTopicSelected    EventType = "topic_selected"
	EventMessageForwarded EventType = "message_forwarded"
	EventReplyDelivered   EventType = "reply_delivered"
)

// Event represents a domain event emitted by the support core.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	RequesterID string      `json:"requester_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	Ref     string               `json:"ref"`
	Channel domain.ChannelHandle `json:"channel"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Ref        string             `json:"ref"`
	Reason     domain.CloseReason `json:"reason"`
	ActorID    string             `json:"actor_id,omitempty"`
	DeletionAt time.Time          `json:"deletion_at"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Ref            string               `json:"ref"`
	Channel        domain.ChannelHandle `json:"channel"`
	ChannelRemoved bool                 `json:"channel_removed"`
}

// TopicSelectedPayload payload.
type TopicSelectedPayload struct {
	Topic     domain.Topic `json:"topic"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// MessageForwardedPayload payload.
type MessageForwardedPayload struct {
	Topic       domain.Topic `json:"topic"`
	BodyPreview string       `json:"body_preview"`
}

// ReplyDeliveredPayload payload.
type ReplyDeliveredPayload struct {
	AdminID   string `json:"admin_id"`
	Delivered bool   `json:"delivered"`
}
