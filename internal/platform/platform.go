package platform

import (
	"context"
	"errors"

	"github.com/miloszkon/supportbot/internal/domain"
)

// Sentinel errors returned by platform adapters. The service layer
// translates these into the public error taxonomy.
var (
	ErrChannelUnavailable = errors.New("support channel unavailable")
	ErrDeletionFailed     = errors.New("channel deletion failed")
	ErrDeliveryFailed     = errors.New("message delivery failed")
	ErrForbidden          = errors.New("recipient does not accept direct messages")
	ErrNotFound           = errors.New("recipient not found")
)

// Content is a platform-agnostic message body.
type Content struct {
	Title  string
	Body   string
	Footer string
}

// ReplyBinding ties an admin-channel notification back to the requester
// it concerns, so a reply can be routed without re-resolving identity.
type ReplyBinding struct {
	RequesterID string
}

// ChannelActions lists management affordances to attach to a channel
// message for a given ticket.
type ChannelActions struct {
	RequesterID string
	Claim       bool
	Close       bool
}

// ChannelProvisioner creates and removes dedicated support channels.
type ChannelProvisioner interface {
	// CreateSupportChannel provisions a channel under the given category,
	// visible to the requester and the management group only.
	CreateSupportChannel(ctx context.Context, requesterID, requesterName, category string) (domain.ChannelHandle, error)
	DeleteChannel(ctx context.Context, handle domain.ChannelHandle) error
}

// NotificationGateway delivers messages to channels and users.
type NotificationGateway interface {
	SendToChannel(ctx context.Context, handle domain.ChannelHandle, content Content, binding *ReplyBinding, actions *ChannelActions) error
	SendDirectMessage(ctx context.Context, requesterID string, content Content) error
}

// IdentityProvider answers permission questions about actors.
type IdentityProvider interface {
	HasManagementCapability(ctx context.Context, actorID string) (bool, error)
}
