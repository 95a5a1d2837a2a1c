package domain

import "time"

// TicketStatus enumerates lifecycle states for support tickets.
type TicketStatus string

const (
	TicketStatusOpen           TicketStatus = "OPEN"
	TicketStatusPendingClosure TicketStatus = "PENDING_CLOSURE"
)

// CloseReason records why a ticket left the Open state.
type CloseReason string

const (
	CloseReasonManual  CloseReason = "MANUAL"
	CloseReasonTimeout CloseReason = "TIMEOUT"
)

// ChannelHandle is an opaque reference to a provisioned support channel.
// Only the channel provisioner knows how to interpret it.
type ChannelHandle string

// Ticket is the tracked support interaction for one requester. The
// requester ID is the store key; at most one non-removed ticket exists
// per requester at any time. A removed ticket is absent from the store,
// so there is no terminal status constant.
type Ticket struct {
	Ref                 string
	RequesterID         string
	RequesterName       string
	Status              TicketStatus
	Channel             ChannelHandle
	OwnerID             string
	CreatedAt           time.Time
	LastActivityAt      time.Time
	ScheduledDeletionAt *time.Time
}
