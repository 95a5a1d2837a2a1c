package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/miloszkon/supportbot/internal/auth"
	"github.com/miloszkon/supportbot/internal/service"
	"github.com/miloszkon/supportbot/internal/store"
	apperrors "github.com/miloszkon/supportbot/pkg/util"
)

// OpsHandler exposes operator endpoints over ticket state.
type OpsHandler struct {
	lifecycle *service.LifecycleManager
	pending   *store.PendingTopicStore
}

// NewOpsHandler constructs handler.
func NewOpsHandler(lifecycle *service.LifecycleManager, pending *store.PendingTopicStore) *OpsHandler {
	return &OpsHandler{lifecycle: lifecycle, pending: pending}
}

type ticketSummary struct {
	Ref                 string     `json:"ref"`
	RequesterID         string     `json:"requester_id"`
	RequesterName       string     `json:"requester_name"`
	Status              string     `json:"status"`
	Channel             string     `json:"channel"`
	OwnerID             string     `json:"owner_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	LastActivityAt      time.Time  `json:"last_activity_at"`
	ScheduledDeletionAt *time.Time `json:"scheduled_deletion_at,omitempty"`
}

// ListTickets GET /ops/tickets.
func (h *OpsHandler) ListTickets(c *fiber.Ctx) error {
	tickets := h.lifecycle.Tickets().List()
	out := make([]ticketSummary, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, ticketSummary{
			Ref:                 t.Ref,
			RequesterID:         t.RequesterID,
			RequesterName:       t.RequesterName,
			Status:              string(t.Status),
			Channel:             string(t.Channel),
			OwnerID:             t.OwnerID,
			CreatedAt:           t.CreatedAt,
			LastActivityAt:      t.LastActivityAt,
			ScheduledDeletionAt: t.ScheduledDeletionAt,
		})
	}
	return c.JSON(fiber.Map{
		"data": out,
		"meta": fiber.Map{"pending_topics": h.pending.Len()},
	})
}

// CloseTicket POST /ops/tickets/:requester_id/close.
func (h *OpsHandler) CloseTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	requesterID := c.Params("requester_id")
	if requesterID == "" {
		return apperrors.NewValidationError("requester_id required", nil)
	}
	if err := h.lifecycle.CloseTicketManually(c.UserContext(), principal.ActorID, requesterID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"requester_id": requesterID, "closing": true}})
}
