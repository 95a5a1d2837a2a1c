package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/miloszkon/supportbot/internal/events"
)

// AuditService turns domain events into structured log lines. It is the
// single place observing the full lifecycle regardless of which path
// (manual, watchdog, ops API) triggered a transition.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to every event type.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketOpened, a.handle("TicketOpened"))
	a.dispatcher.Subscribe(events.EventTicketClosed, a.handle("TicketClosed"))
	a.dispatcher.Subscribe(events.EventTicketDeleted, a.handle("TicketDeleted"))
	a.dispatcher.Subscribe(events.EventTopicSelected, a.handle("TopicSelected"))
	a.dispatcher.Subscribe(events.EventMessageForwarded, a.handle("MessageForwarded"))
	a.dispatcher.Subscribe(events.EventReplyDelivered, a.handle("ReplyDelivered"))
}

func (a *AuditService) handle(name string) events.EventHandler {
	return func(_ context.Context, event events.Event) error {
		a.logger.Info(name,
			zap.String("event_id", event.ID),
			zap.String("requester_id", event.RequesterID),
			zap.Any("payload", event.Payload))
		return nil
	}
}
