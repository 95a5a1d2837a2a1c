package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/miloszkon/supportbot/internal/clock"
	"github.com/miloszkon/supportbot/internal/config"
	"github.com/miloszkon/supportbot/internal/domain"
	"github.com/miloszkon/supportbot/internal/platform/telegram"
	"github.com/miloszkon/supportbot/internal/service"
	apperrors "github.com/miloszkon/supportbot/pkg/util"
)

// actionHandler processes one decoded callback action.
type actionHandler func(ctx context.Context, cb *tb.Callback, action telegram.Action) string

// Bot is the Telegram-facing surface. It translates platform events
// (commands, messages, callback buttons) into calls on the router and
// lifecycle manager; all ticket logic lives behind those.
type Bot struct {
	tb        *tb.Bot
	router    *service.MessageRouter
	lifecycle *service.LifecycleManager
	logger    *zap.Logger
	handlers  map[telegram.ActionKind]actionHandler
	replies   *replyCapture
}

// Dependencies bundles collaborators for the bot surface.
type Dependencies struct {
	Router    *service.MessageRouter
	Lifecycle *service.LifecycleManager
	Clock     clock.Clock
	Logger    *zap.Logger
}

// Connect establishes the bot connection.
func Connect(cfg config.TelegramConfig) (*tb.Bot, error) {
	poller := &tb.LongPoller{Timeout: time.Duration(cfg.PollTimeoutSec) * time.Second}
	return tb.NewBot(tb.Settings{
		Token:  cfg.Token,
		Poller: poller,
	})
}

// New wires the bot surface onto an established connection.
func New(conn *tb.Bot, cfg config.TicketConfig, deps Dependencies) *Bot {
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	b := &Bot{
		tb:        conn,
		router:    deps.Router,
		lifecycle: deps.Lifecycle,
		logger:    deps.Logger,
		replies:   newReplyCapture(cfg.SelectionWindow, deps.Clock),
	}
	b.handlers = map[telegram.ActionKind]actionHandler{
		telegram.ActionSelectTopic: b.handleTopicAction,
		telegram.ActionReply:       b.handleReplyAction,
		telegram.ActionClaim:       b.handleClaimAction,
		telegram.ActionClose:       b.handleCloseAction,
	}
	b.registerRoutes()
	return b
}

// Start begins long polling. It blocks until Stop is called.
func (b *Bot) Start() {
	b.tb.Start()
}

// Stop terminates long polling.
func (b *Bot) Stop() {
	b.tb.Stop()
}

func (b *Bot) registerRoutes() {
	b.tb.Handle("/help", b.onHelp)
	b.tb.Handle("/start", b.onHelp)
	b.tb.Handle(tb.OnText, b.onText)
	b.tb.Handle(tb.OnCallback, b.onCallback)
}

// onHelp presents the topic menu in the requester's private chat.
func (b *Bot) onHelp(m *tb.Message) {
	rows := make([][]tb.InlineButton, 0, len(domain.AllTopics))
	for _, topic := range domain.AllTopics {
		rows = append(rows, []tb.InlineButton{{
			Text: topic.Label(),
			Data: telegram.Action{Kind: telegram.ActionSelectTopic, Value: string(topic)}.Encode(),
		}})
	}
	markup := &tb.ReplyMarkup{InlineKeyboard: rows}

	_, err := b.tb.Send(m.Sender, "How can we help you? Pick a problem from the list:", markup)
	if err != nil {
		// DMs disabled; tell the user where they asked
		_, _ = b.tb.Reply(m, "I cannot send you a private message. Allow direct messages from the bot and try again.")
	}
}

// onText routes direct messages and armed admin replies.
func (b *Bot) onText(m *tb.Message) {
	if m.Sender == nil || m.Sender.IsBot {
		return
	}
	ctx := context.Background()
	senderID := strconv.FormatInt(m.Sender.ID, 10)

	if requesterID, ok := b.replies.consume(senderID); ok {
		b.deliverReply(ctx, m, requesterID)
		return
	}

	if !m.Private() {
		return
	}

	outcome, err := b.router.HandleDirectMessage(ctx, service.InboundMessage{
		RequesterID:   senderID,
		RequesterName: displayName(m.Sender),
		Text:          m.Text,
	})
	if err != nil {
		b.logger.Warn("message routing failed", zap.String("requester_id", senderID), zap.Error(err))
		_, _ = b.tb.Reply(m, apperrors.ToDomainError(err).Message)
		return
	}
	if outcome == service.Unhandled {
		_, _ = b.tb.Reply(m, "Use /help to pick a support topic first.")
	}
}

func (b *Bot) onCallback(cb *tb.Callback) {
	if cb.Sender == nil {
		return
	}
	action, ok := telegram.ParseAction(cb.Data)
	if !ok {
		b.respond(cb, "Unknown action.")
		return
	}
	handler, ok := b.handlers[action.Kind]
	if !ok {
		b.respond(cb, "Unknown action.")
		return
	}
	b.respond(cb, handler(context.Background(), cb, action))
}

func (b *Bot) handleTopicAction(ctx context.Context, cb *tb.Callback, action telegram.Action) string {
	requesterID := strconv.FormatInt(cb.Sender.ID, 10)
	topic := domain.Topic(action.Value)

	ticket, err := b.router.HandleTopicSelection(ctx, requesterID, displayName(cb.Sender), topic)
	if err != nil {
		return apperrors.ToDomainError(err).Message
	}
	if ticket != nil {
		return fmt.Sprintf("Ticket %s created. Management will join you shortly.", ticket.Ref)
	}
	return fmt.Sprintf("You picked: %s. Now send your message here.", topic.Label())
}

func (b *Bot) handleReplyAction(_ context.Context, cb *tb.Callback, action telegram.Action) string {
	adminID := strconv.FormatInt(cb.Sender.ID, 10)
	b.replies.arm(adminID, action.Value)
	return "Send your reply as your next message."
}

func (b *Bot) handleClaimAction(ctx context.Context, cb *tb.Callback, action telegram.Action) string {
	actorID := strconv.FormatInt(cb.Sender.ID, 10)
	if err := b.lifecycle.ClaimTicket(ctx, actorID, displayName(cb.Sender), action.Value); err != nil {
		return apperrors.ToDomainError(err).Message
	}
	return "Ticket claimed."
}

func (b *Bot) handleCloseAction(ctx context.Context, cb *tb.Callback, action telegram.Action) string {
	actorID := strconv.FormatInt(cb.Sender.ID, 10)
	if err := b.lifecycle.CloseTicketManually(ctx, actorID, action.Value); err != nil {
		return apperrors.ToDomainError(err).Message
	}
	return "Ticket closed. The channel will be removed shortly."
}

func (b *Bot) deliverReply(ctx context.Context, m *tb.Message, requesterID string) {
	adminID := strconv.FormatInt(m.Sender.ID, 10)
	err := b.router.DeliverAdminReply(ctx, adminID, displayName(m.Sender), requesterID, m.Text)
	if err != nil {
		_, _ = b.tb.Reply(m, apperrors.ToDomainError(err).Message)
		return
	}
	_, _ = b.tb.Reply(m, "Reply delivered.")
}

func (b *Bot) respond(cb *tb.Callback, text string) {
	if err := b.tb.Respond(cb, &tb.CallbackResponse{Text: text}); err != nil {
		b.logger.Warn("callback response failed", zap.Error(err))
	}
}

func displayName(u *tb.User) string {
	switch {
	case u.Username != "":
		return u.Username
	case u.LastName != "":
		return u.FirstName + " " + u.LastName
	default:
		return u.FirstName
	}
}
