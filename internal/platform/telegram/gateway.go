package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/miloszkon/supportbot/internal/domain"
	"github.com/miloszkon/supportbot/internal/platform"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Gateway adapts a Telegram bot connection to the platform collaborator
// interfaces. Support channels are forum topics inside the management
// group; direct messages go to the requester's private chat.
type Gateway struct {
	bot         *tb.Bot
	adminChatID int64
	logger      *zap.Logger
}

// NewGateway wraps an established bot connection.
func NewGateway(bot *tb.Bot, adminChatID int64, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{bot: bot, adminChatID: adminChatID, logger: logger}
}

// AdminChannel returns the handle of the shared management channel.
func (g *Gateway) AdminChannel() domain.ChannelHandle {
	return domain.ChannelHandle(strconv.FormatInt(g.adminChatID, 10))
}

// Probe reports whether the bot connection is usable.
func (g *Gateway) Probe() error {
	if g.bot == nil || g.bot.Me == nil {
		return errors.New("bot connection not established")
	}
	return nil
}

// CreateSupportChannel opens a forum topic in the management group. The
// group's topic visibility rules restrict it to the requester's thread
// participants and group administrators.
func (g *Gateway) CreateSupportChannel(_ context.Context, requesterID, requesterName, category string) (domain.ChannelHandle, error) {
	name := fmt.Sprintf("%s-%s", category, sanitizeTopicName(requesterName, requesterID))
	raw, err := g.bot.Raw("createForumTopic", map[string]interface{}{
		"chat_id": g.adminChatID,
		"name":    name,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", platform.ErrChannelUnavailable, err)
	}

	var resp struct {
		Result struct {
			MessageThreadID int64 `json:"message_thread_id"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Result.MessageThreadID == 0 {
		return "", fmt.Errorf("%w: unexpected createForumTopic response", platform.ErrChannelUnavailable)
	}
	return encodeHandle(g.adminChatID, resp.Result.MessageThreadID), nil
}

// DeleteChannel removes the forum topic behind the handle.
func (g *Gateway) DeleteChannel(_ context.Context, handle domain.ChannelHandle) error {
	chatID, threadID, err := decodeHandle(handle)
	if err != nil {
		return fmt.Errorf("%w: %v", platform.ErrDeletionFailed, err)
	}
	if threadID == 0 {
		// the shared admin channel is never deleted
		return fmt.Errorf("%w: refusing to delete the admin channel", platform.ErrDeletionFailed)
	}
	if _, err := g.bot.Raw("deleteForumTopic", map[string]interface{}{
		"chat_id":           chatID,
		"message_thread_id": threadID,
	}); err != nil {
		return fmt.Errorf("%w: %v", platform.ErrDeletionFailed, err)
	}
	return nil
}

// SendToChannel delivers content into a channel, attaching callback
// buttons for the reply binding and management actions.
func (g *Gateway) SendToChannel(_ context.Context, handle domain.ChannelHandle, content platform.Content, binding *platform.ReplyBinding, actions *platform.ChannelActions) error {
	chatID, threadID, err := decodeHandle(handle)
	if err != nil {
		return fmt.Errorf("%w: %v", platform.ErrDeliveryFailed, err)
	}

	payload := map[string]interface{}{
		"chat_id": chatID,
		"text":    renderContent(content),
	}
	if threadID != 0 {
		payload["message_thread_id"] = threadID
	}
	if markup := buildMarkup(binding, actions); markup != nil {
		payload["reply_markup"] = markup
	}

	if _, err := g.bot.Raw("sendMessage", payload); err != nil {
		return fmt.Errorf("%w: %v", platform.ErrDeliveryFailed, err)
	}
	return nil
}

// SendDirectMessage delivers content to the requester's private chat.
func (g *Gateway) SendDirectMessage(_ context.Context, requesterID string, content platform.Content) error {
	id, err := strconv.ParseInt(requesterID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad requester id %q", platform.ErrNotFound, requesterID)
	}
	_, err = g.bot.Send(tb.ChatID(id), renderContent(content))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tb.ErrChatNotFound):
		return fmt.Errorf("%w: %v", platform.ErrNotFound, err)
	case errors.Is(err, tb.ErrBlockedByUser), apiErrorCode(err) == 403:
		// blocked bot or a chat the bot may not initiate
		return fmt.Errorf("%w: %v", platform.ErrForbidden, err)
	default:
		return fmt.Errorf("%w: %v", platform.ErrDeliveryFailed, err)
	}
}

func apiErrorCode(err error) int {
	var apiErr *tb.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// HasManagementCapability checks whether the actor is an administrator
// of the management group.
func (g *Gateway) HasManagementCapability(_ context.Context, actorID string) (bool, error) {
	id, err := strconv.ParseInt(actorID, 10, 64)
	if err != nil {
		return false, nil
	}
	member, err := g.bot.ChatMemberOf(&tb.Chat{ID: g.adminChatID}, &tb.User{ID: id})
	if err != nil {
		return false, err
	}
	return member.Role == tb.Creator || member.Role == tb.Administrator, nil
}

func encodeHandle(chatID, threadID int64) domain.ChannelHandle {
	return domain.ChannelHandle(fmt.Sprintf("%d:%d", chatID, threadID))
}

func decodeHandle(handle domain.ChannelHandle) (chatID, threadID int64, err error) {
	parts := strings.SplitN(string(handle), ":", 2)
	chatID, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad channel handle %q", handle)
	}
	if len(parts) == 2 {
		threadID, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("bad channel handle %q", handle)
		}
	}
	return chatID, threadID, nil
}

func renderContent(content platform.Content) string {
	var b strings.Builder
	if content.Title != "" {
		b.WriteString(content.Title)
		b.WriteString("\n\n")
	}
	b.WriteString(content.Body)
	if content.Footer != "" {
		b.WriteString("\n\n")
		b.WriteString(content.Footer)
	}
	return b.String()
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineMarkup struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

func buildMarkup(binding *platform.ReplyBinding, actions *platform.ChannelActions) *inlineMarkup {
	var row []inlineButton
	if binding != nil {
		row = append(row, inlineButton{
			Text:         "Reply",
			CallbackData: Action{Kind: ActionReply, Value: binding.RequesterID}.Encode(),
		})
	}
	if actions != nil {
		if actions.Claim {
			row = append(row, inlineButton{
				Text:         "Claim",
				CallbackData: Action{Kind: ActionClaim, Value: actions.RequesterID}.Encode(),
			})
		}
		if actions.Close {
			row = append(row, inlineButton{
				Text:         "Close",
				CallbackData: Action{Kind: ActionClose, Value: actions.RequesterID}.Encode(),
			})
		}
	}
	if len(row) == 0 {
		return nil
	}
	return &inlineMarkup{InlineKeyboard: [][]inlineButton{row}}
}

func sanitizeTopicName(name, fallback string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, name)
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = fallback
	}
	if len(cleaned) > 32 {
		cleaned = cleaned[:32]
	}
	return strings.ToLower(cleaned)
}
