package telegram

import (
	"fmt"
	"strings"
)

// ActionKind names an interactive affordance on a bot message.
type ActionKind string

const (
	ActionSelectTopic ActionKind = "topic"
	ActionReply       ActionKind = "reply"
	ActionClaim       ActionKind = "claim"
	ActionClose       ActionKind = "close"
)

// Action is the plain event record carried in a callback button. It
// replaces UI-bound handler objects: the button only transports data,
// and a handler table interprets it.
type Action struct {
	Kind ActionKind
	// Value is the requester ID for reply/claim/close and the topic key
	// for topic selection.
	Value string
}

// Encode renders the action as callback data.
func (a Action) Encode() string {
	return fmt.Sprintf("%s|%s", a.Kind, a.Value)
}

// ParseAction decodes callback data into an Action.
func ParseAction(data string) (Action, bool) {
	// telebot prefixes data of buttons it created with "\f<unique>|";
	// strip that so both raw and library-built buttons decode the same
	data = strings.TrimPrefix(data, "\f")
	parts := strings.SplitN(data, "|", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Action{}, false
	}
	return Action{Kind: ActionKind(parts[0]), Value: parts[1]}, true
}
