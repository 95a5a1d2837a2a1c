package domain

import "time"

// Topic enumerates the fixed set of support topics a requester can pick.
type Topic string

const (
	TopicChannelVisibility Topic = "channel_visibility"
	TopicRecruitment       Topic = "recruitment_question"
	TopicGameProblem       Topic = "technical_game_problem"
	TopicServerIdea        Topic = "server_idea"
	// TopicAssistant bypasses the pending-topic flow entirely and opens a
	// ticket with a dedicated channel.
	TopicAssistant Topic = "connect_to_assistant"
)

// AllTopics lists every topic in menu order.
var AllTopics = []Topic{
	TopicChannelVisibility,
	TopicRecruitment,
	TopicGameProblem,
	TopicServerIdea,
	TopicAssistant,
}

var topicLabels = map[Topic]string{
	TopicChannelVisibility: "I cannot see the channels",
	TopicRecruitment:       "How do I apply for recruitment?",
	TopicGameProblem:       "I have a technical game problem",
	TopicServerIdea:        "I have an idea for the server",
	TopicAssistant:         "Connect me with an assistant",
}

// Label returns the human-readable menu label for the topic.
func (t Topic) Label() string {
	if label, ok := topicLabels[t]; ok {
		return label
	}
	return string(t)
}

// Valid reports whether the topic belongs to the fixed set.
func (t Topic) Valid() bool {
	_, ok := topicLabels[t]
	return ok
}

// PendingTopic is the single-use record of a requester's chosen support
// topic, awaiting one elaborating message. It is consumed at most once;
// past ExpiresAt it is no longer honored.
type PendingTopic struct {
	RequesterID string
	Topic       Topic
	ExpiresAt   time.Time
}
