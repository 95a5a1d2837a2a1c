package store

import (
	"testing"
	"time"

	"github.com/miloszkon/supportbot/internal/domain"
)

func TestPopIsSingleUse(t *testing.T) {
	s := NewPendingTopicStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.Put(domain.PendingTopic{RequesterID: "u1", Topic: domain.TopicGameProblem, ExpiresAt: now.Add(15 * time.Minute)})

	p, ok := s.Pop("u1", now.Add(time.Minute))
	if !ok || p.Topic != domain.TopicGameProblem {
		t.Fatalf("Pop() = %+v, %v; want game problem topic", p, ok)
	}
	if _, ok := s.Pop("u1", now.Add(time.Minute)); ok {
		t.Fatal("second Pop should find nothing")
	}
}

func TestPopTreatsExpiredAsMissing(t *testing.T) {
	s := NewPendingTopicStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.Put(domain.PendingTopic{RequesterID: "u1", Topic: domain.TopicServerIdea, ExpiresAt: now.Add(15 * time.Minute)})

	if _, ok := s.Pop("u1", now.Add(16*time.Minute)); ok {
		t.Fatal("expired selection should not be honored")
	}
	if s.Len() != 0 {
		t.Fatalf("expired entry should be dropped on Pop, Len() = %d", s.Len())
	}
}

func TestPutReplacesEarlierSelection(t *testing.T) {
	s := NewPendingTopicStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.Put(domain.PendingTopic{RequesterID: "u1", Topic: domain.TopicRecruitment, ExpiresAt: now.Add(15 * time.Minute)})
	s.Put(domain.PendingTopic{RequesterID: "u1", Topic: domain.TopicServerIdea, ExpiresAt: now.Add(20 * time.Minute)})

	p, ok := s.Pop("u1", now)
	if !ok || p.Topic != domain.TopicServerIdea {
		t.Fatalf("Pop() = %+v, want latest selection", p)
	}
}

func TestSweepDropsOnlyExpired(t *testing.T) {
	s := NewPendingTopicStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.Put(domain.PendingTopic{RequesterID: "old", Topic: domain.TopicRecruitment, ExpiresAt: now.Add(-time.Minute)})
	s.Put(domain.PendingTopic{RequesterID: "fresh", Topic: domain.TopicGameProblem, ExpiresAt: now.Add(10 * time.Minute)})

	if removed := s.Sweep(now); removed != 1 {
		t.Fatalf("Sweep() = %d, want 1", removed)
	}
	if _, ok := s.Pop("fresh", now); !ok {
		t.Fatal("fresh selection should survive the sweep")
	}
}
