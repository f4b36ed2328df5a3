package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
)

func TestStoreCreatesOnFirstUse(t *testing.T) {
	s := NewStore()
	now := time.Now()

	s.Do("abc", now, func(sess *models.Session) {
		if sess.ID != "abc" {
			t.Errorf("id = %q", sess.ID)
		}
		if !sess.StartedAt.Equal(now) {
			t.Errorf("startedAt = %v, want %v", sess.StartedAt, now)
		}
		if sess.Evidence == nil {
			t.Error("evidence set not initialized")
		}
	})

	if s.Count() != 1 {
		t.Errorf("count = %d, want 1", s.Count())
	}
}

func TestStoreViewMissingSession(t *testing.T) {
	s := NewStore()

	if s.View("nope", func(*models.Session) {}) {
		t.Error("View reported a session that was never created")
	}
}

func TestStoreConcurrentTurnsSerialized(t *testing.T) {
	s := NewStore()
	now := time.Now()

	const workers = 50
	const turnsEach = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < turnsEach; j++ {
				s.Do("shared", now, func(sess *models.Session) {
					sess.TurnCount++
					sess.History = append(sess.History, models.RawMessage{Text: "x"})
				})
			}
		}()
	}
	wg.Wait()

	s.Do("shared", now, func(sess *models.Session) {
		if sess.TurnCount != workers*turnsEach {
			t.Errorf("turnCount = %d, want %d (lost updates)", sess.TurnCount, workers*turnsEach)
		}
		if len(sess.History) != workers*turnsEach {
			t.Errorf("history length = %d, want %d", len(sess.History), workers*turnsEach)
		}
	})
}

func TestStoreSessionsIndependent(t *testing.T) {
	s := NewStore()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", n)
			for j := 0; j < 10; j++ {
				s.Do(id, now, func(sess *models.Session) {
					sess.TurnCount++
				})
			}
		}(i)
	}
	wg.Wait()

	if s.Count() != 20 {
		t.Errorf("count = %d, want 20", s.Count())
	}
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("session-%d", i)
		s.Do(id, now, func(sess *models.Session) {
			if sess.TurnCount != 10 {
				t.Errorf("%s turnCount = %d, want 10", id, sess.TurnCount)
			}
		})
	}
}
