package service

import (
	"fmt"
	"sync"
	"testing"

	"assistant/internal/model"
)

func newTestRegistry(maxHistory int) *SessionRegistry {
	return NewSessionRegistry(func() (*SlotManager, *ContextTracker) {
		return newTestSlotManager(), NewContextTracker()
	}, maxHistory)
}

func TestGetOrCreateReturnsSameSession(t *testing.T) {
	r := newTestRegistry(10)

	a := r.GetOrCreate("s1")
	b := r.GetOrCreate("s1")
	if a != b {
		t.Error("GetOrCreate returned different sessions for the same id")
	}
	if r.Count() != 1 {
		t.Errorf("count = %d, want 1", r.Count())
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	r := newTestRegistry(10)

	a := r.GetOrCreate("s1")
	a.Lock()
	a.Slots().UpdateSlots(map[string]string{SlotCottageNumber: "7"})
	a.Unlock()

	b := r.GetOrCreate("s2")
	b.Lock()
	defer b.Unlock()
	if got := b.Slots().CottageNumber(); got != 0 {
		t.Errorf("session s2 cottage = %d, state leaked across sessions", got)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	r := newTestRegistry(4)
	s := r.GetOrCreate("s1")

	s.Lock()
	for i := 0; i < 10; i++ {
		s.AppendMessage(model.ChatMessage{Role: "user", Content: fmt.Sprintf("msg %d", i)})
	}
	history := s.History()
	s.Unlock()

	if len(history) != 4 {
		t.Fatalf("history length = %d, want 4", len(history))
	}
	if history[len(history)-1].Content != "msg 9" {
		t.Errorf("last message = %q, want the newest", history[len(history)-1].Content)
	}
}

func TestClearKeepsSessionAlive(t *testing.T) {
	r := newTestRegistry(10)
	s := r.GetOrCreate("s1")
	s.Lock()
	s.Slots().UpdateSlots(map[string]string{SlotCottageNumber: "7"})
	s.AppendMessage(model.ChatMessage{Role: "user", Content: "hi"})
	s.Unlock()

	if !r.Clear("s1") {
		t.Fatal("Clear returned false for an existing session")
	}
	s.Lock()
	defer s.Unlock()
	if len(s.History()) != 0 || s.Slots().CottageNumber() != 0 {
		t.Error("clear did not reset conversation state")
	}
	if r.Count() != 1 {
		t.Errorf("count = %d, clear must not delete the session", r.Count())
	}
}

func TestDelete(t *testing.T) {
	r := newTestRegistry(10)
	r.GetOrCreate("s1")

	if !r.Delete("s1") {
		t.Error("Delete returned false for an existing session")
	}
	if r.Delete("s1") {
		t.Error("Delete returned true for a missing session")
	}
	if r.Clear("missing") {
		t.Error("Clear returned true for a missing session")
	}
}

func TestGetDoesNotCreate(t *testing.T) {
	r := newTestRegistry(10)

	if _, ok := r.Get("missing"); ok {
		t.Error("Get returned ok for a session that was never created")
	}
	if r.Count() != 0 {
		t.Errorf("count = %d, Get must not allocate", r.Count())
	}

	created := r.GetOrCreate("s1")
	got, ok := r.Get("s1")
	if !ok || got != created {
		t.Error("Get did not return the existing session")
	}
}

func TestRestoreMigratesAndSeedsSlots(t *testing.T) {
	r := newTestRegistry(10)
	s := r.Restore("s1", map[string]string{"cottage_no": "7", SlotGuestCount: "4"})

	s.Lock()
	defer s.Unlock()
	if got := s.Slots().CottageNumber(); got != 7 {
		t.Errorf("restored cottage = %d, want 7", got)
	}
	if got := s.Slots().Value(SlotGuestCount); got != "4" {
		t.Errorf("restored guests = %q, want 4", got)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := newTestRegistry(10)
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i%4)
			s := r.GetOrCreate(id)
			s.Lock()
			s.AppendMessage(model.ChatMessage{Role: "user", Content: "hello"})
			s.Unlock()
		}(i)
	}
	wg.Wait()

	if r.Count() != 4 {
		t.Errorf("count = %d, want 4", r.Count())
	}
}
