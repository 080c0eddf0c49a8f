package service

import (
	"sync"
	"time"

	"assistant/internal/model"
)

// Session holds everything scoped to one conversation: bounded chat
// history, slot state and the context tracker. All access goes
// through Lock/Unlock; a read-modify-write sequence holds the lock
// for its whole duration.
type Session struct {
	ID string

	mu         sync.Mutex
	history    []model.ChatMessage
	slots      *SlotManager
	tracker    *ContextTracker
	maxHistory int
	createdAt  time.Time

	// calculation intent still waiting on slots, so a bare follow-up
	// like "from feb 3 to feb 5" resumes it
	pendingIntent model.Intent
}

// PendingIntent returns the calculation intent awaiting more slots,
// if any. Callers must hold the lock.
func (s *Session) PendingIntent() model.Intent { return s.pendingIntent }

// SetPendingIntent records or clears the awaiting intent. Callers
// must hold the lock.
func (s *Session) SetPendingIntent(intent model.Intent) { s.pendingIntent = intent }

// Lock acquires the session lock
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session lock
func (s *Session) Unlock() { s.mu.Unlock() }

// Slots returns the session's slot manager. Callers must hold the lock.
func (s *Session) Slots() *SlotManager { return s.slots }

// Tracker returns the session's context tracker. Callers must hold the lock.
func (s *Session) Tracker() *ContextTracker { return s.tracker }

// History returns a copy of the chat history. Callers must hold the lock.
func (s *Session) History() []model.ChatMessage {
	out := make([]model.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// AppendMessage adds a turn summary to the bounded history. Callers
// must hold the lock.
func (s *Session) AppendMessage(msg model.ChatMessage) {
	s.history = append(s.history, msg)
	if len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
}

// clear resets conversation state while keeping the session alive
func (s *Session) clear() {
	s.history = nil
	s.slots.Clear()
	s.tracker.Reset()
	s.pendingIntent = ""
}

// SessionFactory builds per-session components
type SessionFactory func() (*SlotManager, *ContextTracker)

// SessionRegistry exclusively owns all sessions, keyed by session id.
// Sessions are created lazily on first message and live for the
// process lifetime unless explicitly cleared or deleted; there is no
// TTL. Cross-session state is independent.
type SessionRegistry struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	factory    SessionFactory
	maxHistory int
}

// NewSessionRegistry creates an empty registry
func NewSessionRegistry(factory SessionFactory, maxHistory int) *SessionRegistry {
	if maxHistory <= 0 {
		maxHistory = 40
	}
	return &SessionRegistry{
		sessions:   make(map[string]*Session),
		factory:    factory,
		maxHistory: maxHistory,
	}
}

// GetOrCreate returns the session for id, creating it on first use
func (r *SessionRegistry) GetOrCreate(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		return s
	}

	slots, tracker := r.factory()
	s := &Session{
		ID:         id,
		slots:      slots,
		tracker:    tracker,
		maxHistory: r.maxHistory,
		createdAt:  time.Now(),
	}
	r.sessions[id] = s
	return s
}

// Get returns the session for id without creating one
func (r *SessionRegistry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Restore creates a session seeded with persisted slot values,
// running the one-time legacy key migration before any live
// read/write happens
func (r *SessionRegistry) Restore(id string, slotValues map[string]string) *Session {
	s := r.GetOrCreate(id)
	s.Lock()
	s.slots.Restore(slotValues)
	s.Unlock()
	return s
}

// Clear resets a session's conversation state. Returns false when the
// session does not exist.
func (r *SessionRegistry) Clear(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return false
	}
	s.Lock()
	s.clear()
	s.Unlock()
	return true
}

// Delete removes a session entirely. Returns false when the session
// does not exist.
func (r *SessionRegistry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Count returns the number of live sessions
func (r *SessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
