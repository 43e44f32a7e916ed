package framework

import (
	"sync"
	"time"
)

// HistoryEntry records one processed request inside a session: the routing
// decision, the resolved response, its status, and when it happened. Failed
// requests are recorded too so they can still inform future routing.
type HistoryEntry struct {
	Routing   RoutingDecision `json:"routing_decision"`
	Response  string          `json:"response"`
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
}

// SessionContext is the mutable per-session state owned by the orchestrator.
// It lives in process memory for the process lifetime; there is no eviction
// and no persistence. Access must go through SessionStore.Acquire so that
// concurrent requests against the same session id are serialized.
type SessionContext struct {
	ID                string         `json:"session_id"`
	UserID            string         `json:"user_id,omitempty"`
	History           []HistoryEntry `json:"history"`
	DocumentsUploaded bool           `json:"documents_uploaded"`
	PreviousAgent     AgentType      `json:"previous_agent,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Append records a finished request and rolls the previous-agent marker
// forward. Called on success and failure alike.
func (s *SessionContext) Append(entry HistoryEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	s.History = append(s.History, entry)
	s.PreviousAgent = entry.Routing.AgentType
	s.UpdatedAt = entry.Timestamp
}

// Snapshot returns a copy safe to hand to readers outside the session lock.
func (s *SessionContext) Snapshot() SessionContext {
	out := *s
	out.History = make([]HistoryEntry, len(s.History))
	copy(out.History, s.History)
	return out
}

type sessionSlot struct {
	mu  sync.Mutex
	ctx *SessionContext
}

// SessionStore keys session state by session id. A per-session mutex
// serializes requests within one session while distinct sessions proceed
// fully concurrently.
type SessionStore struct {
	mu    sync.Mutex
	slots map[string]*sessionSlot
}

// NewSessionStore builds an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{slots: make(map[string]*sessionSlot)}
}

func (st *SessionStore) slot(id string) *sessionSlot {
	st.mu.Lock()
	defer st.mu.Unlock()
	slot, ok := st.slots[id]
	if !ok {
		now := time.Now().UTC()
		slot = &sessionSlot{ctx: &SessionContext{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		}}
		st.slots[id] = slot
	}
	return slot
}

// Acquire returns the session context with its lock held, lazily creating the
// session on first contact. The returned release function must be called when
// the request finishes.
func (st *SessionStore) Acquire(id string) (*SessionContext, func()) {
	slot := st.slot(id)
	slot.mu.Lock()
	return slot.ctx, slot.mu.Unlock
}

// Get returns a snapshot of the session, or ok=false when it does not exist.
// It never creates sessions.
func (st *SessionStore) Get(id string) (SessionContext, bool) {
	st.mu.Lock()
	slot, ok := st.slots[id]
	st.mu.Unlock()
	if !ok {
		return SessionContext{}, false
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.ctx.Snapshot(), true
}

// Delete removes a session. Reports whether anything was removed.
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.slots[id]; !ok {
		return false
	}
	delete(st.slots, id)
	return true
}

// List returns snapshots of every live session.
func (st *SessionStore) List() []SessionContext {
	st.mu.Lock()
	slots := make([]*sessionSlot, 0, len(st.slots))
	for _, slot := range st.slots {
		slots = append(slots, slot)
	}
	st.mu.Unlock()

	out := make([]SessionContext, 0, len(slots))
	for _, slot := range slots {
		slot.mu.Lock()
		out = append(out, slot.ctx.Snapshot())
		slot.mu.Unlock()
	}
	return out
}

// Len reports the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.slots)
}
