package core

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired view sessions.
var ErrSessionNotFound = errors.New("session not found")

// Session is one browser view: a dataset snapshot plus the filter spec the
// user has applied to it. Loading another dataset replaces the snapshot and
// clears the filters.
type Session struct {
	ID uuid.UUID

	mu       sync.RWMutex
	dataset  *Dataset
	filters  FilterSpec
	filtered []TypedRow
	lastUsed time.Time
}

// Dataset returns the current snapshot.
func (s *Session) Dataset() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// Filters returns the active filter spec.
func (s *Session) Filters() FilterSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// Filtered returns the rows passing the active filters.
func (s *Session) Filtered() []TypedRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filtered
}

// ApplyFilters replaces the filter spec and recomputes the view from the
// full row set.
func (s *Session) ApplyFilters(spec FilterSpec) []TypedRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = spec
	s.filtered = s.dataset.Filter(spec)
	return s.filtered
}

func (s *Session) replace(ds *Dataset, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dataset = ds
	s.filters = nil
	s.filtered = ds.Rows
	s.lastUsed = now
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastUsed)
}

// SessionStore holds live sessions and expires idle ones.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store whose sessions expire after ttl idle.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a new session over ds.
func (st *SessionStore) Create(ds *Dataset) *Session {
	sess := &Session{ID: uuid.New()}
	sess.replace(ds, st.now())

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()
	return sess
}

// Get returns a live session and marks it used.
func (st *SessionStore) Get(id uuid.UUID) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(st.now())
	return sess, nil
}

// Replace loads ds into an existing session, clearing its filters.
func (st *SessionStore) Replace(id uuid.UUID, ds *Dataset) (*Session, error) {
	sess, err := st.Get(id)
	if err != nil {
		return nil, err
	}
	sess.replace(ds, st.now())
	return sess, nil
}

// Remove drops a session. It reports whether the session existed.
func (st *SessionStore) Remove(id uuid.UUID) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok
}

// Expire removes sessions idle longer than the TTL and returns their IDs.
func (st *SessionStore) Expire() []uuid.UUID {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	var expired []uuid.UUID
	for id, sess := range st.sessions {
		if sess.idleSince(now) > st.ttl {
			delete(st.sessions, id)
			expired = append(expired, id)
		}
	}
	return expired
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
