package session

import "sync"

// Manager owns every user's session. Events for one user are handled in
// arrival order by funneling them through that user's lock; different users
// interleave freely.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session *Session
}

// NewManager creates an empty session manager
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*entry)}
}

// Do runs fn with the user's session while holding that user's lock.
func (m *Manager) Do(userID string, fn func(s *Session) error) error {
	e := m.entryFor(userID)

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Peek returns a snapshot of whether the user has an active wizard, without
// acquiring the per-user lock for long.
func (m *Manager) Peek(userID string) Wizard {
	e := m.entryFor(userID)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Wizard
}

func (m *Manager) entryFor(userID string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[userID]
	if !ok {
		e = &entry{session: &Session{UserID: userID}}
		m.sessions[userID] = e
	}
	return e
}
