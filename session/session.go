// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/spellchain/network"
)

// Session is one connected client. RoomID and PlayerNumber are zero until the
// connection binds to a room by creating or joining one.
type Session struct {
	ID           string
	Conn         network.Connection
	RoomID       string
	PlayerNumber int
	CreatedAt    time.Time

	mutex      sync.RWMutex
	lastActive time.Time
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		lastActive: now,
	}
}

func (s *Session) GetID() string {
	return s.ID
}

// Touch records client activity; the idle sweep uses it.
func (s *Session) Touch() {
	s.mutex.Lock()
	s.lastActive = time.Now()
	s.mutex.Unlock()
}

// IdleFor reports how long the session has been silent.
func (s *Session) IdleFor() time.Duration {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return time.Since(s.lastActive)
}

func (s *Session) Send(v interface{}) error {
	return s.Conn.Send(v)
}

// WriteLine forwards an already-marshaled message to the connection.
func (s *Session) WriteLine(data []byte) error {
	return s.Conn.WriteLine(data)
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager tracks every live session across all rooms.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// Snapshot returns a copy of the current session list, so callers can walk it
// without holding the manager's lock.
func (m *Manager) Snapshot() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}
