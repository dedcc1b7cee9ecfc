package api

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/djc132/Computer-Architecture-Project/service"
	"github.com/djc132/Computer-Architecture-Project/vm"
)

// Session pairs a simulator service with its identity and lifetime
type Session struct {
	ID        string
	Service   *service.SimulatorService
	CreatedAt time.Time
	LastUsed  time.Time
}

// SessionManager owns all live sessions. Each session holds its own
// machine, so independent clients never share processor state.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	broadcaster *Broadcaster
	maxSessions int
}

// NewSessionManager creates a session manager
func NewSessionManager(broadcaster *Broadcaster) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		broadcaster: broadcaster,
		maxSessions: 64,
	}
}

// Create makes a new session with a fresh machine
func (sm *SessionManager) Create() (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= sm.maxSessions {
		return nil, fmt.Errorf("session limit reached (%d)", sm.maxSessions)
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        id,
		Service:   service.NewSimulatorService(vm.NewMachine()),
		CreatedAt: time.Now(),
		LastUsed:  time.Now(),
	}
	sm.sessions[id] = session
	return session, nil
}

// Get fetches a session by ID and marks it used
func (sm *SessionManager) Get(id string) (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, ok := sm.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no such session: %q", id)
	}
	session.LastUsed = time.Now()
	return session, nil
}

// Delete removes a session and disconnects its event clients
func (sm *SessionManager) Delete(id string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, ok := sm.sessions[id]; !ok {
		return fmt.Errorf("no such session: %q", id)
	}
	delete(sm.sessions, id)
	sm.broadcaster.CloseSession(id)
	return nil
}

// Count returns the number of live sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// newSessionID generates a random 16-byte hex identifier
func newSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
