package editor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nodepress/designer/internal/block"
	"github.com/nodepress/designer/internal/logging"
)

var ErrSessionNotFound = errors.New("editor session not found")

// Manager tracks the open editing sessions by ID.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	logger   logging.Logger
}

func NewManager(logger logging.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		logger:   logger.With(logging.Field{Key: "component", Value: "editor"}),
	}
}

// Open starts a session over the given page content and returns it.
func (m *Manager) Open(pageID string, blocks []block.ContentBlock) *Session {
	s := newSession(pageID, blocks, m.logger)

	m.mu.Lock()
	m.sessions[s.ID] = s
	open := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("session opened",
		logging.Field{Key: "session_id", Value: s.ID},
		logging.Field{Key: "page_id", Value: pageID},
		logging.Field{Key: "open_sessions", Value: open})
	return s
}

// Get returns an open session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Close ends a session and closes its event stream. Closing an unknown
// session is an error so callers can tell a stale ID from a double close.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.close()
	m.logger.Info("session closed", logging.Field{Key: "session_id", Value: id})
	return nil
}

// List returns the IDs of the open sessions.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	return out
}

// CloseAll ends every open session, for shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}
