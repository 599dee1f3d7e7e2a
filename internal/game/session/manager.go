// Package session owns live characters and serializes the turn operations
// run against them.
package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rpgrules/internal/game/character"
)

var (
	// ErrSessionNotFound is returned when a session ID is not registered.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionEnded is returned when operating on a session after End.
	ErrSessionEnded = errors.New("session ended")
	// ErrCharacterNotFound is returned when a session does not own a character.
	ErrCharacterNotFound = errors.New("character not found in session")
)

// Session exclusively owns a set of characters. Every operation on an owned
// character runs through Do, which holds the session lock, so at most one
// turn is resolved for the session's characters at a time.
type Session struct {
	// ID is the unique session identifier.
	ID string
	// Owner names the player or process driving the session (for logging).
	Owner string

	mu         sync.Mutex
	characters map[string]*character.Character
	order      []string
	ended      bool
}

func newSession(owner string) *Session {
	return &Session{
		ID:         uuid.New().String(),
		Owner:      owner,
		characters: make(map[string]*character.Character),
	}
}

// Adopt transfers ownership of c to the session.
//
// Precondition: c must be non-nil and not owned by another session.
// Postcondition: Returns an error if the session ended or already owns a character with c's ID.
func (s *Session) Adopt(c *character.Character) error {
	if c == nil {
		panic("Session.Adopt: precondition violated: character must be non-nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return fmt.Errorf("%w: %s", ErrSessionEnded, s.ID)
	}
	if _, exists := s.characters[c.ID]; exists {
		return fmt.Errorf("character %q already owned by session %s", c.ID, s.ID)
	}
	s.characters[c.ID] = c
	s.order = append(s.order, c.ID)
	return nil
}

// Release drops ownership of the character with the given ID and returns it.
func (s *Session) Release(characterID string) (*character.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.characters[characterID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCharacterNotFound, characterID)
	}
	delete(s.characters, characterID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == characterID })
	return c, nil
}

// Do runs fn against the owned character with the given ID while holding the
// session lock. fn must not retain c after it returns.
//
// Postcondition: Returns fn's error, ErrCharacterNotFound, or ErrSessionEnded.
func (s *Session) Do(characterID string, fn func(c *character.Character) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return fmt.Errorf("%w: %s", ErrSessionEnded, s.ID)
	}
	c, ok := s.characters[characterID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCharacterNotFound, characterID)
	}
	return fn(c)
}

// CharacterIDs returns the IDs of owned characters in adoption order.
func (s *Session) CharacterIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

// end clears every owned character's effects, restores their base stats, and drops them.
func (s *Session) end() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.characters)
	for _, c := range s.characters {
		c.Effects.Clear()
		c.RefreshStats()
	}
	s.characters = nil
	s.order = nil
	s.ended = true
	return n
}

// Manager tracks all live sessions.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *zap.Logger
}

// NewManager creates an empty session Manager.
//
// Precondition: logger must be non-nil.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("session.NewManager: precondition violated: logger must be non-nil")
	}
	return &Manager{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Start registers a new empty session for owner.
func (m *Manager) Start(owner string) *Session {
	sess := newSession(owner)
	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	m.logger.Debug("session started", zap.String("session", sess.ID), zap.String("owner", owner))
	return sess
}

// Get returns the session with the given ID.
//
// Postcondition: Returns the session or an error wrapping ErrSessionNotFound.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// End unregisters the session and destroys its characters' runtime state.
// Further Do or Adopt calls on the session fail with ErrSessionEnded.
//
// Postcondition: Returns an error wrapping ErrSessionNotFound if id is not registered.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	n := sess.end()
	m.logger.Debug("session ended", zap.String("session", id), zap.Int("characters", n))
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
