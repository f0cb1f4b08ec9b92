package session

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/mmcdole/cinelist/internal/domain"
)

// SelectMode picks the endpoint set for an operation.
// Authenticated iff a non-empty credential is supplied.
func SelectMode(credential string) domain.Mode {
	if strings.TrimSpace(credential) != "" {
		return domain.ModeAuthenticated
	}
	return domain.ModeGuest
}

// Snapshot is an immutable view of the session taken at the start of an operation
type Snapshot struct {
	Token    string
	Username string
	Mode     domain.Mode
}

// Target returns the endpoint set and credential for remote calls
func (s Snapshot) Target() domain.Target {
	return domain.Target{Mode: s.Mode, Token: s.Token}
}

// Scope returns the notes cache namespace for this session.
// Guest notes live in one shared scope; authenticated notes are per user.
func (s Snapshot) Scope() string {
	if s.Mode == domain.ModeGuest {
		return "guest"
	}
	if s.Username != "" {
		return "user:" + s.Username
	}
	// No username known: key the scope off the credential instead
	hash := sha256.Sum256([]byte(s.Token))
	return "token:" + hex.EncodeToString(hash[:6])
}

// Session holds the credential for the active user session.
// Mode is never cached: every Snapshot re-runs SelectMode so a login or
// logout mid-session takes effect on the next operation.
type Session struct {
	mu       sync.RWMutex
	token    string
	username string
}

// New creates a session; an empty token starts in guest mode
func New(token, username string) *Session {
	return &Session{token: token, username: username}
}

// Snapshot captures the current credential and its selected mode
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Token:    s.token,
		Username: s.username,
		Mode:     SelectMode(s.token),
	}
}

// Token returns the current bearer credential ("" in guest mode)
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set replaces the credential and reports whether the effective
// session (mode or cache scope) changed.
func (s *Session) Set(token, username string) bool {
	before := s.Snapshot()

	s.mu.Lock()
	s.token = token
	s.username = username
	s.mu.Unlock()

	after := s.Snapshot()
	return before.Mode != after.Mode || before.Scope() != after.Scope()
}

// Clear drops the credential, returning to guest mode
func (s *Session) Clear() bool {
	return s.Set("", "")
}
