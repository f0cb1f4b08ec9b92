// Package notes owns personal notes: every write lands in the durable local
// cache before the remote store is attempted, and the cache overlays the
// remote value on load.
package notes

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/session"
)

// Pusher persists notes remotely
type Pusher interface {
	UpdateNotes(ctx context.Context, target domain.Target, title, notes string) error
}

// Manager tracks the note state of every title per session scope
type Manager struct {
	cache  domain.NotesCache
	remote Pusher
	logger *slog.Logger

	mu     sync.Mutex
	states map[string]map[string]domain.NoteState // scope -> title -> state
}

// NewManager creates a notes manager over a durable cache and a remote pusher
func NewManager(cache domain.NotesCache, remote Pusher, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cache:  cache,
		remote: remote,
		logger: logger,
		states: make(map[string]map[string]domain.NoteState),
	}
}

func (m *Manager) setState(scope, title string, state domain.NoteState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byTitle, ok := m.states[scope]
	if !ok {
		byTitle = make(map[string]domain.NoteState)
		m.states[scope] = byTitle
	}
	if state == domain.NoteUnset {
		delete(byTitle, title)
		return
	}
	byTitle[title] = state
}

// State returns the note state for title in scope
func (m *Manager) State(scope, title string) domain.NoteState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[scope][title]
}

// Pending returns the titles whose cached notes never reached the remote store
func (m *Manager) Pending(scope string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var titles []string
	for title, state := range m.states[scope] {
		if state == domain.NoteLocalAheadOfRemote {
			titles = append(titles, title)
		}
	}
	sort.Strings(titles)
	return titles
}

// SetNotes writes text to the cache, then pushes it to the remote store.
// The cache write is the durability boundary: if it fails the whole
// operation fails. A failed push is logged and leaves the title
// LocalAheadOfRemote; it is never returned as an error.
func (m *Manager) SetNotes(ctx context.Context, snap session.Snapshot, title, text string) (domain.NoteState, error) {
	if strings.TrimSpace(title) == "" {
		return domain.NoteUnset, domain.Validationf("title is required")
	}
	scope := snap.Scope()

	if err := m.cache.Put(scope, title, text); err != nil {
		m.logger.Error("notes cache write failed", "title", title, "scope", scope, "error", err)
		return m.State(scope, title), fmt.Errorf("save notes for %q: %w", title, err)
	}
	m.setState(scope, title, domain.NoteLocalOnly)

	if err := m.remote.UpdateNotes(ctx, snap.Target(), title, text); err != nil {
		m.logger.Warn("notes push failed, keeping local copy",
			"title", title, "mode", snap.Mode, "error", err)
		m.setState(scope, title, domain.NoteLocalAheadOfRemote)
		return domain.NoteLocalAheadOfRemote, nil
	}

	m.setState(scope, title, domain.NoteSynced)
	m.logger.Debug("notes synced", "title", title, "mode", snap.Mode)
	return domain.NoteSynced, nil
}

// LoadNotes overlays cached notes onto entries fetched from the remote store
// and rebuilds the scope's states. A cached value always wins over the
// remote one. If the cache cannot be read the remote values are kept and
// the failure is logged.
func (m *Manager) LoadNotes(snap session.Snapshot, entries []domain.MovieEntry) []domain.MovieEntry {
	scope := snap.Scope()

	cached, err := m.cache.Load(scope)
	if err != nil {
		m.logger.Error("notes cache read failed, using remote notes", "scope", scope, "error", err)
		cached = nil
	}

	states := make(map[string]domain.NoteState, len(entries))
	out := make([]domain.MovieEntry, len(entries))
	for i, e := range entries {
		var state domain.NoteState
		out[i], state = overlay(cached, e)
		if state != domain.NoteUnset {
			states[e.Title] = state
		}
	}

	m.mu.Lock()
	m.states[scope] = states
	m.mu.Unlock()

	return out
}

// Overlay applies the cached notes to a single entry joining the list and
// records its state, leaving every other title's state alone.
func (m *Manager) Overlay(snap session.Snapshot, entry domain.MovieEntry) domain.MovieEntry {
	scope := snap.Scope()

	cached, err := m.cache.Load(scope)
	if err != nil {
		m.logger.Error("notes cache read failed, using remote notes", "scope", scope, "error", err)
		cached = nil
	}

	out, state := overlay(cached, entry)
	m.setState(scope, entry.Title, state)
	return out
}

// overlay resolves one entry's notes against the cached mapping
func overlay(cached map[string]string, e domain.MovieEntry) (domain.MovieEntry, domain.NoteState) {
	local, hasLocal := cached[e.Title]
	switch {
	case hasLocal && e.Notes != nil && *e.Notes == local:
		return e, domain.NoteSynced
	case hasLocal:
		return e.WithNotes(local), domain.NoteLocalAheadOfRemote
	case e.Notes != nil:
		return e, domain.NoteSynced
	default:
		return e, domain.NoteUnset
	}
}

// RemoveNotes evicts title from the cache after the title left the list.
// There is no remote counterpart: the store drops notes with the title.
func (m *Manager) RemoveNotes(snap session.Snapshot, title string) error {
	scope := snap.Scope()
	m.setState(scope, title, domain.NoteUnset)
	if err := m.cache.Delete(scope, title); err != nil {
		return fmt.Errorf("evict notes for %q: %w", title, err)
	}
	return nil
}
