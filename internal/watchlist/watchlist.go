// Package watchlist reconciles the remote movie list, locally cached notes
// and provider metadata into one in-memory view.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/notes"
	"github.com/mmcdole/cinelist/internal/omdb"
	"github.com/mmcdole/cinelist/internal/session"
)

// Watchlist is the reconciliation core. It owns the view for the active
// session; remote results are applied by title lookup against whatever the
// view holds when they settle.
type Watchlist struct {
	session  *session.Session
	store    domain.ListStore
	notes    *notes.Manager
	resolver domain.DetailResolver
	logger   *slog.Logger

	mu       sync.RWMutex
	entries  []domain.MovieEntry
	genres   []string
	selected string

	inflight *inflight
}

// New creates a watchlist bound to a session
func New(sess *session.Session, store domain.ListStore, notesMgr *notes.Manager, resolver domain.DetailResolver, logger *slog.Logger) *Watchlist {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watchlist{
		session:  sess,
		store:    store,
		notes:    notesMgr,
		resolver: resolver,
		logger:   logger,
		inflight: newInflight(),
	}
}

// claim takes the per-title in-flight guard
func (w *Watchlist) claim(title string) (func(), error) {
	release, ok := w.inflight.acquire(title)
	if !ok {
		w.logger.Debug("rejected concurrent operation", "title", title)
		return nil, fmt.Errorf("%q: %w", title, domain.ErrBusy)
	}
	return release, nil
}

func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", domain.Validationf("title is required")
	}
	return title, nil
}

// stale reports whether the session moved on since snap was taken
func (w *Watchlist) stale(snap session.Snapshot) bool {
	return w.session.Snapshot().Scope() != snap.Scope()
}

// indexOf returns the position of title in the view, or -1. Caller holds mu.
func (w *Watchlist) indexOf(title string) int {
	for i, e := range w.entries {
		if e.Title == title {
			return i
		}
	}
	return -1
}

// replaceView installs entries and recomputes the genre index. Caller holds mu.
func (w *Watchlist) replaceView(entries []domain.MovieEntry) {
	w.entries = entries
	w.genres = BuildGenreIndex(entries)
}

// === Session ===

// Mode returns the endpoint set the next operation will use
func (w *Watchlist) Mode() domain.Mode {
	return w.session.Snapshot().Mode
}

// SetCredential switches the session credential and re-lists when the
// effective session changed.
func (w *Watchlist) SetCredential(ctx context.Context, token, username string) error {
	if !w.session.Set(token, username) {
		return nil
	}
	w.logger.Info("session changed", "mode", w.Mode())

	// The old view belongs to another collection
	w.mu.Lock()
	w.replaceView(nil)
	w.mu.Unlock()

	return w.Reload(ctx)
}

// Logout drops the credential and returns to the guest list
func (w *Watchlist) Logout(ctx context.Context) error {
	return w.SetCredential(ctx, "", "")
}

// === Operations ===

// Reload re-lists from the remote store, overlays cached notes and
// recomputes the genre index. On failure the view is left unchanged.
func (w *Watchlist) Reload(ctx context.Context) error {
	snap := w.session.Snapshot()

	remote, err := w.store.List(ctx, snap.Target())
	if err != nil {
		w.logger.Error("failed to list movies", "mode", snap.Mode, "error", err)
		return err
	}

	merged := w.notes.LoadNotes(snap, dedupe(remote))

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stale(snap) {
		w.logger.Debug("discarding list for previous session", "mode", snap.Mode)
		return nil
	}

	// Keep provider metadata already resolved for titles that are still listed
	for i, e := range merged {
		if e.Metadata != nil {
			continue
		}
		if j := w.indexOf(e.Title); j >= 0 {
			merged[i].Metadata = w.entries[j].Metadata
		}
	}

	w.replaceView(merged)
	w.logger.Info("loaded watchlist", "mode", snap.Mode, "count", len(merged))
	return nil
}

// dedupe keeps the first entry for each title
func dedupe(entries []domain.MovieEntry) []domain.MovieEntry {
	seen := make(map[string]bool, len(entries))
	out := make([]domain.MovieEntry, 0, len(entries))
	for _, e := range entries {
		if seen[e.Title] {
			continue
		}
		seen[e.Title] = true
		out = append(out, e)
	}
	return out
}

// Add resolves and stores title, then updates the view in place without
// re-listing. A duplicate add is a success and keeps the stored entry, only
// taking the resolved metadata. If the store refused the title for another
// reason the resolved entry is still returned but the view is not touched,
// so it keeps matching what a reload would produce.
func (w *Watchlist) Add(ctx context.Context, title string) (domain.MovieEntry, error) {
	title, err := requireTitle(title)
	if err != nil {
		return domain.MovieEntry{}, err
	}
	release, err := w.claim(title)
	if err != nil {
		return domain.MovieEntry{}, err
	}
	defer release()

	// The view changes under the provider's title, which may differ from
	// what was typed. The resolver memoizes, so the store's own lookup is free.
	meta, err := w.resolver.Resolve(ctx, title)
	if err != nil {
		w.logger.Error("failed to resolve movie", "title", title, "error", err)
		return domain.MovieEntry{}, err
	}
	if meta.Title != "" && guardKey(meta.Title) != guardKey(title) {
		releaseCanonical, err := w.claim(meta.Title)
		if err != nil {
			return domain.MovieEntry{}, err
		}
		defer releaseCanonical()
	}

	snap := w.session.Snapshot()
	res, err := w.store.Add(ctx, snap.Target(), title)
	if err != nil {
		w.logger.Error("failed to add movie", "title", title, "mode", snap.Mode, "error", err)
		return domain.MovieEntry{}, err
	}

	if !res.Persisted() {
		w.logger.Warn("movie not persisted, view unchanged",
			"title", res.Entry.Title, "mode", snap.Mode, "error", res.Cause)
		return res.Entry, nil
	}

	entry := w.notes.Overlay(snap, res.Entry)
	if res.Outcome == domain.AddDuplicate && !w.listed(entry.Title) {
		// Only the store knows the stored notes and watched flag
		if stored, ok := w.storedEntry(ctx, snap, entry.Title); ok {
			stored.Metadata = res.Entry.Metadata
			entry = stored
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stale(snap) {
		return entry, nil
	}
	switch i := w.indexOf(entry.Title); {
	case i >= 0 && res.Outcome == domain.AddDuplicate:
		w.entries[i].Metadata = res.Entry.Metadata
		entry = w.entries[i]
	case i >= 0:
		w.entries[i] = entry
	default:
		w.entries = append(w.entries, entry)
	}
	w.replaceView(w.entries)

	w.logger.Info("added movie", "title", entry.Title, "mode", snap.Mode, "duplicate", res.Outcome == domain.AddDuplicate)
	return entry, nil
}

// listed reports whether title is in the view
func (w *Watchlist) listed(title string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.indexOf(title) >= 0
}

// storedEntry fetches title as the store holds it, with cached notes overlaid
func (w *Watchlist) storedEntry(ctx context.Context, snap session.Snapshot, title string) (domain.MovieEntry, bool) {
	remote, err := w.store.List(ctx, snap.Target())
	if err != nil {
		w.logger.Warn("failed to fetch stored copy of duplicate", "title", title, "error", err)
		return domain.MovieEntry{}, false
	}
	for _, e := range remote {
		if e.Title == title {
			return w.notes.Overlay(snap, e), true
		}
	}
	return domain.MovieEntry{}, false
}

// Remove deletes title remotely and, only once that succeeds, splices it out
// of the view and evicts its cached notes. A title the store no longer has
// counts as removed.
func (w *Watchlist) Remove(ctx context.Context, title string) error {
	title, err := requireTitle(title)
	if err != nil {
		return err
	}
	release, err := w.claim(title)
	if err != nil {
		return err
	}
	defer release()

	snap := w.session.Snapshot()
	err = w.store.Remove(ctx, snap.Target(), title)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		w.logger.Warn("movie already absent from store", "title", title, "mode", snap.Mode)
	case err != nil:
		w.logger.Warn("failed to remove movie, view unchanged", "title", title, "mode", snap.Mode, "error", err)
		return err
	}

	if err := w.notes.RemoveNotes(snap, title); err != nil {
		w.logger.Warn("failed to evict cached notes", "title", title, "error", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stale(snap) {
		return nil
	}
	if i := w.indexOf(title); i >= 0 {
		w.entries = append(w.entries[:i:i], w.entries[i+1:]...)
		w.replaceView(w.entries)
	}

	w.logger.Info("removed movie", "title", title, "mode", snap.Mode)
	return nil
}

// SetNotes annotates a listed title. The note is visible in the view as soon
// as the local cache holds it, whether or not the remote push succeeds.
func (w *Watchlist) SetNotes(ctx context.Context, title, text string) (domain.NoteState, error) {
	title, err := requireTitle(title)
	if err != nil {
		return domain.NoteUnset, err
	}
	if _, ok := w.Get(title); !ok {
		return domain.NoteUnset, fmt.Errorf("%q is not in the list: %w", title, domain.ErrNotFound)
	}
	release, err := w.claim(title)
	if err != nil {
		return domain.NoteUnset, err
	}
	defer release()

	snap := w.session.Snapshot()
	state, err := w.notes.SetNotes(ctx, snap, title, text)
	if err != nil {
		return state, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.stale(snap) {
		if i := w.indexOf(title); i >= 0 {
			w.entries[i] = w.entries[i].WithNotes(text)
		}
	}
	return state, nil
}

// MarkWatched flags title as watched once the store confirms it
func (w *Watchlist) MarkWatched(ctx context.Context, title string) error {
	title, err := requireTitle(title)
	if err != nil {
		return err
	}
	release, err := w.claim(title)
	if err != nil {
		return err
	}
	defer release()

	snap := w.session.Snapshot()
	if err := w.store.MarkWatched(ctx, snap.Target(), title); err != nil {
		w.logger.Warn("failed to mark watched", "title", title, "mode", snap.Mode, "error", err)
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.stale(snap) {
		if i := w.indexOf(title); i >= 0 {
			w.entries[i].Watched = true
		}
	}
	return nil
}

// Search looks titles up at the metadata provider
func (w *Watchlist) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	return w.resolver.Search(ctx, query)
}

// Recommend asks the store for titles matching a free-text description.
// Suggestions are not added; pass one to Add to keep it.
func (w *Watchlist) Recommend(ctx context.Context, query string, topK int) ([]domain.Recommendation, error) {
	recs, err := w.store.Recommend(ctx, query, topK)
	if err != nil {
		w.logger.Warn("failed to fetch recommendations", "query", query, "error", err)
		return nil, err
	}
	w.logger.Info("fetched recommendations", "query", query, "count", len(recs))
	return recs, nil
}

// Listed reports whether title is already in the view
func (w *Watchlist) Listed(title string) bool {
	return w.listed(title)
}

// Enrich resolves provider metadata for every listed title. Failures are
// per title: they are logged, returned keyed by title, and never stop the
// other lookups.
func (w *Watchlist) Enrich(ctx context.Context) map[string]error {
	w.mu.RLock()
	titles := make([]string, len(w.entries))
	for i, e := range w.entries {
		titles[i] = e.Title
	}
	w.mu.RUnlock()

	details := omdb.Enrich(ctx, w.resolver, titles, 0)

	failed := make(map[string]error)
	w.mu.Lock()
	defer w.mu.Unlock()
	for title, d := range details {
		if d.Err != nil {
			w.logger.Warn("failed to resolve details", "title", title, "error", d.Err)
			failed[title] = d.Err
			continue
		}
		if i := w.indexOf(title); i >= 0 {
			w.entries[i].Metadata = d.Metadata
		}
	}
	return failed
}

// === Queries ===

// Entries returns a copy of the full view
func (w *Watchlist) Entries() []domain.MovieEntry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]domain.MovieEntry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Get returns the entry for title
func (w *Watchlist) Get(title string) (domain.MovieEntry, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if i := w.indexOf(title); i >= 0 {
		return w.entries[i], true
	}
	return domain.MovieEntry{}, false
}

// Notes returns the notes shown for title; ok is false when unset or unlisted
func (w *Watchlist) Notes(title string) (string, bool) {
	e, ok := w.Get(title)
	if !ok || !e.HasNotes() {
		return "", false
	}
	return e.NotesText(), true
}

// NoteState returns where title's notes stand relative to the remote store
func (w *Watchlist) NoteState(title string) domain.NoteState {
	return w.notes.State(w.session.Snapshot().Scope(), title)
}

// PendingNotes returns titles whose notes exist only locally
func (w *Watchlist) PendingNotes() []string {
	return w.notes.Pending(w.session.Snapshot().Scope())
}

// Busy reports whether an operation on title is outstanding
func (w *Watchlist) Busy(title string) bool {
	return w.inflight.busy(title)
}

// Genres returns the genre index for the current view
func (w *Watchlist) Genres() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, len(w.genres))
	copy(out, w.genres)
	return out
}

// SelectGenre sets the genre filter; "" selects all genres
func (w *Watchlist) SelectGenre(genre string) {
	w.mu.Lock()
	w.selected = strings.TrimSpace(genre)
	w.mu.Unlock()
}

// SelectedGenre returns the active genre filter
func (w *Watchlist) SelectedGenre() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.selected
}

// Filtered returns the view narrowed by the selected genre
func (w *Watchlist) Filtered() []domain.MovieEntry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Filter(w.entries, w.selected)
}
