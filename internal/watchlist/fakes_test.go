package watchlist

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/notes"
	"github.com/mmcdole/cinelist/internal/session"
	"github.com/mmcdole/cinelist/internal/store"
)

// fakeResolver serves metadata from a fixed catalog
type fakeResolver struct {
	catalog map[string]*domain.Metadata
}

func (r *fakeResolver) Resolve(_ context.Context, title string) (*domain.Metadata, error) {
	if meta, ok := r.catalog[title]; ok {
		return meta, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeResolver) Search(_ context.Context, query string) ([]domain.SearchHit, error) {
	var hits []domain.SearchHit
	for title, meta := range r.catalog {
		if title == query {
			hits = append(hits, domain.SearchHit{Title: title, Year: meta.Year, IMDbID: meta.IMDbID})
		}
	}
	return hits, nil
}

var catalog = map[string]*domain.Metadata{
	"Inception": {Title: "Inception", Genre: "Action, Sci-Fi", Year: "2010", IMDbID: "tt1375666"},
	"Dune":      {Title: "Dune", Genre: "Action, Drama", Year: "2021", IMDbID: "tt1160419"},
	"Heat":      {Title: "Heat", Genre: "drama, Comedy", Year: "1995", IMDbID: "tt0113277"},
	"Up":        {Title: "Up", Genre: "Animation", Year: "2009", IMDbID: "tt1049413"},
}

// fakeStore is an in-memory backend with one collection per mode and
// switchable failures.
type fakeStore struct {
	mu       sync.Mutex
	resolver domain.DetailResolver
	lists    map[domain.Mode][]domain.MovieEntry

	listErr    error
	addErr     error // Hard add failure
	rejectAdd  error // Store-side rejection (soft)
	removeErr  error
	notesErr   error
	watchedErr error

	recommendations []domain.Recommendation
	recommendErr    error

	// When set, Remove signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		resolver: &fakeResolver{catalog: catalog},
		lists:    make(map[domain.Mode][]domain.MovieEntry),
	}
}

func (s *fakeStore) titles(mode domain.Mode) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.lists[mode] {
		out = append(out, e.Title)
	}
	return out
}

func (s *fakeStore) find(mode domain.Mode, title string) int {
	for i, e := range s.lists[mode] {
		if e.Title == title {
			return i
		}
	}
	return -1
}

func (s *fakeStore) List(_ context.Context, target domain.Target) ([]domain.MovieEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.MovieEntry, len(s.lists[target.Mode]))
	copy(out, s.lists[target.Mode])
	return out, nil
}

func (s *fakeStore) Add(ctx context.Context, target domain.Target, title string) (domain.AddResult, error) {
	meta, err := s.resolver.Resolve(ctx, title)
	if err != nil {
		return domain.AddResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addErr != nil {
		return domain.AddResult{}, s.addErr
	}

	entry := domain.EntryFromMetadata(meta)
	if s.rejectAdd != nil {
		return domain.AddResult{Entry: entry, Outcome: domain.AddRejected, Cause: s.rejectAdd}, nil
	}
	// Like the HTTP store, a duplicate answer carries only the resolved metadata
	if s.find(target.Mode, entry.Title) >= 0 {
		return domain.AddResult{Entry: entry, Outcome: domain.AddDuplicate, Cause: domain.ErrAlreadyExists}, nil
	}
	stored := entry
	stored.Metadata = nil
	s.lists[target.Mode] = append(s.lists[target.Mode], stored)
	return domain.AddResult{Entry: entry, Outcome: domain.AddStored}, nil
}

func (s *fakeStore) Remove(_ context.Context, target domain.Target, title string) error {
	if s.entered != nil {
		s.entered <- struct{}{}
		<-s.release
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErr != nil {
		return s.removeErr
	}
	i := s.find(target.Mode, title)
	if i < 0 {
		return domain.ErrNotFound
	}
	s.lists[target.Mode] = append(s.lists[target.Mode][:i], s.lists[target.Mode][i+1:]...)
	return nil
}

func (s *fakeStore) UpdateNotes(_ context.Context, target domain.Target, title, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notesErr != nil {
		return s.notesErr
	}
	if i := s.find(target.Mode, title); i >= 0 {
		s.lists[target.Mode][i].Notes = &text
		return nil
	}
	return domain.ErrNotFound
}

func (s *fakeStore) MarkWatched(_ context.Context, target domain.Target, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchedErr != nil {
		return s.watchedErr
	}
	if i := s.find(target.Mode, title); i >= 0 {
		s.lists[target.Mode][i].Watched = true
		return nil
	}
	return domain.ErrNotFound
}

func (s *fakeStore) Recommend(_ context.Context, query string, topK int) ([]domain.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recommendErr != nil {
		return nil, s.recommendErr
	}
	if query == "" {
		return nil, domain.Validationf("a description is required")
	}
	recs := s.recommendations
	if topK > 0 && len(recs) > topK {
		recs = recs[:topK]
	}
	return recs, nil
}

func (s *fakeStore) set(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

type fixture struct {
	wl    *Watchlist
	store *fakeStore
	cache *store.NotesStore
	sess  *session.Session
}

// newFixture builds a watchlist over a fake backend and a disk notes cache
func newFixture(t *testing.T, token, username string) *fixture {
	t.Helper()
	cache, err := store.NewNotesStore(t.TempDir(), "http://backend")
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	fs := newFakeStore()
	sess := session.New(token, username)
	wl := New(sess, fs, notes.NewManager(cache, fs, nil), fs.resolver, nil)
	return &fixture{wl: wl, store: fs, cache: cache, sess: sess}
}

// reopen simulates a page reload: new session objects over the same cache and backend
func (f *fixture) reopen(t *testing.T) *Watchlist {
	t.Helper()
	snap := f.sess.Snapshot()
	sess := session.New(snap.Token, snap.Username)
	wl := New(sess, f.store, notes.NewManager(f.cache, f.store, nil), f.store.resolver, nil)
	require.NoError(t, wl.Reload(context.Background()))
	return wl
}

func titlesOf(entries []domain.MovieEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Title)
	}
	return out
}
