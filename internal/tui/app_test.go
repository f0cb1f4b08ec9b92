package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/watchlist"
)

// fakeWatchlist is an in-memory Watchlist that records calls
type fakeWatchlist struct {
	entries  []domain.MovieEntry
	selected string
	states   map[string]domain.NoteState

	reloadErr error
	addErr    error
	removeErr error

	added   []string
	removed []string
	notes   map[string]string

	recs    []domain.Recommendation
	queries []string
}

func newFakeWatchlist(entries ...domain.MovieEntry) *fakeWatchlist {
	return &fakeWatchlist{
		entries: entries,
		states:  make(map[string]domain.NoteState),
		notes:   make(map[string]string),
	}
}

func (f *fakeWatchlist) Reload(context.Context) error { return f.reloadErr }

func (f *fakeWatchlist) Add(_ context.Context, title string) (domain.MovieEntry, error) {
	if f.addErr != nil {
		return domain.MovieEntry{}, f.addErr
	}
	f.added = append(f.added, title)
	e := domain.MovieEntry{Title: title, Genre: "Drama"}
	f.entries = append(f.entries, e)
	return e, nil
}

func (f *fakeWatchlist) Remove(_ context.Context, title string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, title)
	for i, e := range f.entries {
		if e.Title == title {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeWatchlist) SetNotes(_ context.Context, title, text string) (domain.NoteState, error) {
	f.notes[title] = text
	f.states[title] = domain.NoteLocalAheadOfRemote
	return domain.NoteLocalAheadOfRemote, nil
}

func (f *fakeWatchlist) MarkWatched(_ context.Context, title string) error {
	for i := range f.entries {
		if f.entries[i].Title == title {
			f.entries[i].Watched = true
		}
	}
	return nil
}

func (f *fakeWatchlist) Enrich(context.Context) map[string]error { return nil }

func (f *fakeWatchlist) Recommend(_ context.Context, query string, _ int) ([]domain.Recommendation, error) {
	f.queries = append(f.queries, query)
	return f.recs, nil
}

func (f *fakeWatchlist) Listed(title string) bool {
	for _, e := range f.entries {
		if e.Title == title {
			return true
		}
	}
	return false
}

func (f *fakeWatchlist) Filtered() []domain.MovieEntry {
	return watchlist.Filter(f.entries, f.selected)
}

func (f *fakeWatchlist) Genres() []string { return watchlist.BuildGenreIndex(f.entries) }
func (f *fakeWatchlist) SelectGenre(g string) { f.selected = g }
func (f *fakeWatchlist) SelectedGenre() string { return f.selected }
func (f *fakeWatchlist) NoteState(t string) domain.NoteState { return f.states[t] }
func (f *fakeWatchlist) Busy(string) bool { return false }
func (f *fakeWatchlist) Mode() domain.Mode { return domain.ModeGuest }

// fakeOpener records opened links
type fakeOpener struct {
	opened []string
	err    error
}

func (o *fakeOpener) Open(url string) error {
	if o.err != nil {
		return o.err
	}
	o.opened = append(o.opened, url)
	return nil
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

// send feeds msg through Update and returns the resulting model
func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// loaded returns a sized model that has processed the initial load
func loaded(t *testing.T, wl *fakeWatchlist) Model {
	t.Helper()
	m := NewModel(wl, nil)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m, _ = send(t, m, WatchlistLoadedMsg{})
	return m
}

func rowTitles(m Model) []string {
	out := make([]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.Entry.Title
	}
	return out
}

func sample() *fakeWatchlist {
	return newFakeWatchlist(
		domain.MovieEntry{Title: "Inception", Genre: "Action, Sci-Fi"},
		domain.MovieEntry{Title: "Heat", Genre: "Crime, Drama"},
		domain.MovieEntry{Title: "Up", Genre: "Animation"},
	)
}

func TestInitialLoad(t *testing.T) {
	m := NewModel(sample(), nil)
	assert.Equal(t, 1, m.Pending)

	m = loaded(t, sample())
	assert.Equal(t, 0, m.Pending)
	assert.Equal(t, []string{"Inception", "Heat", "Up"}, rowTitles(m))
	assert.Contains(t, m.View(), "Inception")
}

func TestAddFlow(t *testing.T) {
	wl := sample()
	m := loaded(t, wl)

	m, _ = send(t, m, keyRunes("a"))
	require.True(t, m.InputModal.IsVisible())
	m, _ = send(t, m, keyRunes("Dune"))
	m, cmd := send(t, m, keyEnter)
	require.NotNil(t, cmd)
	assert.False(t, m.InputModal.IsVisible())
	assert.Equal(t, 1, m.Pending)

	m, _ = send(t, m, cmd())
	assert.Equal(t, []string{"Dune"}, wl.added)
	assert.Equal(t, 0, m.Pending)
	entry, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "Dune", entry.Title)
	assert.Equal(t, "Added Dune", m.StatusMsg)
}

func TestAddBlankIsIgnored(t *testing.T) {
	m := loaded(t, sample())
	m, _ = send(t, m, keyRunes("a"))
	m, cmd := send(t, m, keyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.Pending)
}

func TestErrorBannerIsDismissable(t *testing.T) {
	wl := sample()
	wl.addErr = domain.ErrUnreachable
	m := loaded(t, wl)

	m, cmd := send(t, m, AddCmd(wl, "Dune")())
	assert.Nil(t, cmd)
	assert.Contains(t, m.Banner, "adding Dune")
	assert.Contains(t, m.View(), "adding Dune")
	assert.Equal(t, []string{"Inception", "Heat", "Up"}, rowTitles(m), "view unchanged")

	m, _ = send(t, m, keyEsc)
	assert.Empty(t, m.Banner)
}

func TestBusyIsStatusNotBanner(t *testing.T) {
	m := loaded(t, sample())
	m, _ = send(t, m, ErrMsg{Err: domain.ErrBusy, Context: "removing Heat", Title: "Heat"})
	assert.Empty(t, m.Banner)
	assert.Equal(t, "Heat is still updating", m.StatusMsg)
}

func TestRemoveRequiresConfirmation(t *testing.T) {
	wl := sample()
	m := loaded(t, wl)
	m, _ = send(t, m, keyRunes("j")) // Heat

	m, _ = send(t, m, keyRunes("x"))
	assert.Equal(t, StateConfirmDelete, m.State)
	m, cmd := send(t, m, keyRunes("n"))
	assert.Nil(t, cmd)
	assert.Equal(t, StateBrowsing, m.State)

	m, _ = send(t, m, keyRunes("x"))
	m, cmd = send(t, m, keyRunes("y"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	assert.Equal(t, []string{"Heat"}, wl.removed)
	assert.Equal(t, []string{"Inception", "Up"}, rowTitles(m))
}

func TestNotesModalPrefillsAndSaves(t *testing.T) {
	wl := sample()
	wl.entries[0] = wl.entries[0].WithNotes("with popcorn")
	m := loaded(t, wl)

	m, _ = send(t, m, keyRunes("n"))
	require.True(t, m.InputModal.IsVisible())
	assert.Equal(t, "with popcorn", m.InputModal.Value())

	m, _ = send(t, m, keyRunes("!"))
	m, cmd := send(t, m, keyEnter)
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.Equal(t, "with popcorn!", wl.notes["Inception"])
	assert.Equal(t, "Notes saved locally, sync pending", m.StatusMsg)
	assert.Empty(t, m.Banner)
}

func TestGenreCycling(t *testing.T) {
	wl := sample()
	m := loaded(t, wl)

	// Genres: Action, Animation, Crime, Drama, Sci-Fi
	m, _ = send(t, m, keyRunes("]"))
	assert.Equal(t, "Action", wl.selected)
	assert.Equal(t, []string{"Inception"}, rowTitles(m))

	m, _ = send(t, m, keyRunes("["))
	assert.Equal(t, "", wl.selected)
	assert.Len(t, m.rows, 3)

	m, _ = send(t, m, keyRunes("["))
	assert.Equal(t, "Sci-Fi", wl.selected)
	assert.Equal(t, []string{"Inception"}, rowTitles(m))
}

func TestRecommendNeedsGenre(t *testing.T) {
	wl := sample()
	m := loaded(t, wl)

	m, _ = send(t, m, keyRunes("o"))
	assert.Equal(t, "Select a genre first", m.StatusMsg)

	m, _ = send(t, m, keyRunes("]"))
	m, _ = send(t, m, keyRunes("o"))
	assert.Equal(t, "https://www.imdb.com/search/title/?genres=action", m.StatusMsg)
}

func TestRecommendOpensLink(t *testing.T) {
	opener := &fakeOpener{}
	m := NewModel(sample(), opener)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m, _ = send(t, m, WatchlistLoadedMsg{})

	m, _ = send(t, m, keyRunes("]"))
	m, cmd := send(t, m, keyRunes("o"))
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.Pending)

	msg := cmd()
	assert.Equal(t, LinkOpenedMsg{URL: "https://www.imdb.com/search/title/?genres=action"}, msg)
	assert.Equal(t, []string{"https://www.imdb.com/search/title/?genres=action"}, opener.opened)

	m, _ = send(t, m, msg)
	assert.Equal(t, 0, m.Pending)
	assert.Contains(t, m.StatusMsg, "Opened")
}

func TestOpenTitleNeedsDetails(t *testing.T) {
	wl := sample()
	wl.entries[0].Metadata = &domain.Metadata{Title: "Inception", IMDbID: "tt1375666"}
	m := loaded(t, wl)

	m, _ = send(t, m, keyRunes("v"))
	assert.Equal(t, "https://www.imdb.com/title/tt1375666/", m.StatusMsg)

	m, _ = send(t, m, keyRunes("j"))
	m, _ = send(t, m, keyRunes("v"))
	assert.Contains(t, m.StatusMsg, "No IMDb page")
}

func TestOpenLinkFailureShowsBanner(t *testing.T) {
	opener := &fakeOpener{err: errors.New("no browser")}
	m := NewModel(sample(), opener)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m, _ = send(t, m, WatchlistLoadedMsg{})

	m, _ = send(t, m, keyRunes("]"))
	m, cmd := send(t, m, keyRunes("o"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	assert.Contains(t, m.Banner, "no browser")
}

func TestTitleQuickFilter(t *testing.T) {
	m := loaded(t, sample())

	m, _ = send(t, m, keyRunes("/"))
	require.True(t, m.filtering)
	m, _ = send(t, m, keyRunes("ht"))
	assert.Equal(t, []string{"Heat"}, rowTitles(m))

	m, _ = send(t, m, keyEnter)
	assert.False(t, m.filtering)
	assert.Equal(t, []string{"Heat"}, rowTitles(m), "filter persists after enter")

	m, _ = send(t, m, keyEsc)
	assert.Len(t, m.rows, 3)
}

func TestApplyTitleFilter(t *testing.T) {
	entries := sample().entries

	rows := applyTitleFilter(entries, "")
	assert.Len(t, rows, 3)

	rows = applyTitleFilter(entries, "INC")
	require.Len(t, rows, 1)
	assert.Equal(t, "Inception", rows[0].Entry.Title)
	assert.Equal(t, []int{0, 1, 2}, rows[0].Matched)

	assert.Empty(t, applyTitleFilter(entries, "zzz"))
}

func TestCursorClampsAfterRemoval(t *testing.T) {
	wl := sample()
	m := loaded(t, wl)
	m, _ = send(t, m, keyRunes("G"))
	assert.Equal(t, 2, m.cursor)

	require.NoError(t, wl.Remove(context.Background(), "Up"))
	m, _ = send(t, m, MovieRemovedMsg{Title: "Up"})
	assert.Equal(t, 1, m.cursor)
}

func TestSuggestionsPickerAddsSelected(t *testing.T) {
	wl := sample()
	wl.recs = []domain.Recommendation{
		{Title: "Life of Pi", Year: "2012", Genre: "Adventure, Drama"},
		{Title: "Heat", Year: "1995"},
	}
	m := loaded(t, wl)

	m, _ = send(t, m, keyRunes("s"))
	require.True(t, m.InputModal.IsVisible())
	m, _ = send(t, m, keyRunes("tiger boat"))
	m, cmd := send(t, m, keyEnter)
	require.NotNil(t, cmd)
	assert.False(t, m.InputModal.IsVisible())

	msg := cmd()
	require.IsType(t, RecommendationsMsg{}, msg)
	assert.Equal(t, []string{"tiger boat"}, wl.queries)

	m, _ = send(t, m, msg)
	assert.Equal(t, StateRecommendations, m.State)
	assert.Contains(t, m.View(), "Life of Pi (2012)")

	// Heat is already listed, so enter only reports it
	m, _ = send(t, m, keyRunes("j"))
	m, _ = send(t, m, keyEnter)
	assert.Contains(t, m.StatusMsg, "already listed")
	assert.Empty(t, wl.added)

	m, _ = send(t, m, keyRunes("k"))
	m, cmd = send(t, m, keyEnter)
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	assert.Equal(t, []string{"Life of Pi"}, wl.added)
	assert.Equal(t, StateRecommendations, m.State, "picker stays open after an add")

	m, _ = send(t, m, keyEsc)
	assert.Equal(t, StateBrowsing, m.State)
	assert.Contains(t, rowTitles(m), "Life of Pi")
}

func TestSuggestionsEmptyResultIsStatus(t *testing.T) {
	m := loaded(t, sample())
	m, _ = send(t, m, RecommendationsMsg{Query: "nothing"})
	assert.Equal(t, StateBrowsing, m.State)
	assert.Contains(t, m.StatusMsg, "No suggestions")
}

func TestHelpListsBindings(t *testing.T) {
	m := loaded(t, sample())
	m, _ = send(t, m, keyRunes("?"))
	require.Equal(t, StateHelp, m.State)
	view := m.View()
	assert.Contains(t, view, "suggest from description")
	assert.Contains(t, view, "open on IMDb")
}
