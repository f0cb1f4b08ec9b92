package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/cinelist/internal/domain"
)

// Watchlist is the reconciliation core the TUI drives
type Watchlist interface {
	Reload(ctx context.Context) error
	Add(ctx context.Context, title string) (domain.MovieEntry, error)
	Remove(ctx context.Context, title string) error
	SetNotes(ctx context.Context, title, text string) (domain.NoteState, error)
	MarkWatched(ctx context.Context, title string) error
	Enrich(ctx context.Context) map[string]error
	Recommend(ctx context.Context, query string, topK int) ([]domain.Recommendation, error)

	Filtered() []domain.MovieEntry
	Genres() []string
	SelectGenre(genre string)
	SelectedGenre() string
	NoteState(title string) domain.NoteState
	Busy(title string) bool
	Listed(title string) bool
	Mode() domain.Mode
}

// Opener opens links in an external program
type Opener interface {
	Open(url string) error
}

const (
	opTimeout = 60 * time.Second

	// Suggestions requested per description
	recommendCount = 10
)

// Command factories for async operations

// ReloadCmd re-lists the watchlist
func ReloadCmd(wl Watchlist) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if err := wl.Reload(ctx); err != nil {
			return ErrMsg{Err: err, Context: "loading watchlist"}
		}
		return WatchlistLoadedMsg{}
	}
}

// AddCmd adds a title
func AddCmd(wl Watchlist, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		entry, err := wl.Add(ctx, title)
		if err != nil {
			return ErrMsg{Err: err, Context: "adding " + title, Title: title}
		}
		return MovieAddedMsg{Entry: entry}
	}
}

// RemoveCmd removes a title
func RemoveCmd(wl Watchlist, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if err := wl.Remove(ctx, title); err != nil {
			return ErrMsg{Err: err, Context: "removing " + title, Title: title}
		}
		return MovieRemovedMsg{Title: title}
	}
}

// SetNotesCmd annotates a title
func SetNotesCmd(wl Watchlist, title, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		state, err := wl.SetNotes(ctx, title, text)
		if err != nil {
			return ErrMsg{Err: err, Context: "saving notes for " + title, Title: title}
		}
		return NotesSavedMsg{Title: title, State: state}
	}
}

// MarkWatchedCmd marks a title watched
func MarkWatchedCmd(wl Watchlist, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if err := wl.MarkWatched(ctx, title); err != nil {
			return ErrMsg{Err: err, Context: "marking " + title + " watched", Title: title}
		}
		return MarkedWatchedMsg{Title: title}
	}
}

// EnrichCmd fetches provider details for the list
func EnrichCmd(wl Watchlist) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		return EnrichedMsg{Failed: wl.Enrich(ctx)}
	}
}

// TickCmd returns a command that ticks after delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// OpenLinkCmd opens url with opener
func OpenLinkCmd(opener Opener, url string) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Open(url); err != nil {
			return ErrMsg{Err: err, Context: "Failed to open link"}
		}
		return LinkOpenedMsg{URL: url}
	}
}

// RecommendCmd fetches suggestions for a free-text description
func RecommendCmd(wl Watchlist, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		items, err := wl.Recommend(ctx, query, recommendCount)
		if err != nil {
			return ErrMsg{Err: err, Context: "Failed to fetch suggestions"}
		}
		return RecommendationsMsg{Query: query, Items: items}
	}
}
