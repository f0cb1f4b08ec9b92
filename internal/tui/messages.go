package tui

import (
	"github.com/mmcdole/cinelist/internal/domain"
)

// Message types for the TUI

// ErrMsg represents a failed operation
type ErrMsg struct {
	Err     error
	Context string
	Title   string // Title the operation targeted, if any
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// WatchlistLoadedMsg signals that the list was (re)loaded
type WatchlistLoadedMsg struct{}

// MovieAddedMsg signals that an add settled
type MovieAddedMsg struct {
	Entry domain.MovieEntry
}

// MovieRemovedMsg signals that a remove was confirmed
type MovieRemovedMsg struct {
	Title string
}

// NotesSavedMsg signals that notes were written locally
type NotesSavedMsg struct {
	Title string
	State domain.NoteState
}

// MarkedWatchedMsg signals that a title was marked watched
type MarkedWatchedMsg struct {
	Title string
}

// EnrichedMsg signals that provider details were fetched
type EnrichedMsg struct {
	Failed map[string]error
}

// RecommendationsMsg carries suggestions for a description
type RecommendationsMsg struct {
	Query string
	Items []domain.Recommendation
}

// LinkOpenedMsg signals that a link was handed to the browser
type LinkOpenedMsg struct {
	URL string
}

// TickMsg drives the spinner
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
