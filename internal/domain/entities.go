package domain

import (
	"strings"
)

// Rating is a single review score reported by the metadata provider
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// Metadata is the enrichment resolved from the movie metadata provider.
// It is populated lazily and never persisted by the watchlist.
type Metadata struct {
	Title      string   `json:"title"`
	Year       string   `json:"year"`
	Genre      string   `json:"genre"`
	Director   string   `json:"director"`
	Actors     string   `json:"actors"`
	Plot       string   `json:"plot"`
	Poster     string   `json:"poster,omitempty"` // Empty when the provider has no poster
	Ratings    []Rating `json:"ratings,omitempty"`
	IMDbRating string   `json:"imdbRating,omitempty"`
	IMDbID     string   `json:"imdbID"`
}

// HasPoster returns true if the provider supplied a poster URL
func (m *Metadata) HasPoster() bool {
	return m != nil && m.Poster != ""
}

// MovieEntry is one title in a user's watchlist.
// Title is the key within a list and is matched case-sensitively.
type MovieEntry struct {
	Title       string    // List key
	Genre       string    // Comma-separated free text, not normalized
	Notes       *string   // nil means notes were never set
	Watched     bool      // Whether the title was marked watched
	Rating      float64   // Store-side IMDb rating (0 if unknown)
	Description string    // Store-side plot summary
	Metadata    *Metadata // Provider enrichment, nil until resolved
}

// NotesText returns the notes value or "" when unset
func (e MovieEntry) NotesText() string {
	if e.Notes == nil {
		return ""
	}
	return *e.Notes
}

// HasNotes returns true if notes were ever set for this entry
func (e MovieEntry) HasNotes() bool {
	return e.Notes != nil
}

// GenreTokens splits the genre field on commas and trims each token.
// Empty tokens are dropped.
func (e MovieEntry) GenreTokens() []string {
	parts := strings.Split(e.Genre, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// MatchesGenre reports whether the entry's genre field case-insensitively
// contains the given token. An empty token matches everything.
func (e MovieEntry) MatchesGenre(genre string) bool {
	if genre == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Genre), strings.ToLower(genre))
}

// WithNotes returns a copy of the entry with notes set to text
func (e MovieEntry) WithNotes(text string) MovieEntry {
	e.Notes = &text
	return e
}

// EntryFromMetadata builds a list entry from provider metadata.
// The provider's canonical title becomes the list key.
func EntryFromMetadata(meta *Metadata) MovieEntry {
	return MovieEntry{
		Title:       meta.Title,
		Genre:       meta.Genre,
		Description: meta.Plot,
		Metadata:    meta,
	}
}

// Recommendation is a title the store suggests for a free-text description
type Recommendation struct {
	Title       string
	Year        string
	Genre       string
	Director    string
	Description string
	Rating      float64 // IMDb rating, 0 if unknown
	IMDbID      string
	Poster      string
}

// SearchHit is one result of a provider title search
type SearchHit struct {
	Title  string
	Year   string
	IMDbID string
	Poster string
}
