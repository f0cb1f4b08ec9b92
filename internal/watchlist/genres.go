package watchlist

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/mmcdole/cinelist/internal/domain"
)

// recommendBaseURL is the IMDb title search used for genre recommendations
const recommendBaseURL = "https://www.imdb.com/search/title/?genres="

// BuildGenreIndex returns the sorted set of distinct trimmed genre tokens.
// De-duplication is exact-string: "Drama" and "drama" are distinct options.
func BuildGenreIndex(entries []domain.MovieEntry) []string {
	seen := make(map[string]struct{})
	for _, e := range entries {
		for _, g := range e.GenreTokens() {
			seen[g] = struct{}{}
		}
	}

	genres := make([]string, 0, len(seen))
	for g := range seen {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	return genres
}

// Filter returns the entries whose genre field case-insensitively contains
// genre. An empty genre is the identity filter.
func Filter(entries []domain.MovieEntry, genre string) []domain.MovieEntry {
	out := make([]domain.MovieEntry, 0, len(entries))
	for _, e := range entries {
		if e.MatchesGenre(genre) {
			out = append(out, e)
		}
	}
	return out
}

// titleBaseURL is the IMDb title page prefix
const titleBaseURL = "https://www.imdb.com/title/"

// TitleURL builds the IMDb page link for a provider id
func TitleURL(imdbID string) (string, error) {
	imdbID = strings.TrimSpace(imdbID)
	if !strings.HasPrefix(imdbID, "tt") {
		return "", fmt.Errorf("%w: no IMDb id for this title", domain.ErrValidation)
	}
	return titleBaseURL + url.PathEscape(imdbID) + "/", nil
}

// RecommendURL builds the IMDb search link listing titles in genre
func RecommendURL(genre string) (string, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return "", fmt.Errorf("%w: select a genre to get recommendations", domain.ErrValidation)
	}
	escaped := strings.ReplaceAll(url.QueryEscape(strings.ToLower(genre)), "+", "%20")
	return recommendBaseURL + escaped, nil
}
