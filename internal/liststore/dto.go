package liststore

import (
	"encoding/json"
	"strings"

	"github.com/mmcdole/cinelist/internal/domain"
)

// MovieDTO is one stored movie as the backend serializes it
type MovieDTO struct {
	Title       string  `json:"title"`
	Genre       string  `json:"genre"`
	Notes       *string `json:"notes"`
	Watched     bool    `json:"watched"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
	Year        string  `json:"year"`
	Director    string  `json:"director"`
	Actors      string  `json:"actors"`
	Poster      string  `json:"poster"`
}

// RecommendationDTO is one suggestion from GET /recommend/
type RecommendationDTO struct {
	Title       string  `json:"title"`
	Year        string  `json:"year"`
	Genre       string  `json:"genre"`
	Director    string  `json:"director"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
	IMDbID      string  `json:"imdb_id"`
	Poster      string  `json:"poster"`
}

// recommendResponse wraps the suggestions with a human-readable message
type recommendResponse struct {
	Recommendations []RecommendationDTO `json:"recommendations"`
	Message         string              `json:"message"`
}

// envelope is the union of every object shape the backend answers with:
// {"message", "movie"} on success, {"error"} for in-band failures, and
// {"detail"} from the framework on auth or validation failures.
type envelope struct {
	Message string          `json:"message"`
	Movie   *MovieDTO       `json:"movie"`
	Error   string          `json:"error"`
	Detail  json.RawMessage `json:"detail"`
}

// detailText flattens FastAPI's detail field (a string or a list of objects)
func (e *envelope) detailText() string {
	if len(e.Detail) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(e.Detail, &s) == nil {
		return s
	}
	return strings.TrimSpace(string(e.Detail))
}

// MapEntry converts a stored movie into a list entry
func MapEntry(m MovieDTO) domain.MovieEntry {
	entry := domain.MovieEntry{
		Title:       m.Title,
		Genre:       m.Genre,
		Notes:       m.Notes,
		Watched:     m.Watched,
		Rating:      m.Rating,
		Description: m.Description,
	}
	if m.Year != "" || m.Director != "" || m.Actors != "" || m.Poster != "" {
		entry.Metadata = &domain.Metadata{
			Title:    m.Title,
			Year:     m.Year,
			Genre:    m.Genre,
			Director: m.Director,
			Actors:   m.Actors,
			Plot:     m.Description,
			Poster:   m.Poster,
		}
	}
	return entry
}

// MapEntries converts a stored list, preserving order
func MapEntries(movies []MovieDTO) []domain.MovieEntry {
	entries := make([]domain.MovieEntry, 0, len(movies))
	for _, m := range movies {
		entries = append(entries, MapEntry(m))
	}
	return entries
}

// MapRecommendations converts suggestions, dropping untitled ones
func MapRecommendations(items []RecommendationDTO) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, len(items))
	for _, r := range items {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		out = append(out, domain.Recommendation{
			Title:       r.Title,
			Year:        r.Year,
			Genre:       r.Genre,
			Director:    r.Director,
			Description: r.Description,
			Rating:      r.Rating,
			IMDbID:      r.IMDbID,
			Poster:      r.Poster,
		})
	}
	return out
}
