package omdb

import (
	"strings"

	"github.com/mmcdole/cinelist/internal/domain"
)

// notAvailable is the provider's placeholder for missing fields
const notAvailable = "N/A"

// TitleResponse is the provider's answer to a by-title lookup (t=)
type TitleResponse struct {
	Response   string          `json:"Response"`
	Error      string          `json:"Error"`
	Title      string          `json:"Title"`
	Year       string          `json:"Year"`
	Genre      string          `json:"Genre"`
	Director   string          `json:"Director"`
	Actors     string          `json:"Actors"`
	Plot       string          `json:"Plot"`
	Poster     string          `json:"Poster"`
	Ratings    []domain.Rating `json:"Ratings"`
	IMDbRating string          `json:"imdbRating"`
	IMDbID     string          `json:"imdbID"`
}

// SearchResponse is the provider's answer to a search (s=)
type SearchResponse struct {
	Response     string       `json:"Response"`
	Error        string       `json:"Error"`
	Search       []SearchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
}

// SearchItem is one hit inside a SearchResponse
type SearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

// ok reports whether the provider flagged the response as successful
func ok(response string) bool {
	return strings.EqualFold(response, "True")
}

// MapMetadata converts a title response to domain metadata
func MapMetadata(r *TitleResponse) *domain.Metadata {
	return &domain.Metadata{
		Title:      r.Title,
		Year:       r.Year,
		Genre:      clean(r.Genre),
		Director:   clean(r.Director),
		Actors:     clean(r.Actors),
		Plot:       clean(r.Plot),
		Poster:     clean(r.Poster),
		Ratings:    r.Ratings,
		IMDbRating: clean(r.IMDbRating),
		IMDbID:     r.IMDbID,
	}
}

// MapSearchHits converts search items to domain hits
func MapSearchHits(items []SearchItem) []domain.SearchHit {
	hits := make([]domain.SearchHit, 0, len(items))
	for _, it := range items {
		hits = append(hits, domain.SearchHit{
			Title:  it.Title,
			Year:   it.Year,
			IMDbID: it.IMDbID,
			Poster: clean(it.Poster),
		})
	}
	return hits
}

func clean(s string) string {
	if s == notAvailable {
		return ""
	}
	return s
}
