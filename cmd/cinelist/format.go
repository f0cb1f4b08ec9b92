package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/cinelist/internal/domain"
)

// printTable writes rows as space-padded columns under headers.
func printTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow(w, headers, widths)
	for _, row := range rows {
		printRow(w, row, widths)
	}
}

// printRow writes a single padded row.
func printRow(w io.Writer, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// entryJSON is the JSON output schema for one watchlist entry.
type entryJSON struct {
	Title       string  `json:"title"`
	Genre       string  `json:"genre"`
	Watched     bool    `json:"watched"`
	Notes       *string `json:"notes"`
	NoteState   string  `json:"note_state"`
	Rating      float64 `json:"rating,omitempty"`
	Year        string  `json:"year,omitempty"`
	Director    string  `json:"director,omitempty"`
	IMDbID      string  `json:"imdb_id,omitempty"`
	Description string  `json:"description,omitempty"`
}

func toEntryJSON(e domain.MovieEntry, state domain.NoteState) entryJSON {
	out := entryJSON{
		Title:       e.Title,
		Genre:       e.Genre,
		Watched:     e.Watched,
		Notes:       e.Notes,
		NoteState:   noteStateLabel(state),
		Rating:      e.Rating,
		Description: e.Description,
	}
	if e.Metadata != nil {
		out.Year = e.Metadata.Year
		out.Director = e.Metadata.Director
		out.IMDbID = e.Metadata.IMDbID
	}
	return out
}

func noteStateLabel(s domain.NoteState) string {
	switch s {
	case domain.NoteLocalOnly:
		return "local"
	case domain.NoteSynced:
		return "synced"
	case domain.NoteLocalAheadOfRemote:
		return "pending"
	default:
		return "unset"
	}
}

// joinTitle rebuilds a title given as several shell words
func joinTitle(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
