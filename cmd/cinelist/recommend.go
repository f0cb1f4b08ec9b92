package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mmcdole/cinelist/internal/domain"
)

func newRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend <description>",
		Short: "Suggest titles from a free-text description",
		Long: `Ask the list store for titles matching a vague description, e.g.
"boy on a boat with a tiger". Suggestions are not stored; use --add with a
suggestion's number to add it to the watchlist.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRecommend,
	}

	cmd.Flags().Int("top", 5, "number of suggestions to fetch")
	cmd.Flags().Int("add", 0, "add the suggestion with this number")

	return cmd
}

// recommendationJSON is the JSON output schema for one suggestion.
type recommendationJSON struct {
	Title       string  `json:"title"`
	Year        string  `json:"year,omitempty"`
	Genre       string  `json:"genre,omitempty"`
	Director    string  `json:"director,omitempty"`
	Description string  `json:"description,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	IMDbID      string  `json:"imdb_id,omitempty"`
	Poster      string  `json:"poster,omitempty"`
}

func runRecommend(cmd *cobra.Command, args []string) error {
	query := joinTitle(args)
	top, _ := cmd.Flags().GetInt("top")
	pick, _ := cmd.Flags().GetInt("add")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	recs, err := a.wl.Recommend(cmd.Context(), query, top)
	if err != nil {
		return fmt.Errorf("fetching suggestions for %q: %w", query, err)
	}

	out := cmd.OutOrStdout()

	if cmd.Flags().Changed("add") {
		if pick < 1 || pick > len(recs) {
			return domain.Validationf("--add must be between 1 and %d", len(recs))
		}
		entry, err := a.wl.Add(cmd.Context(), recs[pick-1].Title)
		if err != nil {
			return fmt.Errorf("adding %q: %w", recs[pick-1].Title, err)
		}
		if flagJSON {
			return printJSON(out, toEntryJSON(entry, a.wl.NoteState(entry.Title)))
		}
		fmt.Fprintf(out, "Added %s\n", entry.Title)
		return nil
	}

	if flagJSON {
		items := make([]recommendationJSON, 0, len(recs))
		for _, r := range recs {
			items = append(items, recommendationJSON(r))
		}
		return printJSON(out, items)
	}

	if len(recs) == 0 {
		fmt.Fprintln(out, "No suggestions. Try a different description.")
		return nil
	}

	rows := make([][]string, 0, len(recs))
	for i, r := range recs {
		rating := ""
		if r.Rating > 0 {
			rating = strconv.FormatFloat(r.Rating, 'f', 1, 64)
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), r.Title, r.Year, r.Genre, rating})
	}
	printTable(out, []string{"#", "TITLE", "YEAR", "GENRE", "RATING"}, rows)
	return nil
}
