package tui

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/cinelist/internal/domain"
)

// filterRow is one visible row with the title positions the quick-filter matched
type filterRow struct {
	Entry   domain.MovieEntry
	Matched []int
}

// applyTitleFilter narrows entries to fuzzy title matches, best first.
// An empty query keeps every entry in list order.
func applyTitleFilter(entries []domain.MovieEntry, query string) []filterRow {
	if query == "" {
		rows := make([]filterRow, len(entries))
		for i, e := range entries {
			rows[i] = filterRow{Entry: e}
		}
		return rows
	}

	lowerTitles := make([]string, len(entries))
	for i, e := range entries {
		lowerTitles[i] = strings.ToLower(e.Title)
	}

	matches := fuzzy.Find(strings.ToLower(query), lowerTitles)

	rows := make([]filterRow, len(matches))
	for i, match := range matches {
		rows[i] = filterRow{Entry: entries[match.Index], Matched: match.MatchedIndexes}
	}
	return rows
}
