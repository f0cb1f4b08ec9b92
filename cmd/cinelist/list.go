package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/launcher"
	"github.com/mmcdole/cinelist/internal/watchlist"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the watchlist",
		Long: `List every title in the watchlist with locally cached notes overlaid.
Use --genre to keep titles whose genre contains the given token.`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	cmd.Flags().String("genre", "", "only titles whose genre contains this token")
	cmd.Flags().Bool("details", false, "fetch provider details for every title")

	return cmd
}

func newGenresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genres",
		Short: "List genres present in the watchlist",
		Args:  cobra.NoArgs,
		RunE:  runGenres,
	}

	cmd.Flags().String("recommend", "", "print the recommendations link for a genre")
	cmd.Flags().Bool("open", false, "open the recommendations link in a browser")

	return cmd
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the movie database by title",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <title>",
		Short: "Show provider details for a title",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runInfo,
	}

	cmd.Flags().Bool("refresh", false, "bypass previously fetched details")
	cmd.Flags().Bool("open", false, "open the IMDb page in a browser")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	genre, _ := cmd.Flags().GetString("genre")
	details, _ := cmd.Flags().GetBool("details")
	ctx := cmd.Context()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.wl.Reload(ctx); err != nil {
		return fmt.Errorf("listing movies: %w", err)
	}

	if details {
		failed := a.wl.Enrich(ctx)
		for _, title := range sortedKeys(failed) {
			fmt.Fprintf(cmd.ErrOrStderr(), "details unavailable for %s: %v\n", title, failed[title])
		}
	}

	a.wl.SelectGenre(genre)
	entries := a.wl.Filtered()
	out := cmd.OutOrStdout()

	if flagJSON {
		items := make([]entryJSON, 0, len(entries))
		for _, e := range entries {
			items = append(items, toEntryJSON(e, a.wl.NoteState(e.Title)))
		}
		return printJSON(out, items)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No movies.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		watched := ""
		if e.Watched {
			watched = "yes"
		}
		notes := e.NotesText()
		if a.wl.NoteState(e.Title) == domain.NoteLocalAheadOfRemote {
			notes += " (pending)"
		}
		rows = append(rows, []string{e.Title, e.Genre, watched, notes})
	}
	printTable(out, []string{"TITLE", "GENRE", "WATCHED", "NOTES"}, rows)

	return nil
}

func runGenres(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	if genre, _ := cmd.Flags().GetString("recommend"); cmd.Flags().Changed("recommend") {
		link, err := watchlist.RecommendURL(genre)
		if err != nil {
			return err
		}
		if open, _ := cmd.Flags().GetBool("open"); open {
			l := launcher.New(resolvedCfg.Browser.Command, resolvedCfg.Browser.Args, buildLogger())
			return openLink(out, l, link)
		}
		fmt.Fprintln(out, link)
		return nil
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.wl.Reload(cmd.Context()); err != nil {
		return fmt.Errorf("listing movies: %w", err)
	}

	genres := a.wl.Genres()
	if flagJSON {
		return printJSON(out, genres)
	}
	for _, g := range genres {
		fmt.Fprintln(out, g)
	}
	return nil
}

// searchJSON is the JSON output schema for one search hit.
type searchJSON struct {
	Title  string `json:"title"`
	Year   string `json:"year"`
	IMDbID string `json:"imdb_id"`
	Poster string `json:"poster,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := joinTitle(args)

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	hits, err := a.wl.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("searching %q: %w", query, err)
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		items := make([]searchJSON, 0, len(hits))
		for _, h := range hits {
			items = append(items, searchJSON(h))
		}
		return printJSON(out, items)
	}

	rows := make([][]string, 0, len(hits))
	for _, h := range hits {
		rows = append(rows, []string{h.Title, h.Year, h.IMDbID})
	}
	printTable(out, []string{"TITLE", "YEAR", "IMDB"}, rows)
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	title := joinTitle(args)
	refresh, _ := cmd.Flags().GetBool("refresh")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if refresh {
		a.resolver.Forget(title)
	}

	meta, err := a.resolver.Resolve(cmd.Context(), title)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", title, err)
	}

	out := cmd.OutOrStdout()
	if open, _ := cmd.Flags().GetBool("open"); open {
		link, err := watchlist.TitleURL(meta.IMDbID)
		if err != nil {
			return err
		}
		return openLink(out, a.opener, link)
	}
	if flagJSON {
		return printJSON(out, meta)
	}

	fields := [][]string{
		{"Title", meta.Title},
		{"Year", meta.Year},
		{"Genre", meta.Genre},
		{"Director", meta.Director},
		{"Actors", meta.Actors},
		{"IMDb", meta.IMDbRating},
		{"Plot", meta.Plot},
	}
	if link, err := watchlist.TitleURL(meta.IMDbID); err == nil {
		fields = append(fields, []string{"Link", link})
	}
	for _, r := range meta.Ratings {
		fields = append(fields, []string{r.Source, r.Value})
	}
	for _, f := range fields {
		if f[1] != "" {
			fmt.Fprintf(out, "%-10s %s\n", f[0]+":", f[1])
		}
	}
	return nil
}

// sortedKeys returns map keys in order
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
