package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/cinelist/internal/domain"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Add a movie to the watchlist",
		Long: `Look the title up at the movie database and add it to the watchlist.
Adding a title that is already listed is not an error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAdd,
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <title>",
		Aliases: []string{"remove"},
		Short:   "Remove a movie from the watchlist",
		Args:    cobra.MinimumNArgs(1),
		RunE:    runRm,
	}
}

func newNotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes <title> [text]",
		Short: "Show or set notes for a title",
		Long: `With text, set the notes for a listed title. Notes are kept locally even
when the list store cannot be reached. Without text, print the current notes.
Quote titles that contain spaces.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if pending, _ := cmd.Flags().GetBool("pending"); pending {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.RangeArgs(1, 2)(cmd, args)
		},
		RunE: runNotes,
	}

	cmd.Flags().Bool("pending", false, "list titles whose notes are not yet on the list store")

	return cmd
}

func newWatchedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watched <title>",
		Short: "Mark a movie as watched",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runWatched,
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	title := joinTitle(args)

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	entry, err := a.wl.Add(cmd.Context(), title)
	if err != nil {
		return fmt.Errorf("adding %q: %w", title, err)
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return printJSON(out, toEntryJSON(entry, a.wl.NoteState(entry.Title)))
	}

	desc := entry.Title
	if entry.Metadata != nil && entry.Metadata.Year != "" {
		desc += " (" + entry.Metadata.Year + ")"
	}
	fmt.Fprintf(out, "Added %s", desc)
	if entry.Genre != "" {
		fmt.Fprintf(out, "  %s", entry.Genre)
	}
	fmt.Fprintln(out)
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	title := joinTitle(args)

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.wl.Remove(cmd.Context(), title); err != nil {
		return fmt.Errorf("removing %q: %w", title, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", title)
	return nil
}

func runNotes(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.wl.Reload(ctx); err != nil {
		return fmt.Errorf("listing movies: %w", err)
	}

	if pending, _ := cmd.Flags().GetBool("pending"); pending {
		titles := a.wl.PendingNotes()
		if flagJSON {
			return printJSON(out, titles)
		}
		for _, t := range titles {
			fmt.Fprintln(out, t)
		}
		return nil
	}

	title := args[0]

	if len(args) == 1 {
		entry, ok := a.wl.Get(title)
		if !ok {
			return fmt.Errorf("%q is not in the list: %w", title, domain.ErrNotFound)
		}
		if flagJSON {
			return printJSON(out, toEntryJSON(entry, a.wl.NoteState(title)))
		}
		fmt.Fprintln(out, entry.NotesText())
		return nil
	}

	state, err := a.wl.SetNotes(ctx, title, args[1])
	if err != nil {
		return fmt.Errorf("saving notes for %q: %w", title, err)
	}

	if state == domain.NoteLocalAheadOfRemote {
		fmt.Fprintf(out, "Saved notes for %s locally; the list store was not updated\n", title)
		return nil
	}
	fmt.Fprintf(out, "Saved notes for %s\n", title)
	return nil
}

func runWatched(cmd *cobra.Command, args []string) error {
	title := joinTitle(args)

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.wl.MarkWatched(cmd.Context(), title); err != nil {
		return fmt.Errorf("marking %q watched: %w", title, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Marked %s watched\n", title)
	return nil
}
