package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local notes cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all locally cached notes for this backend",
		Long: `Delete all locally cached notes for this backend. Notes that never
reached the list store are lost.`,
		Args: cobra.NoArgs,
		RunE: runCacheClear,
	})

	return cmd
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.cache.Clear(); err != nil {
		return fmt.Errorf("clearing notes cache: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Notes cache cleared.")
	return nil
}
