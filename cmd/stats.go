package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxgroups/internal/cache"
)

func newStatsCmd() *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show message and cluster counts from the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			store, err := cache.NewStore(cacheDir)
			if err != nil {
				return fmt.Errorf("failed to open local cache: %w", err)
			}
			defer func() { _ = store.Close() }()

			stats, err := store.Stats(ctx)
			if err != nil {
				return fmt.Errorf("failed to read stats: %w", err)
			}

			fmt.Printf("Messages:  %d total, %d active, %d archived\n",
				stats.TotalMessages, stats.ActiveMessages, stats.ArchivedMessages)
			fmt.Printf("Clusters:  %d\n", stats.Clusters)
			fmt.Printf("Cache:     %s\n", store.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory for the local cache (default: ~/.cache/inboxgroups)")
	return cmd
}
