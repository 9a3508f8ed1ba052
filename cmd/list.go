package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxgroups/internal/cache"
)

func newListCmd() *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the stored cluster set",
		Long: `Show the cluster set from the last clustering run. Archived messages are
filtered out; fully archived clusters are omitted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			store, err := cache.NewStore(cacheDir)
			if err != nil {
				return fmt.Errorf("failed to open local cache: %w", err)
			}
			defer func() { _ = store.Close() }()

			set, err := store.ListClusters(ctx)
			if err != nil {
				return fmt.Errorf("failed to list clusters: %w", err)
			}

			printClusterSet(set)
			return nil
		},
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory for the local cache (default: ~/.cache/inboxgroups)")
	return cmd
}
