package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newArchiveCmd() *cobra.Command {
	var (
		account  string
		cacheDir string
	)

	cmd := &cobra.Command{
		Use:   "archive <cluster-id>",
		Short: "Archive every message of a cluster",
		Long: `Archive all messages of the given cluster by removing them from the inbox.
Messages already archived are skipped, so a partially failed run can be
repeated until it succeeds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clusterID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid cluster id %q", args[0])
			}

			ctx := context.Background()

			provider, shutdown, err := setupInstrumentation(ctx)
			if err != nil {
				return err
			}
			defer shutdown()

			svc, cleanup, err := newGroupsService(ctx, account, cacheDir, 0, provider)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.ArchiveCluster(ctx, clusterID)
			if err != nil {
				return fmt.Errorf("archive failed: %w", err)
			}

			fmt.Printf("Archived %d messages.\n", len(result.ArchivedIDs))
			if !result.Success {
				for _, id := range result.FailedIDs {
					fmt.Printf("  failed: %s\n", id)
				}
				return fmt.Errorf("%d messages could not be archived; run again to retry", len(result.FailedIDs))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use (default: 'default')")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory for the local cache (default: ~/.cache/inboxgroups)")
	return cmd
}
