package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxgroups/internal/cache"
	"github.com/teemow/inboxgroups/internal/gmail"
	"github.com/teemow/inboxgroups/internal/google"
	"github.com/teemow/inboxgroups/internal/groups"
	"github.com/teemow/inboxgroups/internal/instrumentation"
	"github.com/teemow/inboxgroups/internal/server"
)

func newClusterCmd() *cobra.Command {
	var (
		account     string
		cacheDir    string
		metricsAddr string
		clusters    int
		limit       int64
	)

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Fetch inbox messages and group them into topic clusters",
		Long: `Fetch the most recent inbox messages, group them into topic clusters
and store the result in the local cache. A previous cluster set is replaced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			provider, shutdown, err := setupInstrumentation(ctx)
			if err != nil {
				return err
			}
			defer shutdown()

			if metricsAddr != "" {
				metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
					Addr:                    metricsAddr,
					InstrumentationProvider: provider,
				})
				if err != nil {
					return err
				}
				go func() {
					if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						slog.Error("metrics server failed", "error", err)
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
					defer cancel()
					_ = metricsServer.Shutdown(shutdownCtx)
				}()
			}

			svc, cleanup, err := newGroupsService(ctx, account, cacheDir, limit, provider)
			if err != nil {
				return err
			}
			defer cleanup()

			set, err := svc.FetchAndCluster(ctx, clusters)
			if err != nil {
				var verr *groups.ValidationError
				if errors.As(err, &verr) {
					return fmt.Errorf("nothing to cluster: %s", verr.Msg)
				}
				return fmt.Errorf("clustering failed: %w", err)
			}

			printClusterSet(set)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use (default: 'default')")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory for the local cache (default: ~/.cache/inboxgroups)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running (e.g. ':9090')")
	cmd.Flags().IntVarP(&clusters, "clusters", "k", groups.DefaultClusters, "Number of topic clusters")
	cmd.Flags().Int64Var(&limit, "limit", groups.MaxMessages, "Maximum number of inbox messages to fetch")

	return cmd
}

// newGroupsService wires a groups.Service from the Gmail client and the
// local cache. The returned cleanup closes the cache store.
func newGroupsService(ctx context.Context, account, cacheDir string, limit int64, provider *instrumentation.Provider) (*groups.Service, func(), error) {
	if !google.HasTokenForAccount(account) {
		return nil, nil, fmt.Errorf("no OAuth token for account %q; run 'inboxgroups auth --account %s' first", account, account)
	}

	client, err := gmail.NewClientForAccount(ctx, account)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Gmail client for account %s: %w", account, err)
	}
	client = client.WithMetrics(provider.Metrics())

	store, err := cache.NewStore(cacheDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open local cache: %w", err)
	}

	svc := groups.NewService(store, client, groups.Config{
		Account:     account,
		MaxMessages: limit,
		Logger:      slog.Default(),
		Metrics:     provider.Metrics(),
	})

	cleanup := func() { _ = store.Close() }
	return svc, cleanup, nil
}

func printClusterSet(set *cache.ClusterSet) {
	if len(set.Clusters) == 0 {
		fmt.Println("No clusters.")
		return
	}

	fmt.Printf("Clustered at %s\n\n", set.CreatedAt.Local().Format(time.RFC1123))
	for i, c := range set.Clusters {
		fmt.Printf("%d. %s (id %d, %d emails)\n", i+1, c.Label, c.ID, c.MemberCount)
		fmt.Printf("   %s\n", c.Description)
		for _, m := range c.Members {
			fmt.Printf("   - %s (%s)\n", m.Subject, m.Sender)
		}
		fmt.Println()
	}
}
