package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxgroups/internal/google"
	"github.com/teemow/inboxgroups/internal/instrumentation"
	"github.com/teemow/inboxgroups/internal/logging"
)

func newAuthCmd() *cobra.Command {
	var (
		account string
		code    string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize a Google account",
		Long: `Authorize a Google account for inbox access.

Run without --code to print the authorization URL. Open it in a browser,
grant access, then run the command again with the authorization code:

  inboxgroups auth --account work
  inboxgroups auth --account work --code <authorization-code>

The OAuth client credentials are read from GOOGLE_OAUTH_CLIENT_ID and
GOOGLE_OAUTH_CLIENT_SECRET.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if code == "" {
				if google.HasTokenForAccount(account) {
					fmt.Printf("Account %q is already authorized. Continuing replaces the stored token.\n\n", account)
				}
				fmt.Println("Open this URL in a browser and authorize access:")
				fmt.Println()
				fmt.Println("  " + google.GetAuthURL())
				fmt.Println()
				fmt.Println("Then run again with --code <authorization-code>.")
				return nil
			}

			ctx := context.Background()

			provider, shutdown, err := setupInstrumentation(ctx)
			if err != nil {
				return err
			}
			defer shutdown()

			slog.Debug("exchanging authorization code",
				logging.Account(account),
				slog.String("code", logging.SanitizeToken(code)))

			if err := google.SaveTokenForAccount(ctx, code, account); err != nil {
				provider.Metrics().RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
				return fmt.Errorf("authorization failed: %w", err)
			}
			provider.Metrics().RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)

			fmt.Printf("Token saved for account %q.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use (default: 'default')")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the OAuth consent flow")
	return cmd
}
