package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrejuh/upiwatch/internal/mailbox"
)

func authCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Gmail for mailbox polling",
		Long: `Run the interactive OAuth2 flow and cache the resulting token. The
mailbox poller reuses the cached token and refreshes it as needed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			oauthCfg, err := mailboxOAuthConfig()
			if err != nil {
				return err
			}

			token, err := mailbox.GetOrCreateToken(cmd.Context(), oauthCfg)
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			fmt.Printf("authenticated; token valid until %s\n", token.Expiry)
			return nil
		},
	}
}
