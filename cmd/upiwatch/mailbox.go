package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrejuh/upiwatch/internal/bridge"
	"github.com/hrejuh/upiwatch/internal/common"
	"github.com/hrejuh/upiwatch/internal/mailbox"
	"github.com/hrejuh/upiwatch/internal/model"
)

func mailboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mailbox",
		Short: "Poll the Gmail inbox and verify every new payment email",
		Long: `Run the ingestion loop: sweep the configured mailbox on an interval,
run each unread email through the verification pipeline, and mark it
processed. Runs until interrupted.`,
		RunE: runMailbox,
	}

	cmd.Flags().Duration("interval", 0, "sweep interval (default 30s)")
	cmd.Flags().String("query", "", "Gmail search query (default: in:inbox is:unread)")
	cmd.Flags().String("watch-order", "", "print live status updates for this order while polling")
	return cmd
}

func runMailbox(cmd *cobra.Command, _ []string) error {
	interval, _ := cmd.Flags().GetDuration("interval")
	query, _ := cmd.Flags().GetString("query")
	watchOrder, _ := cmd.Flags().GetString("watch-order")
	if query == "" {
		query = viper.GetString("mailbox.query")
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return common.NewUserError("failed to open database", err)
	}
	defer func() { _ = store.Close() }()

	if watchOrder != "" {
		// Order mutations made by this process feed the hub, so updates
		// arrive as pushes instead of polling the row.
		hub := bridge.NewHub()
		store.SetPublisher(hub)

		subscriber := bridge.NewSubscriber(store, hub)
		handle, err := subscriber.Observe(ctx, watchOrder, func(s model.OrderPaymentStatus) {
			fmt.Printf("order %s: status=%s confirmed=%v auto=%v\n",
				s.OrderID, s.Status, s.PaymentConfirmed, s.AutoVerified)
		})
		if err != nil {
			return err
		}
		defer handle.Stop()
	}

	verifier, err := initVerifier(ctx, store)
	if err != nil {
		return err
	}

	client, err := initMailboxClient(ctx, query)
	if err != nil {
		return err
	}

	config := mailbox.DefaultPollerConfig()
	if interval > 0 {
		config.Interval = interval
	} else if cfgInterval := viper.GetDuration("mailbox.interval"); cfgInterval > 0 {
		config.Interval = cfgInterval
	}

	poller := mailbox.NewPoller(client, verifier, config)
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// initMailboxClient builds the Gmail client from stored credentials.
func initMailboxClient(ctx context.Context, query string) (*mailbox.Client, error) {
	oauthCfg, err := mailboxOAuthConfig()
	if err != nil {
		return nil, err
	}

	token, err := mailbox.LoadToken(oauthCfg.TokenFile)
	if err != nil {
		return nil, common.NewUserError("no mailbox token found; run 'upiwatch auth' first", err)
	}

	return mailbox.NewClient(ctx, oauthCfg, token, query)
}

// mailboxOAuthConfig reads the Gmail OAuth settings from viper.
func mailboxOAuthConfig() (mailbox.OAuth2Config, error) {
	clientID := viper.GetString("mailbox.client_id")
	clientSecret := viper.GetString("mailbox.client_secret")
	if clientID == "" || clientSecret == "" {
		return mailbox.OAuth2Config{}, common.NewUserError(
			"mailbox.client_id and mailbox.client_secret must be configured", common.ErrMissingConfig)
	}

	tokenFile := viper.GetString("mailbox.token_file")
	if tokenFile == "" {
		tokenFile = "$HOME/.config/upiwatch/gmail-token.json"
	}

	return mailbox.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    expandPath(tokenFile),
	}, nil
}
