package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrejuh/upiwatch/internal/bridge"
	"github.com/hrejuh/upiwatch/internal/common"
	"github.com/hrejuh/upiwatch/internal/model"
	"github.com/hrejuh/upiwatch/internal/tui"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <order-id>",
		Short: "Watch an order's payment status until it confirms",
		Long: `Poll the order on a fixed interval and print a snapshot on every read.
Stops on confirmation, on cancellation, or when the attempt budget runs
out. An exhausted budget is a distinct end state, not an error.`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().Bool("tui", false, "render a live terminal view instead of log lines")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	useTUI, _ := cmd.Flags().GetBool("tui")
	orderID := args[0]

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return common.NewUserError("failed to open database", err)
	}
	defer func() { _ = store.Close() }()

	interval, attempts := pollInterval()
	observer := bridge.NewPoller(store, bridge.PollerConfig{
		Interval:    interval,
		MaxAttempts: attempts,
	})

	if useTUI {
		outcome, err := tui.Watch(ctx, observer, orderID)
		if err != nil {
			return err
		}
		fmt.Printf("watch finished: %s\n", outcome)
		return nil
	}

	handle, err := observer.Observe(ctx, orderID, func(s model.OrderPaymentStatus) {
		fmt.Printf("order %s: status=%s confirmed=%v auto=%v\n",
			s.OrderID, s.Status, s.PaymentConfirmed, s.AutoVerified)
	})
	if err != nil {
		return err
	}

	<-handle.Done()
	fmt.Printf("watch finished: %s\n", handle.Result())
	return nil
}
