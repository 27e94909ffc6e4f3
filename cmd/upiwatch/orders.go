package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrejuh/upiwatch/internal/common"
	"github.com/hrejuh/upiwatch/internal/model"
)

func ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and seed order payment state",
	}

	cmd.AddCommand(ordersAddCmd())
	cmd.AddCommand(ordersShowCmd())
	return cmd
}

func ordersAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <order-id>",
		Short: "Create a pending order awaiting payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, _ := cmd.Flags().GetFloat64("amount")
			if amount <= 0 {
				return common.NewUserError("--amount must be positive", nil)
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return common.NewUserError("failed to open database", err)
			}
			defer func() { _ = store.Close() }()

			order := &model.Order{
				ID:     args[0],
				Status: model.OrderPending,
				Amount: amount,
			}
			if err := store.CreateOrder(ctx, order); err != nil {
				return err
			}
			fmt.Printf("order %s created, awaiting payment of %.2f\n", order.ID, amount)
			return nil
		},
	}

	cmd.Flags().Float64("amount", 0, "order amount in currency units")
	return cmd
}

func ordersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show an order's payment state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return common.NewUserError("failed to open database", err)
			}
			defer func() { _ = store.Close() }()

			order, err := store.GetOrder(ctx, args[0])
			if err != nil {
				return err
			}

			snapshot := model.SnapshotFromOrder(order)
			fmt.Printf("order %s\n", snapshot.OrderID)
			fmt.Printf("  status:            %s\n", snapshot.Status)
			fmt.Printf("  amount:            %.2f\n", order.Amount)
			fmt.Printf("  payment confirmed: %v\n", snapshot.PaymentConfirmed)
			fmt.Printf("  auto verified:     %v\n", snapshot.AutoVerified)
			if snapshot.VerificationID != "" {
				fmt.Printf("  verification:      %s\n", snapshot.VerificationID)
			}
			return nil
		},
	}
}
