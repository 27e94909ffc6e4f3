package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrejuh/upiwatch/internal/common"
	"github.com/hrejuh/upiwatch/internal/engine"
)

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <email-file>",
		Short: "Run one email through the full verification pipeline",
		Long: `Parse an email file, validate the extracted payment, persist a
verification record, and link it to an order when it auto-verifies.`,
		Args: cobra.ExactArgs(1),
		RunE: runVerify,
	}

	cmd.Flags().String("order", "", "order id to verify against (default: correlate by amount)")
	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	orderID, _ := cmd.Flags().GetString("order")

	email, err := loadEmailFile(args[0])
	if err != nil {
		return common.NewUserError("failed to load email", err)
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return common.NewUserError("failed to open database", err)
	}
	defer func() { _ = store.Close() }()

	verifier, err := initVerifier(ctx, store)
	if err != nil {
		return err
	}

	var outcome *engine.Outcome
	if orderID != "" {
		outcome, err = verifier.ProcessEmailForOrder(ctx, email, orderID)
	} else {
		outcome, err = verifier.ProcessEmail(ctx, email)
	}
	if errors.Is(err, engine.ErrNoTemplateMatched) {
		fmt.Println("no template matched; email left for manual review")
		return nil
	}
	if err != nil {
		return err
	}

	record := outcome.Record
	fmt.Printf("verification %s: %s (%s, %.2f)\n",
		record.ID, record.Status, record.BankName, record.Amount)
	for _, msg := range outcome.Result.Errors {
		fmt.Printf("  - %s\n", msg)
	}
	if outcome.Order != nil {
		fmt.Printf("order %s: %s, payment confirmed: %v\n",
			outcome.Order.ID, outcome.Order.Status, outcome.Order.PaymentConfirmed)
	}
	return nil
}
