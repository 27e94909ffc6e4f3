package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrejuh/upiwatch/internal/common"
	"github.com/hrejuh/upiwatch/internal/template"
)

func templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage bank extraction templates",
	}

	cmd.AddCommand(templatesListCmd())
	cmd.AddCommand(templatesSeedCmd())
	return cmd
}

func templatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List templates in match order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return common.NewUserError("failed to open database", err)
			}
			defer func() { _ = store.Close() }()

			registry, err := template.Load(ctx, store)
			if err != nil {
				return err
			}

			for _, t := range registry.Templates() {
				fmt.Printf("%4d  %-14s  sender contains %q\n", t.Priority, t.BankName, t.EmailDomainFilter)
			}
			return nil
		},
	}
}

func templatesSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Persist the built-in default templates, replacing any existing set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return common.NewUserError("failed to open database", err)
			}
			defer func() { _ = store.Close() }()

			defaults := template.Defaults()
			if err := store.SaveBankTemplates(ctx, defaults); err != nil {
				return err
			}
			fmt.Printf("persisted %d default templates\n", len(defaults))
			return nil
		},
	}
}
