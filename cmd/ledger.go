package cmd

import (
	"fmt"

	planadapter "github.com/bnema/neuroledger/internal/adapters/plan"
	statusadapter "github.com/bnema/neuroledger/internal/adapters/render/status"
	"github.com/bnema/neuroledger/internal/application"
	"github.com/spf13/cobra"
)

func newLedgerCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Run ledger plans and inspect statements",
	}

	cmd.AddCommand(
		newLedgerApplyCmd(app),
		newLedgerShowCmd(app),
	)

	return cmd
}

func newLedgerApplyCmd(app *app) *cobra.Command {
	var planPath string
	var statementPath string
	var save bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a plan of mints, burns and transfers to a fresh ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := planadapter.Load(planPath)
			if err != nil {
				return fmt.Errorf("load plan: %w", err)
			}

			result, err := app.planRunner().Run(cmd.Context(), plan)
			if err != nil {
				return fmt.Errorf("apply plan %s: %w", planPath, err)
			}

			statement := result.Statement(app.clock)
			if save || statementPath != "" {
				store, err := app.statementStore(statementPath)
				if err != nil {
					return err
				}
				if err := store.Write(cmd.Context(), statement); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "statement written to %s\n", store.Path())
			}

			return writeStatementOutput(cmd, app, statement, asJSON)
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "Plan file (.toml, .yaml or .yml)")
	cmd.Flags().StringVar(&statementPath, "statement", "", "Write the resulting statement to this file")
	cmd.Flags().BoolVar(&save, "save", false, "Write the resulting statement to the configured statement path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}

func newLedgerShowCmd(app *app) *cobra.Command {
	var statementPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render an exported ledger statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.statementStore(statementPath)
			if err != nil {
				return err
			}

			statement, err := store.Read(cmd.Context())
			if err != nil {
				return err
			}

			return writeStatementOutput(cmd, app, statement, asJSON)
		},
	}

	cmd.Flags().StringVar(&statementPath, "statement", "", "Statement file (default: configured statement path)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func writeStatementOutput(cmd *cobra.Command, app *app, statement application.Statement, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd, statement)
	}

	rendered, err := app.statementRenderer(statement, statusadapter.RenderOptions{Now: app.clock.Now()})
	if err != nil {
		return fmt.Errorf("render statement: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
