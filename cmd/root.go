package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "neuro",
		Short:         "Neuro ledger: token balances and administrative commands",
		Long:          "neuro runs token ledger plans, renders ledger statements, and dispatches administrative commands locally or against a running command server.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLedgerCmd(app),
		newCommandCmd(app),
		newServeCmd(app),
	)

	return rootCmd
}
