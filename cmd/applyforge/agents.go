package main

import (
	"context"

	"github.com/spf13/cobra"
)

var agentsCommand = &cobra.Command{
	Use:   "agents",
	Short: "Show the agent reliability ledger",
	Long: `Prints every configured agent with its enabled flag, disable reason, and
daily budget usage. Disabled agents stay disabled until an operator clears
them in the store.`,
	RunE: runAgentsCmd,
}

func init() {
	addEngineFlags(agentsCommand)
	rootCmd.AddCommand(agentsCommand)
}

func runAgentsCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	a.printer.PrintAgentStates(a.ledger.States())
	return nil
}
