package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var statusCommand = &cobra.Command{
	Use:   "status",
	Short: "Show a request's step pipeline and stored artifacts",
	RunE:  runStatusCmd,
}

var statusRequestID string

func init() {
	statusCommand.Flags().StringVar(&statusRequestID, "id", "", "Request ID (required)")
	addEngineFlags(statusCommand)

	_ = statusCommand.MarkFlagRequired("id")

	rootCmd.AddCommand(statusCommand)
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	id, err := uuid.Parse(statusRequestID)
	if err != nil {
		return fmt.Errorf("invalid request id: %w", err)
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	req, err := a.engine.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	a.printer.PrintSteps(req)

	records, err := a.db.ListArtifacts(ctx, id)
	if err != nil {
		return err
	}
	a.printer.PrintArtifacts(records)
	return nil
}
