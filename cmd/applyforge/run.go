package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/applyforge/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Advance an existing request through its remaining steps",
	Long: `Runs the next step of a request, or all remaining steps until it completes,
fails, or pauses at a review gate.`,
	RunE: runAdvanceCmd,
}

var (
	runRequestID string
	runSingle    bool
)

func init() {
	runCommand.Flags().StringVar(&runRequestID, "id", "", "Request ID (required)")
	runCommand.Flags().BoolVar(&runSingle, "step", false, "Run only the next step instead of running to the next pause")
	addEngineFlags(runCommand)

	_ = runCommand.MarkFlagRequired("id")

	rootCmd.AddCommand(runCommand)
}

func runAdvanceCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	id, err := uuid.Parse(runRequestID)
	if err != nil {
		return fmt.Errorf("invalid request id: %w", err)
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if runSingle {
		step, err := a.engine.RunNextStep(ctx, id)
		if step != nil {
			a.printer.PrintStepResult(step)
		}
		if err != nil {
			return err
		}
		if step == nil {
			fmt.Println("Nothing to run; request is already terminal.")
		}
	} else {
		ran, err := a.engine.RunToPause(ctx, id)
		if a.cfg.Verbose {
			for i := range ran {
				a.printer.PrintStepResult(&ran[i])
			}
		}
		if err != nil {
			return err
		}
	}

	req, err := a.engine.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	a.printer.PrintSteps(req)
	if req.Status == types.StatusAwaitingReview {
		fmt.Printf("\nDraft ready: applyforge review --id %s\n", id)
	}
	return nil
}
