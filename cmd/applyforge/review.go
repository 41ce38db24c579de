package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var reviewCommand = &cobra.Command{
	Use:   "review",
	Short: "Inspect, approve, or reject the draft awaiting review",
	Long: `Without --approve or --reject, prints the draft paused at the active review
gate. --approve accepts the draft (optionally replacing it with edited JSON
from --content-file) and resumes the workflow. --reject regenerates the draft
from the given feedback; each document allows a bounded number of rejections.`,
	RunE: runReviewCmd,
}

var (
	reviewRequestID   string
	reviewApprove     bool
	reviewReject      bool
	reviewFeedback    string
	reviewContentFile string
)

func init() {
	reviewCommand.Flags().StringVar(&reviewRequestID, "id", "", "Request ID (required)")
	reviewCommand.Flags().BoolVar(&reviewApprove, "approve", false, "Approve the draft and resume the workflow")
	reviewCommand.Flags().BoolVar(&reviewReject, "reject", false, "Reject the draft and regenerate from --feedback")
	reviewCommand.Flags().StringVar(&reviewFeedback, "feedback", "", "Reviewer feedback for --reject")
	reviewCommand.Flags().StringVar(&reviewContentFile, "content-file", "", "Path to reviewer-edited draft JSON for --approve")
	addEngineFlags(reviewCommand)

	_ = reviewCommand.MarkFlagRequired("id")

	rootCmd.AddCommand(reviewCommand)
}

func runReviewCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	id, err := uuid.Parse(reviewRequestID)
	if err != nil {
		return fmt.Errorf("invalid request id: %w", err)
	}
	if reviewApprove && reviewReject {
		return fmt.Errorf("--approve and --reject are mutually exclusive")
	}
	if reviewReject && reviewFeedback == "" {
		return fmt.Errorf("--reject requires --feedback")
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	switch {
	case reviewApprove:
		return approveDraft(ctx, a, id)
	case reviewReject:
		draft, err := a.engine.RejectReview(ctx, id, reviewFeedback)
		if err != nil {
			return err
		}
		fmt.Printf("Regenerated %s draft:\n", draft.Type)
		return printDraftJSON(draft.Content)
	default:
		draft, err := a.engine.GetDraftContent(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("Draft awaiting review (%s):\n", draft.Type)
		return printDraftJSON(draft.Content)
	}
}

func approveDraft(ctx context.Context, a *app, id uuid.UUID) error {
	var edited json.RawMessage
	if reviewContentFile != "" {
		data, err := os.ReadFile(reviewContentFile)
		if err != nil {
			return fmt.Errorf("failed to read content file: %w", err)
		}
		edited = data
	}

	if _, err := a.engine.SubmitReview(ctx, id, edited); err != nil {
		return err
	}
	fmt.Println("Draft approved; resuming workflow.")

	ran, err := a.engine.RunToPause(ctx, id)
	if a.cfg.Verbose {
		for i := range ran {
			a.printer.PrintStepResult(&ran[i])
		}
	}
	if err != nil {
		return err
	}

	req, err := a.engine.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	a.printer.PrintSteps(req)
	return nil
}

func printDraftJSON(raw json.RawMessage) error {
	var buf any
	if err := json.Unmarshal(raw, &buf); err != nil {
		return fmt.Errorf("stored draft is not valid JSON: %w", err)
	}
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}
