package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/applyforge/internal/types"
	"github.com/jonathan/applyforge/internal/workflow"
)

var createCommand = &cobra.Command{
	Use:   "create",
	Short: "Create a generation request and run it to the first review gate",
	Long: `Creates a new document generation request for a target job and advances it
until it completes, fails, or pauses for human review. Use "applyforge review"
to approve or reject the paused draft.`,
	RunE: runCreateCmd,
}

var (
	createDocuments    string
	createRole         string
	createCompany      string
	createLocation     string
	createDescription  string
	createDescFile     string
	createPostingURL   string
	createTone         string
	createEmphasize    []string
	createInstructions string
)

func init() {
	createCommand.Flags().StringVarP(&createDocuments, "documents", "d", "resume", "Documents to generate: resume, cover_letter, or both")
	createCommand.Flags().StringVarP(&createRole, "role", "r", "", "Target role title (required)")
	createCommand.Flags().StringVarP(&createCompany, "company", "c", "", "Target company (required)")
	createCommand.Flags().StringVar(&createLocation, "location", "", "Job location")
	createCommand.Flags().StringVar(&createDescription, "description", "", "Job description text (mutually exclusive with --description-file)")
	createCommand.Flags().StringVar(&createDescFile, "description-file", "", "Path to job description text file")
	createCommand.Flags().StringVar(&createPostingURL, "posting-url", "", "URL of the job posting, stored for reference")
	createCommand.Flags().StringVar(&createTone, "tone", "", "Preferred writing tone")
	createCommand.Flags().StringSliceVar(&createEmphasize, "emphasize", nil, "Skills to emphasize (repeatable)")
	createCommand.Flags().StringVar(&createInstructions, "instructions", "", "Extra free-form generation instructions")
	addEngineFlags(createCommand)

	_ = createCommand.MarkFlagRequired("role")
	_ = createCommand.MarkFlagRequired("company")

	rootCmd.AddCommand(createCommand)
}

func runCreateCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	if createDescription != "" && createDescFile != "" {
		return fmt.Errorf("--description and --description-file are mutually exclusive")
	}
	description := createDescription
	if createDescFile != "" {
		data, err := os.ReadFile(createDescFile)
		if err != nil {
			return fmt.Errorf("failed to read description file: %w", err)
		}
		description = string(data)
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var prefs *types.Preferences
	if createTone != "" || len(createEmphasize) > 0 || createInstructions != "" {
		prefs = &types.Preferences{
			Tone:              createTone,
			EmphasizeSkills:   createEmphasize,
			ExtraInstructions: createInstructions,
		}
	}

	req, err := a.engine.CreateRequest(ctx, workflowCreateInput(description, prefs))
	if err != nil {
		return err
	}
	fmt.Printf("Created request %s\n", req.ID)

	ran, err := a.engine.RunToPause(ctx, req.ID)
	if a.cfg.Verbose {
		for i := range ran {
			a.printer.PrintStepResult(&ran[i])
		}
	}
	if err != nil {
		return err
	}

	final, getErr := a.engine.GetRequest(ctx, req.ID)
	if getErr != nil {
		return getErr
	}
	a.printer.PrintSteps(final)
	if final.Status == types.StatusAwaitingReview {
		fmt.Printf("\nDraft ready: applyforge review --id %s\n", req.ID)
	}
	return nil
}

func workflowCreateInput(description string, prefs *types.Preferences) workflow.CreateInput {
	return workflow.CreateInput{
		Documents: types.DocumentSet(strings.ToLower(createDocuments)),
		Job: types.JobTarget{
			Role:        createRole,
			Company:     createCompany,
			Location:    createLocation,
			Description: description,
			PostingURL:  createPostingURL,
		},
		Preferences: prefs,
	}
}
