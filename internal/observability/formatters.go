// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/applyforge/internal/agents"
	"github.com/jonathan/applyforge/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSteps outputs the step pipeline of a request with per-step status and
// timing.
func (p *Printer) PrintSteps(req *types.GenerationRequest) {
	if req == nil || len(req.Steps) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Request:  %s\n", req.ID))
	sb.WriteString(fmt.Sprintf("Status:   %s\n\n", req.Status))

	for _, step := range req.Steps {
		marker := " "
		switch step.Status {
		case types.StepCompleted:
			marker = "✓"
		case types.StepFailed:
			marker = "✗"
		case types.StepInProgress:
			marker = "…"
		}
		sb.WriteString(fmt.Sprintf("[%s] %s", marker, step.Name))
		if step.DurationMs != nil {
			sb.WriteString(fmt.Sprintf(" (%dms)", *step.DurationMs))
		}
		sb.WriteString("\n")
		if step.Error != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", step.Error))
		}
	}

	p.printBox("WORKFLOW STEPS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStepResult outputs one executed step's result details.
func (p *Printer) PrintStepResult(step *types.Step) {
	if step == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Step:    %s\n", step.Name))
	sb.WriteString(fmt.Sprintf("Status:  %s\n", step.Status))
	if step.Error != "" {
		sb.WriteString(fmt.Sprintf("Error:   %s\n", step.Error))
	}

	if len(step.Result) > 0 {
		sb.WriteString("\n")
		keys := make([]string, 0, len(step.Result))
		for k := range step.Result {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("%s: %v\n", k, step.Result[k]))
		}
	}

	p.printBox("STEP RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGroundingWarnings outputs operator-facing grounding warnings.
func (p *Printer) PrintGroundingWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(warnings), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("• %s\n", warnings[i]))
	}
	if len(warnings) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(warnings)-maxItemsToShow))
	}

	p.printBox("GROUNDING WARNINGS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAgentStates outputs the reliability ledger, enabled agents first.
func (p *Printer) PrintAgentStates(states map[string]agents.AgentState) {
	if len(states) == 0 {
		return
	}

	ids := make([]string, 0, len(states))
	for id := range states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := states[ids[i]], states[ids[j]]
		if a.Enabled != b.Enabled {
			return a.Enabled
		}
		return ids[i] < ids[j]
	})

	var sb strings.Builder
	for _, id := range ids {
		st := states[id]
		marker := "✓"
		if !st.Enabled {
			marker = "✗"
		}
		sb.WriteString(fmt.Sprintf("[%s] %s  usage: %.1f\n", marker, id, st.DailyUsage))
		if st.Reason != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", st.Reason))
		}
	}

	p.printBox("AGENT LEDGER", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintArtifacts outputs the stored artifact records for a request.
func (p *Printer) PrintArtifacts(records []types.ArtifactRecord) {
	if len(records) == 0 {
		return
	}

	var sb strings.Builder
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("%s: %s (%d bytes)\n", rec.Type, rec.Locator.Filename, rec.Locator.SizeBytes))
	}

	p.printBox("ARTIFACTS", strings.TrimSuffix(sb.String(), "\n"))
}
