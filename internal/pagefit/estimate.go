// Package pagefit predicts, without real layout, whether resume content
// overflows the fixed single-page two-column template.
package pagefit

import (
	"math"

	"github.com/jonathan/applyforge/internal/types"
)

const (
	// mainMaxLines is the line budget for the main column
	mainMaxLines = 46.0
	// sidebarMaxLines is the line budget for the sidebar column
	sidebarMaxLines = 48.0
	// mainCharsPerLine is the estimated characters per main-column line
	mainCharsPerLine = 68.0
	// sidebarCharsPerLine is the estimated characters per sidebar line
	sidebarCharsPerLine = 28.0
	// headerLines covers name, contact strip, and section spacing
	headerLines = 4.0
	// entryHeaderLines covers company/role plus the date line
	entryHeaderLines = 2.0
	// entrySpacing is the vertical gap after each entry
	entrySpacing = 1.0
	// sidebarContactLines covers the contact block
	sidebarContactLines = 6.0
	// educationEntryLines covers institution, degree, and dates
	educationEntryLines = 3.0
)

// Estimate is the predicted layout cost of a resume against the template.
type Estimate struct {
	MainLines       float64 `json:"main_lines"`
	SidebarLines    float64 `json:"sidebar_lines"`
	MainOverflow    float64 `json:"main_overflow"`
	SidebarOverflow float64 `json:"sidebar_overflow"`
	Fits            bool    `json:"fits"`
	Overflow        float64 `json:"overflow"` // the worse of the two deltas
}

// EstimateResume models line cost per structural element for both columns
// independently. Fits is true only when neither column exceeds its budget.
func EstimateResume(content *types.ResumeContent) Estimate {
	main := headerLines
	main += textLines(content.ProfessionalSummary, mainCharsPerLine)

	for _, exp := range content.Experience {
		main += entryHeaderLines
		for _, bullet := range exp.Highlights {
			main += textLines(bullet, mainCharsPerLine)
		}
		main += entrySpacing
	}

	for _, project := range content.Projects {
		main += entryHeaderLines
		main += textLines(project.Description, mainCharsPerLine)
		for _, bullet := range project.Highlights {
			main += textLines(bullet, mainCharsPerLine)
		}
		main += entrySpacing
	}

	sidebar := sidebarContactLines
	for _, category := range content.Skills {
		sidebar += 1 // category heading
		chars := 0
		for _, item := range category.Items {
			chars += len(item) + 2 // separator
		}
		sidebar += math.Ceil(float64(chars) / sidebarCharsPerLine)
	}
	for range content.Education {
		sidebar += educationEntryLines + entrySpacing
	}

	est := Estimate{
		MainLines:       main,
		SidebarLines:    sidebar,
		MainOverflow:    math.Max(0, main-mainMaxLines),
		SidebarOverflow: math.Max(0, sidebar-sidebarMaxLines),
	}
	est.Overflow = math.Max(est.MainOverflow, est.SidebarOverflow)
	est.Fits = est.Overflow == 0
	return est
}

// textLines estimates how many lines a block of text occupies at the given
// width. Non-empty text costs at least one line.
func textLines(text string, charsPerLine float64) float64 {
	if text == "" {
		return 0
	}
	lines := float64(len(text)) / charsPerLine
	if lines < 1 {
		return 1
	}
	return math.Ceil(lines*2) / 2 // half-line resolution
}
