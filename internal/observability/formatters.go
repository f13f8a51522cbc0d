// Package observability provides logging, metrics and the formatted console output of the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/job-application-assistant/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted console output
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

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip truncates a line to n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// writeList writes up to limit items as bullets with an overflow line.
func writeList(sb *strings.Builder, items []string, limit int) {
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
}

// PrintRequirements outputs the requirements extracted from the job description.
func (p *Printer) PrintRequirements(roleTitle string, reqs types.RequirementSet) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role:     %s\n\n", roleTitle))

	required := reqs.ByTag(types.TagRequired)
	if len(required) > 0 {
		sb.WriteString("Required:\n")
		for i, r := range required {
			if i == maxItemsToShow {
				sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(required)-maxItemsToShow))
				break
			}
			sb.WriteString(fmt.Sprintf("  • %s (%.2f)\n", r.Keyword, r.Weight))
		}
		sb.WriteString("\n")
	}

	preferred := reqs.ByTag(types.TagPreferred)
	if len(preferred) > 0 {
		sb.WriteString("Preferred:\n")
		count := min(len(preferred), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", preferred[i].Keyword))
		}
		if len(preferred) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(preferred)-3))
		}
	}
	if reqs.Len() == 0 {
		sb.WriteString("No requirements found\n")
	}

	p.printBox("JOB REQUIREMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAssessment outputs the fit score, recommendation and gaps.
func (p *Printer) PrintAssessment(a *types.FitAssessment) {
	if a == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:          %.2f\n", a.Score))
	sb.WriteString(fmt.Sprintf("Recommendation: %s\n", a.Recommendation))

	if len(a.Matched) > 0 {
		sb.WriteString("\nMatched:\n")
		writeList(&sb, a.Matched, maxItemsToShow)
	}
	if len(a.Missing) > 0 {
		sb.WriteString("\nMissing:\n")
		writeList(&sb, a.Missing, maxItemsToShow)
	}
	if len(a.Notes) > 0 {
		sb.WriteString("\nNotes:\n")
		writeList(&sb, a.Notes, maxItemsToShow)
	}

	p.printBox("FIT ASSESSMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPlan outputs the leading bullets of each tailored section and any plan notes.
func (p *Printer) PrintPlan(plan *types.TailoringPlan) {
	if plan == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Strategy: %s\n", plan.Strategy))
	if plan.Tagline != "" {
		sb.WriteString(fmt.Sprintf("Tagline:  %s\n", plan.Tagline))
	}

	for _, s := range plan.Sections {
		sb.WriteString(fmt.Sprintf("\n%s (%d)\n", s.Name, len(s.Bullets)))
		count := min(len(s.Bullets), 3)
		for i := 0; i < count; i++ {
			text := strings.ReplaceAll(s.Bullets[i], "\n", " ")
			if len(text) > 50 {
				text = text[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", text))
		}
	}

	if len(plan.Notes) > 0 {
		sb.WriteString("\nNotes:\n")
		for _, n := range plan.Notes {
			sb.WriteString(fmt.Sprintf("⚠ %s\n", n))
		}
	}

	p.printBox("TAILORING PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintArtifacts outputs the written file paths.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintArtifacts(paths []string) {
	if len(paths) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "No files written")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}
	p.printBox("OUTPUT FILES", strings.Join(paths, "\n"))
}
