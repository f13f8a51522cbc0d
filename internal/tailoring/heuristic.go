package tailoring

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/job-application-assistant/internal/signals"
	"github.com/jonathan/job-application-assistant/internal/types"
)

// HeuristicStrategy re-orders existing bullets by overlap with matched keywords and fills a
// fixed cover letter template. Its output depends only on its input.
type HeuristicStrategy struct {
	matcher *signals.Matcher
	opts    Options
	logger  *zap.Logger
}

// NewHeuristicStrategy creates the deterministic strategy. A nil matcher uses the default
// vocabulary and a nil logger discards output.
func NewHeuristicStrategy(m *signals.Matcher, opts Options, logger *zap.Logger) *HeuristicStrategy {
	if m == nil {
		m = signals.NewMatcher(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HeuristicStrategy{matcher: m, opts: opts, logger: logger}
}

// Tailor builds the plan and trims it to the configured page estimate.
func (h *HeuristicStrategy) Tailor(_ context.Context, in Input) (types.TailoringPlan, error) {
	overlap := NewOverlap(in.Assessment.Matched, h.matcher)
	plan := types.TailoringPlan{
		Sections:    reorder(in.Resume, overlap),
		CoverLetter: CoverLetter(in.Resume.Name, in.RoleTitle, in.Assessment.Matched, h.opts.CoverLetterKeywords),
		Strategy:    types.StrategyHeuristic,
	}
	if dropped := TrimToPages(&plan, overlap, h.opts.MaxPages, h.opts.Layout); dropped > 0 {
		h.logger.Debug("trimmed plan to page estimate", zap.Int("dropped", dropped), zap.Int("max_pages", h.opts.MaxPages))
	}
	return plan, nil
}

// reorder stable-sorts each section's bullets by descending overlap. Items inside skills
// lines are reordered the same way.
func reorder(resume types.ResumeDocument, overlap OverlapFunc) []types.PlanSection {
	sections := make([]types.PlanSection, 0, len(resume.Sections))
	for _, s := range resume.Sections {
		bullets := append([]string(nil), s.Bullets...)
		if isSkillsSection(s.Name) {
			for i, b := range bullets {
				bullets[i] = reorderSkills(b, overlap)
			}
		}
		scores := make(map[int]int, len(bullets))
		idx := make([]int, len(bullets))
		for i, b := range bullets {
			idx[i] = i
			scores[i] = overlap(b)
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return scores[idx[a]] > scores[idx[b]]
		})
		ordered := make([]string, len(bullets))
		for i, j := range idx {
			ordered[i] = bullets[j]
		}
		sections = append(sections, types.PlanSection{Name: s.Name, Bullets: ordered})
	}
	return sections
}

var (
	skillSeparator = regexp.MustCompile(`\s*[,|]\s*`)
	skillLabel     = regexp.MustCompile(`^([^,|:]{1,40}:)\s*`)
)

func isSkillsSection(name string) bool {
	return strings.Contains(strings.ToLower(name), "skill")
}

// reorderSkills puts the matched items of a comma or pipe separated skills line first,
// dropping repeats. A leading "Label:" stays in front.
func reorderSkills(line string, overlap OverlapFunc) string {
	label := ""
	rest := line
	if m := skillLabel.FindStringSubmatch(line); m != nil {
		label = m[1] + " "
		rest = line[len(m[0]):]
	}
	if !strings.ContainsAny(rest, ",|") {
		return line
	}

	var items []string
	seen := make(map[string]bool)
	for _, item := range skillSeparator.Split(rest, -1) {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, strings.TrimSpace(item))
	}
	sort.SliceStable(items, func(a, b int) bool {
		return overlap(items[a]) > overlap(items[b])
	})

	sep := ", "
	if !strings.Contains(rest, ",") {
		sep = " | "
	}
	return label + strings.Join(items, sep)
}
