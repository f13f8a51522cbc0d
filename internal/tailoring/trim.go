package tailoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/job-application-assistant/internal/rewriting"
	"github.com/jonathan/job-application-assistant/internal/types"
)

const (
	// headerLines approximates the name, contact and tagline block.
	headerLines = 4
	// sectionHeadingLines approximates a section title and its spacing.
	sectionHeadingLines = 2
)

// trimOrder lists sections from first to last to lose bullets when overlap ties.
// Sections not listed rank just after "additional information".
var trimOrder = []string{
	"additional information",
	"interests",
	"volunteer experience",
	"certifications",
	"projects",
	"work experience/projects",
	"professional experience",
	"work experience",
	"experience",
	"education",
	"key skills / technical skills",
	"key skills",
	"technical skills",
	"skills",
	"professional summary",
	"summary",
}

// keepOne sections never lose their last bullet.
var keepOne = map[string]bool{
	"professional summary": true,
	"summary":              true,
}

// Layout approximates rendered size.
type Layout struct {
	CharsPerLine int
	LinesPerPage int
}

func (l Layout) normalize() Layout {
	if l.CharsPerLine <= 0 {
		l.CharsPerLine = rewriting.DefaultCharsPerLine
	}
	if l.LinesPerPage <= 0 {
		l.LinesPerPage = 48
	}
	return l
}

// EstimateLines approximates the rendered line count of a plan's resume part.
func EstimateLines(plan types.TailoringPlan, layout Layout) int {
	layout = layout.normalize()
	lines := headerLines
	for _, s := range plan.Sections {
		lines += sectionHeadingLines
		for _, b := range s.Bullets {
			lines += rewriting.EstimateTextLines(b, layout.CharsPerLine)
		}
	}
	return lines
}

// EstimatePages approximates how many pages the resume part of a plan renders to.
func EstimatePages(plan types.TailoringPlan, layout Layout) int {
	layout = layout.normalize()
	return int(math.Ceil(float64(EstimateLines(plan, layout)) / float64(layout.LinesPerPage)))
}

// TrimToPages drops lowest-overlap bullets until the estimate fits maxPages or nothing more
// can go. It returns the number of bullets dropped and notes it on the plan.
func TrimToPages(plan *types.TailoringPlan, overlap OverlapFunc, maxPages int, layout Layout) int {
	if maxPages <= 0 {
		return 0
	}
	dropped := 0
	for EstimatePages(*plan, layout) > maxPages && TrimOnce(plan, overlap) {
		dropped++
	}
	if dropped > 0 {
		plan.Notes = append(plan.Notes, fmt.Sprintf("Trimmed %d bullet(s) to fit %d page(s)", dropped, maxPages))
	}
	return dropped
}

// TrimOnce removes the single bullet with the lowest overlap. Ties go to the section that
// ranks earlier in the trim order, then to the bullet that comes last. A section left empty is removed.
// It reports whether anything was removed.
func TrimOnce(plan *types.TailoringPlan, overlap OverlapFunc) bool {
	bestSection, bestBullet := -1, -1
	var bestScore, bestRank int
	for si, s := range plan.Sections {
		if keepOne[strings.ToLower(strings.TrimSpace(s.Name))] && len(s.Bullets) <= 1 {
			continue
		}
		rank := trimRank(s.Name)
		for bi, b := range s.Bullets {
			score := overlap(b)
			better := bestSection < 0 ||
				score < bestScore ||
				(score == bestScore && rank < bestRank) ||
				(score == bestScore && rank == bestRank)
			if better {
				bestSection, bestBullet, bestScore, bestRank = si, bi, score, rank
			}
		}
	}
	if bestSection < 0 {
		return false
	}

	s := &plan.Sections[bestSection]
	s.Bullets = append(s.Bullets[:bestBullet:bestBullet], s.Bullets[bestBullet+1:]...)
	if len(s.Bullets) == 0 {
		plan.Sections = append(plan.Sections[:bestSection:bestSection], plan.Sections[bestSection+1:]...)
	}
	return true
}

func trimRank(name string) int {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, t := range trimOrder {
		if t == n {
			if i == 0 {
				return 0
			}
			return i + 1
		}
	}
	return 1
}
