// Package fit scores a resume's signals against a job's requirements and decides whether to apply.
package fit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/job-application-assistant/internal/config"
	"github.com/jonathan/job-application-assistant/internal/signals"
	"github.com/jonathan/job-application-assistant/internal/types"
)

// NoteUnparsedRequirements flags an assessment made without any job requirements.
const NoteUnparsedRequirements = "could not parse requirements"

// DegenerateScore is the score given when the job has no requirements to compare against.
const DegenerateScore = 0.5

// maxGapNotes is how many missing keywords are listed in the notes.
const maxGapNotes = 3

// Scorer compares resume signals with job requirements. It holds no mutable state.
type Scorer struct {
	cfg     config.Scoring
	matcher *signals.Matcher
}

// NewScorer creates a scorer with the given weights and thresholds. A nil matcher uses the default vocabulary.
func NewScorer(cfg config.Scoring, m *signals.Matcher) *Scorer {
	if m == nil {
		m = signals.NewMatcher(nil)
	}
	return &Scorer{cfg: cfg, matcher: m}
}

// Assess builds a FitAssessment. Each requirement is matched against the resume's keywords
// after alias and plural folding, then
//
//	score = (Σ matched required × w_req + Σ matched preferred × w_pref) / (Σ required × w_req + Σ preferred × w_pref)
//
// clamped to [0,1]. With no requirements, or when every requirement carries zero weight,
// the score is DegenerateScore and a note is added. Matched and missing are still reported
// for a non-empty set.
func (s *Scorer) Assess(resume types.SignalSet, reqs types.RequirementSet) types.FitAssessment {
	if reqs.Len() == 0 {
		return types.FitAssessment{
			Score:          DegenerateScore,
			Recommendation: RecommendationFor(DegenerateScore, s.cfg),
			Matched:        []string{},
			Missing:        []string{},
			Notes:          []string{NoteUnparsedRequirements},
		}
	}

	index := make(map[string]bool, resume.Len())
	for k := range resume.Weights {
		index[s.matcher.Key(k)] = true
	}

	var total, matchedWeight float64
	var matched, missing []types.Requirement
	for _, r := range reqs.Items {
		w := r.Weight * s.tagWeight(r.Tag)
		total += w
		if index[s.matcher.Key(r.Keyword)] {
			matched = append(matched, r)
			matchedWeight += w
		} else {
			missing = append(missing, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Weight > matched[j].Weight
	})
	sort.SliceStable(missing, func(i, j int) bool {
		if missing[i].Tag != missing[j].Tag {
			return missing[i].Tag == types.TagRequired
		}
		return missing[i].Weight > missing[j].Weight
	})

	if total <= 0 {
		return types.FitAssessment{
			Score:          DegenerateScore,
			Recommendation: RecommendationFor(DegenerateScore, s.cfg),
			Matched:        keywords(matched),
			Missing:        keywords(missing),
			Notes:          append([]string{NoteUnparsedRequirements}, gapNotes(missing)...),
		}
	}

	score := clamp(matchedWeight / total)
	rec := RecommendationFor(score, s.cfg)
	return types.FitAssessment{
		Score:          score,
		Recommendation: rec,
		Matched:        keywords(matched),
		Missing:        keywords(missing),
		Notes:          append([]string{matchNote(score, rec)}, gapNotes(missing)...),
	}
}

func (s *Scorer) tagWeight(tag types.RequirementTag) float64 {
	if tag == types.TagRequired {
		return s.cfg.RequiredWeight
	}
	return s.cfg.PreferredWeight
}

// RecommendationFor maps a score to a recommendation. Every score, including values outside
// [0,1], maps to exactly one recommendation.
func RecommendationFor(score float64, cfg config.Scoring) types.Recommendation {
	switch {
	case score >= cfg.ApplyThreshold:
		return types.RecommendApply
	case score >= cfg.MaybeThreshold:
		return types.RecommendMaybe
	default:
		return types.RecommendNo
	}
}

func matchNote(score float64, rec types.Recommendation) string {
	switch rec {
	case types.RecommendApply:
		return fmt.Sprintf("Strong keyword match (%.2f)", score)
	case types.RecommendMaybe:
		return fmt.Sprintf("Moderate keyword match (%.2f)", score)
	default:
		return fmt.Sprintf("Weak keyword match (%.2f)", score)
	}
}

func gapNotes(missing []types.Requirement) []string {
	var out []string
	requiredGaps := 0
	for _, r := range missing {
		if r.Tag == types.TagRequired {
			requiredGaps++
		}
	}
	if requiredGaps > 0 {
		out = append(out, fmt.Sprintf("Missing %d required skill(s)", requiredGaps))
	}

	if len(missing) > 0 {
		top := keywords(missing)
		if len(top) > maxGapNotes {
			top = top[:maxGapNotes]
		}
		out = append(out, "Top gaps: "+strings.Join(top, ", "))
	}
	return out
}

func keywords(items []types.Requirement) []string {
	out := make([]string, 0, len(items))
	for _, r := range items {
		out = append(out, r.Keyword)
	}
	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
