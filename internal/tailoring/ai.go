package tailoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-application-assistant/internal/llm"
	"github.com/jonathan/job-application-assistant/internal/prompts"
	"github.com/jonathan/job-application-assistant/internal/rewriting"
	"github.com/jonathan/job-application-assistant/internal/schemas"
	"github.com/jonathan/job-application-assistant/internal/signals"
	"github.com/jonathan/job-application-assistant/internal/types"
)

// FallbackNotePrefix starts the plan note added when AI tailoring falls back.
const FallbackNotePrefix = "AI tailoring unavailable, used heuristic ordering: "

const (
	rewriteMaxTokens     = 4000
	coverLetterMaxTokens = 1200
	taglineMaxTokens     = 40
)

// bulletRewrites is the JSON shape returned by the rewrite-bullets prompt.
type bulletRewrites struct {
	Sections []struct {
		Name    string `json:"name"`
		Bullets []struct {
			Index int    `json:"index"`
			Text  string `json:"text"`
		} `json:"bullets"`
	} `json:"sections"`
}

// AIStrategy rewrites bullets, drafts the cover letter and proposes a tagline through an
// llm.Generator. Any failure falls back to the heuristic plan with a note.
type AIStrategy struct {
	gen       llm.Generator
	heuristic *HeuristicStrategy
	matcher   *signals.Matcher
	opts      Options
	logger    *zap.Logger
}

// NewAIStrategy creates the AI strategy. heuristic is used for fallback and must not be nil.
func NewAIStrategy(gen llm.Generator, heuristic *HeuristicStrategy, logger *zap.Logger) *AIStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIStrategy{
		gen:       gen,
		heuristic: heuristic,
		matcher:   heuristic.matcher,
		opts:      heuristic.opts,
		logger:    logger,
	}
}

// Tailor never returns an error for a failed generator; it returns the heuristic plan instead.
func (a *AIStrategy) Tailor(ctx context.Context, in Input) (types.TailoringPlan, error) {
	if a.gen == nil {
		return a.fallback(ctx, in, llm.ErrUnavailable)
	}

	jobText, redacted := prompts.Sanitize(in.JobText)
	if len(redacted) > 0 {
		a.logger.Warn("redacted instruction-like text from job description", zap.Strings("phrases", redacted))
	}
	in.JobText = jobText

	grounding := rewriting.NewGrounding(in.Resume, a.matcher)
	var (
		sections []types.PlanSection
		kept     int
		letter   []string
		rejected []string
		tagline  string
		tagErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sections, kept, err = a.rewriteBullets(gctx, in, grounding)
		return err
	})
	g.Go(func() error {
		var err error
		letter, rejected, err = a.coverLetter(gctx, in, grounding)
		return err
	})
	// A tagline is optional; its failure does not discard the rest of the plan.
	g.Go(func() error {
		tagline, tagErr = a.tagline(gctx, in)
		return nil
	})
	if err := g.Wait(); err != nil {
		return a.fallback(ctx, in, err)
	}

	plan := types.TailoringPlan{
		Sections:    sections,
		CoverLetter: letter,
		Strategy:    types.StrategyAI,
	}
	if len(rejected) > 0 {
		plan.CoverLetter = CoverLetter(in.Resume.Name, in.RoleTitle, in.Assessment.Matched, a.opts.CoverLetterKeywords)
		plan.Notes = append(plan.Notes, "Generated cover letter mentioned skills not in the resume ("+strings.Join(rejected, ", ")+"), used the template letter")
	}
	if len(redacted) > 0 {
		plan.Notes = append(plan.Notes, "Redacted instruction-like text from the job description: "+strings.Join(redacted, ", "))
	}
	if kept > 0 {
		plan.Notes = append(plan.Notes, fmt.Sprintf("Kept %d original bullet(s) where the rewrite was not grounded in the resume", kept))
	}
	if tagErr != nil {
		a.logger.Warn("tagline generation failed", zap.Error(tagErr))
		plan.Notes = append(plan.Notes, "Tagline not generated: "+tagErr.Error())
	} else if v, ok := grounding.ValidateTagline(tagline); ok {
		plan.Tagline = v
	} else if strings.TrimSpace(tagline) != "" {
		plan.Notes = append(plan.Notes, "Generated tagline rejected: it was too long or used words not in the resume")
	}

	TrimToPages(&plan, NewOverlap(in.Assessment.Matched, a.matcher), a.opts.MaxPages, a.opts.Layout)
	return plan, nil
}

func (a *AIStrategy) fallback(ctx context.Context, in Input, cause error) (types.TailoringPlan, error) {
	reason := cause.Error()
	a.logger.Warn("AI tailoring failed, falling back to heuristic", zap.Error(cause))
	plan, err := a.heuristic.Tailor(ctx, in)
	if err != nil {
		return types.TailoringPlan{}, err
	}
	plan.Notes = append(plan.Notes, FallbackNotePrefix+reason)
	return plan, nil
}

func (a *AIStrategy) rewriteBullets(ctx context.Context, in Input, grounding *rewriting.Grounding) ([]types.PlanSection, int, error) {
	prompt, err := prompts.Render(prompts.TailoringFile, prompts.KeyRewriteBullets, map[string]string{
		"Matched":   strings.Join(in.Assessment.Matched, ", "),
		"RoleTitle": in.RoleTitle,
		"JobText":   in.JobText,
		"Sections":  formatSections(in.Resume),
	})
	if err != nil {
		return nil, 0, err
	}

	raw, err := a.gen.Generate(ctx, prompt, llm.Constraints{Tier: llm.TierStandard, JSON: true, MaxTokens: rewriteMaxTokens})
	if err != nil {
		return nil, 0, err
	}
	raw = llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.BulletRewrites, raw); err != nil {
		return nil, 0, malformed("bullet rewrites", err)
	}
	var resp bulletRewrites
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, 0, malformed("bullet rewrites", err)
	}

	rewrites := make(map[string][]rewrite, len(resp.Sections))
	for _, s := range resp.Sections {
		if !in.Resume.HasSection(s.Name) {
			return nil, 0, malformed("bullet rewrites", fmt.Errorf("unknown section %q", s.Name))
		}
		key := strings.ToLower(strings.TrimSpace(s.Name))
		for _, b := range s.Bullets {
			rewrites[key] = append(rewrites[key], rewrite{index: b.Index, text: strings.TrimSpace(b.Text)})
		}
	}

	overlap := NewOverlap(in.Assessment.Matched, a.matcher)
	heuristic := reorder(in.Resume, overlap)
	kept := 0
	sections := make([]types.PlanSection, 0, len(in.Resume.Sections))
	for i, s := range in.Resume.Sections {
		items, ok := rewrites[strings.ToLower(strings.TrimSpace(s.Name))]
		if !ok {
			sections = append(sections, heuristic[i])
			continue
		}
		bullets, k := applyRewrites(s.Bullets, items, grounding)
		kept += k
		sections = append(sections, types.PlanSection{Name: s.Name, Bullets: bullets})
	}
	return sections, kept, nil
}

type rewrite struct {
	index int
	text  string
}

// applyRewrites orders a section's bullets as the response does, keeping the original text
// for multi-line entries and for rewrites that fail grounding or drift too far in length.
// Bullets the response left out follow in their original order.
func applyRewrites(original []string, items []rewrite, grounding *rewriting.Grounding) ([]string, int) {
	used := make([]bool, len(original))
	out := make([]string, 0, len(original))
	kept := 0
	for _, it := range items {
		if it.index < 0 || it.index >= len(original) || used[it.index] {
			continue
		}
		used[it.index] = true
		src := original[it.index]
		switch {
		case strings.Contains(src, "\n") || it.text == "":
			out = append(out, src)
		case len(grounding.CheckBullet(src, it.text)) > 0 || !rewriting.ValidateStyle(it.text, src).TargetLength:
			out = append(out, src)
			kept++
		default:
			out = append(out, it.text)
		}
	}
	for i, b := range original {
		if !used[i] {
			out = append(out, b)
		}
	}
	return out, kept
}

// coverLetter drafts the letter. When the draft mentions skills the resume lacks it returns
// them instead of the letter.
func (a *AIStrategy) coverLetter(ctx context.Context, in Input, grounding *rewriting.Grounding) ([]string, []string, error) {
	name := strings.TrimSpace(in.Resume.Name)
	if name == "" {
		name = DefaultSigner
	}
	prompt, err := prompts.Render(prompts.TailoringFile, prompts.KeyCoverLetter, map[string]string{
		"Name":       name,
		"RoleTitle":  in.RoleTitle,
		"JobText":    in.JobText,
		"ResumeText": in.Resume.Text(),
	})
	if err != nil {
		return nil, nil, err
	}

	text, err := a.gen.Generate(ctx, prompt, llm.Constraints{Tier: llm.TierAdvanced, MaxTokens: coverLetterMaxTokens, Temperature: 0.4})
	if err != nil {
		return nil, nil, err
	}
	if skills := grounding.UngroundedSkills(text); len(skills) > 0 {
		return nil, skills, nil
	}

	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil, nil, malformed("cover letter", errors.New("empty"))
	}
	return ensureSignOff(paragraphs, name), nil, nil
}

func (a *AIStrategy) tagline(ctx context.Context, in Input) (string, error) {
	prompt, err := prompts.Render(prompts.TailoringFile, prompts.KeyTagline, map[string]string{
		"RoleTitle":  in.RoleTitle,
		"JobText":    in.JobText,
		"ResumeText": in.Resume.Text(),
	})
	if err != nil {
		return "", err
	}
	return a.gen.Generate(ctx, prompt, llm.Constraints{Tier: llm.TierLite, MaxTokens: taglineMaxTokens})
}

func malformed(what string, cause error) error {
	return &llm.ExternalCapabilityError{Provider: "tailoring", Op: what, Message: "malformed response", Cause: cause}
}

// formatSections lists each section's bullets with their indices for the rewrite prompt.
func formatSections(resume types.ResumeDocument) string {
	var sb strings.Builder
	for _, s := range resume.Sections {
		sb.WriteString("## " + s.Name + "\n")
		for i, b := range s.Bullets {
			sb.WriteString(fmt.Sprintf("%d: %s\n", i, strings.ReplaceAll(b, "\n", " | ")))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// splitParagraphs splits text on blank lines and trims each paragraph.
func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ensureSignOff makes the letter end with the sign-off line followed by the name.
func ensureSignOff(paragraphs []string, name string) []string {
	for i, p := range paragraphs {
		lower := strings.ToLower(p)
		if strings.HasPrefix(lower, "kind regards") {
			rest := strings.TrimSpace(p[len("kind regards"):])
			rest = strings.TrimSpace(strings.TrimPrefix(rest, ","))
			out := append(paragraphs[:i:i], SignOff)
			if rest != "" {
				return append(out, rest)
			}
			if i+1 < len(paragraphs) {
				return append(out, paragraphs[i+1])
			}
			return append(out, name)
		}
	}
	return append(paragraphs, SignOff, name)
}
