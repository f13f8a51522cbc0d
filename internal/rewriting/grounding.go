// Package rewriting checks AI-rewritten resume content against the source resume so that
// nothing is claimed that the candidate did not already write.
package rewriting

import (
	"regexp"
	"strings"

	"github.com/jonathan/job-application-assistant/internal/ingestion"
	"github.com/jonathan/job-application-assistant/internal/signals"
	"github.com/jonathan/job-application-assistant/internal/types"
)

// MaxTaglineWords is the longest tagline accepted.
const MaxTaglineWords = 6

var (
	numberPattern       = regexp.MustCompile(`\d+(?:[.,]\d+)*%?`)
	taglineWordPattern  = regexp.MustCompile(`[A-Za-z0-9+#\-]+`)
	taglineTokenPattern = regexp.MustCompile(`[a-z][a-z0-9+#\-]+`)
)

// taglineFiller words may appear in a tagline without being in the resume.
var taglineFiller = map[string]bool{
	"and": true, "or": true, "for": true, "with": true, "in": true, "on": true,
	"to": true, "of": true, "the": true, "a": true, "an": true,
	"developer": true, "engineer": true, "analyst": true, "specialist": true,
}

// Grounding holds what the source resume actually says.
type Grounding struct {
	matcher *signals.Matcher
	text    string
	skills  map[string]bool
}

// NewGrounding indexes a resume. A nil matcher uses the default vocabulary.
func NewGrounding(resume types.ResumeDocument, m *signals.Matcher) *Grounding {
	if m == nil {
		m = signals.NewMatcher(nil)
	}
	text := resume.Text()
	skills := make(map[string]bool)
	for _, k := range m.Find(text) {
		skills[k] = true
	}
	return &Grounding{
		matcher: m,
		text:    strings.ToLower(ingestion.CleanText(text)),
		skills:  skills,
	}
}

// UngroundedSkills returns the vocabulary skills text mentions that the resume does not.
func (g *Grounding) UngroundedSkills(text string) []string {
	var out []string
	for _, skill := range g.matcher.Find(text) {
		if !g.skills[skill] {
			out = append(out, skill)
		}
	}
	return out
}

// CheckBullet returns the problems with a rewrite of original: vocabulary skills the resume
// never mentions and numbers the original bullet does not contain. An empty result means the
// rewrite is grounded.
func (g *Grounding) CheckBullet(original, rewritten string) []string {
	var problems []string
	for _, skill := range g.UngroundedSkills(rewritten) {
		problems = append(problems, "introduces skill "+skill)
	}

	known := make(map[string]bool)
	for _, n := range numberPattern.FindAllString(original, -1) {
		known[n] = true
	}
	for _, n := range numberPattern.FindAllString(rewritten, -1) {
		if !known[n] {
			problems = append(problems, "introduces number "+n)
			known[n] = true
		}
	}
	return problems
}

// ValidateTagline cleans a generated tagline and checks it: at most MaxTaglineWords words,
// and every meaningful word must appear in the resume. It returns the cleaned tagline and
// whether it is acceptable.
func (g *Grounding) ValidateTagline(raw string) (string, bool) {
	tagline := strings.TrimSpace(raw)
	if i := strings.IndexByte(tagline, '\n'); i >= 0 {
		tagline = strings.TrimSpace(tagline[:i])
	}
	if len(tagline) > 8 && strings.EqualFold(tagline[:8], "tagline:") {
		tagline = strings.TrimSpace(tagline[8:])
	}
	tagline = strings.Trim(tagline, "\"'` ")
	if tagline == "" {
		return "", false
	}

	if len(taglineWordPattern.FindAllString(tagline, -1)) > MaxTaglineWords {
		return "", false
	}
	for _, tok := range taglineTokenPattern.FindAllString(strings.ToLower(tagline), -1) {
		if taglineFiller[tok] || len(tok) < 3 {
			continue
		}
		if !strings.Contains(g.text, tok) {
			return "", false
		}
	}
	return tagline, true
}
