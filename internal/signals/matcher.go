// Package signals derives weighted keyword signals and job requirements from normalized text.
package signals

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/job-application-assistant/internal/config"
	"github.com/jonathan/job-application-assistant/internal/ingestion"
)

var foldPattern = regexp.MustCompile(`[^a-z0-9+#/]+`)

// phrase is a tokenized vocabulary name or alias.
type phrase struct {
	tokens    []string
	canonical string
}

// Matcher resolves free text to canonical vocabulary keywords. It is immutable and
// safe for concurrent use.
type Matcher struct {
	vocab      *config.Vocabulary
	phrases    []phrase
	aliases    map[string]string
	importance map[string]float64
	stop       map[string]bool
}

// NewMatcher indexes a vocabulary. A nil vocabulary uses the embedded default.
func NewMatcher(vocab *config.Vocabulary) *Matcher {
	if vocab == nil {
		vocab = config.DefaultVocabulary()
	}
	m := &Matcher{
		vocab:      vocab,
		aliases:    make(map[string]string),
		importance: make(map[string]float64, len(vocab.Skills)),
		stop:       vocab.StopwordSet(),
	}
	for _, term := range vocab.Skills {
		m.importance[term.Name] = term.Importance
		for _, variant := range append([]string{term.Name}, term.Aliases...) {
			tokens := ingestion.Tokenize(variant, nil)
			if len(tokens) == 0 {
				continue
			}
			m.phrases = append(m.phrases, phrase{tokens: tokens, canonical: term.Name})
			m.aliases[Fold(variant)] = term.Name
		}
	}
	// Longest phrases first so "spring boot" wins over "spring"
	sort.SliceStable(m.phrases, func(i, j int) bool {
		return len(m.phrases[i].tokens) > len(m.phrases[j].tokens)
	})
	return m
}

// Vocabulary returns the indexed vocabulary.
func (m *Matcher) Vocabulary() *config.Vocabulary {
	return m.vocab
}

// Stopwords returns the stop-word set used for tokenizing.
func (m *Matcher) Stopwords() map[string]bool {
	return m.stop
}

// Importance returns the vocabulary multiplier for a canonical keyword, or zero when unknown.
func (m *Matcher) Importance(keyword string) float64 {
	return m.importance[keyword]
}

// Canonical maps a keyword or alias to its vocabulary name. Unknown keywords are returned folded.
func (m *Matcher) Canonical(s string) string {
	folded := Fold(s)
	if canonical, ok := m.aliases[folded]; ok {
		return canonical
	}
	return folded
}

// NearMatch reports whether two keywords name the same thing after alias and case folding.
func (m *Matcher) NearMatch(a, b string) bool {
	return stem(m.Canonical(a)) == stem(m.Canonical(b))
}

// Key returns the comparison key used by NearMatch.
func (m *Matcher) Key(s string) string {
	return stem(m.Canonical(s))
}

// occurrence is one vocabulary hit in a token stream.
type occurrence struct {
	keyword string
	pos     int
}

// scan finds vocabulary phrases in tokens, longest match first, without overlap.
// consumed marks token positions covered by a hit.
func (m *Matcher) scan(tokens []string) ([]occurrence, []bool) {
	consumed := make([]bool, len(tokens))
	var hits []occurrence
	for i := 0; i < len(tokens); i++ {
		if consumed[i] {
			continue
		}
		for _, p := range m.phrases {
			if matchAt(tokens, i, p.tokens) {
				hits = append(hits, occurrence{keyword: p.canonical, pos: i})
				for k := i; k < i+len(p.tokens); k++ {
					consumed[k] = true
				}
				break
			}
		}
	}
	return hits, consumed
}

func matchAt(tokens []string, i int, want []string) bool {
	if i+len(want) > len(tokens) {
		return false
	}
	for k, w := range want {
		if tokens[i+k] != w {
			return false
		}
	}
	return true
}

// Fold lower-cases s, replaces punctuation runs with a single space and trims it.
func Fold(s string) string {
	s = foldPattern.ReplaceAllString(strings.ToLower(s), " ")
	return strings.TrimSpace(s)
}

// stem drops a plural "s" from each word longer than three characters.
func stem(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
			words[i] = strings.TrimSuffix(w, "s")
		}
	}
	return strings.Join(words, " ")
}

// Find returns the distinct vocabulary keywords mentioned in text, in order of first mention.
func (m *Matcher) Find(text string) []string {
	hits, _ := m.scan(ingestion.Tokenize(text, nil))
	seen := make(map[string]bool, len(hits))
	var out []string
	for _, h := range hits {
		if !seen[h.keyword] {
			seen[h.keyword] = true
			out = append(out, h.keyword)
		}
	}
	return out
}
