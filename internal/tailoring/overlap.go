package tailoring

import (
	"github.com/jonathan/job-application-assistant/internal/ingestion"
	"github.com/jonathan/job-application-assistant/internal/signals"
)

// OverlapFunc scores a bullet by how many matched job keywords it mentions.
type OverlapFunc func(bullet string) int

// NewOverlap builds an OverlapFunc for the given matched keywords. Matching folds aliases,
// case and plurals the same way the fit scorer does.
func NewOverlap(matched []string, m *signals.Matcher) OverlapFunc {
	want := make(map[string]bool, len(matched))
	for _, k := range matched {
		want[m.Key(k)] = true
	}
	stop := m.Stopwords()

	return func(bullet string) int {
		if len(want) == 0 {
			return 0
		}
		seen := make(map[string]bool)
		for _, k := range m.Find(bullet) {
			seen[m.Key(k)] = true
		}
		for _, tok := range ingestion.Tokenize(bullet, stop) {
			seen[m.Key(tok)] = true
		}
		n := 0
		for k := range seen {
			if want[k] {
				n++
			}
		}
		return n
	}
}
