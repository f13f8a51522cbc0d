package signals

import (
	"sort"

	"github.com/jonathan/job-application-assistant/internal/ingestion"
	"github.com/jonathan/job-application-assistant/internal/types"
)

// Options tunes Extract.
type Options struct {
	// TopFrequent caps how many non-vocabulary words are kept. Zero keeps all of them.
	TopFrequent int
}

// Extract builds a SignalSet from normalized text. Vocabulary hits weigh
// frequency × importance; other words weigh their frequency.
// The result depends only on its inputs.
func Extract(text ingestion.NormalizedText, m *Matcher, opts Options) types.SignalSet {
	if text.IsEmpty() {
		return types.SignalSet{}
	}

	hits, consumed := m.scan(text.Tokens)
	weights := make(map[string]float64)
	for _, h := range hits {
		weights[h.keyword] += m.Importance(h.keyword)
	}

	freq := make(map[string]int)
	for i, tok := range text.Tokens {
		if consumed[i] || len(tok) < 3 {
			continue
		}
		if _, isVocab := weights[tok]; isVocab {
			continue
		}
		freq[tok]++
	}

	for _, w := range topByFrequency(freq, opts.TopFrequent) {
		weights[w] = float64(freq[w])
	}

	return types.NewSignalSet(weights)
}

// ExtractText normalizes raw text and extracts its signals in one step.
func ExtractText(raw string, m *Matcher, opts Options) types.SignalSet {
	return Extract(ingestion.Normalize(raw, m.Stopwords()), m, opts)
}

// topByFrequency returns words ordered by count descending then alphabetically, at most n (n <= 0 means all).
func topByFrequency(freq map[string]int, n int) []string {
	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})
	if n > 0 && len(words) > n {
		words = words[:n]
	}
	return words
}
