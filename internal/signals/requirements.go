package signals

import (
	"regexp"
	"sort"

	"github.com/jonathan/job-application-assistant/internal/ingestion"
	"github.com/jonathan/job-application-assistant/internal/types"
)

var sentenceSplit = regexp.MustCompile(`[.;!?]+\s+|\s+-\s+`)

const (
	// frequencyBonus is added to a requirement's weight for every repeat mention.
	frequencyBonus = 0.25
	// maxWeightFactor caps a requirement's weight at this multiple of its importance.
	maxWeightFactor = 2.0
	// fallbackMinCount is the minimum mention count for a frequent word to become a requirement
	// when the description contains no vocabulary keyword.
	fallbackMinCount = 2
)

type requirementInfo struct {
	tag      types.RequirementTag
	count    int
	base     float64
	firstPos int
}

// cue is a tokenized cue phrase.
type cue struct {
	tokens []string
	tag    types.RequirementTag
}

// ExtractRequirements finds the keywords a job description asks for and tags each one
// required or preferred from the nearest cue word in its sentence, then from its section
// heading. Keywords with no cue are preferred.
//
// When no vocabulary keyword is present, the most frequent content words that appear at
// least twice are used instead so a description in an unfamiliar field still yields requirements.
func ExtractRequirements(jobText string, m *Matcher) types.RequirementSet {
	segments := ingestion.SplitSegments(jobText)
	if len(segments) == 0 {
		return types.RequirementSet{}
	}

	cues := m.cues()
	found := make(map[string]*requirementInfo)
	pos := 0

	record := func(keyword string, tag types.RequirementTag, base float64) {
		info, ok := found[keyword]
		if !ok {
			found[keyword] = &requirementInfo{tag: tag, count: 1, base: base, firstPos: pos}
			return
		}
		info.count++
		if tag == types.TagRequired {
			info.tag = types.TagRequired
		}
	}

	headingTags := make(map[string]types.RequirementTag)
	for _, seg := range segments {
		if _, ok := headingTags[seg.Heading]; !ok {
			headingTags[seg.Heading] = strongestCue(ingestion.Tokenize(seg.Heading, nil), cues)
		}
		for _, sentence := range sentenceSplit.Split(seg.Text, -1) {
			tokens := ingestion.Tokenize(sentence, nil)
			hits, _ := m.scan(tokens)
			for _, h := range hits {
				record(h.keyword, tagFor(tokens, h.pos, cues, headingTags[seg.Heading]), m.Importance(h.keyword))
				pos++
			}
		}
	}

	if len(found) == 0 {
		for _, word := range frequentWords(segments, m) {
			for _, seg := range segments {
				for _, sentence := range sentenceSplit.Split(seg.Text, -1) {
					tokens := ingestion.Tokenize(sentence, nil)
					for i, tok := range tokens {
						if tok == word {
							record(word, tagFor(tokens, i, cues, headingTags[seg.Heading]), 1)
							pos++
						}
					}
				}
			}
		}
	}

	items := make([]types.Requirement, 0, len(found))
	order := make(map[string]int, len(found))
	for keyword, info := range found {
		weight := info.base + frequencyBonus*float64(info.count-1)
		if ceiling := info.base * maxWeightFactor; weight > ceiling {
			weight = ceiling
		}
		items = append(items, types.Requirement{Keyword: keyword, Tag: info.tag, Weight: weight})
		order[keyword] = info.firstPos
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Weight != items[j].Weight {
			return items[i].Weight > items[j].Weight
		}
		if items[i].Tag != items[j].Tag {
			return items[i].Tag == types.TagRequired
		}
		return order[items[i].Keyword] < order[items[j].Keyword]
	})

	return types.RequirementSet{Items: items}
}

func (m *Matcher) cues() []cue {
	var out []cue
	for _, c := range m.vocab.RequiredCues {
		out = append(out, cue{tokens: ingestion.Tokenize(c, nil), tag: types.TagRequired})
	}
	for _, c := range m.vocab.PreferredCues {
		out = append(out, cue{tokens: ingestion.Tokenize(c, nil), tag: types.TagPreferred})
	}
	return out
}

// tagFor picks the tag of the cue closest to position pos. Ties go to required.
// With no cue in the sentence the heading's tag applies, and preferred is the default.
func tagFor(tokens []string, pos int, cues []cue, headingTag types.RequirementTag) types.RequirementTag {
	best := -1
	tag := types.RequirementTag("")
	for _, c := range cues {
		if len(c.tokens) == 0 {
			continue
		}
		for i := range tokens {
			if !matchAt(tokens, i, c.tokens) {
				continue
			}
			d := i - pos
			if d < 0 {
				d = -d
			}
			if best < 0 || d < best || (d == best && c.tag == types.TagRequired) {
				best = d
				tag = c.tag
			}
		}
	}
	if tag != "" {
		return tag
	}
	if headingTag != "" {
		return headingTag
	}
	return types.TagPreferred
}

// strongestCue returns the tag of a heading: required if any required cue appears, else
// preferred if a preferred cue appears, else empty.
func strongestCue(tokens []string, cues []cue) types.RequirementTag {
	var tag types.RequirementTag
	for _, c := range cues {
		if len(c.tokens) == 0 {
			continue
		}
		for i := range tokens {
			if matchAt(tokens, i, c.tokens) {
				if c.tag == types.TagRequired {
					return types.TagRequired
				}
				tag = types.TagPreferred
			}
		}
	}
	return tag
}

// frequentWords returns the top content words of the description that occur at least twice.
func frequentWords(segments []ingestion.Segment, m *Matcher) []string {
	freq := make(map[string]int)
	cueWords := make(map[string]bool)
	for _, c := range m.cues() {
		for _, t := range c.tokens {
			cueWords[t] = true
		}
	}
	for _, seg := range segments {
		for _, tok := range ingestion.Tokenize(seg.Text, m.Stopwords()) {
			if len(tok) < 3 || cueWords[tok] {
				continue
			}
			freq[tok]++
		}
	}
	for w, n := range freq {
		if n < fallbackMinCount {
			delete(freq, w)
		}
	}
	return topByFrequency(freq, m.vocab.TopFrequent)
}
