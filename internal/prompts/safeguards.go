package prompts

import (
	"regexp"
	"strings"
)

// Redacted replaces instruction-like text removed from external content.
const Redacted = "[REDACTED]"

// injectionPatterns match text in a job description or resume that tries to instruct the model.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+instructions?`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)(\s+instructions?)?`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?(previous|prior|everything)(\s+instructions?)?`),
	regexp.MustCompile(`(?i)\byou\s+are\s+now\s+an?\b`),
	regexp.MustCompile(`(?i)\bact\s+as\s+(if\s+you\s+are\s+)?an?\s+(ai|assistant|language model|system)\b`),
	regexp.MustCompile(`(?i)new\s+instructions?:`),
	regexp.MustCompile(`(?i)system\s+prompt`),
}

// Sanitize prepares external text for a prompt. It redacts instruction-like phrases and breaks
// up triple quotes so the text cannot close the prompt's quoted block. The matched phrases are
// returned lower-cased, in order of first appearance.
func Sanitize(text string) (string, []string) {
	var found []string
	seen := make(map[string]bool)
	for _, p := range injectionPatterns {
		for _, m := range p.FindAllString(text, -1) {
			key := strings.ToLower(strings.Join(strings.Fields(m), " "))
			if !seen[key] {
				seen[key] = true
				found = append(found, key)
			}
		}
		text = p.ReplaceAllString(text, Redacted)
	}
	return strings.ReplaceAll(text, `"""`, `"`), found
}
