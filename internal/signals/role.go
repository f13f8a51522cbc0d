package signals

import (
	"regexp"
	"strings"

	"github.com/jonathan/job-application-assistant/internal/ingestion"
)

// DefaultRoleTitle is used when no title can be found in a job description.
const DefaultRoleTitle = "the role"

const (
	roleScanLines    = 5
	maxRoleLineWords = 8
)

var (
	titlePrefix  = regexp.MustCompile(`(?i)^(?:job\s+)?(?:title|role|position)\s*[:\-]\s*(.+)$`)
	hiringPhrase = regexp.MustCompile(`(?i)\b(?:hiring|seeking|looking\s+for)\s+(?:an?\s+|the\s+)?(.+)$`)
	titleCut     = regexp.MustCompile(`(?i)\s+(?:at|with|to|for|in)\s+|\s+[-|–]\s+|[,.(!]`)
)

// InferRoleTitle pulls the role title from the first lines of a job description by
// pattern: an explicit "Title:" line, a "we are hiring a ..." phrase, or a short line
// naming a role noun such as "engineer". It returns DefaultRoleTitle when nothing matches.
func InferRoleTitle(jobText string, roleNouns []string) string {
	text := ingestion.CleanText(jobText)
	if text == "" {
		return DefaultRoleTitle
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#-*+ "))
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == roleScanLines {
			break
		}
	}

	for _, line := range lines {
		if m := titlePrefix.FindStringSubmatch(line); m != nil {
			if title := cutTitle(m[1]); title != "" {
				return title
			}
		}
	}
	for _, line := range lines {
		if m := hiringPhrase.FindStringSubmatch(line); m != nil {
			if title := cutTitle(m[1]); title != "" && hasRoleNoun(title, roleNouns) {
				return title
			}
		}
	}
	for _, line := range lines {
		title := cutTitle(line)
		if title == "" || len(strings.Fields(title)) > maxRoleLineWords {
			continue
		}
		if hasRoleNoun(title, roleNouns) {
			return title
		}
	}
	return DefaultRoleTitle
}

// cutTitle keeps the part of s before a company or location suffix.
func cutTitle(s string) string {
	if loc := titleCut.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimSpace(strings.TrimRight(s, ":"))
}

func hasRoleNoun(s string, nouns []string) bool {
	words := strings.Fields(strings.ToLower(s))
	for _, w := range words {
		w = stem(strings.Trim(w, ",.:;!?()"))
		for _, n := range nouns {
			if w == stem(strings.ToLower(n)) {
				return true
			}
		}
	}
	return false
}
