package tailoring

import (
	"fmt"
	"strings"

	"github.com/jonathan/job-application-assistant/internal/signals"
)

// Cover letter fixed text
const (
	Salutation    = "Dear Hiring Manager,"
	SignOff       = "Kind regards,"
	DefaultSigner = "Candidate"
)

// CoverLetter fills the fixed template with the role title and the top n matched keywords.
// It only restates what the assessment found; no experience is described.
func CoverLetter(name, roleTitle string, matched []string, n int) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultSigner
	}
	role := strings.TrimSpace(roleTitle)
	if role == "" || role == signals.DefaultRoleTitle {
		role = "the advertised role"
	} else {
		role = "the " + role + " role"
	}

	keywords := matched
	if n > 0 && len(keywords) > n {
		keywords = keywords[:n]
	}

	paragraphs := []string{Salutation}
	paragraphs = append(paragraphs, fmt.Sprintf("I am writing to apply for %s.", role))
	if len(keywords) > 0 {
		paragraphs = append(paragraphs, fmt.Sprintf(
			"My experience with %s lines up closely with what you are looking for, and the attached resume shows where I have applied it.",
			joinList(keywords)))
	} else {
		paragraphs = append(paragraphs, "The attached resume sets out my experience and how it relates to the position.")
	}
	paragraphs = append(paragraphs,
		"I would welcome the opportunity to discuss how I could contribute to your team. Thank you for your time and consideration.",
		SignOff,
		name,
	)
	return paragraphs
}

// joinList renders "a", "a and b", or "a, b and c".
func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
