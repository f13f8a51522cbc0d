// Package types provides type definitions for structured data used throughout the job application assistant.
//
//nolint:revive // types is a standard Go package name pattern
package types

// RequirementTag marks how strongly a job description asks for a keyword.
type RequirementTag string

// Requirement tags
const (
	TagRequired  RequirementTag = "required"
	TagPreferred RequirementTag = "preferred"
)

// Requirement is a single job keyword with its tag and importance weight.
type Requirement struct {
	Keyword string         `json:"keyword"`
	Tag     RequirementTag `json:"tag"`
	Weight  float64        `json:"weight"`
}

// RequirementSet is the set of keywords a job asks for, ordered by weight descending.
type RequirementSet struct {
	Items []Requirement `json:"items"`
}

// Len returns the number of requirements.
func (r RequirementSet) Len() int {
	return len(r.Items)
}

// Keywords returns all requirement keywords in set order.
func (r RequirementSet) Keywords() []string {
	out := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		out = append(out, item.Keyword)
	}
	return out
}

// ByTag returns the requirements carrying the given tag, preserving order.
func (r RequirementSet) ByTag(tag RequirementTag) []Requirement {
	var out []Requirement
	for _, item := range r.Items {
		if item.Tag == tag {
			out = append(out, item)
		}
	}
	return out
}

// JobDescription is the pasted job text plus what was derived from it.
type JobDescription struct {
	Text         string         `json:"text"`
	RoleTitle    string         `json:"role_title"`
	Requirements RequirementSet `json:"requirements"`
}
