// Package types provides type definitions for structured data used throughout the job application assistant.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// ResumeDocument represents a parsed resume: a header plus ordered sections of bullet entries.
type ResumeDocument struct {
	Name     string    `json:"name"`
	Contact  []string  `json:"contact,omitempty"`
	Sections []Section `json:"sections"`
}

// Section is a named, ordered list of free-text entries.
type Section struct {
	Name    string   `json:"name"`
	Bullets []string `json:"bullets"`
}

// Clone returns a deep copy so a tailored copy can be mutated while the source stays intact.
func (d ResumeDocument) Clone() ResumeDocument {
	out := ResumeDocument{
		Name:     d.Name,
		Contact:  append([]string(nil), d.Contact...),
		Sections: make([]Section, len(d.Sections)),
	}
	for i, s := range d.Sections {
		out.Sections[i] = Section{
			Name:    s.Name,
			Bullets: append([]string(nil), s.Bullets...),
		}
	}
	return out
}

// IsEmpty reports whether the document has no bullet content at all.
func (d ResumeDocument) IsEmpty() bool {
	for _, s := range d.Sections {
		if len(s.Bullets) > 0 {
			return false
		}
	}
	return true
}

// SectionNames returns section names in document order.
func (d ResumeDocument) SectionNames() []string {
	names := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		names = append(names, s.Name)
	}
	return names
}

// HasSection reports whether a section with the given name exists (case-insensitive).
func (d ResumeDocument) HasSection(name string) bool {
	for _, s := range d.Sections {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

// Bullets returns every bullet across all sections in document order.
func (d ResumeDocument) Bullets() []string {
	var out []string
	for _, s := range d.Sections {
		out = append(out, s.Bullets...)
	}
	return out
}

// Text renders the document back to plain text with dashed section underlines.
func (d ResumeDocument) Text() string {
	var sb strings.Builder
	if d.Name != "" {
		sb.WriteString(d.Name)
		sb.WriteString("\n")
	}
	for _, c := range d.Contact {
		sb.WriteString(c)
		sb.WriteString("\n")
	}
	for _, s := range d.Sections {
		sb.WriteString("\n")
		sb.WriteString(s.Name)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("-", max(3, len(s.Name))))
		sb.WriteString("\n")
		for _, b := range s.Bullets {
			sb.WriteString("- ")
			sb.WriteString(b)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
