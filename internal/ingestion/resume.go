package ingestion

import (
	"strings"

	"github.com/jonathan/job-application-assistant/internal/types"
)

// fallbackSectionName is used when a resume has content but no recognizable headings.
const fallbackSectionName = "Resume"

// ParseResume splits resume text into a header (name, contact lines) and sections of entries.
//
// Inside a section, blank lines separate blocks. A block made only of list items yields
// one entry per item with the marker removed. Any other block (a job title, a date line
// and its bullets, or a paragraph) is kept together as a single multi-line entry so that
// reordering moves the whole block.
func ParseResume(raw string) (types.ResumeDocument, error) {
	text := CleanText(raw)
	if text == "" {
		return types.ResumeDocument{}, &InputError{Source: "resume", Message: "resume text is empty"}
	}

	lines := strings.Split(text, "\n")
	var doc types.ResumeDocument
	var header []string
	var block []string
	current := -1

	flush := func() {
		if current >= 0 && len(block) > 0 {
			doc.Sections[current].Bullets = append(doc.Sections[current].Bullets, blockEntries(block)...)
		}
		block = nil
	}

	for i := 0; i < len(lines); {
		if name, next, ok := heading(lines, i); ok && (current >= 0 || len(header) > 0) {
			flush()
			doc.Sections = append(doc.Sections, types.Section{Name: name})
			current = len(doc.Sections) - 1
			i = next
			continue
		}
		line := strings.TrimSpace(lines[i])
		i++
		if dashLinePattern.MatchString(line) {
			continue
		}
		if line == "" {
			flush()
			continue
		}
		if current < 0 {
			header = append(header, line)
			continue
		}
		block = append(block, line)
	}
	flush()

	if len(header) > 0 {
		doc.Name = header[0]
		doc.Contact = header[1:]
	}

	// Headerless resume: keep everything after the name as one section
	if len(doc.Sections) == 0 && len(header) > 1 {
		doc.Contact = nil
		doc.Sections = []types.Section{{Name: fallbackSectionName, Bullets: blockEntries(header[1:])}}
	}

	if doc.IsEmpty() {
		return doc, &InputError{Source: "resume", Message: "no resume sections or bullets found"}
	}
	return doc, nil
}

func blockEntries(block []string) []string {
	allItems := true
	for _, line := range block {
		if !bulletPrefix.MatchString(line) {
			allItems = false
			break
		}
	}
	if allItems {
		out := make([]string, 0, len(block))
		for _, line := range block {
			out = append(out, stripBullet(line))
		}
		return out
	}
	return []string{strings.Join(block, "\n")}
}

// EntryLines splits a multi-line entry into its title line and remaining detail lines.
// List markers are stripped from detail lines; date lines are returned separately.
func EntryLines(entry string) (title, date string, details []string) {
	lines := strings.Split(entry, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case i == 0 && !bulletPrefix.MatchString(line):
			title = line
		case date == "" && IsDateLine(line) && !bulletPrefix.MatchString(line):
			date = line
		default:
			details = append(details, stripBullet(line))
		}
	}
	return title, date, details
}
