package ingestion

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	dashLinePattern    = regexp.MustCompile(`^-\s*-\s*-[-\s]*$`)
	dateLinePattern    = regexp.MustCompile(`(?i)\b\d{2}/\d{4}\s*-\s*(Present|\d{2}/\d{4})\b`)
	contactLikePattern = regexp.MustCompile(`https?://|@`)
	bulletPrefix       = regexp.MustCompile(`^\s*[-*+]\s+`)
)

// Segment is one non-empty content line and the heading it falls under.
type Segment struct {
	Heading string
	Text    string
}

// heading reports whether lines[i] starts a section. It returns the heading name
// and the index of the first line after the heading (skipping a dashed underline).
func heading(lines []string, i int) (string, int, bool) {
	line := strings.TrimSpace(lines[i])
	if line == "" || dashLinePattern.MatchString(line) {
		return "", i, false
	}

	// Line followed by a dashed underline, ignoring blanks
	j := i + 1
	for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
		j++
	}
	if j < len(lines) && dashLinePattern.MatchString(strings.TrimSpace(lines[j])) && !contactLikePattern.MatchString(line) {
		return line, j + 1, true
	}

	// Markdown heading
	if strings.HasPrefix(line, "#") {
		name := strings.TrimSpace(strings.TrimLeft(line, "#"))
		if name != "" {
			return name, i + 1, true
		}
	}

	// Short "Requirements:" style label
	if strings.HasSuffix(line, ":") && !bulletPrefix.MatchString(line) {
		name := strings.TrimSpace(strings.TrimSuffix(line, ":"))
		if name != "" && len(strings.Fields(name)) <= 6 && !strings.ContainsAny(name, ".,;") {
			return name, i + 1, true
		}
	}

	// Short upper-case line that ends a block or opens a list
	if isUpperHeading(line) && (i+1 == len(lines) || strings.TrimSpace(lines[i+1]) == "" || bulletPrefix.MatchString(lines[i+1])) {
		return line, i + 1, true
	}

	return "", i, false
}

func isUpperHeading(line string) bool {
	if bulletPrefix.MatchString(line) || contactLikePattern.MatchString(line) || strings.ContainsAny(line, ",|") {
		return false
	}
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > 5 {
		return false
	}
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			if unicode.IsLower(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 3
}

// stripBullet removes a leading list marker.
func stripBullet(line string) string {
	return strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
}

// SplitSegments splits cleaned text into content lines tagged with their governing heading.
// Heading and underline lines themselves are not returned.
func SplitSegments(raw string) []Segment {
	text := CleanText(raw)
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	var segments []Segment
	current := ""
	for i := 0; i < len(lines); {
		if name, next, ok := heading(lines, i); ok {
			current = name
			i = next
			continue
		}
		line := strings.TrimSpace(lines[i])
		i++
		if line == "" || dashLinePattern.MatchString(line) {
			continue
		}
		segments = append(segments, Segment{Heading: current, Text: stripBullet(line)})
	}
	return segments
}

// IsDateLine reports whether line looks like an employment date range such as "01/2020 - Present".
func IsDateLine(line string) bool {
	return dateLinePattern.MatchString(line)
}
