// Package ingestion cleans raw resume and job description text and splits it into tokens and sections.
package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	// mojibakeReplacer maps typographic punctuation to ASCII
	mojibakeReplacer = strings.NewReplacer(
		"–", "-", // en dash
		"—", "-", // em dash
		"•", "-", // bullet
		"·", "-", // middle dot
		"×", "x",
		"‘", "'",
		"’", "'",
		"“", `"`,
		"”", `"`,
		"\u00a0", " ",
		"â€“", "-", // UTF-8 en dash read as cp1252
		"â€”", "-", // UTF-8 em dash read as cp1252
		"â€¢", "-", // UTF-8 bullet read as cp1252
		"Â·", "-",
	)
	spaceRunPattern  = regexp.MustCompile(`[ \t]{2,}`)
	blankRunPattern  = regexp.MustCompile(`\n\n\n+`)
	controlCharRange = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
)

// CleanText normalizes line endings and punctuation while preserving line structure.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = mojibakeReplacer.Replace(content)
	content = controlCharRange.ReplaceAllString(content, "")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := strings.Join(cleaned, "\n")
	result = blankRunPattern.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine trims trailing whitespace and collapses inner runs of spaces.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}
	trimmed := strings.TrimLeft(line, " \t")
	indent := len(line) - len(trimmed)
	trimmed = spaceRunPattern.ReplaceAllString(trimmed, " ")
	if indent > 0 {
		return strings.Repeat(" ", indent) + trimmed
	}
	return trimmed
}

// IngestFromFile reads a text file and returns its cleaned content.
func IngestFromFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return CleanText(string(content)), nil
}
