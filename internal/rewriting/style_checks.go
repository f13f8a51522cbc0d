package rewriting

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultCharsPerLine is the estimated number of characters per rendered resume line
	DefaultCharsPerLine = 95
	// lengthTolerancePercent is the percentage tolerance for target length (within 20% is acceptable)
	lengthTolerancePercent = 0.2
)

var digitPattern = regexp.MustCompile(`\d`)

// Common strong action verbs for resume bullets (heuristic check)
var strongVerbs = map[string]bool{
	"achieved": true, "architected": true, "built": true, "created": true,
	"delivered": true, "designed": true, "developed": true, "engineered": true,
	"implemented": true, "improved": true, "increased": true, "launched": true,
	"led": true, "optimized": true, "optimised": true, "reduced": true, "scaled": true,
	"shipped": true, "transformed": true, "managed": true, "mentored": true,
}

// StyleChecksResult holds the results of style validation
type StyleChecksResult struct {
	StrongVerb   bool
	Quantified   bool
	TargetLength bool
}

// ValidateStyle checks a rewritten bullet against its original
func ValidateStyle(rewrittenText, originalText string) StyleChecksResult {
	textLower := strings.ToLower(strings.TrimSpace(rewrittenText))
	return StyleChecksResult{
		StrongVerb:   checkStrongVerb(textLower),
		Quantified:   checkQuantifiedImpact(rewrittenText),
		TargetLength: checkTargetLength(ComputeLengthChars(rewrittenText), ComputeLengthChars(originalText)),
	}
}

// checkStrongVerb checks if text starts with a strong action verb
func checkStrongVerb(textLower string) bool {
	words := strings.Fields(textLower)
	if len(words) == 0 {
		return false
	}

	firstWord := strings.TrimRight(words[0], ".,!?;:")
	if strongVerbs[firstWord] {
		return true
	}

	// Past tense verbs are usually action verbs
	return strings.HasSuffix(firstWord, "ed") && len(firstWord) > 3
}

// checkQuantifiedImpact checks if text contains numbers or metrics
func checkQuantifiedImpact(text string) bool {
	return digitPattern.MatchString(text) || strings.Contains(text, "%")
}

// checkTargetLength checks if rewritten text length is within tolerance of original
func checkTargetLength(rewrittenLength int, originalLength int) bool {
	if originalLength == 0 {
		return rewrittenLength > 0
	}

	tolerance := float64(originalLength) * lengthTolerancePercent
	minLength := float64(originalLength) - tolerance
	maxLength := float64(originalLength) + tolerance

	// Rewrites may grow a little more than they shrink
	return float64(rewrittenLength) >= minLength && float64(rewrittenLength) <= maxLength*1.5
}

// EstimateLines estimates the number of lines for a given text length
func EstimateLines(lengthChars, charsPerLine int) int {
	if charsPerLine <= 0 {
		charsPerLine = DefaultCharsPerLine
	}
	if lengthChars <= 0 {
		return 1 // Minimum 1 line
	}
	return int(math.Ceil(float64(lengthChars) / float64(charsPerLine)))
}

// EstimateTextLines estimates rendered lines for a possibly multi-line entry; each line wraps separately.
func EstimateTextLines(text string, charsPerLine int) int {
	total := 0
	for _, line := range strings.Split(text, "\n") {
		total += EstimateLines(ComputeLengthChars(strings.TrimSpace(line)), charsPerLine)
	}
	return total
}

// ComputeLengthChars computes the character length of text
func ComputeLengthChars(text string) int {
	return utf8.RuneCountInString(text)
}
