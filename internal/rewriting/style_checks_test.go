package rewriting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckStrongVerb(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"Strong verb - built", "built a system", true},
		{"Strong verb - achieved", "achieved 50% improvement", true},
		{"Strong verb - led", "led a team of 4", true},
		{"Strong verb - past tense ed", "automated deployments", true},
		{"Weak start - I", "I worked on", false},
		{"Weak start - The", "The system was", false},
		{"Empty text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checkStrongVerb(tt.text)
			assert.Equal(t, tt.expected, result, "checkStrongVerb(%q) = %v, want %v", tt.text, result, tt.expected)
		})
	}
}

func TestCheckQuantifiedImpact(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"Has percentage", "Improved efficiency by 30%", true},
		{"Has number", "Handled 1M requests", true},
		{"No numbers", "Built a great system", false},
		{"Empty text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, checkQuantifiedImpact(tt.text))
		})
	}
}

func TestCheckTargetLength(t *testing.T) {
	tests := []struct {
		name            string
		rewrittenLength int
		originalLength  int
		expected        bool
	}{
		{"Same length", 100, 100, true},
		{"Slightly shorter", 85, 100, true},
		{"Too short", 70, 100, false},
		{"Longer within slack", 170, 100, true},
		{"Far too long", 200, 100, false},
		{"Empty original", 10, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, checkTargetLength(tt.rewrittenLength, tt.originalLength))
		})
	}
}

func TestValidateStyle(t *testing.T) {
	result := ValidateStyle("Built Go REST APIs serving 2M requests", "Built REST APIs in Go serving 2M requests")

	assert.True(t, result.StrongVerb)
	assert.True(t, result.Quantified)
	assert.True(t, result.TargetLength)

	result = ValidateStyle("The team was led", "Led a team of 4 engineers across two time zones and shipped weekly")
	assert.False(t, result.StrongVerb)
	assert.False(t, result.TargetLength)
}

func TestEstimateLines(t *testing.T) {
	tests := []struct {
		name          string
		lengthChars   int
		expectedLines int
	}{
		{"Short text", 45, 1},
		{"One line", 100, 1},
		{"Two lines", 101, 2},
		{"Two lines exact", 200, 2},
		{"Three lines", 201, 3},
		{"Zero length", 0, 1},
		{"Very long", 500, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedLines, EstimateLines(tt.lengthChars, 100))
		})
	}
}

func TestEstimateTextLines(t *testing.T) {
	assert.Equal(t, 3, EstimateTextLines("Software Engineer\nAcme\n01/2020 - Present", 95))
	assert.Equal(t, 2, EstimateTextLines(strings.Repeat("a", 150), 95))
	assert.Equal(t, 1, EstimateTextLines("x", 0))
}

func TestComputeLengthChars(t *testing.T) {
	assert.Equal(t, 14, ComputeLengthChars("Built a system"))
	assert.Equal(t, 0, ComputeLengthChars(""))
	assert.Equal(t, 14, ComputeLengthChars("Built\na\nsystem"))
	assert.Equal(t, 5, ComputeLengthChars("café!"))
}
