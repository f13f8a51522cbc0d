package rendering

import (
	"regexp"
	"strings"
	"time"
)

// DefaultLabel is used when no output label is given.
const DefaultLabel = "Tailored"

// stampLayout formats file name timestamps as YYYYMMDD_HHMMSS.
const stampLayout = "20060102_150405"

var unsafeLabelChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SafeLabel replaces every run of characters outside [A-Za-z0-9_-] with a dash and trims
// leading and trailing dashes. An empty result becomes DefaultLabel.
func SafeLabel(label string) string {
	safe := strings.Trim(unsafeLabelChars.ReplaceAllString(label, "-"), "-")
	if safe == "" {
		return DefaultLabel
	}
	return safe
}

// BaseNames returns the resume and cover letter file names without extension.
func BaseNames(label string, stamp time.Time) (resume, coverLetter string) {
	suffix := SafeLabel(label) + "_" + stamp.Format(stampLayout)
	return "Resume_" + suffix, "CoverLetter_" + suffix
}
