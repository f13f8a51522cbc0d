package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board platform.
type Platform string

const (
	// PlatformGreenhouse is the Greenhouse ATS platform
	PlatformGreenhouse Platform = "greenhouse"
	// PlatformLever is the Lever ATS platform
	PlatformLever Platform = "lever"
	// PlatformWorkday is the Workday ATS platform
	PlatformWorkday Platform = "workday"
	// PlatformSeek is the SEEK job board
	PlatformSeek Platform = "seek"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

var platformHosts = []struct {
	suffix   string
	platform Platform
}{
	{"greenhouse.io", PlatformGreenhouse},
	{"lever.co", PlatformLever},
	{"workday.com", PlatformWorkday},
	{"myworkdayjobs.com", PlatformWorkday},
	{"seek.com.au", PlatformSeek},
	{"seek.co.nz", PlatformSeek},
}

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for _, h := range platformHosts {
		if host == h.suffix || strings.HasSuffix(host, "."+h.suffix) {
			return h.platform
		}
	}
	return PlatformUnknown
}

// ContentSelectors returns content selectors for a platform, most specific first.
func ContentSelectors(platform Platform) []string {
	generic := []string{".job-description", "#job-description", ".job-details", "[data-testid='job-description']", "main", "article", "#content"}
	switch platform {
	case PlatformGreenhouse:
		return append([]string{".job__description", ".job-post-container"}, generic...)
	case PlatformLever:
		return append([]string{".posting-page", ".section-wrapper.page-full-width"}, generic...)
	case PlatformWorkday:
		return append([]string{"[data-automation-id='jobDescription']"}, generic...)
	case PlatformSeek:
		return append([]string{"[data-automation='jobAdDetails']"}, generic...)
	default:
		return generic
	}
}

// NoiseSelectors returns elements removed before text extraction.
func NoiseSelectors(platform Platform) []string {
	common := []string{
		"form", ".application-form", ".apply-button-container",
		".eeo-statement", ".voluntary-disclosure", ".social-share", ".cookie-consent",
	}
	switch platform {
	case PlatformGreenhouse:
		return append(common, ".application--wrapper", "#usa_self_id_section")
	case PlatformLever:
		return append(common, ".posting-apply", ".lever-application-form")
	case PlatformWorkday:
		return append(common, "[data-automation-id='applyButton']")
	default:
		return common
	}
}
