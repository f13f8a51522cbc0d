package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/job-application-assistant/internal/browser"
)

// MinContentLength is the extracted text length below which a page is treated as client-rendered.
const MinContentLength = 500

// HTMLRenderer renders a page with JavaScript and returns its HTML.
type HTMLRenderer func(ctx context.Context, url string, timeout time.Duration) (string, error)

// JobPostingOptions configures JobPosting.
type JobPostingOptions struct {
	Fetch *Options
	// Renderer, when set, is used for pages whose static HTML carries too little text.
	Renderer HTMLRenderer
}

// DefaultJobPostingOptions uses the headless browser as fallback renderer.
func DefaultJobPostingOptions() JobPostingOptions {
	return JobPostingOptions{Fetch: DefaultOptions(), Renderer: browser.RenderHTML}
}

// JobPosting fetches a job posting URL and returns its description as structured plain text.
func JobPosting(ctx context.Context, urlStr string, opts JobPostingOptions) (string, error) {
	result, err := URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return "", err
	}

	platform := DetectPlatform(urlStr)
	text, err := ExtractStructuredText(result.HTML, ContentSelectors(platform), NoiseSelectors(platform)...)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "content extraction failed", Cause: err}
	}

	if opts.Renderer != nil && len(strings.TrimSpace(text)) < MinContentLength {
		rendered, renderErr := opts.Renderer(ctx, urlStr, DefaultTimeout)
		if renderErr == nil {
			if browserText, extractErr := ExtractStructuredText(rendered, ContentSelectors(platform), NoiseSelectors(platform)...); extractErr == nil && len(browserText) > len(text) {
				text = browserText
			}
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", &Error{URL: urlStr, Message: fmt.Sprintf("no job description text found (platform %s)", platform)}
	}
	return text, nil
}
