package ingestion

import (
	"context"
	"fmt"

	"github.com/jonathan/job-application-assistant/internal/fetch"
)

// IngestFromURL fetches a job posting and returns its cleaned description text.
func IngestFromURL(ctx context.Context, urlStr string, opts fetch.JobPostingOptions) (string, error) {
	text, err := fetch.JobPosting(ctx, urlStr, opts)
	if err != nil {
		return "", fmt.Errorf("failed to ingest job posting: %w", err)
	}
	return CleanText(text), nil
}
