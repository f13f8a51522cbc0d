package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postingHTML = `
<html>
	<body>
		<nav>Jobs Home</nav>
		<div class="job-description">
			<h2>Backend Engineer</h2>
			<p>We are hiring a Backend Engineer to build APIs.</p>
			<h3>Requirements</h3>
			<ul>
				<li>Must have Go experience</li>
				<li>Kubernetes is required</li>
			</ul>
			<h3>Nice to have</h3>
			<ul><li>Leadership experience</li></ul>
		</div>
		<form class="application-form">Apply now</form>
		<footer>Copyright</footer>
	</body>
</html>`

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.Contains(t, err.Error(), "404")
}

func TestExtractStructuredText_KeepsHeadingsAndLists(t *testing.T) {
	text, err := ExtractStructuredText(postingHTML, ContentSelectors(PlatformUnknown), NoiseSelectors(PlatformUnknown)...)
	require.NoError(t, err)

	assert.Contains(t, text, "# Backend Engineer")
	assert.Contains(t, text, "# Requirements\n- Must have Go experience\n- Kubernetes is required")
	assert.Contains(t, text, "- Leadership experience")
	assert.NotContains(t, text, "Jobs Home")
	assert.NotContains(t, text, "Apply now")
	assert.NotContains(t, text, "Copyright")
}

func TestExtractStructuredText_PlainBodyFallback(t *testing.T) {
	text, err := ExtractStructuredText("<html><body>Line one\n\n  Line two  </body></html>", nil)
	require.NoError(t, err)
	assert.Equal(t, "Line one\nLine two", text)
}

func TestJobPosting_UsesRendererForThinPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="root"></div></body></html>`))
	}))
	defer server.Close()

	var rendered bool
	opts := JobPostingOptions{
		Fetch: DefaultOptions(),
		Renderer: func(_ context.Context, url string, _ time.Duration) (string, error) {
			rendered = true
			assert.Equal(t, server.URL, url)
			return postingHTML, nil
		},
	}

	text, err := JobPosting(context.Background(), server.URL, opts)
	require.NoError(t, err)
	assert.True(t, rendered)
	assert.Contains(t, text, "Must have Go experience")
}

func TestJobPosting_EmptyPageIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body></body></html>`))
	}))
	defer server.Close()

	opts := JobPostingOptions{
		Fetch: DefaultOptions(),
		Renderer: func(context.Context, string, time.Duration) (string, error) {
			return "", errors.New("no browser")
		},
	}
	_, err := JobPosting(context.Background(), server.URL, opts)
	require.Error(t, err)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, strings.Contains(fetchErr.Message, "no job description text"))
}
