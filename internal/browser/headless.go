// Package browser drives a headless Chrome instance for page rendering and PDF printing.
// It requires Chrome or Chromium to be installed on the host.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultTimeout bounds a single browser session.
const DefaultTimeout = 30 * time.Second

// A4 paper size in inches.
const (
	a4Width  = 8.27
	a4Height = 11.69
)

// allocatorOptions are the flags used for every headless session.
func allocatorOptions() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
}

// newSession starts a headless browser and returns its context bounded by timeout.
func newSession(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions()...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	return timeoutCtx, func() {
		cancelTimeout()
		cancelBrowser()
		cancelAlloc()
	}
}

// RenderHTML loads url, waits for client-side rendering to settle and returns the resulting HTML.
func RenderHTML(ctx context.Context, url string, timeout time.Duration) (string, error) {
	sessionCtx, cancel := newSession(ctx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(sessionCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}
	return html, nil
}

// PDFPrinter prints local HTML files to A4 PDF with backgrounds and no margins.
type PDFPrinter struct {
	Timeout time.Duration
}

// NewPDFPrinter creates a printer with the default timeout.
func NewPDFPrinter() *PDFPrinter {
	return &PDFPrinter{Timeout: DefaultTimeout}
}

// PrintFile renders the HTML file at htmlPath and returns the PDF bytes.
func (p *PDFPrinter) PrintFile(ctx context.Context, htmlPath string) ([]byte, error) {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", htmlPath, err)
	}
	fileURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()

	sessionCtx, cancel := newSession(ctx, p.Timeout)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(sessionCtx,
		chromedp.Navigate(fileURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var printErr error
			pdf, _, printErr = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return printErr
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("pdf printing failed: %w", err)
	}
	return pdf, nil
}
