package rendering

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/jonathan/job-application-assistant/internal/tailoring"
	"github.com/jonathan/job-application-assistant/internal/types"
)

// DefaultMaxRenders bounds the render, count and trim loop.
const DefaultMaxRenders = 25

// Request is one rendering job.
type Request struct {
	Label     string
	Stamp     time.Time
	OutputDir string
	// Resume supplies the header: name and contact lines.
	Resume    types.ResumeDocument
	Plan      types.TailoringPlan
	RoleTitle string
	// MaxPages is enforced on the PDF when a printer is configured. Zero disables enforcement.
	MaxPages int
	// Overlap ranks bullets for trimming. Nil treats all bullets alike.
	Overlap tailoring.OverlapFunc
}

// Artifacts lists the files written for one request. Empty paths were not produced.
type Artifacts struct {
	ResumeHTML      string `json:"resume_html"`
	ResumePDF       string `json:"resume_pdf,omitempty"`
	CoverLetterHTML string `json:"cover_letter_html"`
	CoverLetterPDF  string `json:"cover_letter_pdf,omitempty"`
	CoverLetterText string `json:"cover_letter_txt"`
	// Pages is the resume PDF page count, zero without a printer.
	Pages int `json:"pages,omitempty"`
	// Plan is the plan as rendered, after any trimming.
	Plan types.TailoringPlan `json:"plan"`
}

// Paths returns the non-empty file paths.
func (a *Artifacts) Paths() []string {
	var out []string
	for _, p := range []string{a.ResumeHTML, a.ResumePDF, a.CoverLetterHTML, a.CoverLetterPDF, a.CoverLetterText} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Gateway renders a plan to files.
type Gateway interface {
	Render(ctx context.Context, req Request) (*Artifacts, error)
}

// PDFPrinter prints a local HTML file to PDF bytes.
type PDFPrinter interface {
	PrintFile(ctx context.Context, htmlPath string) ([]byte, error)
}

// HTMLGateway writes HTML pages from a template and, with a printer, A4 PDFs whose page count
// is brought within MaxPages by dropping one bullet at a time.
type HTMLGateway struct {
	TemplatePath string
	Printer      PDFPrinter
	MaxRenders   int
	Logger       *zap.Logger
}

// NewHTMLGateway creates a gateway. A nil printer writes HTML and text only.
func NewHTMLGateway(templatePath string, printer PDFPrinter, logger *zap.Logger) *HTMLGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTMLGateway{
		TemplatePath: templatePath,
		Printer:      printer,
		MaxRenders:   DefaultMaxRenders,
		Logger:       logger,
	}
}

// Render implements Gateway.
func (g *HTMLGateway) Render(ctx context.Context, req Request) (*Artifacts, error) {
	layout, err := LoadLayout(g.TemplatePath)
	if err != nil {
		return nil, err
	}
	header, err := buildHeader(layout, req.Resume, req.Plan.Tagline)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, &RenderError{Message: "failed to create output directory", Cause: err}
	}
	stamp := req.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}
	resumeBase, coverBase := BaseNames(req.Label, stamp)

	out := &Artifacts{Plan: req.Plan.Clone()}
	if err := g.renderResume(ctx, req, layout, header, filepath.Join(req.OutputDir, resumeBase), out); err != nil {
		return nil, err
	}
	if err := g.renderCoverLetter(ctx, req, layout, header, filepath.Join(req.OutputDir, coverBase), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *HTMLGateway) renderResume(ctx context.Context, req Request, layout *Layout, header template.HTML, base string, out *Artifacts) error {
	overlap := req.Overlap
	if overlap == nil {
		overlap = func(string) int { return 0 }
	}
	maxRenders := g.MaxRenders
	if maxRenders <= 0 {
		maxRenders = DefaultMaxRenders
	}

	out.ResumeHTML = base + ".html"
	dropped := 0
	for attempt := 1; ; attempt++ {
		html, err := RenderResumeHTML(layout, header, req.Resume.Name, out.Plan)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out.ResumeHTML, []byte(html), 0644); err != nil {
			return &RenderError{Message: "failed to write resume HTML", Cause: err}
		}
		if g.Printer == nil {
			break
		}

		data, err := g.Printer.PrintFile(ctx, out.ResumeHTML)
		if err != nil {
			return &RenderError{Message: "failed to print resume PDF", Cause: err}
		}
		pages, err := CountPages(data)
		if err != nil {
			return &RenderError{Message: "failed to read resume PDF", Cause: err}
		}
		out.Pages = pages

		if req.MaxPages <= 0 || pages <= req.MaxPages || attempt >= maxRenders || !tailoring.TrimOnce(&out.Plan, overlap) {
			out.ResumePDF = base + ".pdf"
			if err := os.WriteFile(out.ResumePDF, data, 0644); err != nil {
				return &RenderError{Message: "failed to write resume PDF", Cause: err}
			}
			if req.MaxPages > 0 && pages > req.MaxPages {
				g.Logger.Warn("resume still exceeds page limit", zap.Int("pages", pages), zap.Int("max_pages", req.MaxPages))
			}
			break
		}
		dropped++
		g.Logger.Debug("trimmed bullet for page limit", zap.Int("pages", pages), zap.Int("max_pages", req.MaxPages))
	}

	if dropped > 0 {
		out.Plan.Notes = append(out.Plan.Notes, fmt.Sprintf("Removed %d bullet(s) so the PDF fits %d page(s)", dropped, req.MaxPages))
	}
	return nil
}

func (g *HTMLGateway) renderCoverLetter(ctx context.Context, req Request, layout *Layout, header template.HTML, base string, out *Artifacts) error {
	paragraphs := req.Plan.CoverLetter
	if len(paragraphs) == 0 {
		paragraphs = tailoring.CoverLetter(req.Resume.Name, req.RoleTitle, nil, 0)
	}

	out.CoverLetterText = base + ".txt"
	if err := os.WriteFile(out.CoverLetterText, []byte(CoverLetterText(paragraphs)), 0644); err != nil {
		return &RenderError{Message: "failed to write cover letter text", Cause: err}
	}

	html, err := RenderCoverLetterHTML(layout, header, paragraphs)
	if err != nil {
		return err
	}
	out.CoverLetterHTML = base + ".html"
	if err := os.WriteFile(out.CoverLetterHTML, []byte(html), 0644); err != nil {
		return &RenderError{Message: "failed to write cover letter HTML", Cause: err}
	}

	if g.Printer == nil {
		return nil
	}
	data, err := g.Printer.PrintFile(ctx, out.CoverLetterHTML)
	if err != nil {
		return &RenderError{Message: "failed to print cover letter PDF", Cause: err}
	}
	out.CoverLetterPDF = base + ".pdf"
	if err := os.WriteFile(out.CoverLetterPDF, data, 0644); err != nil {
		return &RenderError{Message: "failed to write cover letter PDF", Cause: err}
	}
	return nil
}

// CountPages returns the number of pages in a PDF document.
func CountPages(data []byte) (int, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}
