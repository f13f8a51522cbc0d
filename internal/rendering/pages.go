package rendering

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/jonathan/job-application-assistant/internal/ingestion"
	"github.com/jonathan/job-application-assistant/internal/tailoring"
	"github.com/jonathan/job-application-assistant/internal/types"
)

var pageFuncs = template.FuncMap{
	"notFirst": func(i int) bool { return i > 0 },
}

var headerTemplate = template.Must(template.New("header").Funcs(pageFuncs).Parse(`<div class="header">
  <h1>{{.Name}}</h1>
  <div class="tagline">{{.Tagline}}</div>
  <div class="contact-row">{{range $i, $c := .Contact}}{{if notFirst $i}} <span>·</span> {{end}}{{if $c.URL}}<a href="{{$c.URL}}">{{$c.Label}}</a>{{else}}{{$c.Label}}{{end}}{{end}}</div>
</div>`))

var resumeTemplate = template.Must(template.New("resume").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
{{.Style}}
.section-title { font-weight: 700; margin-top: 16px; }
ul { margin: 6px 0 12px 18px; }
@media print { .page { padding-top: 6mm; } }
</style>
</head>
<body>
<div class="page">
{{.Header}}
{{range .Sections}}<div class="section">
  <div class="section-title">{{.Name}}</div>
  {{range .Entries}}{{if .Title}}<div class="entry">
    <div class="entry-header"><span class="entry-title">{{.Title}}</span>{{if .Date}}<span class="entry-date">{{.Date}}</span>{{end}}</div>
    {{if .Details}}<ul>{{range .Details}}<li>{{.}}</li>{{end}}</ul>{{end}}
  </div>{{else}}<ul>{{range .Details}}<li>{{.}}</li>{{end}}</ul>{{end}}
  {{end}}
</div>
{{end}}</div>
</body>
</html>
`))

var coverLetterTemplate = template.Must(template.New("cover").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Cover Letter</title>
<style>
{{.Style}}
.section-title { font-weight: 700; margin-top: 16px; }
.cover-letter p { margin: 0 0 10px; }
.cover-letter .signature { margin-top: 10px; }
@media print { .page { padding-top: 6mm; } }
@media screen { .page { padding-top: 24px; } }
</style>
</head>
<body>
<div class="page">
{{.Header}}
<div class="section">
  <div class="section-title">Cover Letter</div>
  <div class="cover-letter">
{{range .Paragraphs}}    <p class="{{.Class}}">{{.Text}}</p>
{{end}}  </div>
</div>
</div>
</body>
</html>
`))

type contactItem struct {
	Label string
	URL   string
}

type entryView struct {
	Title   string
	Date    string
	Details []string
}

type sectionView struct {
	Name    string
	Entries []entryView
}

type paragraphView struct {
	Class string
	Text  string
}

// buildHeader renders the page header: the template's own header when it has one, otherwise one
// built from the resume's name and contact lines. The tagline is filled in either way.
func buildHeader(layout *Layout, resume types.ResumeDocument, tagline string) (template.HTML, error) {
	if layout.Header != "" {
		h, err := withTagline(layout.Header, tagline)
		if err != nil {
			return "", err
		}
		return template.HTML(h), nil //nolint:gosec // header comes from the user's own template
	}

	var contact []contactItem
	for _, c := range resume.Contact {
		c = strings.TrimSpace(c)
		switch {
		case strings.HasPrefix(c, "http://") || strings.HasPrefix(c, "https://"):
			contact = append(contact, contactItem{Label: strings.TrimPrefix(strings.TrimPrefix(c, "https://"), "http://"), URL: c})
		case c != "":
			contact = append(contact, contactItem{Label: c})
		}
	}

	var buf bytes.Buffer
	err := headerTemplate.Execute(&buf, map[string]any{
		"Name":    resume.Name,
		"Tagline": tagline,
		"Contact": contact,
	})
	if err != nil {
		return "", &TemplateError{Message: "failed to execute header template", Cause: err}
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}

// sectionViews groups each plan bullet into list items, keeping multi-line entries together
// under their title.
func sectionViews(plan types.TailoringPlan) []sectionView {
	views := make([]sectionView, 0, len(plan.Sections))
	for _, s := range plan.Sections {
		view := sectionView{Name: s.Name}
		var loose []string
		flush := func() {
			if len(loose) > 0 {
				view.Entries = append(view.Entries, entryView{Details: loose})
				loose = nil
			}
		}
		for _, b := range s.Bullets {
			if !strings.Contains(b, "\n") {
				loose = append(loose, b)
				continue
			}
			flush()
			title, date, details := ingestion.EntryLines(b)
			view.Entries = append(view.Entries, entryView{Title: title, Date: date, Details: details})
		}
		flush()
		views = append(views, view)
	}
	return views
}

// RenderResumeHTML renders the resume page for a plan.
func RenderResumeHTML(layout *Layout, header template.HTML, name string, plan types.TailoringPlan) (string, error) {
	title := "Tailored Resume"
	if name != "" {
		title = name + " - Resume"
	}
	var buf bytes.Buffer
	err := resumeTemplate.Execute(&buf, map[string]any{
		"Title":    title,
		"Style":    layout.Style,
		"Header":   header,
		"Sections": sectionViews(plan),
	})
	if err != nil {
		return "", &TemplateError{Message: "failed to execute resume template", Cause: err}
	}
	return buf.String(), nil
}

// RenderCoverLetterHTML renders the cover letter page. The sign-off and the line after it are
// styled as the signature.
func RenderCoverLetterHTML(layout *Layout, header template.HTML, paragraphs []string) (string, error) {
	views := make([]paragraphView, 0, len(paragraphs))
	signature := false
	for _, p := range paragraphs {
		if strings.HasPrefix(strings.ToLower(p), strings.ToLower(strings.TrimSuffix(tailoring.SignOff, ","))) {
			signature = true
		}
		class := "body"
		if signature {
			class = "signature"
		}
		views = append(views, paragraphView{Class: class, Text: p})
	}

	var buf bytes.Buffer
	err := coverLetterTemplate.Execute(&buf, map[string]any{
		"Style":      layout.Style,
		"Header":     header,
		"Paragraphs": views,
	})
	if err != nil {
		return "", &TemplateError{Message: "failed to execute cover letter template", Cause: err}
	}
	return buf.String(), nil
}

// CoverLetterText joins paragraphs with blank lines.
func CoverLetterText(paragraphs []string) string {
	return strings.Join(paragraphs, "\n\n") + "\n"
}
