package rendering

import (
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

//go:embed templates/default.html
var defaultTemplate string

// Layout is what a rendered page borrows from an HTML template: its stylesheet and,
// for a user template, its header block.
type Layout struct {
	Style template.CSS
	// Header is the template's <div class="header"> block, empty when the header is built
	// from the resume instead.
	Header string
}

// LoadLayout reads the HTML template at path. An empty path uses the built-in template,
// whose placeholder header is not used.
func LoadLayout(path string) (*Layout, error) {
	if path == "" {
		return ParseLayout(defaultTemplate, false)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{Message: fmt.Sprintf("template file not found: %s", path), Cause: err}
		}
		return nil, &TemplateError{Message: "failed to read template file", Cause: err}
	}
	return ParseLayout(string(content), true)
}

// ParseLayout extracts the stylesheet and optionally the header block from template HTML.
func ParseLayout(htmlText string, keepHeader bool) (*Layout, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse template HTML", Cause: err}
	}

	var styles []string
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		if css := strings.TrimSpace(s.Text()); css != "" {
			styles = append(styles, css)
		}
	})

	layout := &Layout{Style: template.CSS(strings.Join(styles, "\n"))}
	if keepHeader {
		if header := doc.Find("div.header").First(); header.Length() > 0 {
			outer, err := goquery.OuterHtml(header)
			if err != nil {
				return nil, &TemplateError{Message: "failed to read template header", Cause: err}
			}
			layout.Header = outer
		}
	}
	return layout, nil
}

// SectionTitles returns the texts of the template's section-title elements, in order.
func SectionTitles(htmlText string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil
	}
	var titles []string
	doc.Find(".section-title").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			titles = append(titles, t)
		}
	})
	return titles
}

// withTagline returns header with the text of its .tagline element replaced. Headers without a
// tagline element are returned unchanged.
func withTagline(header, tagline string) (string, error) {
	if tagline == "" {
		return header, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(header))
	if err != nil {
		return "", &TemplateError{Message: "failed to parse header", Cause: err}
	}
	target := doc.Find(".tagline").First()
	if target.Length() == 0 {
		return header, nil
	}
	target.SetText(tagline)
	out, err := goquery.OuterHtml(doc.Find("div.header").First())
	if err != nil {
		return "", &TemplateError{Message: "failed to write header", Cause: err}
	}
	return out, nil
}
