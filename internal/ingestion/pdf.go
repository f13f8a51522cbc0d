package ingestion

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ReadResumeFile reads a resume from a .pdf or plain text file and returns cleaned text.
func ReadResumeFile(path string) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return IngestFromFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	text, err := PDFText(data)
	if err != nil {
		return "", &InputError{Source: "resume", Message: "cannot extract text from " + filepath.Base(path), Cause: err}
	}
	return text, nil
}

// PDFText extracts the text of a PDF one row per line, with a blank line between pages.
func PDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return CleanText(sb.String()), nil
}
