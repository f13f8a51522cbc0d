package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadResumeFile_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Jane Doe\r\n\r\nEXPERIENCE\r\n• Built APIs"), 0o644))

	text, err := ReadResumeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n\nEXPERIENCE\n- Built APIs", text)
}

func TestReadResumeFile_InvalidPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.PDF")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))

	_, err := ReadResumeFile(path)
	require.Error(t, err)

	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "resume", inputErr.Source)
	assert.Contains(t, inputErr.Message, "resume.PDF")
}

func TestReadResumeFile_Missing(t *testing.T) {
	_, err := ReadResumeFile(filepath.Join(t.TempDir(), "absent.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}
