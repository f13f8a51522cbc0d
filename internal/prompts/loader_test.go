package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(TailoringFile, KeyCoverLetter)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Dear Hiring Manager")
	assert.Contains(t, prompt, "Kind regards,")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(TailoringFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestList(t *testing.T) {
	keys, err := List(TailoringFile)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyCoverLetter, KeyRewriteBullets, KeyTagline}, keys)
}

func TestFormat(t *testing.T) {
	out := Format("Role: {{.RoleTitle}} ({{.RoleTitle}}) for {{.Name}}", map[string]string{
		"RoleTitle": "Go Engineer",
		"Name":      "Jane",
	})
	assert.Equal(t, "Role: Go Engineer (Go Engineer) for Jane", out)
}

func TestRender(t *testing.T) {
	out, err := Render(TailoringFile, KeyTagline, map[string]string{
		"RoleTitle":  "Go Engineer",
		"JobText":    "We need Go.",
		"ResumeText": "Built REST APIs in Go",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Role: Go Engineer")
	assert.Contains(t, out, "Built REST APIs in Go")
	assert.NotContains(t, out, "{{.")
}

func TestRender_UnfilledPlaceholder(t *testing.T) {
	_, err := Render(TailoringFile, KeyTagline, map[string]string{"RoleTitle": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{.JobText}}")
}

func TestAllPromptsRenderWithExpectedFields(t *testing.T) {
	data := map[string]string{
		"RoleTitle":  "r",
		"JobText":    "j",
		"ResumeText": "t",
		"Name":       "n",
		"Matched":    "m",
		"Sections":   "s",
	}
	keys, err := List(TailoringFile)
	require.NoError(t, err)
	for _, key := range keys {
		_, err := Render(TailoringFile, key, data)
		assert.NoError(t, err, key)
	}
}
