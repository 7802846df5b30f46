package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/teammatch/internal/forms"
	"github.com/jonathan/teammatch/internal/schemas"
	"github.com/jonathan/teammatch/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDocument(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadPostingForm(t *testing.T) {
	tests := []struct {
		name     string
		tags     string
		wantTags string
	}{
		{name: "tags as string", tags: `"go, react"`, wantTags: "go, react"},
		{name: "tags as list", tags: `["go", "react"]`, wantTags: "go, react"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDocument(t, `{
				"title": "Chat app",
				"intro": "Realtime chat",
				"description": "A small chat service.",
				"tags": `+tt.tags+`,
				"deadline": "2030-01-31",
				"positions": [{"role": "Backend", "headcount": 2}],
				"workStyle": "online"
			}`)

			form, err := readPostingForm(path)
			require.NoError(t, err)
			assert.Equal(t, "Chat app", form.Title)
			assert.Equal(t, tt.wantTags, form.Tags)
			assert.Equal(t, "2030-01-31", form.Deadline)
			assert.Equal(t, []types.Position{{Role: "Backend", Headcount: 2}}, form.Positions)
			assert.Equal(t, types.WorkOnline, form.ToRequest().WorkStyle)
			assert.Equal(t, []string{"go", "react"}, forms.ParseTags(form.Tags))
		})
	}
}

func TestReadPostingForm_SchemaViolation(t *testing.T) {
	path := writeDocument(t, `{"title": "Chat app", "positions": []}`)

	_, err := readPostingForm(path)
	var ve *schemas.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Errors)
}

func TestReadProfileForm(t *testing.T) {
	path := writeDocument(t, `{
		"intro": "Backend developer",
		"bio": "Five years of Go.",
		"skills": ["Go", "PostgreSQL"],
		"location": "Seoul"
	}`)

	form, err := readProfileForm(path)
	require.NoError(t, err)
	assert.Equal(t, "Go, PostgreSQL", form.Skills)
	assert.Equal(t, "Seoul", form.Location)

	req, err := form.Validate()
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, req.Skills)
}

func TestReadProfileForm_MissingFile(t *testing.T) {
	_, err := readProfileForm(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, err := parseID("#12", "project")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	_, err = parseID("abc", "project")
	assert.EqualError(t, err, `invalid project id "abc"`)

	_, err = parseID("0", "team")
	assert.Error(t, err)
}
