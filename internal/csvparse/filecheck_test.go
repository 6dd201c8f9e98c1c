package csvparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrp-import/internal/diagnostic"
	"vrp-import/internal/schema"
)

func TestValidateFile(t *testing.T) {
	t.Parallel()

	const limit = 100

	tests := []struct {
		name        string
		file        string
		contentType string
		size        int64
		code        string
	}{
		{"csv extension", "jobs.csv", "", 10, ""},
		{"extension wins over content type", "jobs.CSV", "application/octet-stream", 10, ""},
		{"text/plain with params", "jobs.txt", "text/plain; charset=utf-8", 10, ""},
		{"excel csv type", "export", "application/vnd.ms-excel", 10, ""},
		{"no metadata", "", "", 10, ""},
		{"xlsx", "jobs.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", 10, diagnostic.CodeFileType},
		{"name without extension", "jobs", "", 10, diagnostic.CodeFileType},
		{"empty", "jobs.csv", "text/csv", 0, diagnostic.CodeFileEmpty},
		{"at limit", "jobs.csv", "text/csv", limit, ""},
		{"too large", "jobs.csv", "text/csv", limit + 1, diagnostic.CodeFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			issue := ValidateFile(tt.file, tt.contentType, tt.size, limit)
			if tt.code == "" {
				assert.Nil(t, issue)
				return
			}

			require.NotNil(t, issue)
			assert.Equal(t, tt.code, issue.Code)
			assert.Equal(t, 0, issue.Row)
			assert.Equal(t, diagnostic.SeverityError, issue.Severity)
		})
	}
}

func TestOptions_MaxBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(10*1024*1024), DefaultOptions().MaxBytes())
	assert.Equal(t, int64(10*1024*1024), Options{}.MaxBytes())
	assert.Equal(t, int64(512*1024), Options{MaxFileSizeMB: 0.5}.MaxBytes())
}

func TestParser_ParseFile(t *testing.T) {
	t.Parallel()

	p := NewParser(schema.Default())

	res := p.ParseFile("jobs.xlsx", "", []byte("id\nj1\n"), schema.Jobs, DefaultOptions())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, diagnostic.CodeFileType, res.Errors[0].Code)
	assert.Empty(t, res.Data)
	assert.NotNil(t, res.Warnings)

	res = p.ParseFile("jobs.csv", "text/csv", []byte("id\nj1\n"), schema.Jobs, DefaultOptions())
	assert.Empty(t, res.Errors)
	assert.Len(t, res.Data, 1)
}
