package csvparse

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"vrp-import/internal/diagnostic"
)

var allowedContentTypes = map[string]struct{}{
	"text/csv":                 {},
	"application/csv":          {},
	"text/plain":               {},
	"application/vnd.ms-excel": {},
}

// ValidateFile checks an upload before parsing. It returns a row-0 error
// issue, or nil when the file may be parsed. The file is accepted when either
// its name has a .csv extension or its content type is a known CSV type.
func ValidateFile(name, contentType string, size, maxBytes int64) *diagnostic.Issue {
	if !acceptedType(name, contentType) {
		return fileError(diagnostic.CodeFileType,
			fmt.Sprintf("unsupported file type %q (%s); expected a .csv file", name, contentType), name)
	}

	if size == 0 {
		return fileError(diagnostic.CodeFileEmpty, "file is empty", nil)
	}

	if maxBytes > 0 && size > maxBytes {
		return fileError(diagnostic.CodeFileTooLarge,
			fmt.Sprintf("file size %d bytes exceeds the limit of %s", size, formatLimit(maxBytes)), size)
	}

	return nil
}

func acceptedType(name, contentType string) bool {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return true
	}

	if contentType == "" {
		return name == ""
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	_, ok := allowedContentTypes[strings.ToLower(mediaType)]

	return ok
}

func fileError(code, message string, value any) *diagnostic.Issue {
	return &diagnostic.Issue{
		Severity: diagnostic.SeverityError,
		Row:      0,
		Code:     code,
		Message:  message,
		Value:    value,
	}
}

func formatLimit(maxBytes int64) string {
	return fmt.Sprintf("%g MB", float64(maxBytes)/(1024*1024))
}
