package errors

import (
	"net/url"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateChampionshipID validates a championship identifier supplied by a
// user or an HTTP path parameter. Identifiers are positive integers.
func ValidateChampionshipID(id int) error {
	if id <= 0 {
		return New(ErrCodeInvalidInput, "championship id must be positive, got %d", id)
	}
	return nil
}

// ValidatePath validates a local file path for match input or rendered output.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Extension, when present, must be one of allowedExts (case-insensitive)
//
// Pass no allowedExts to accept any extension.
func ValidatePath(path string, allowedExts ...string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if len(allowedExts) == 0 {
		return nil
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, allowed := range allowedExts {
		if ext == allowed {
			return nil
		}
	}
	return New(ErrCodeInvalidPath, "unsupported file extension %q (want one of: %s)", ext, strings.Join(allowedExts, ", "))
}

// ValidateURL validates a base URL for the upstream match API.
// It requires an http or https scheme and a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must include a host")
	}

	return nil
}
