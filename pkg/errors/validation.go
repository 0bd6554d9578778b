package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// ValidateInput validates free-form user input for safety.
// It rejects input that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty values
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 256 characters
func ValidateInput(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "value cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "value too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "value contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "value contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// pythonProjectNameRegex matches valid Python project names (PEP 508).
var pythonProjectNameRegex = regexp.MustCompile(`^([A-Za-z0-9]|[A-Za-z0-9][A-Za-z0-9._-]*[A-Za-z0-9])$`)

// ValidateProjectName validates a Python project name per PEP 508.
//
// This is stricter than what the Simple API name normalizer accepts: PEP 508
// forbids leading and trailing separators, while normalization is total over
// any run of letters, digits and separators. Use it for names typed by users.
func ValidateProjectName(name string) error {
	if err := ValidateInput(name); err != nil {
		return Wrap(ErrCodeInvalidName, err, "invalid project name")
	}

	if !pythonProjectNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid Python project name: %q", name)
	}

	return nil
}

// ValidateIndexURL validates a package index base URL.
// It must be an absolute http or https URL with a host.
func ValidateIndexURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidURL, "index URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidURL, err, "index URL cannot be parsed")
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidURL, "index URL must use http or https scheme")
	}

	if u.Host == "" {
		return New(ErrCodeInvalidURL, "index URL must include a host")
	}

	return nil
}
