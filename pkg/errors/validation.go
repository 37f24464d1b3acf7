package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTitleLength bounds program titles. Titles end up in sheet names,
// download file names and Content-Disposition headers.
const MaxTitleLength = 128

// ValidateTitle validates a program title for safety and correctness.
//
// The validation rules are intentionally conservative:
//   - No empty (or whitespace-only) titles
//   - No control characters
//   - No path separators
//   - Maximum length of MaxTitleLength characters
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return New(ErrCodeInvalidTitle, "title cannot be empty")
	}

	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return New(ErrCodeInvalidTitle, "title too long (max %d characters)", MaxTitleLength)
	}

	for _, r := range title {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTitle, "title contains invalid control characters")
		}
	}

	if strings.ContainsAny(title, "/\\") {
		return New(ErrCodeInvalidTitle, "title cannot contain path separators")
	}

	return nil
}

// ValidateCode checks that pseudocode input is non-empty and within maxBytes.
// A maxBytes of 0 disables the size check.
func ValidateCode(code string, maxBytes int) error {
	if strings.TrimSpace(code) == "" {
		return New(ErrCodeInvalidInput, "pseudocode cannot be empty")
	}
	if maxBytes > 0 && len(code) > maxBytes {
		return New(ErrCodeInputTooLarge, "pseudocode too large (%d bytes, max %d)", len(code), maxBytes)
	}
	if !utf8.ValidString(code) {
		return New(ErrCodeInvalidInput, "pseudocode is not valid UTF-8")
	}
	return nil
}
