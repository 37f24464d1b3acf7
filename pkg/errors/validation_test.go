package errors

import (
	"strings"
	"testing"
)

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Esercizio1", false},
		{"valid with spaces", "Gestione archivio clienti", false},
		{"valid accented", "Verifica città", false},

		{"empty", "", true},
		{"whitespace", "   ", true},
		{"too long", strings.Repeat("a", MaxTitleLength+1), true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"newline", "foo\nbar", true},
		{"null byte", "foo\x00bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTitle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTitle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidTitle) {
				t.Errorf("ValidateTitle(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateCode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxBytes int
		wantCode Code
	}{
		{"valid", "INIZIO\nFINE", 0, ""},
		{"valid under limit", "Azione", 10, ""},
		{"empty", "", 0, ErrCodeInvalidInput},
		{"blank lines", "\n  \n", 0, ErrCodeInvalidInput},
		{"too large", "Azione 1\nAzione 2", 4, ErrCodeInputTooLarge},
		{"invalid utf8", "Azione \xff", 0, ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCode(tt.input, tt.maxBytes)
			if got := GetCode(err); got != tt.wantCode {
				t.Errorf("ValidateCode(%q) code = %q, want %q", tt.input, got, tt.wantCode)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidFormat,
		ErrCodeInvalidTitle,
		ErrCodeInputTooLarge,
		ErrCodeUnmatchedBlock,
		ErrCodeOrphanCondition,
		ErrCodeNotFound,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
