package privacy

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxLogRunes = 200

var (
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Indian mobile numbers with optional +91/91/0 prefix and common separators
	phoneRegex = regexp.MustCompile(`(\+?91[-\s]?|\b0)?[6-9]\d{4}[-\s]?\d{5}\b`)

	// Aadhaar numbers written as 4-4-4 groups
	aadhaarRegex = regexp.MustCompile(`\b\d{4}[-\s]\d{4}[-\s]\d{4}\b`)
)

// RedactSensitiveData removes PII from text
func RedactSensitiveData(text string) string {
	text = emailRegex.ReplaceAllString(text, "[EMAIL]")
	text = aadhaarRegex.ReplaceAllString(text, "[AADHAAR]")
	text = phoneRegex.ReplaceAllString(text, "[PHONE]")
	return text
}

// SanitizeForLogging redacts free text and caps it at maxLogRunes runes
func SanitizeForLogging(text string) string {
	redacted := RedactSensitiveData(text)
	if utf8.RuneCountInString(redacted) <= maxLogRunes {
		return redacted
	}
	runes := []rune(redacted)
	return string(runes[:maxLogRunes-3]) + "..."
}

// SanitizeForPrompt removes PII before text is sent to a completion provider
func SanitizeForPrompt(text string) string {
	return RedactSensitiveData(text)
}

// MaskPhone keeps only the last four digits of a phone number
func MaskPhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) <= 4 {
		return strings.Repeat("*", len(d))
	}
	return strings.Repeat("*", len(d)-4) + d[len(d)-4:]
}
