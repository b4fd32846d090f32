package identity

import "strings"

// NormalizePhone strips everything but digits and keeps the last ten.
// Two numbers with the same last ten digits are the same person.
func NormalizePhone(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) > 10 {
		return digits[len(digits)-10:]
	}
	return digits
}

// FormatE164 formats a stored number for the carrier. Numbers already
// starting with + are passed through; bare ten digit numbers are Indian.
func FormatE164(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "+") {
		return raw
	}
	digits := digitsOnly(raw)
	switch {
	case len(digits) == 10:
		return "+91" + digits
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return "+" + digits
	default:
		return "+" + digits
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
