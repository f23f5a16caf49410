package logger

import (
	"regexp"
	"strings"
)

var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)((password|passwd|secret|token|api[_-]?key|session|csrf)[\s:=]+)([^;,\s&"]+)`),
	regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9\-._~+/]+=*)`),
}

var phonePattern = regexp.MustCompile(`\b(01[016789])[-\s]?(\d{3,4})[-\s]?(\d{4})\b`)

// RedactSensitiveData replaces credentials in free text with [REDACTED]
// and masks the middle digits of Korean mobile numbers.
func RedactSensitiveData(input string) string {
	if input == "" {
		return input
	}
	for _, p := range sensitivePatterns {
		input = p.ReplaceAllString(input, "$1[REDACTED]")
	}
	return phonePattern.ReplaceAllString(input, "$1-****-$3")
}

// MaskPhone keeps the first and last digit groups of a phone number.
// Customer phone numbers are logged through this helper only.
func MaskPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) < 8 {
		return strings.Repeat("*", len(digits))
	}
	return digits[:3] + "-****-" + digits[len(digits)-4:]
}

// Phone creates a field holding a masked phone number.
func Phone(key, phone string) Field {
	return Field{Key: internKey(key), Value: MaskPhone(phone)}
}
