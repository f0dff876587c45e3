package service

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// sanitizeString trims surrounding whitespace. Inner spacing is stored as given.
func sanitizeString(value string) string {
	return strings.TrimSpace(value)
}

// normalizeRole upper-cases the first letter and lower-cases the rest,
// so "student" and "STUDENT" both become "Student".
func normalizeRole(role string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(role)
	return string(unicode.ToUpper(first)) + strings.ToLower(role[size:])
}

// normalizeEmail trims the provided email. Emails are case-sensitive keys.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
