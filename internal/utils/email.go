package utils

import "strings"

// NormalizeEmail is the stored form of an email address: trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
