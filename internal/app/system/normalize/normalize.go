// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address. An all-whitespace input
// normalizes to the empty string.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
