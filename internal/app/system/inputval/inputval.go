// internal/app/system/inputval/inputval.go

// Package inputval validates and sanitizes user-supplied input before it
// reaches the stores. Validation is shape-only; existence and uniqueness
// checks belong to the stores and services.
package inputval

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// slugRe is the only shape a slug may take. Resolution against existing
// slugs happens in orgdirectory; this is purely lexical.
var slugRe = regexp.MustCompile(`^[a-z0-9-]+$`)

// sanitizer strips all markup from display values. StrictPolicy allows no
// tags at all, which is what names and org titles need.
var sanitizer = bluemonday.StrictPolicy()

// IsValidEmail reports whether s is a plain RFC 5322 address. Display-name
// forms ("Jane <jane@example.com>") are rejected; only the bare address is
// accepted.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Name == "" && addr.Address == s
}

// IsValidSlug reports whether s is non-empty and matches ^[a-z0-9-]+$.
func IsValidSlug(s string) bool {
	return s != "" && slugRe.MatchString(s)
}

// IsValidName reports whether a display name survives trimming.
func IsValidName(s string) bool {
	return strings.TrimSpace(s) != ""
}

// SanitizeName strips markup and surrounding whitespace from a
// user-supplied display value.
func SanitizeName(s string) string {
	return strings.TrimSpace(sanitizer.Sanitize(s))
}
