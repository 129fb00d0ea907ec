// internal/app/system/orgdirectory/slug.go

package orgdirectory

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dalemusser/waffle/pantry/text"
)

// maxSlugAttempts bounds the suffix search during Create. Past this many
// collisions the caller gets ErrSlugExhausted rather than an unbounded loop.
const maxSlugAttempts = 50

// Slugify derives a URL slug from a display name: fold to lowercase ASCII,
// map every non-alphanumeric run to a single hyphen, trim hyphens from the
// ends. Returns "" when nothing usable remains, e.g. a name of pure
// punctuation.
func Slugify(name string) string {
	folded := text.Fold(strings.ToLower(strings.TrimSpace(name)))

	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range folded {
		switch {
		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// candidateSlug returns the n-th slug to try for a base: the base itself for
// n == 1, then "base-2", "base-3", and so on.
func candidateSlug(base string, n int) string {
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
