// Package ids generates and parses TaskDaemon's entity identifiers.
//
// Every entity ID has the form {6-hex}-{kind}-{slug}, where the hex prefix
// is the leading six characters of a time-ordered UUIDv7, giving prefixes
// that never decrease in creation order without a shared counter. The six
// characters cover the top 24 bits of the millisecond timestamp, so IDs
// created within the same ~4.6-hour span share a prefix.
package ids

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// formatRE matches Testable Property 13: ^[0-9a-f]{6}-[a-z]+-[a-z0-9-]+$
var formatRE = regexp.MustCompile(`^[0-9a-f]{6}-[a-z]+-[a-z0-9-]+$`)

// New generates a new ID of the given kind (e.g. "loop", "exec", "iter")
// from a title. The hex prefix derives from a fresh UUIDv7, so IDs
// generated later within the same process have a prefix equal to or
// greater than earlier ones.
func New(kind, title string) string {
	prefix := HexPrefix()
	slug := Slugify(title)
	if slug == "" {
		slug = "untitled"
	}
	return fmt.Sprintf("%s-%s-%s", prefix, kind, slug)
}

// HexPrefix returns a fresh 6-hex-character time-ordered prefix.
func HexPrefix() string {
	u, err := uuid.NewV7()
	if err != nil {
		// uuid.NewV7 only fails if the global rand source errors; fall
		// back to a random v4 rather than panic a long-running daemon.
		u = uuid.New()
	}
	return strings.ReplaceAll(u.String(), "-", "")[:6]
}

// IterationLogID builds the {exec_id}-iter-{n} identifier used for
// IterationLog records (spec §3).
func IterationLogID(execID string, iteration uint32) string {
	return fmt.Sprintf("%s-iter-%d", execID, iteration)
}

// Slugify lowercases a title, strips apostrophes, and replaces every other
// run of non-alphanumeric characters with a single hyphen.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= '0' && r <= '9' || r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r == '\'' || r == '’' || r == '‘':
			// Strip apostrophes entirely rather than hyphenating them.
		default:
			b.WriteRune('-')
		}
	}
	parts := strings.Split(b.String(), "-")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "-")
}

// Valid reports whether id matches the canonical ID format.
func Valid(id string) bool {
	return formatRE.MatchString(id)
}

// Kind returns the {kind} portion of id, or "" if id is malformed.
func Kind(id string) string {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// Slug returns the {slug} portion of id, or "" if id is malformed.
func Slug(id string) string {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

// HexOf returns the leading 6-hex-character prefix of id.
func HexOf(id string) string {
	if len(id) < 6 {
		return ""
	}
	return id[:6]
}
