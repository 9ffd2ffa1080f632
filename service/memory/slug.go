package memory

import "strings"

// NormalizeSlug lower-cases s and drops every character outside [a-z0-9-].
func NormalizeSlug(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return -1
	}, s)
}

// ResolveID returns the normalized custom slug, or a generated id when the
// slug is empty after normalization.
func ResolveID(customSlug string) string {
	if id := NormalizeSlug(customSlug); id != "" {
		return id
	}
	return GenerateID()
}
