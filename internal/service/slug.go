package service

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a title: lowercased, runs of
// non-alphanumeric characters collapsed to single hyphens, leading and
// trailing hyphens trimmed. It is a pure transformation so the slug
// invariant stays visible in the write path instead of hiding in a
// persistence hook.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
