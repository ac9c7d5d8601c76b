package generator

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`) // For slugs, allow only lowercase alphanum and hyphen
var multiHyphen = regexp.MustCompile(`-+`)             // To collapse multiple hyphens

// GenerateSlug creates a URL-friendly slug from a page name.
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	slug = multiHyphen.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "page"
	}
	return slug
}

var validSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is already a well-formed slug.
func ValidSlug(s string) bool {
	return validSlug.MatchString(s)
}
