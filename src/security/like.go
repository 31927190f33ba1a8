package security

import "strings"

var likeReplacer = strings.NewReplacer(
	`\`, `\\`,
	"%", `\%`,
	"_", `\_`,
)

// EscapeLike escapes LIKE wildcards so the pattern matches literally.
// Backslash is PostgreSQL's default LIKE escape character.
func EscapeLike(pattern string) string {
	return likeReplacer.Replace(pattern)
}

// ContainsPattern wraps an escaped term for a substring match
func ContainsPattern(term string) string {
	return "%" + EscapeLike(term) + "%"
}
