package sqlgen

import (
	"regexp"
	"strings"
)

var (
	langTagPattern = regexp.MustCompile(`^[A-Za-z][\w+-]*$`)

	// Tags accepted on the same line as the query: "sql SELECT ...".
	inlineLangTags = map[string]bool{
		"sql": true, "sqlite": true, "sqlite3": true, "postgres": true, "postgresql": true, "mysql": true,
	}

	sqlStartKeywords = map[string]bool{"SELECT": true, "WITH": true}
)

// StripFences removes Markdown code-fence wrapping, drops a leading language
// tag if one is present, and trims the result. Unfenced text is only trimmed.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if end := strings.Index(s, "```"); end >= 0 {
		s = s[:end]
	}
	s = strings.TrimLeft(s, " \t")

	if first, rest, ok := strings.Cut(s, "\n"); ok {
		tag := strings.TrimSpace(first)
		if tag == "" || (langTagPattern.MatchString(tag) && !sqlStartKeywords[strings.ToUpper(tag)]) {
			s = rest
		}
	} else if tag, rest, ok := strings.Cut(s, " "); ok && inlineLangTags[strings.ToLower(tag)] {
		s = rest
	}

	return strings.TrimSpace(s)
}

// RewriteRule is one deterministic textual repair of generated SQL.
type RewriteRule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// RewriteRules are applied in order by Rewrite. They fix the table names and
// status comparisons models most often get wrong.
var RewriteRules = []RewriteRule{
	{"users table", regexp.MustCompile(`\b((?i:FROM|JOIN))(\s+)Users?\b`), "${1}${2}users"},
	{"books table", regexp.MustCompile(`\b((?i:FROM|JOIN))(\s+)Books?\b`), "${1}${2}books"},
	{"users qualifier", regexp.MustCompile(`\bUsers?\.`), "users."},
	{"books qualifier", regexp.MustCompile(`\bBooks?\.`), "books."},
	{"status reading (single)", regexp.MustCompile(`(?i)\b((?:\w+\.)?reading_status)\s*=\s*'reading'`), "LOWER(${1}) = 'reading'"},
	{"status reading (double)", regexp.MustCompile(`(?i)\b((?:\w+\.)?reading_status)\s*=\s*"reading"`), "LOWER(${1}) = 'reading'"},
	{"status completed (single)", regexp.MustCompile(`(?i)\b((?:\w+\.)?reading_status)\s*=\s*'completed'`), "LOWER(${1}) = 'completed'"},
	{"status completed (double)", regexp.MustCompile(`(?i)\b((?:\w+\.)?reading_status)\s*=\s*"completed"`), "LOWER(${1}) = 'completed'"},
}

// Rewrite applies every rule in RewriteRules, in order.
func Rewrite(query string) string {
	for _, r := range RewriteRules {
		query = r.Pattern.ReplaceAllString(query, r.Replacement)
	}
	return strings.TrimSpace(query)
}

// Sanitize is StripFences followed by Rewrite.
func Sanitize(raw string) string {
	return Rewrite(StripFences(raw))
}
