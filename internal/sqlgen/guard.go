package sqlgen

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrPermission means a non-admin asked for user records.
	ErrPermission = errors.New("sqlgen: user records are admin only")
	// ErrReadOnly means the query contains a data-changing keyword.
	ErrReadOnly = errors.New("sqlgen: query would modify data")
)

var userTablePattern = regexp.MustCompile(`(?i)\busers?\b`)

// userListingPhrases mark questions that ask for the user list itself.
var userListingPhrases = []string{
	"list all users",
	"show all users",
	"who are the users",
	"all users",
}

// mutationKeywords are matched as plain substrings, so a column that merely
// contains one (created_at) is rejected too.
var mutationKeywords = []string{
	"update", "delete", "insert", "alter", "drop", "truncate", "create",
}

// Guard checks a sanitized query before it runs. Permission checks come
// before the read-only check.
func Guard(query, question string, isAdmin bool) error {
	if !isAdmin {
		if userTablePattern.MatchString(query) {
			return ErrPermission
		}
		q := strings.ToLower(question)
		for _, p := range userListingPhrases {
			if strings.Contains(q, p) {
				return ErrPermission
			}
		}
	}

	lower := strings.ToLower(query)
	for _, kw := range mutationKeywords {
		if strings.Contains(lower, kw) {
			return ErrReadOnly
		}
	}
	return nil
}
