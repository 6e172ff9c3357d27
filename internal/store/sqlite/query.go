package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/listenupapp/librarian/internal/store"
)

// ExecuteReadOnlyQuery runs one generated SELECT (or WITH ... SELECT) on the
// query_only pool. Writes fail at the connection even if they get past the
// prefix check.
func (s *Store) ExecuteReadOnlyQuery(ctx context.Context, sqlText string) (*store.QueryResult, error) {
	q, err := singleReadStatement(sqlText)
	if err != nil {
		return nil, err
	}

	rows, err := s.ro.QueryContext(ctx, q)
	if err != nil {
		return nil, store.ErrQuery.WithCause(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, store.ErrQuery.WithCause(err)
	}

	result := &store.QueryResult{Columns: cols, Rows: []map[string]any{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, store.ErrQuery.WithCause(err)
		}

		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = vals[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, store.ErrQuery.WithCause(err)
	}

	s.logger.Debug("read-only query executed", "columns", len(cols), "rows", len(result.Rows))
	return result, nil
}

// singleReadStatement trims a trailing semicolon and rejects anything that
// is not exactly one SELECT or WITH statement.
func singleReadStatement(sqlText string) (string, error) {
	q := strings.TrimSpace(sqlText)
	q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	if q == "" {
		return "", store.ErrQuery.WithMessage("empty query")
	}

	head := strings.ToUpper(firstWord(q))
	if head != "SELECT" && head != "WITH" {
		return "", store.ErrQuery.WithMessage(fmt.Sprintf("not a read statement: %s", head))
	}
	if hasUnquotedSemicolon(q) {
		return "", store.ErrQuery.WithMessage("multiple statements")
	}
	return q, nil
}

func firstWord(s string) string {
	end := strings.IndexFunc(s, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == '\r' || r == '('
	})
	if end < 0 {
		return s
	}
	return s[:end]
}

// hasUnquotedSemicolon reports a ';' outside single or double quotes.
func hasUnquotedSemicolon(s string) bool {
	var quote rune
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ';':
			return true
		}
	}
	return false
}

func isForeignKeyErr(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
