package store

// QueryResult holds rows from a generated query.
// Columns keeps the select order; each row maps column name to value.
type QueryResult struct {
	Columns []string
	Rows    []map[string]any
}

// HasColumns reports whether every name is a selected column.
func (r *QueryResult) HasColumns(names ...string) bool {
	for _, n := range names {
		found := false
		for _, c := range r.Columns {
			if c == n {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
