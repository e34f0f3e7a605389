package repository

import "strings"

// searchPattern builds a case-insensitive LIKE pattern; columns must be wrapped in LOWER()
func searchPattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// orderClause maps a client supplied sort field onto a whitelisted column
func orderClause(sortBy, sortOrder string, allowed map[string]string, fallback string) string {
	column, ok := allowed[sortBy]
	if !ok {
		column = fallback
	}
	if strings.EqualFold(sortOrder, "asc") {
		return column + " ASC"
	}
	return column + " DESC"
}
