package db

import "strings"

// IsUniqueViolation reports whether the provided error references a sqlite
// unique constraint failure. When column is provided (table.column form), the
// helper looks for that column in the error message so callers can tell apart
// multiple unique indexes on one table.
func IsUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	if column == "" {
		return true
	}
	return strings.Contains(msg, column)
}
