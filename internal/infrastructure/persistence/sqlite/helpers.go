package sqlite

import (
	"database/sql"
	"strings"
	"time"
)

// nullString converts a string to sql.NullString.
// Empty strings are stored as NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// stringFromNull converts sql.NullString back to string.
// Returns empty string for NULL values.
func stringFromNull(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}

// timeToString converts time.Time to RFC3339 string.
func timeToString(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses an RFC3339 string to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// isUniqueConstraintError checks if the error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
