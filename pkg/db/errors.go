package db

import "strings"

// IsUniqueViolation reports whether err looks like a Postgres unique
// constraint violation. Pass a constraint name to match one specific
// constraint (such as the order number or product slug index); leave it
// empty to match any duplicate-key error.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}
