package sql

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrForbiddenQuery is returned for item queries that are not a single
// read-only SELECT.
var ErrForbiddenQuery = errors.New("forbidden query")

var (
	// quoted literals and identifiers, with doubled quotes as escapes
	quotedText = regexp.MustCompile(`'(?:[^']|'')*'|"(?:[^"]|"")*"`)

	forbiddenKeyword = regexp.MustCompile(`(?i)\b(DROP|DELETE|UPDATE|INSERT|CREATE|ALTER|TRUNCATE|GRANT|REVOKE|ATTACH|PRAGMA)\b`)
)

// ValidateQuery accepts a single SELECT (or WITH ... SELECT) statement.
// Text inside quotes is not inspected.
func ValidateQuery(query string) error {
	q := strings.TrimSpace(quotedText.ReplaceAllString(query, "''"))
	q = strings.TrimSuffix(q, ";")
	if q == "" {
		return fmt.Errorf("%w: empty query", ErrForbiddenQuery)
	}
	if strings.Contains(q, ";") {
		return fmt.Errorf("%w: multiple statements", ErrForbiddenQuery)
	}

	first := strings.ToUpper(strings.Fields(q)[0])
	if first != "SELECT" && first != "WITH" {
		return fmt.Errorf("%w: must start with SELECT", ErrForbiddenQuery)
	}
	if kw := forbiddenKeyword.FindString(q); kw != "" {
		return fmt.Errorf("%w: %s", ErrForbiddenQuery, strings.ToUpper(kw))
	}
	return nil
}
