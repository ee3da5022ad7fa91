package posts

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotOwner refuses an edit by someone other than the post's author.
	// Callers answer it with a redirect to the post, not an error page.
	ErrNotOwner = errors.New("not the post author")

	ErrUnauthenticated = errors.New("authentication required")
)

// FormErrors maps a form field name to its messages.
type FormErrors map[string][]string

func (e FormErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Get returns the first message for field, or "".
func (e FormErrors) Get(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e FormErrors) Has(field string) bool {
	return len(e[field]) > 0
}

// ValidationError reports field-level problems with submitted post data.
type ValidationError struct {
	Fields FormErrors
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e.Fields[f], "; "))
	}
	return "invalid post: " + strings.Join(parts, ", ")
}
