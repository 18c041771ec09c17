// Package validate collects field-level input problems before any service
// logic runs. The HTTP layer turns a non-empty Errors into a 400 with
// per-field detail.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

type FieldError struct {
	Field   string
	Message string
}

type Errors struct {
	fields []FieldError
}

func (e *Errors) Add(field, message string) {
	e.fields = append(e.fields, FieldError{Field: field, Message: message})
}

func (e *Errors) Addf(field, format string, args ...any) {
	e.Add(field, fmt.Sprintf(format, args...))
}

func (e *Errors) Fields() []FieldError { return e.fields }

func (e *Errors) Error() string {
	msgs := make([]string, 0, len(e.fields))
	for _, f := range e.fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Err returns the collected errors, or nil when every check passed.
func (e *Errors) Err() error {
	if len(e.fields) == 0 {
		return nil
	}
	return e
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func Email(s string) bool { return emailRe.MatchString(s) }
