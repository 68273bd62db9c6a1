package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxNameLength = 200

	MsgNameRequired = "Task name is required."
	MsgNameTooLong  = "Task name cannot exceed 200 characters."
)

// ValidationError is returned when a write violates a field constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Task validation failed: %s: %s", e.Field, e.Message)
}

// CastError is returned when a lookup receives a malformed identity token.
// It is distinct from a well-formed id that matches nothing.
type CastError struct {
	Value string
	Path  string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("Cast to UUID failed for value %q (type string) at path %q", e.Value, e.Path)
}

// NormalizeName trims name and checks the required and length constraints.
// Length is counted in characters, not bytes.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "name", Message: MsgNameRequired}
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", &ValidationError{Field: "name", Message: MsgNameTooLong}
	}
	return name, nil
}
