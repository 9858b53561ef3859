package models

import (
	"fmt"
	"strings"
)

// ValidationError reports request fields that are missing or malformed.
// Handlers surface it as HTTP 400.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("invalid fields: %s", strings.Join(e.Fields, ", "))
}

// NewValidationError builds a ValidationError for the given fields
func NewValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Message: message}
}
