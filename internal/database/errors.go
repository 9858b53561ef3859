package database

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a record with the requested id does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a user email is already registered
	ErrDuplicateEmail = errors.New("email already exists")
)

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
