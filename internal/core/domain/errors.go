package domain

import "errors"

var (
	// ErrEmptyInput is returned by searches that were given nothing to search.
	ErrEmptyInput = errors.New("empty input")
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput wraps validation failures.
	ErrInvalidInput = errors.New("invalid input")
)
