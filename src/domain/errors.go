package domain

import (
	"errors"
	"fmt"
)

var (
	ErrIdeaNotFound = errors.New("idea not found")
	ErrValidation   = errors.New("validation failed")

	ErrEmptyContent      = fmt.Errorf("%w: idea content cannot be empty", ErrValidation)
	ErrInvalidPriority   = fmt.Errorf("%w: priority must be high, medium, or low", ErrValidation)
	ErrInvalidPagination = fmt.Errorf("%w: skip and limit must not be negative", ErrValidation)
)

// IsValidation reports whether err belongs to the validation category
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err means the idea does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrIdeaNotFound)
}
