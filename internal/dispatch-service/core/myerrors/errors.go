package myerrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("request state changed")
	ErrNotAuthorized = errors.New("not authorized for this request")

	// Domain-specific conflicts wrap ErrConflict so callers can match
	// either the precise error or the generic lost-a-race case.
	ErrAlreadyAssigned = fmt.Errorf("request already assigned: %w", ErrConflict)
	ErrAlreadyRejected = fmt.Errorf("request already rejected: %w", ErrConflict)

	ErrWorkerNotEligible = errors.New("worker not eligible")
	ErrValidation        = errors.New("invalid request payload")
)
