package errors

import (
	"errors"
	"fmt"
)

// Common error types for the assistant auth core
var (
	// Session errors
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionNotFound = errors.New("session not found")

	// Token errors
	ErrNotLinked = errors.New("service not linked")

	// Linking errors
	ErrPopupBlocked     = errors.New("popup blocked by browser")
	ErrLinkingAbandoned = errors.New("authentication was not completed")
	ErrUnknownService   = errors.New("unknown service")

	// Claims errors
	ErrClaimsDecode = errors.New("identity claims could not be decoded")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
