package session

import "errors"

// Session errors.
var (
	// ErrNotFound is returned when a session does not exist in the store.
	ErrNotFound = errors.New("session: not found")

	// ErrExpired is returned when a session has expired.
	ErrExpired = errors.New("session: expired")

	// ErrSaveFailed is returned when persisting a session fails.
	ErrSaveFailed = errors.New("session: save failed")
)
