package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidTable is returned when help content fails validation.
var ErrInvalidTable = errors.New("invalid domain table")
