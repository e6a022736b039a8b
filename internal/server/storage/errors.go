package storage

import "errors"

// Common storage errors
var (
	// ErrNodeNotFound indicates that node was not found in the registry
	ErrNodeNotFound = errors.New("node not found")

	// ErrNodeAlreadyExists indicates that node with this name already exists
	ErrNodeAlreadyExists = errors.New("node already exists")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrEventNotFound indicates that sync event was not found
	ErrEventNotFound = errors.New("sync event not found")

	// ErrConflictNotFound indicates that conflict record was not found
	ErrConflictNotFound = errors.New("conflict record not found")

	// ErrSessionNotFound indicates that sync session was not found
	ErrSessionNotFound = errors.New("sync session not found")
)
