package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken = errors.New("INVALID_TOKEN")

	// ErrRemoteNotConfigured is returned by sync operations before any
	// network call when the remote descriptor lacks credentials or a
	// repository.
	ErrRemoteNotConfigured = errors.New("REMOTE_NOT_CONFIGURED")
)
