package server

import "errors"

var (
	// ErrPartyIDRequired is returned when a party id is missing
	ErrPartyIDRequired = errors.New("party id is required")

	// ErrSessionIDRequired is returned when a session id is missing
	ErrSessionIDRequired = errors.New("session id is required")

	// ErrSessionNotFound is returned when a session does not exist or
	// is terminal
	ErrSessionNotFound = errors.New("session not found")

	// ErrRoleNotFound is returned when a role code resolves to nothing
	ErrRoleNotFound = errors.New("role not found")
)
