package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")

	// Collaborator failure taxonomy. Exhausted retries are deliberately not
	// an error: forced acceptance and not-mastered completion are policy
	// outcomes handled inside the state machine.
	ErrCollaboratorUnavailable   = errors.New("collaborator unavailable")
	ErrInvalidCollaboratorOutput = errors.New("invalid collaborator output")
	ErrConfiguration             = errors.New("invalid configuration")
)
