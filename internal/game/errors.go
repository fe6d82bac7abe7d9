package game

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed is returned for any operation on a completed game.
	ErrSessionClosed = errors.New("session closed")
	// ErrInvalidAnswer is returned when an answer is not yes, no or unknown.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrInvalidResult is returned when a wrong guess comes without the
	// actual entity.
	ErrInvalidResult = errors.New("invalid result")
	// ErrGeneratorUnavailable is returned when no question could be
	// produced by any source, emergency templates included.
	ErrGeneratorUnavailable = errors.New("question generator unavailable")
	// ErrInvalidState is returned for an operation the session's current
	// state does not allow.
	ErrInvalidState = errors.New("invalid session state")
	// ErrInvalidDomain is returned for an empty or malformed domain.
	ErrInvalidDomain = errors.New("invalid domain")
)
