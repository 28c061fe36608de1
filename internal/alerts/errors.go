package alerts

import "errors"

var (
	// ErrAlertNotFound is returned when no alert exists for the id.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrInvalidTransition is returned when acknowledging or dismissing an
	// alert that is not active. State is left unchanged.
	ErrInvalidTransition = errors.New("alert is not active")

	// ErrAlreadyResolved is returned when resolving an alert twice.
	ErrAlreadyResolved = errors.New("alert already resolved")

	// ErrMissingActor is returned when a transition lacks the acting user.
	ErrMissingActor = errors.New("actor is required")
)
