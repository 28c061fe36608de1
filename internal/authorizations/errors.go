package authorizations

import "errors"

var (
	// ErrAuthorizationNotFound indicates the id does not exist in the org.
	ErrAuthorizationNotFound = errors.New("authorization not found")
	// ErrAlreadyDenied indicates a deny was applied twice.
	ErrAlreadyDenied = errors.New("authorization already denied")
	// ErrInvalidUnits indicates totalUnits or usedUnits fails validation.
	ErrInvalidUnits = errors.New("authorization units invalid")
	// ErrInvalidWindow indicates endDate is not after startDate.
	ErrInvalidWindow = errors.New("authorization window invalid")
)
