package patient

import "errors"

var (
	// ErrPatientNotFound is returned when no record exists for the id.
	ErrPatientNotFound = errors.New("patient not found")
)
