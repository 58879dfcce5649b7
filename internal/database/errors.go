package database

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoUnitAvailable means every active unit of the product at the
	// campus is already reserved for an overlapping window.
	ErrNoUnitAvailable = errors.New("no unit available for requested window")

	// ErrInvalidTransition is returned when changing the status of a
	// reservation that is already in a terminal state.
	ErrInvalidTransition = errors.New("reservation already in terminal state")

	// ErrUnitNotActive is returned when an operation targets a unit whose
	// lifecycle status does not permit it.
	ErrUnitNotActive = errors.New("unit is not active")

	// ErrDuplicateUnitCode is returned when a unit code collides within a
	// product.
	ErrDuplicateUnitCode = errors.New("unit code already exists for product")
)
