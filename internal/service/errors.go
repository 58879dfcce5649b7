package service

import "errors"

// Validation errors are client-correctable and never retried automatically.
var (
	ErrMissingRequester = errors.New("requester name is required")
	ErrInvalidStart     = errors.New("start time is invalid")
	ErrInvalidDuration  = errors.New("duration is not one of the allowed choices")
	ErrDurationExceeded = errors.New("duration exceeds the maximum allowed")
	ErrUnknownCampus    = errors.New("unknown campus")
	ErrRateLimited      = errors.New("too many reservation requests")
)
