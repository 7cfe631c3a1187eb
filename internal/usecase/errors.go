package usecase

import "errors"

var (
	// ErrInvalidInput wraps every validation failure of caller-supplied values.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRefreshInProgress is returned when another refresh pass holds the run lock.
	ErrRefreshInProgress = errors.New("a price refresh is already in progress")
)
