package models

import "errors"

var (
	// ErrInvalidTransition is returned when an alert lifecycle change is not allowed.
	ErrInvalidTransition = errors.New("invalid alert status transition")
	ErrAlertNotFound     = errors.New("alert not found")
	ErrUnitNotFound      = errors.New("production unit not found")
)
