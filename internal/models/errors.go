package models

import "errors"

// Input errors surfaced to callers
var (
	ErrMissingStat    = errors.New("missing required stat")
	ErrNegativeCount  = errors.New("count cannot be negative")
	ErrInvalidInput   = errors.New("invalid stat input")
	ErrUnknownTarget  = errors.New("unknown prediction target")
	ErrUnknownOutcome = errors.New("unknown match outcome")
)
