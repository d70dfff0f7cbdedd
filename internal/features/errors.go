package features

import (
	"errors"
	"fmt"
)

// ErrInvalidFormToken is returned when a form sequence holds anything other than W, D or L
var ErrInvalidFormToken = errors.New("invalid form token")

// FormTokenError carries the offending character and its position
type FormTokenError struct {
	Token rune
	Index int
}

func (e *FormTokenError) Error() string {
	return fmt.Sprintf("%s %q at position %d", ErrInvalidFormToken, e.Token, e.Index)
}

// Unwrap lets errors.Is match ErrInvalidFormToken
func (e *FormTokenError) Unwrap() error {
	return ErrInvalidFormToken
}
