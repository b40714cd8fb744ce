// Package transform converts between database models and the wire types of
// the HTTP API. Models never leave the process unconverted.
package transform

import (
	"errors"
)

var (
	ErrAPIInvalidProperty    = errors.New("field is invalid")
	ErrAPIUnexpectedProperty = errors.New("unexpected field")
)
