package actor

import "errors"

var (
	// ErrNilArgument is returned when a required shape, body or vertex list is missing.
	ErrNilArgument = errors.New("actor: nil argument")
	// ErrInvalidShape is returned when shape dimensions or vertices are not usable.
	ErrInvalidShape = errors.New("actor: invalid shape")
)
