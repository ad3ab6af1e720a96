package actor

import "errors"

var (
	ErrInvalidSize   = errors.New("box size must be positive on every axis")
	ErrInvalidRadius = errors.New("sphere radius must be positive")
	ErrInvalidMass   = errors.New("mass must be positive and finite")
)
