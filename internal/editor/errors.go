package editor

import "errors"

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrNoSelection    = errors.New("no object selected")
	ErrNotAnEffect    = errors.New("kind is not an effect")
	ErrNotAModel      = errors.New("kind is not a model")
	ErrInvalidValue   = errors.New("value is not a finite number")

	ErrUnknownSeekPolicy = errors.New("unknown seek policy")
)
