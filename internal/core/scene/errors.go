package scene

import "errors"

var (
	ErrUnknownKind     = errors.New("unknown object kind")
	ErrUnknownProperty = errors.New("unknown transform property")
	ErrDuplicateID     = errors.New("duplicate object id")
	ErrEmptyID         = errors.New("empty object id")
)
