package export

import "errors"

var (
	ErrUnsupportedVersion = errors.New("unsupported document version")
	ErrInvalidDocument    = errors.New("invalid document")
	ErrUnknownFormat      = errors.New("unknown document format")
)
