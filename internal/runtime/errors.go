package runtime

import "errors"

var ErrInvalidInterval = errors.New("tick interval must be positive")
