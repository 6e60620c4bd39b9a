package timeline

import "errors"

var ErrUnknownPolicy = errors.New("unknown timeline bound policy")
