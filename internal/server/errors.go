package server

import "errors"

// Server-specific errors
var (
	ErrServerClosed   = errors.New("server is closed")
	ErrServerRunning  = errors.New("server is already running")
	ErrInvalidMessage = errors.New("invalid message")
	ErrUnknownAction  = errors.New("unknown action")
	ErrMissingField   = errors.New("missing required field")
	ErrInvalidConfig  = errors.New("invalid server configuration")
	ErrPublishTimeout = errors.New("publish timed out")
	ErrBrokerConnect  = errors.New("failed to connect to broker")
)
