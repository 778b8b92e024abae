package core

import (
	"errors"
)

var (
	ErrPreconditionViolation = errors.New("precondition violation")
	ErrNotInitialized        = errors.New("not initialized")
	ErrAlreadyShutdown       = errors.New("already shut down")
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrUnknown               = errors.New("unknown")
)
