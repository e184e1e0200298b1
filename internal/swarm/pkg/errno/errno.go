package errno

import (
	"errors"
)

var (
	ErrRunNotFound     = errors.New("run not found")
	ErrRunAlreadyDone  = errors.New("run already done")
	ErrMalformedEvent  = errors.New("malformed stream event")
	ErrEmptyStream     = errors.New("stream contained no events")
	ErrStoreDisabled   = errors.New("run store is disabled")
	ErrServerNotFound  = errors.New("mcp server not found")
	ErrInvalidRequires = errors.New("invalid handoff requirements")
)
