// Package errorx attaches registered business codes to errors so HTTP
// handlers can map any failure to a status code and a stable message.
package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Coder describes one registered error code.
type Coder interface {
	// Code is the business error code.
	Code() int
	// HTTPStatus is the status written for this code.
	HTTPStatus() int
	// String is the external (user facing) message.
	String() string
	// Reference points to documentation for the code, if any.
	Reference() string
}

// ErrUnknown is the code reported for errors that carry none.
const ErrUnknown = 1

type defaultCoder struct {
	code int
	http int
	msg  string
}

func (c defaultCoder) Code() int         { return c.code }
func (c defaultCoder) HTTPStatus() int   { return c.http }
func (c defaultCoder) String() string    { return c.msg }
func (c defaultCoder) Reference() string { return "" }

var unknownCoder Coder = defaultCoder{code: ErrUnknown, http: http.StatusInternalServerError, msg: "An internal server error occurred"}

var (
	mu    sync.RWMutex
	codes = map[int]Coder{}
)

// Register adds coder, replacing a coder with the same code.
func Register(coder Coder) {
	if coder.Code() == ErrUnknown {
		panic("code 1 is reserved for unknown errors")
	}
	mu.Lock()
	defer mu.Unlock()
	codes[coder.Code()] = coder
}

// MustRegister adds coder and panics when its code is already taken.
func MustRegister(coder Coder) {
	if coder.Code() == ErrUnknown {
		panic("code 1 is reserved for unknown errors")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := codes[coder.Code()]; ok {
		panic(fmt.Sprintf("code %d already registered", coder.Code()))
	}
	codes[coder.Code()] = coder
}

// withCode is an error carrying a business code.
type withCode struct {
	err   error
	code  int
	cause error
}

func (w *withCode) Error() string {
	if w.cause == nil {
		return w.err.Error()
	}
	return fmt.Sprintf("%s: %v", w.err, w.cause)
}

func (w *withCode) Unwrap() error { return w.cause }

// WithCode returns a new error with code.
func WithCode(code int, format string, args ...any) error {
	return &withCode{err: fmt.Errorf(format, args...), code: code}
}

// WrapC annotates err with code and a message. It returns nil if err is nil.
func WrapC(err error, code int, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &withCode{err: fmt.Errorf(format, args...), code: code, cause: err}
}

// ParseCoder returns the coder of the outermost coded error in err's chain,
// or the unknown coder.
func ParseCoder(err error) Coder {
	var w *withCode
	if !errors.As(err, &w) {
		return unknownCoder
	}
	mu.RLock()
	defer mu.RUnlock()
	if coder, ok := codes[w.code]; ok {
		return coder
	}
	return unknownCoder
}

// IsCode reports whether any error in err's chain carries code.
func IsCode(err error, code int) bool {
	for err != nil {
		var w *withCode
		if !errors.As(err, &w) {
			return false
		}
		if w.code == code {
			return true
		}
		err = w.cause
	}
	return false
}
