package backend

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRuntimeUnavailable indicates the inference runtime is not reachable.
var ErrRuntimeUnavailable = errors.New("runtime unavailable")

// ErrRuntimeTimeout indicates the runtime took too long to respond.
var ErrRuntimeTimeout = errors.New("runtime timeout")

// ErrOutOfMemory indicates the runtime rejected the request because GPU
// memory is exhausted. The condition is transient; callers should retry.
var ErrOutOfMemory = errors.New("gpu out of memory")

// RuntimeError represents an error returned by the inference runtime.
type RuntimeError struct {
	StatusCode int
	Message    string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error (status %d): %s", e.StatusCode, e.Message)
}

// IsRuntimeError checks if an error is a RuntimeError.
func IsRuntimeError(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re)
}

// oomStatusCode is the status the runtime answers with when a CUDA
// allocation fails.
const oomStatusCode = 507

// runtimeError classifies a non-2xx runtime response, surfacing GPU
// memory exhaustion as the dedicated sentinel so it keeps its meaning
// through the HTTP layer.
func runtimeError(status int, body []byte) error {
	msg := string(body)
	if status == oomStatusCode || strings.Contains(strings.ToLower(msg), "out of memory") {
		return fmt.Errorf("%w: %s", ErrOutOfMemory, msg)
	}
	return &RuntimeError{StatusCode: status, Message: msg}
}
