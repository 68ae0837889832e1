package search

import (
	"errors"
	"fmt"
)

var ErrRetrievalUnavailable = errors.New("search: retrieval unavailable")

// RetrievalError reports a failed lookup. Callers continue without context.
type RetrievalError struct {
	Mode       string
	StatusCode int
	Err        error
}

func (e *RetrievalError) Error() string {
	msg := "retrieval"
	if e.Mode != "" {
		msg += " (" + e.Mode + ")"
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": http %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

func (e *RetrievalError) Is(target error) bool {
	return target == ErrRetrievalUnavailable
}
