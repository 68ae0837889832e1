package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies why a completion attempt failed.
type Kind int

const (
	KindTimeout Kind = iota + 1
	KindConnection
	KindServer
	KindRateLimit
	KindAuth
	KindNotFound
	KindBadRequest
	KindMalformed
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindServer:
		return "server"
	case KindRateLimit:
		return "rate_limit"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindMalformed:
		return "malformed"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Transient reports whether another attempt may succeed.
func (k Kind) Transient() bool {
	switch k {
	case KindTimeout, KindConnection, KindServer, KindRateLimit:
		return true
	}
	return false
}

var (
	ErrTransient         = errors.New("llm: transient completion failure")
	ErrFatal             = errors.New("llm: fatal completion failure")
	ErrMalformedResponse = errors.New("llm: malformed completion response")
)

// CompletionError is returned by senders and by Client.Complete. It matches
// exactly one of ErrTransient, ErrFatal or ErrMalformedResponse via errors.Is.
type CompletionError struct {
	Kind       Kind
	StatusCode int
	Attempts   int
	Body       string
	Err        error
}

func (e *CompletionError) Error() string {
	msg := "completion " + e.Kind.String()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (http %d)", e.StatusCode)
	}
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	} else if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

func (e *CompletionError) Is(target error) bool {
	switch target {
	case ErrTransient:
		return e.Kind.Transient()
	case ErrMalformedResponse:
		return e.Kind == KindMalformed
	case ErrFatal:
		return !e.Kind.Transient() && e.Kind != KindMalformed
	}
	return false
}

func kindForStatus(code int) Kind {
	switch {
	case code == http.StatusTooManyRequests:
		return KindRateLimit
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return KindTimeout
	case code >= 500:
		return KindServer
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusNotFound:
		return KindNotFound
	default:
		return KindBadRequest
	}
}

// kindForTransport classifies a failure that produced no HTTP response. A
// caller that went away is not retried.
func kindForTransport(err error) Kind {
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindConnection
}

func newTransportError(err error) *CompletionError {
	return &CompletionError{Kind: kindForTransport(err), Err: err}
}

func malformed(format string, args ...any) *CompletionError {
	return &CompletionError{Kind: KindMalformed, Err: fmt.Errorf(format, args...)}
}
