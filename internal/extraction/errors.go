package extraction

import (
	"errors"
	"fmt"
)

// Kind classifies why an analysis call failed.
type Kind int

const (
	KindOther Kind = iota
	KindMissingCredential
	KindUnauthorized
	KindRateLimited
	KindServer
	KindTransport
	KindMalformed
	KindEmpty
)

// Sentinels for errors.Is checks against an *Error.
var (
	ErrMissingCredential = errors.New("API key not set")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrRateLimited       = errors.New("rate limited")
	ErrServer            = errors.New("server error")
	ErrTransport         = errors.New("transport error")
	ErrMalformed         = errors.New("malformed response")
	ErrEmpty             = errors.New("empty response")
)

func (k Kind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing_credential"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server"
	case KindTransport:
		return "transport"
	case KindMalformed:
		return "malformed"
	case KindEmpty:
		return "empty"
	default:
		return "other"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindMissingCredential:
		return ErrMissingCredential
	case KindUnauthorized:
		return ErrUnauthorized
	case KindRateLimited:
		return ErrRateLimited
	case KindServer:
		return ErrServer
	case KindTransport:
		return ErrTransport
	case KindMalformed:
		return ErrMalformed
	case KindEmpty:
		return ErrEmpty
	default:
		return nil
	}
}

// hint is appended to the message shown to the user.
func (k Kind) hint() string {
	switch k {
	case KindUnauthorized:
		return " (check your API key)"
	case KindRateLimited:
		return " (rate limited, try again later)"
	case KindServer:
		return " (API server error, try again later)"
	case KindTransport:
		return " (check network connection)"
	default:
		return ""
	}
}

// Retryable reports whether the call may succeed if repeated.
func (k Kind) Retryable() bool {
	return k == KindRateLimited || k == KindServer || k == KindTransport
}

// Error is the single error type returned by an Analyzer.
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	var msg string
	switch {
	case e.StatusCode != 0:
		msg = fmt.Sprintf("analysis API error (%d)%s", e.StatusCode, e.Kind.hint())
	default:
		msg = "analysis failed" + e.Kind.hint()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// classifyStatus maps a non-success HTTP status to a Kind.
func classifyStatus(code int) Kind {
	switch {
	case code == 401 || code == 403:
		return KindUnauthorized
	case code == 429:
		return KindRateLimited
	case code >= 500:
		return KindServer
	default:
		return KindOther
	}
}
