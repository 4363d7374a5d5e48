package search

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInvalidURL Kind = iota + 1
	KindNetworkFailure
	KindBadStatus
	KindMalformedJSON
)

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindNetworkFailure:
		return "network_failure"
	case KindBadStatus:
		return "bad_status"
	case KindMalformedJSON:
		return "malformed_json"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is; an *Error matches the sentinel of its Kind.
var (
	ErrInvalidURL     = errors.New("invalid url")
	ErrNetworkFailure = errors.New("network failure")
	ErrBadStatus      = errors.New("bad status")
	ErrMalformedJSON  = errors.New("malformed json")
)

// Error is the typed failure surfaced by the fetcher and decoder.
type Error struct {
	Kind Kind
	// Status is the HTTP status code for KindBadStatus.
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindBadStatus:
		return fmt.Sprintf("%s: %d", ErrBadStatus, e.Status)
	default:
		if e.Err == nil {
			return e.sentinel().Error()
		}
		return fmt.Sprintf("%s: %v", e.sentinel(), e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindInvalidURL:
		return ErrInvalidURL
	case KindNetworkFailure:
		return ErrNetworkFailure
	case KindBadStatus:
		return ErrBadStatus
	case KindMalformedJSON:
		return ErrMalformedJSON
	default:
		return nil
	}
}

func invalidURL(err error) error {
	return &Error{Kind: KindInvalidURL, Err: err}
}

func networkFailure(err error) error {
	return &Error{Kind: KindNetworkFailure, Err: err}
}

func badStatus(code int) error {
	return &Error{Kind: KindBadStatus, Status: code}
}

func malformedJSON(err error) error {
	return &Error{Kind: KindMalformedJSON, Err: err}
}

// KindOf reports the Kind of err, or 0 when err is not a search error.
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return 0
}
