package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies playback source failures
type ErrorKind string

const (
	// KindAuthExpired means the credentials were rejected
	KindAuthExpired ErrorKind = "auth_expired"
	// KindNetworkTimeout means the request did not complete in time
	KindNetworkTimeout ErrorKind = "network_timeout"
	// KindRateLimited means the source asked us to slow down
	KindRateLimited ErrorKind = "rate_limited"
	// KindMalformedResponse means required fields were missing or unparsable
	KindMalformedResponse ErrorKind = "malformed_response"
	// KindUnavailable covers every other transport failure
	KindUnavailable ErrorKind = "unavailable"
)

// Sentinel errors matching each ErrorKind through errors.Is.
var (
	ErrAuthExpired       = errors.New("authorization expired")
	ErrNetworkTimeout    = errors.New("network timeout")
	ErrRateLimited       = errors.New("rate limited")
	ErrMalformedResponse = errors.New("malformed response")
	ErrUnavailable       = errors.New("source unavailable")

	// ErrDeviceFault is wrapped by every renderer device failure
	ErrDeviceFault = errors.New("display device fault")
)

var kindSentinels = map[ErrorKind]error{
	KindAuthExpired:       ErrAuthExpired,
	KindNetworkTimeout:    ErrNetworkTimeout,
	KindRateLimited:       ErrRateLimited,
	KindMalformedResponse: ErrMalformedResponse,
	KindUnavailable:       ErrUnavailable,
}

// SourceError is returned by PlaybackSource implementations
type SourceError struct {
	Kind ErrorKind
	Err  error
}

// NewSourceError wraps err with the given kind
func NewSourceError(kind ErrorKind, err error) *SourceError {
	return &SourceError{Kind: kind, Err: err}
}

func (e *SourceError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of this error's kind
func (e *SourceError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf returns the kind of a source error, or KindUnavailable for anything else
func KindOf(err error) ErrorKind {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnavailable
}
