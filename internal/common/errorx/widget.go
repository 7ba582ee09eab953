package errorx

import (
	"errors"
	"fmt"
)

var (
	// ErrNoVisuals is returned when the media lookup matched nothing
	ErrNoVisuals = errors.New("no visuals found")
	// ErrUnknownMediaType is returned for a kind that is not SLIDESHOW, VIDEO or SYLLABUS
	ErrUnknownMediaType = errors.New("unknown media type")
	// ErrEmptyInput is returned when a blank query is submitted
	ErrEmptyInput = errors.New("empty input")
	// ErrChoiceUsed is returned when a single-use offer choice is activated twice
	ErrChoiceUsed = errors.New("choice already used")
	// ErrNoSlides is returned when a slideshow is started without slides
	ErrNoSlides = errors.New("slideshow has no slides")
)

// TransportError wraps a network failure or an undecodable response body
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err for operation op
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// IsTransport reports whether err is a TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// FormatReason says why syllabus data was rejected
type FormatReason string

const (
	NotArray    FormatReason = "not_array"
	Unparseable FormatReason = "unparseable"
)

// FormatError is returned when syllabus data is not a usable array
type FormatError struct {
	Reason FormatReason
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("syllabus format error (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("syllabus format error (%s)", e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// StatusError is returned when the backend answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}
