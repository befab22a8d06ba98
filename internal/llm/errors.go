package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind classifies a failed LLM or TTS call for retry decisions.
type Kind int

const (
	// KindTransient covers network failures, 5xx responses and soft
	// timeouts. Callers may retry.
	KindTransient Kind = iota
	// KindPermanent covers 4xx responses and malformed requests.
	KindPermanent
	// KindCancelled means the session context was cancelled.
	KindCancelled
)

// String converts the enum to string
func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindPermanent:
		return "permanent"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error wraps an upstream failure with its classification.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a classified error for the given operation.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the classification from err, defaulting to transient
// for unclassified failures so the retry budget still bounds them.
func KindOf(err error) Kind {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	return KindTransient
}

// IsRetryable reports whether a retry attempt may help.
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransient
}

// Classify wraps a raw SDK error with the right kind. The OpenAI-family
// SDKs surface HTTP status codes only in the error text, so this matches
// on the code markers they actually emit.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return NewError(KindCancelled, op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindTransient, op, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return NewError(KindTransient, op, err)
	}

	msg := err.Error()
	for _, marker := range []string{"status code: 4", "status: 4", "code: 4"} {
		if strings.Contains(msg, marker) {
			// 429 is rate limiting, worth another attempt
			if strings.Contains(msg, "429") {
				return NewError(KindTransient, op, err)
			}
			return NewError(KindPermanent, op, err)
		}
	}
	return NewError(KindTransient, op, err)
}
