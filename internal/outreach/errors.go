package outreach

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/themobileprof/mamacare-be/pkg/twilio"
)

// Kind classifies a failed callable operation
type Kind string

const (
	InvalidArgument    Kind = "invalid-argument"
	FailedPrecondition Kind = "failed-precondition"
	PermissionDenied   Kind = "permission-denied"
	Unauthenticated    Kind = "unauthenticated"
	Internal           Kind = "internal"
)

// Error is returned by callable operations. Message is safe to show to
// dashboard users.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to a response status
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case InvalidArgument:
		return http.StatusBadRequest
	case FailedPrecondition:
		return http.StatusPreconditionFailed
	case PermissionDenied:
		return http.StatusForbidden
	case Unauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// AsError returns err as an *Error, wrapping unknown errors as internal
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: Internal, Message: err.Error(), Err: err}
}

// carrierError translates a carrier failure into a typed error
func carrierError(err error) *Error {
	if errors.Is(err, twilio.ErrNotConfigured) {
		return &Error{Kind: FailedPrecondition, Message: "Twilio not configured", Err: err}
	}
	switch twilio.ErrorCode(err) {
	case twilio.CodeNumberNotVerified:
		return &Error{Kind: PermissionDenied, Message: "Number not verified on Twilio trial. Add it at console.twilio.com → Verified Caller IDs.", Err: err}
	case twilio.CodeUnauthenticated:
		return &Error{Kind: Unauthenticated, Message: "Twilio auth failed. Check TWILIO_SID and TWILIO_TOKEN.", Err: err}
	case twilio.CodeInvalidToNumber:
		return &Error{Kind: InvalidArgument, Message: "Invalid 'To' number. Ensure phone is in +91XXXXXXXXXX format.", Err: err}
	}
	return &Error{Kind: Internal, Message: err.Error(), Err: err}
}
