package judge

import "errors"

// ErrorKind is the small, closed set of error kinds the core surfaces to callers.
// Code/Reason/HTTPStatus follow the wire contract in the error envelope: code 5 is
// intentionally unused, matching the gap in the original numbering.
type ErrorKind int

const (
	KindInvalidArgument ErrorKind = iota + 1
	KindInvalidState
	KindNotFound
	KindRateLimit
	_ // 5: reserved, never emitted
	KindInternal
)

func (k ErrorKind) Code() int { return int(k) }

func (k ErrorKind) Reason() string {
	switch k {
	case KindInvalidArgument:
		return "ERR_INVALID_ARGUMENT"
	case KindInvalidState:
		return "ERR_INVALID_STATE"
	case KindNotFound:
		return "ERR_NOT_FOUND"
	case KindRateLimit:
		return "ERR_RATE_LIMIT"
	case KindInternal:
		return "ERR_INTERNAL"
	default:
		return "ERR_UNKNOWN"
	}
}

// HTTPStatus returns the status code the HTTP surface should use for this kind.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return 404
	case KindInternal:
		return 500
	default:
		return 400
	}
}

// CoreError is the error type every core operation returns on failure.
type CoreError struct {
	Kind    ErrorKind
	Message string
}

func (e *CoreError) Error() string { return e.Message }

// Is allows errors.Is(err, judge.ErrNotFound(...)) style comparisons by kind.
func (e *CoreError) Is(target error) bool {
	var ce *CoreError
	if errors.As(target, &ce) {
		return ce.Kind == e.Kind
	}
	return false
}

func newErr(kind ErrorKind, msg string) *CoreError { return &CoreError{Kind: kind, Message: msg} }

func ErrInvalidArgument(msg string) *CoreError { return newErr(KindInvalidArgument, msg) }
func ErrInvalidState(msg string) *CoreError    { return newErr(KindInvalidState, msg) }
func ErrNotFound(msg string) *CoreError        { return newErr(KindNotFound, msg) }
func ErrRateLimit(msg string) *CoreError       { return newErr(KindRateLimit, msg) }
func ErrInternal(msg string) *CoreError        { return newErr(KindInternal, msg) }

// KindOf extracts the ErrorKind from err, defaulting to KindInternal for
// errors that did not originate from this package.
func KindOf(err error) ErrorKind {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}
