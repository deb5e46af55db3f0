package apperr

import "errors"

// Kind classifies a domain error so the HTTP layer can derive a status code.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindForbidden
	KindConflict
	KindAuthentication
)

// Error is a domain error carrying a kind and a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or out-of-range input.
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound reports a missing entity.
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Forbidden reports an actor lacking permission for the target.
func Forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Conflict reports an operation that would violate an integrity invariant.
func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// Authentication reports that no actor identity could be established.
func Authentication(message string) error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or 0 if err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
