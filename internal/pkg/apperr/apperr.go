// Package apperr carries the error taxonomy every core operation reports
// through: precondition (wrong lifecycle state), ownership (wrong actor),
// not-found (unresolved id) and already-done (one-shot operation repeated).
// All four are local and non-retryable; handlers surface them verbatim.
// Collaborator failures (mail, valuation) never enter this taxonomy.
package apperr

import "errors"

// Kind classifies an application error.
type Kind int

const (
	KindUnknown Kind = iota
	KindPrecondition
	KindOwnership
	KindNotFound
	KindAlreadyDone
)

// Error is a categorized application error.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Precondition reports an operation attempted in the wrong case status.
func Precondition(msg string) error {
	return &Error{Kind: KindPrecondition, Message: msg}
}

// Ownership reports an actor acting on an entity it does not own.
func Ownership(msg string) error {
	return &Error{Kind: KindOwnership, Message: msg}
}

// NotFound reports an unresolved case/offer/selection id.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// AlreadyDone reports a one-shot operation attempted a second time.
func AlreadyDone(msg string) error {
	return &Error{Kind: KindAlreadyDone, Message: msg}
}

// KindOf returns the Kind of err, or KindUnknown for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StatusCode maps an error to its HTTP status code.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindPrecondition:
		return 409
	case KindOwnership:
		return 403
	case KindNotFound:
		return 404
	case KindAlreadyDone:
		return 409
	default:
		return 500
	}
}
