package rbac

import "errors"

// Sentinel errors raised by the authorization engine and the membership
// services built on it. Both are terminal for the calling action; the HTTP
// layer maps them to 404 and 403.
var (
	// ErrNotFound means the referenced organization, project, or membership
	// does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden means the principal has no accepted membership on the
	// scope, or holds a role outside the caller's allowed set.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput means the caller supplied arguments outside the valid
	// set (e.g. neither target user nor email on an invite).
	ErrInvalidInput = errors.New("invalid input")
)
