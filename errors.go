package gatehouse

import "errors"

var (
	// ErrNotAuthorized is returned when a workflow caller lacks the
	// privilege the operation requires. Terminal, never retried.
	ErrNotAuthorized = errors.New("gatehouse: not authorized")

	// ErrInvalidInput is returned for malformed input such as an empty
	// role name. Terminal.
	ErrInvalidInput = errors.New("gatehouse: invalid input")

	// ErrDuplicateName is returned when a create collides with an
	// existing role or permission name. Terminal; surface as "already exists".
	ErrDuplicateName = errors.New("gatehouse: duplicate name")

	// ErrNotFound is returned when a referenced role, permission, or
	// user does not exist. Terminal.
	ErrNotFound = errors.New("gatehouse: not found")

	// ErrStore is returned when the persistence layer fails. Transient;
	// callers may retry with backoff.
	ErrStore = errors.New("gatehouse: store failure")
)

// IsRetryable reports whether the error is transient. Only store
// failures qualify; authorization and uniqueness errors never do.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStore)
}
