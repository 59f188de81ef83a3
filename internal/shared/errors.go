package shared

import "errors"

var (
	// ErrNotFound indicates a referenced account, parent, or item is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument indicates a malformed or out-of-range request value.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAuthentication indicates a password or confirmation code failure.
	ErrAuthentication = errors.New("authentication failed")
	// ErrConflict indicates the operation was already completed.
	ErrConflict = errors.New("conflict")
)

// UserSafeMessage returns a message suitable for clients. Expected domain
// errors pass through verbatim; anything else collapses to a generic message
// so internal detail never leaks.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrAuthentication),
		errors.Is(err, ErrConflict):
		return err.Error()
	default:
		return "something went wrong, please try again"
	}
}
