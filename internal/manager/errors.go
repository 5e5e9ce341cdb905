package manager

import "errors"

// Typed errors returned by Manager operations. Handlers match them with
// errors.Is and translate them to user-facing replies; only
// ErrStoreUnavailable indicates a system fault (and is the only one
// logged at error level).
var (
	// ErrNotFound means a named list or referenced item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName means a list with that name (case-insensitive)
	// already exists in the chat.
	ErrDuplicateName = errors.New("duplicate list name")

	// ErrOutOfRange means a display number does not correspond to any
	// item in the current render order.
	ErrOutOfRange = errors.New("item number out of range")

	// ErrNoActiveList means the chat has no active list selected.
	ErrNoActiveList = errors.New("no active list")

	// ErrStoreUnavailable wraps persistence layer failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)
