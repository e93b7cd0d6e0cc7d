package common

import (
	"errors"
	"fmt"
)

// Failure taxonomy for the sync core. Typing and presence writes are not
// represented here - those are logged and swallowed at the call site.
var (
	// ErrInvalidConversationKey rejects writes against an empty key.
	ErrInvalidConversationKey = errors.New("invalid conversation key")

	// ErrStoreUnavailable wraps a rejected read/write against the backing
	// store. Surfaced to the caller, never retried by the core.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUserCancelled is the normal exit path when a picker flow is
	// dismissed before the pipeline starts. It never produces a message.
	ErrUserCancelled = errors.New("cancelled by user")

	// ErrPermissionDenied is returned when contacts access is refused.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNoSession is the precondition failure for every write operation
	// when the identity provider has no current user.
	ErrNoSession = errors.New("no authenticated session")
)

// UploadError is returned once the attachment pipeline exhausts its retry
// budget. It carries the number of attempts made and the last underlying
// cause.
type UploadError struct {
	Attempts int
	Last     error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *UploadError) Unwrap() error {
	return e.Last
}
