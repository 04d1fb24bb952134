package starboard

import "errors"

// Platform failures as classified by the Client implementation.
var (
	// ErrPermissionDenied means the bot may not read or post in a channel.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrTransient covers every other network or API failure. Nothing is
	// retried: the message is re-evaluated on its next reaction or on the
	// next startup sweep.
	ErrTransient = errors.New("transient platform error")
)
