package session

import "errors"

var (
	// ErrStaleResult is returned when a fetch result was superseded by a
	// newer request. The result is discarded.
	ErrStaleResult = errors.New("stale fetch result")

	// ErrNoSession is returned by commands that need an active session
	// (Loading, Playing or Error).
	ErrNoSession = errors.New("no active session")

	// ErrNotRetryable is returned by Retry and Cancel outside the Error phase.
	ErrNotRetryable = errors.New("session is not in an error state")
)

// ErrStopped is returned by Controller calls made after Run has returned.
var ErrStopped = errors.New("controller stopped")

// ErrAlreadyRunning is returned when Run is called twice.
var ErrAlreadyRunning = errors.New("controller already running")
