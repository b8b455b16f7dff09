package khatm

import "errors"

// ErrNotFound indicates the khatm or session does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition indicates a session was asked to leave a state it is
// no longer in; the caller's view of the session is stale.
var ErrInvalidTransition = errors.New("invalid session transition")

// ErrInvalidRequest indicates a malformed creation or update request
// (empty title, bad reading time, unknown reading mode).
var ErrInvalidRequest = errors.New("invalid request")
