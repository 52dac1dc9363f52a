package ai

import "errors"

// ErrUnavailable indicates the reasoning service could not be reached or
// returned a transport-level error.
var ErrUnavailable = errors.New("reasoning service unavailable")

// ErrBadReply indicates the reasoning service replied but the body violated
// the JSON contract. Surfaced to callers the same way as ErrUnavailable;
// the distinction exists for logging only.
var ErrBadReply = errors.New("reasoning service reply violates schema")
