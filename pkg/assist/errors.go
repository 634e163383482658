package assist

import "errors"

var (
	// ErrInvalidFrame is returned for frames that cannot be processed.
	ErrInvalidFrame = errors.New("assist: invalid frame")
	// ErrWrongMode is returned for operations the current mode does not support.
	ErrWrongMode = errors.New("assist: not available in current mode")
	// ErrUnknownMode is returned by ParseMode.
	ErrUnknownMode = errors.New("assist: unknown mode")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("assist: session closed")
)
