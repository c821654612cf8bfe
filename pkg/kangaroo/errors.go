package kangaroo

import "errors"

// Error taxonomy for the control surface. Callers classify failures with
// errors.Is; I/O failures from checkpointing wrap the underlying error
// instead.
var (
	// ErrInvalidPoint means the target public key is malformed or not on the
	// curve.
	ErrInvalidPoint = errors.New("target point is invalid or not on the curve")

	// ErrInvalidRange means the search range is empty, reversed, or does not
	// fit below the curve group order.
	ErrInvalidRange = errors.New("invalid search range")

	// ErrInvalidConfig means a thread or distinguished-bit parameter is out of
	// bounds.
	ErrInvalidConfig = errors.New("invalid solver configuration")

	// ErrNotInitialized means the operation requires a successful Init first.
	ErrNotInitialized = errors.New("solver is not initialized")

	// ErrAlreadyRunning means the operation is not permitted while workers are
	// active.
	ErrAlreadyRunning = errors.New("solver is already running")

	// ErrCorruptCheckpoint means a checkpoint file is structurally invalid.
	ErrCorruptCheckpoint = errors.New("corrupt checkpoint file")

	// ErrRangeMismatch means a checkpoint was taken for a different target or
	// range than the current configuration.
	ErrRangeMismatch = errors.New("checkpoint range or target mismatch")
)
