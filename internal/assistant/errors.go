package assistant

import "errors"

var (
	// ErrInvalidInput is returned when a turn carries no text. Nothing is loaded or saved.
	ErrInvalidInput = errors.New("assistant: invalid input")
	// ErrValidation marks a turn whose doctor, day, slot or email did not match. The user is re-prompted.
	ErrValidation = errors.New("assistant: validation failure")
	// ErrInternalInconsistency marks a session whose booking state cannot be continued. The flow is reset.
	ErrInternalInconsistency = errors.New("assistant: internal inconsistency")
)
