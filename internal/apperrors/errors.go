package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrChatNotFound       = errors.New("chat not found")
	ErrNotAMember         = errors.New("user is not a participant of this chat")
	ErrAlreadyMember      = errors.New("user is already a participant in this chat")
	ErrNotAGroupChat      = errors.New("cannot join one-on-one chat")
	ErrUnknownParticipant = errors.New("one or more participant users do not exist")
	ErrDuplicate          = errors.New("duplicate")

	ErrDuplicateUsername = fmt.Errorf("%w: username already exists", ErrDuplicate)
	ErrDuplicateEmail    = fmt.Errorf("%w: email already exists", ErrDuplicate)
)

// Validation wraps a reason as ErrValidation.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
