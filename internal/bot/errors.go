package bot

import (
	"errors"
	"fmt"
)

// CommandError is a command failure. User facing errors are shown to the
// caller as they are, everything else is replaced with a generic message.
type CommandError struct {
	Message    string
	UserFacing bool
}

func (e *CommandError) Error() string {
	return e.Message
}

func UserError(format string, args ...any) error {
	return &CommandError{Message: fmt.Sprintf(format, args...), UserFacing: true}
}

// ReplyText is what the caller sees when a command fails
func ReplyText(err error, fallback string) string {
	var commandErr *CommandError
	if errors.As(err, &commandErr) && commandErr.UserFacing {
		return "❌ " + commandErr.Message
	}
	return fallback
}
