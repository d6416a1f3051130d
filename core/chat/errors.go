package chat

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrBlockNotFound = errors.New("block not found")

const (
	upstreamMessage = "Sorry, I encountered an error while contacting the assistant. Please try again."
	driftMessage    = "Sorry, I encountered an error: the assistant replied in an unexpected way. Please try again."
)

// UpstreamError is returned when the model call fails for any reason.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "calling model: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// UserMessage is safe to display to the user.
func (e *UpstreamError) UserMessage() string { return upstreamMessage }

// ProtocolDriftError is returned when the model output does not match the declared tools.
type ProtocolDriftError struct {
	Tool   string
	Output Output
}

func (e *ProtocolDriftError) Error() string {
	if e.Tool != "" {
		return fmt.Sprintf("model called undeclared tool %q", e.Tool)
	}
	return fmt.Sprintf("unexpected model output %T", e.Output)
}

func (e *ProtocolDriftError) UserMessage() string { return driftMessage }
