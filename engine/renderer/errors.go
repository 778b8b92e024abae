package renderer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
)

// ResourceCreationError is returned when the device rejects a creation
// request. It is fatal to startup.
type ResourceCreationError struct {
	Op       string
	Code     metadata.Result
	Messages []string
}

func (e *ResourceCreationError) Error() string {
	return formatError("resource creation failed", e.Op, e.Code, e.Messages)
}

// DrawSubmissionError is returned when a per-frame device call fails.
type DrawSubmissionError struct {
	Op       string
	Code     metadata.Result
	Messages []string
}

func (e *DrawSubmissionError) Error() string {
	return formatError("draw submission failed", e.Op, e.Code, e.Messages)
}

// DeviceRemovedError means the device is gone. Nothing created on it can be
// used again.
type DeviceRemovedError struct {
	Op   string
	Code metadata.Result
	// Reason is the status the device reports for its removal.
	Reason   metadata.Result
	Messages []string
}

func (e *DeviceRemovedError) Error() string {
	return formatError(fmt.Sprintf("device removed (reason %s)", e.Reason), e.Op, e.Code, e.Messages)
}

// DiagnosticOnlyWarning is returned when a call without a status code left
// messages in the device queue.
type DiagnosticOnlyWarning struct {
	Op       string
	Code     metadata.Result
	Messages []string
}

func (e *DiagnosticOnlyWarning) Error() string {
	return formatError("device reported messages", e.Op, e.Code, e.Messages)
}

// IsFatal reports whether err should stop the frame loop. Diagnostic-only
// warnings are not fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var warning *DiagnosticOnlyWarning
	return !errors.As(err, &warning)
}

func formatError(kind, op string, code metadata.Result, messages []string) string {
	var sb strings.Builder
	sb.WriteString(kind)
	if op != "" {
		sb.WriteString(": ")
		sb.WriteString(op)
	}
	if code != metadata.ResultSuccess {
		fmt.Fprintf(&sb, ": %s (%s)", code, code.Description())
	}
	if len(messages) > 0 {
		sb.WriteString("\n[Messages]")
		for _, m := range messages {
			sb.WriteString("\n  ")
			sb.WriteString(m)
		}
	}
	return sb.String()
}
