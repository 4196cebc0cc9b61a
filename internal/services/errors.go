package services

import (
	"errors"
	"fmt"
)

// ErrPending signals that the server has accepted the job but is still
// computing the requested checkpoint. It is a retry signal, not a
// failure.
var ErrPending = errors.New("checkpoint not ready")

// InvalidInputError is returned when the server rejects a description
// before creating a job.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Message)
}

// ValidationError is returned when a draft save fails server-side
// validation. Details maps field names to their problems so the editing
// front end can attribute them.
type ValidationError struct {
	Message string
	Details map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// ServerError is returned for 5xx responses and advance rejections.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Message)
}

// Terminal reports whether err is a definitive API answer rather than a
// condition worth retrying. Pending and transport-level failures are not
// terminal; typed API errors are.
func Terminal(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, ErrPending) {
		return false
	}
	var invalid *InvalidInputError
	var validation *ValidationError
	var server *ServerError
	return errors.As(err, &invalid) || errors.As(err, &validation) || errors.As(err, &server)
}
