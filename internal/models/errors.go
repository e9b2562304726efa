package models

import (
	"errors"
	"fmt"
)

// Error taxonomy (spec §7). Each kind wraps an underlying cause and is
// recognized with errors.As/errors.Is by the scheduler to decide retry vs
// terminal handling.

// TransportError wraps an HTTP/UDP network failure (connect, read, write,
// timeout). The scheduler treats it as an attempt failure; the task
// re-enters the retry path.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ErrWorkerBusy indicates the Worker's execution slot was not idle when a
// /task request arrived. Retryable.
var ErrWorkerBusy = errors.New("worker busy")

// FFmpegFailure wraps an ffmpeg subprocess failure (non-zero exit, or probe
// failure). Retryable.
type FFmpegFailure struct {
	Message string
}

func (e *FFmpegFailure) Error() string { return e.Message }

// OutputValidationFailure indicates the downloaded result file is missing
// or zero-length. Retryable. The scheduler reports the Python original's
// Chinese message strings; English equivalents are declared beside them
// below.
type OutputValidationFailure struct {
	Message string
}

func (e *OutputValidationFailure) Error() string { return e.Message }

// Output-validation error messages (spec §4.3). Kept verbatim from the
// Python original (`core/controller.py`) alongside an English equivalent.
const (
	ErrMsgOutputMissingZH = "输出文件不存在"
	ErrMsgOutputEmptyZH   = "输出文件大小为 0"
	ErrMsgOutputMissing   = "output file does not exist"
	ErrMsgOutputEmpty     = "output file size is 0"
)

// ConfigurationError is fatal to the process that encounters it (missing
// ffmpeg binary, unwritable work dir, port bind failure). Never retried.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ProtocolError indicates malformed JSON or a truncated upload. The Worker
// returns it as an HTTP 4xx/5xx with an "error" field; the Controller
// treats it as an attempt failure.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string { return e.Message }

// ErrNoWorkers is returned when the scheduler is asked to dispatch over an
// empty worker set (spec §8 B2).
var ErrNoWorkers = errors.New("no workers available")
