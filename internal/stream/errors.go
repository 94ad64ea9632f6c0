package stream

import (
	"errors"
	"fmt"
)

// ErrNoWork is returned when a job has zero items. Callers should
// answer with "not found" instead of streaming zero parts.
var ErrNoWork = errors.New("stream: job has no items")

// ErrProducerReused is returned when Parts is called twice. A producer
// is forward-only and single use, matching the one-shot nature of a
// streaming job.
var ErrProducerReused = errors.New("stream: producer is single use")

// ProtocolError means the response as a whole could not be decoded,
// e.g. the boundary token is missing from the content type.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("stream: protocol error: %s", e.Reason)
}

// TransportWriteError wraps a failed write to the response. It is
// treated the same as a client disconnect: production stops and no
// terminating boundary is written.
type TransportWriteError struct {
	Err error
}

func (e *TransportWriteError) Error() string {
	return fmt.Sprintf("stream: transport write failed: %v", e.Err)
}

func (e *TransportWriteError) Unwrap() error { return e.Err }

// PartDiagnostic records one part that the decoder dropped. Dropped
// parts are not fatal to the rest of the decode.
type PartDiagnostic struct {
	Offset int    // byte offset of the part's boundary within the body
	Reason string
}
