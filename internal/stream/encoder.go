package stream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agrilab/agrilab-go/internal/util"
)

// Wire-level names shared by encoder and decoder.
const (
	PartContentType = "application/pdf"

	HeaderTotalCount = "X-Agrilab-Total-Count"
	HeaderItemName   = "X-Agrilab-Item-Name"
	HeaderItemID     = "X-Agrilab-Item-Id"
	HeaderItemIndex  = "X-Agrilab-Item-Index"
)

// NewBoundary returns a boundary token unique to one job. The
// nanosecond timestamp plus a UUID suffix keeps it from colliding with
// any byte sequence inside a rendered document's header region.
func NewBoundary() string {
	return fmt.Sprintf("agrilab-%d-%s", time.Now().UnixNano(), uuid.NewString())
}

// SetResponseHeaders declares the boundary and the job's total item
// count on the response, before the first part is written. The total is
// the job's total, not the delivered count: skips are not known ahead
// of time.
func SetResponseHeaders(h http.Header, boundary string, total int) {
	h.Set("Content-Type", fmt.Sprintf("multipart/mixed; boundary=%s", boundary))
	h.Set(HeaderTotalCount, fmt.Sprintf("%d", total))
}

// Encoder serializes rendered parts onto a single response writer. It
// is the only writer to the response for the duration of the job.
//
// Backpressure comes from the transport itself: Write blocks once the
// connection's send buffer is full, which suspends the whole pipeline
// because the producer's channel holds at most one further part.
type Encoder struct {
	w        io.Writer
	flusher  http.Flusher
	boundary string
	total    int
	sent     int
}

func NewEncoder(w io.Writer, boundary string, total int) *Encoder {
	enc := &Encoder{w: w, boundary: boundary, total: total}
	if f, ok := w.(http.Flusher); ok {
		enc.flusher = f
	}
	return enc
}

// EncodeAll drains the producer's channel onto the wire. On clean
// completion it writes the terminating boundary. On cancellation or a
// write failure it stops at item granularity, writes no terminator, and
// returns how many parts made it out; the caller must not write to the
// response afterwards.
func (e *Encoder) EncodeAll(ctx context.Context, parts <-chan Part) (int, error) {
	for {
		select {
		case <-ctx.Done():
			return e.sent, ctx.Err()
		case part, ok := <-parts:
			if !ok {
				return e.sent, e.Close()
			}
			// Do not start a part once disconnect is observed.
			if ctx.Err() != nil {
				return e.sent, ctx.Err()
			}
			if err := e.WritePart(part); err != nil {
				return e.sent, err
			}
		}
	}
}

// WritePart frames one part: boundary line, per-part headers, blank
// line, raw document bytes. Each part is flushed so the client sees
// parts as they complete rather than when the job ends.
func (e *Encoder) WritePart(part Part) error {
	name := util.EncodeDisplayName(part.DisplayName)

	var head bytes.Buffer
	if e.sent > 0 {
		// Bodies are raw bytes; the CRLF that separates a body from
		// the next boundary belongs to the framing, not the body.
		head.WriteString("\r\n")
	}
	fmt.Fprintf(&head, "--%s\r\n", e.boundary)
	fmt.Fprintf(&head, "Content-Type: %s\r\n", PartContentType)
	fmt.Fprintf(&head, "Content-Disposition: attachment; filename=\"%s.pdf\"\r\n", name)
	fmt.Fprintf(&head, "%s: %s\r\n", HeaderItemName, name)
	fmt.Fprintf(&head, "%s: %s\r\n", HeaderItemID, part.ID)
	fmt.Fprintf(&head, "%s: %d\r\n", HeaderItemIndex, part.Index)
	fmt.Fprintf(&head, "%s: %d\r\n", HeaderTotalCount, e.total)
	fmt.Fprintf(&head, "Content-Length: %d\r\n\r\n", len(part.Data))

	if _, err := e.w.Write(head.Bytes()); err != nil {
		return &TransportWriteError{Err: err}
	}
	if _, err := e.w.Write(part.Data); err != nil {
		return &TransportWriteError{Err: err}
	}
	e.sent++
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}

// Close emits the terminating boundary sequence. Only called on normal
// completion; a cancelled job ends the response without it.
func (e *Encoder) Close() error {
	if _, err := fmt.Fprintf(e.w, "\r\n--%s--\r\n", e.boundary); err != nil {
		return &TransportWriteError{Err: err}
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}

// Sent reports how many parts have been written so far.
func (e *Encoder) Sent() int { return e.sent }
