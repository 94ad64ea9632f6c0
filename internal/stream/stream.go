// Package stream implements the bulk report delivery pipeline: a
// producer that renders one document at a time, an encoder that frames
// rendered documents onto a single HTTP response as multipart parts,
// and a decoder that reconstructs the documents on the receiving side.
//
// A job is one-shot. The producer hands parts to the encoder over a
// channel of capacity one, so at most one rendered document is waiting
// for the transport at any instant. Cancellation is cooperative: both
// sides check the context between items, never mid-item.
package stream

// RecordRef identifies one unit of work within a Job. The display name
// is what the saved report file is named after (typically the farmer).
type RecordRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Job is one bulk-generation request over an ordered set of records.
// It lives for the duration of a single streaming response.
type Job struct {
	Total int
	Items []RecordRef
}

// Part is one rendered document together with its identity. The
// producer emits parts in job order; the decoder reconstructs them in
// wire order.
type Part struct {
	Index       int
	ID          string
	DisplayName string
	Data        []byte
}

// RenderFunc produces the finished document bytes for one record. It
// may be slow and may fail per record; failures are skipped, not fatal.
type RenderFunc func(ref RecordRef) ([]byte, error)
