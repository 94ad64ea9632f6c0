package stream

import (
	"context"
	"log"
	"sync"
)

// SkippedItem records one record whose rendering failed. The pipeline
// continues with the next record; the caller can inspect the list after
// the job to report the discrepancy between requested and delivered.
type SkippedItem struct {
	Ref RecordRef
	Err error
}

// Producer drives rendering over a job's records, strictly one at a
// time and in job order. Rendering of record n+1 does not begin before
// record n has been handed to the consumer, which bounds peak memory to
// roughly one document.
type Producer struct {
	job    Job
	render RenderFunc

	mu      sync.Mutex
	started bool
	skipped []SkippedItem
}

func NewProducer(job Job, render RenderFunc) *Producer {
	return &Producer{job: job, render: render}
}

// Parts starts production and returns the channel the rendered parts
// arrive on. The channel has capacity one: at most one finished part is
// ever waiting for the consumer. It is closed when the job is done or
// the context is cancelled.
//
// Returns ErrNoWork for an empty job, before any goroutine is started.
func (p *Producer) Parts(ctx context.Context) (<-chan Part, error) {
	if p.job.Total == 0 || len(p.job.Items) == 0 {
		return nil, ErrNoWork
	}

	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return nil, ErrProducerReused
	}
	p.started = true
	p.mu.Unlock()

	out := make(chan Part, 1)
	go func() {
		defer close(out)
		index := 0
		for _, ref := range p.job.Items {
			// Cancellation is checked between items. A render
			// already underway runs to completion and its result
			// is discarded by the send select below.
			if ctx.Err() != nil {
				return
			}

			data, err := p.render(ref)
			if err != nil {
				log.Printf("Skipping record %s (%q): render failed: %v", ref.ID, ref.DisplayName, err)
				p.mu.Lock()
				p.skipped = append(p.skipped, SkippedItem{Ref: ref, Err: err})
				p.mu.Unlock()
				continue
			}

			select {
			case out <- Part{Index: index, ID: ref.ID, DisplayName: ref.DisplayName, Data: data}:
				index++
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Skipped returns the records dropped so far because rendering failed.
// Safe to call after the parts channel closes.
func (p *Producer) Skipped() []SkippedItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SkippedItem, len(p.skipped))
	copy(out, p.skipped)
	return out
}
