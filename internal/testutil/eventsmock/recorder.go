package eventsmock

import (
	"context"
	"sync"

	"lenme-backend/internal/events"
)

// Recorder is an events.Publisher that keeps everything in memory so tests
// can assert on what was published. Set PublishErr to simulate a broker
// failure.
type Recorder struct {
	mu         sync.Mutex
	recorded   []events.Event
	PublishErr error
}

func (r *Recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.PublishErr != nil {
		return r.PublishErr
	}
	r.recorded = append(r.recorded, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// All returns a copy of every recorded event in publish order.
func (r *Recorder) All() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.recorded...)
}

// OfType filters the recorded events by type.
func (r *Recorder) OfType(t events.Type) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.recorded {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

var _ events.Publisher = (*Recorder)(nil)
