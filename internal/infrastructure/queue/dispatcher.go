package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/universeos/dashboard/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes layout audit events to a fixed set of workers using
// consistent hashing on the layout id, so records for one layout are written
// in emission order.
type Dispatcher struct {
	workers []chan ports.LayoutEvent
	sink    ports.LayoutEventSink
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink ports.LayoutEventSink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.LayoutEvent, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.LayoutEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its layout id. The
// call never blocks: when the worker's buffer is full (or workers already
// stopped during shutdown) the event is dropped and logged, so the audit
// path cannot stall a request goroutine.
func (d *Dispatcher) Enqueue(event ports.LayoutEvent) {
	select {
	case d.workers[d.shardIndex(event.LayoutID)] <- event:
	default:
		d.log.Warn().
			Str("layout_id", event.LayoutID).
			Str("action", event.Action).
			Msg("audit event dropped, worker queue full")
	}
}

// shardIndex maps a layout id deterministically to a worker index.
func (d *Dispatcher) shardIndex(layoutID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(layoutID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.LayoutEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.sink.Record(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("layout_id", event.LayoutID).
					Int("worker_id", id).
					Msg("audit record failed")
			}
		}
	}
}
