package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/teamhub/gatekeeper/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher writes audit events asynchronously through a fixed set of
// workers, sharded by user key so one user's events are recorded in the
// order they happened. Request handling never blocks on the audit store.
type Dispatcher struct {
	workers  []chan ports.AuditEvent
	recorder ports.AuditRecorder
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, recorder ports.AuditRecorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.AuditEvent, numWorkers),
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its user key. When
// that worker's buffer is full the event is dropped with a warning rather
// than stalling the request.
func (d *Dispatcher) Enqueue(event ports.AuditEvent) {
	select {
	case d.workers[d.shardIndex(event.UserKey)] <- event:
	default:
		d.log.Warn().
			Str("user_key", event.UserKey).
			Str("kind", event.Kind).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a user key deterministically to a worker index.
func (d *Dispatcher) shardIndex(userKey string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userKey))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.AuditEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.recorder.Record(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("user_key", event.UserKey).
					Str("kind", event.Kind).
					Int("worker_id", id).
					Msg("audit event write failed")
			}
		}
	}
}
