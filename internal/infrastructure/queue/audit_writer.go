package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/kpitools/webapps/internal/core/domain"
	"github.com/kpitools/webapps/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// AuditWriter persists audit entries asynchronously through a fixed set of
// workers, sharded by actor with consistent hashing so each actor's trail
// stays in operation order. It implements ports.AuditRepository, wrapping the
// synchronous store, and keeps audit writes off the request path.
type AuditWriter struct {
	workers []chan *domain.AuditEntry
	sink    ports.AuditRepository
	log     zerolog.Logger
}

// NewAuditWriter creates an AuditWriter with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditWriter(numWorkers int, sink ports.AuditRepository, log zerolog.Logger) *AuditWriter {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	w := &AuditWriter{
		workers: make([]chan *domain.AuditEntry, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range w.workers {
		w.workers[i] = make(chan *domain.AuditEntry, channelBuffer)
	}
	return w
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (w *AuditWriter) Start(ctx context.Context) {
	for i, ch := range w.workers {
		go w.runWorker(ctx, i, ch)
	}
}

// Insert enqueues the entry to the worker responsible for its actor and
// returns immediately. The call blocks only when the shard buffer is full.
func (w *AuditWriter) Insert(_ context.Context, entry *domain.AuditEntry) error {
	w.workers[w.shardIndex(entry.Actor)] <- entry
	return nil
}

// shardIndex maps an actor deterministically to a worker index.
func (w *AuditWriter) shardIndex(actor string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actor))
	return int(h.Sum32()) % len(w.workers)
}

func (w *AuditWriter) runWorker(ctx context.Context, id int, ch <-chan *domain.AuditEntry) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			if err := w.sink.Insert(ctx, entry); err != nil {
				w.log.Error().Err(err).
					Str("actor", entry.Actor).
					Str("operation", entry.Operation).
					Int("worker_id", id).
					Msg("audit write failed")
			}
		}
	}
}
