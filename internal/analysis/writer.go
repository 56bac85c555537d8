package analysis

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"DealVault/internal/blob"
	"DealVault/internal/metrics"
)

// writer persists payloads on its own goroutine so mutations never wait on
// I/O. Payloads are whole collections, so a newer pending payload simply
// replaces an older one that has not been written yet.
type writer struct {
	blob    blob.Store
	key     string
	log     zerolog.Logger
	metrics *metrics.Metrics

	mu         sync.Mutex
	cond       *sync.Cond
	payload    string
	hasPending bool
	writing    bool
	closed     bool
	done       chan struct{}
}

func newWriter(b blob.Store, key string, log zerolog.Logger, m *metrics.Metrics) *writer {
	w := &writer{
		blob:    b,
		key:     key,
		log:     log,
		metrics: m,
		done:    make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

func (w *writer) enqueue(payload string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.log.Warn().Str("key", w.key).Msg("writer closed, payload not persisted")
		return
	}
	w.payload = payload
	w.hasPending = true
	w.cond.Broadcast()
}

func (w *writer) run() {
	defer close(w.done)
	w.mu.Lock()
	for {
		for !w.hasPending && !w.closed {
			w.cond.Wait()
		}
		if !w.hasPending {
			w.mu.Unlock()
			return
		}
		payload := w.payload
		w.hasPending = false
		w.writing = true
		w.mu.Unlock()

		w.write(payload)

		w.mu.Lock()
		w.writing = false
		w.cond.Broadcast()
	}
}

// write performs one Set. Failures are reported and dropped: the in-memory
// state stays authoritative and the next mutation writes the full collection again.
func (w *writer) write(payload string) {
	start := time.Now()
	err := w.blob.Set(w.key, payload)
	w.metrics.PersistDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		w.metrics.PersistFailures.Inc()
		w.log.Error().Err(err).Str("key", w.key).Msg("failed to persist analyses")
		return
	}
	w.metrics.PersistWrites.Inc()
	w.log.Debug().Str("key", w.key).Int("bytes", len(payload)).Msg("analyses persisted")
}

// flush blocks until every enqueued payload has been written or dropped.
func (w *writer) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.hasPending || w.writing {
		w.cond.Wait()
	}
}

// close drains pending work and stops the goroutine.
func (w *writer) close() {
	w.mu.Lock()
	w.closed = true
	w.cond.Broadcast()
	w.mu.Unlock()
	<-w.done
}
