package monitoring

import (
	"context"
	"sync"
	"time"

	"github.com/transpopilot/backend/internal/domain"
	"github.com/transpopilot/backend/internal/logger"
)

const (
	// DefaultQueueSize bounds entries held before authentication
	DefaultQueueSize = 100

	writeTimeout = 5 * time.Second
)

// Sink persists API call logs
type Sink interface {
	SaveAPILogs(ctx context.Context, logs []domain.APICallLog) error
}

// Recorder hands API call logs to a sink.
//
// Until MarkAuthenticated is called entries wait in a bounded queue, dropping the
// oldest when full. MarkAuthenticated flushes the queue once; later entries are
// written directly. Writes run in the background; Wait blocks until they finish.
type Recorder struct {
	sink     Sink
	metrics  *Metrics
	capacity int

	mu            sync.Mutex
	queue         []domain.APICallLog
	authenticated bool

	wg sync.WaitGroup
}

// NewRecorder creates a recorder. A non-positive capacity uses DefaultQueueSize.
func NewRecorder(sink Sink, capacity int, metrics *Metrics) *Recorder {
	if capacity <= 0 {
		capacity = DefaultQueueSize
	}
	return &Recorder{
		sink:     sink,
		metrics:  metrics,
		capacity: capacity,
		queue:    make([]domain.APICallLog, 0, capacity),
	}
}

// Record queues or writes one entry
func (r *Recorder) Record(entry domain.APICallLog) {
	r.mu.Lock()
	if !r.authenticated {
		if len(r.queue) >= r.capacity {
			copy(r.queue, r.queue[1:])
			r.queue = r.queue[:len(r.queue)-1]
			r.metrics.logDropped()
		}
		r.queue = append(r.queue, entry)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	r.write(context.Background(), []domain.APICallLog{entry})
}

// MarkAuthenticated switches the recorder to direct writes and flushes the queue.
// Only the first call has an effect.
func (r *Recorder) MarkAuthenticated(ctx context.Context) {
	r.mu.Lock()
	if r.authenticated {
		r.mu.Unlock()
		return
	}
	r.authenticated = true
	pending := r.queue
	r.queue = nil
	r.mu.Unlock()

	if len(pending) > 0 {
		logger.Info("flushing queued API call logs", "count", len(pending))
		r.write(ctx, pending)
	}
}

// Pending returns the number of queued entries
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Wait blocks until all background writes complete.
// Call during graceful shutdown to avoid dropped logs.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) write(parent context.Context, entries []domain.APICallLog) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(WithoutMonitoring(context.WithoutCancel(parent)), writeTimeout)
		defer cancel()
		if err := r.sink.SaveAPILogs(ctx, entries); err != nil {
			r.metrics.logWriteFailed()
			logger.Warn("failed to save API call logs", "count", len(entries), "error", err)
		}
	}()
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ctx context.Context, logs []domain.APICallLog) error

// SaveAPILogs calls f(ctx, logs)
func (f SinkFunc) SaveAPILogs(ctx context.Context, logs []domain.APICallLog) error {
	return f(ctx, logs)
}
