package monitoring

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/transpopilot/backend/internal/domain"
	"github.com/transpopilot/backend/internal/logger"
)

type skipKey struct{}

// WithoutMonitoring marks ctx so that Transport passes requests made with it straight
// through. The recorder's own sink writes use it to avoid logging themselves.
func WithoutMonitoring(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipKey{}, true)
}

func isSkipped(ctx context.Context) bool {
	skip, _ := ctx.Value(skipKey{}).(bool)
	return skip
}

// Transport is an http.RoundTripper that times every backend call
type Transport struct {
	base     http.RoundTripper
	recorder *Recorder
	metrics  *Metrics
	slow     time.Duration
}

// NewTransport wraps base (http.DefaultTransport when nil). Calls slower than slow are
// logged as warnings; a zero slow disables the warning.
func NewTransport(base http.RoundTripper, recorder *Recorder, metrics *Metrics, slow time.Duration) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, recorder: recorder, metrics: metrics, slow: slow}
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if isSkipped(req.Context()) {
		return t.base.RoundTrip(req)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	elapsed := time.Since(start)

	entry := domain.APICallLog{
		ID:         uuid.NewString(),
		Method:     req.Method,
		Endpoint:   req.URL.Path,
		DurationMs: float64(elapsed.Microseconds()) / 1000,
		Timestamp:  start.UTC(),
	}
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.StatusCode = resp.StatusCode
	}

	t.metrics.observeBackend(entry.Method, entry.Endpoint, entry.StatusCode, elapsed)
	if t.slow > 0 && elapsed > t.slow {
		logger.Warn("slow backend call",
			"method", entry.Method,
			"endpoint", entry.Endpoint,
			"duration_ms", entry.DurationMs,
		)
	}
	if t.recorder != nil {
		t.recorder.Record(entry)
	}

	return resp, err
}
