package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"shoptrack/internal/adapters/http/perf"
)

// DefaultSlowRequestMs is the threshold above which a request logs at
// WARN instead of DEBUG. SHOPTRACK_SLOW_REQUEST_MS overrides it.
const DefaultSlowRequestMs = 200

var (
	slowOnce sync.Once
	slowMs   float64
)

func slowThresholdMs() float64 {
	slowOnce.Do(func() {
		slowMs = DefaultSlowRequestMs
		if v := os.Getenv("SHOPTRACK_SLOW_REQUEST_MS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				slowMs = float64(n)
			}
		}
	})
	return slowMs
}

// requestSeq numbers requests so log lines from the same request can be
// correlated.
var requestSeq uint64

// recordedWriter captures the status code a handler writes. Instances
// are pooled; the embedded writer must be cleared before returning one.
type recordedWriter struct {
	http.ResponseWriter
	status int
}

func (w *recordedWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

var writerPool = sync.Pool{
	New: func() any { return &recordedWriter{} },
}

// Timing logs every request with its duration and, when a collector is
// wired, feeds the perf dashboard. Static assets are skipped. The
// deferred record runs even when the handler panics, so pooled writers
// are never lost.
func Timing(collector *perf.Collector) func(http.Handler) http.Handler {
	threshold := slowThresholdMs()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			id := atomic.AddUint64(&requestSeq, 1)
			rw := writerPool.Get().(*recordedWriter)
			rw.ResponseWriter = w
			rw.status = http.StatusOK

			defer func() {
				ms := float64(time.Since(start).Microseconds()) / 1000.0

				level, msg := slog.LevelDebug, "request"
				if ms >= threshold {
					level, msg = slog.LevelWarn, "slow_request"
				}
				slog.Log(r.Context(), level, msg,
					"request_id", id,
					"method", r.Method,
					"path", r.URL.Path,
					"status", rw.status,
					"duration_ms", ms,
				)

				if collector != nil {
					collector.RecordRequest(r.Method+" "+r.URL.Path, ms)
				}

				rw.ResponseWriter = nil
				writerPool.Put(rw)
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
