package http

import (
	"bytes"
	"net/http"
	"time"

	"cinescore/internal/cache"

	"go.uber.org/zap"
)

// requestKey derives the cache key from the full request signature.
// url.Values.Encode sorts by key, so the key is deterministic under
// query-parameter reordering.
func requestKey(req *http.Request) string {
	return req.URL.Path + "?" + req.URL.Query().Encode()
}

// cached wraps a read handler with a cache-aside lookup: on a hit the
// stored status and body are replayed verbatim without running the
// handler; on a miss the handler runs and its response is stored
// under the derived key for the given TTL.
func (h *Handler) cached(ttl time.Duration, keyFn func(*http.Request) string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		key := keyFn(req)
		if e, ok := h.cache.Get(req.Context(), key); ok {
			h.logger.Debug("Response cache hit", zap.String("key", key))
			if e.ContentType != "" {
				w.Header().Set("Content-Type", e.ContentType)
			}
			w.WriteHeader(e.Status)
			if _, err := w.Write(e.Body); err != nil {
				h.logger.Warn("Cached response write error", zap.Error(err))
			}
			return
		}
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, req)
		h.cache.Set(req.Context(), key, &cache.Entry{
			Status:      rec.status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.buf.Bytes(),
		}, ttl)
	}
}

// responseRecorder tees the response into a buffer so it can be
// stored after being sent to the client.
type responseRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}
