package cache

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// cachedResponse is the stored form of a response.
type cachedResponse struct {
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// Middleware serves repeated GET requests from c. Only 200 responses are
// stored; errors and other methods pass straight through. Responses carry
// X-Cache: HIT or MISS.
func Middleware(c Cache, keyer Keyer, policy Policy) func(http.Handler) http.Handler {
	if keyer == nil {
		keyer = DefaultKeyer{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || !policy.ShouldCache() {
				next.ServeHTTP(w, r)
				return
			}

			key, err := keyer.Key(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if raw, ok := c.Get(r.Context(), key); ok {
				var cached cachedResponse
				if json.Unmarshal(raw, &cached) == nil {
					if cached.ContentType != "" {
						w.Header().Set("Content-Type", cached.ContentType)
					}
					w.Header().Set("X-Cache", "HIT")
					w.WriteHeader(http.StatusOK)
					_, _ = w.Write(cached.Body)
					return
				}
				_ = c.Delete(r.Context(), key)
			}

			w.Header().Set("X-Cache", "MISS")

			var body bytes.Buffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status != http.StatusOK {
				return
			}

			ttl := policy.TTLFor(ww.Header())
			if ttl <= 0 {
				return
			}
			raw, err := json.Marshal(cachedResponse{
				ContentType: ww.Header().Get("Content-Type"),
				Body:        body.Bytes(),
			})
			if err == nil {
				_ = c.Set(r.Context(), key, raw, ttl)
			}
		})
	}
}
