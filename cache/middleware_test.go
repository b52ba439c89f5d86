package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func countingHandler(status int, calls *atomic.Int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"status":"Healthy"}`))
	})
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestMiddleware_CachesGet200(t *testing.T) {
	var calls atomic.Int32
	h := Middleware(NewMemoryCache(), nil, DefaultPolicy())(countingHandler(http.StatusOK, &calls))

	first := serve(h, http.MethodGet, "/status")
	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("first X-Cache = %q, want MISS", got)
	}

	second := serve(h, http.MethodGet, "/status")
	if got := second.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", got)
	}
	if second.Code != http.StatusOK {
		t.Errorf("cached status = %d, want 200", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("cached body = %q, want %q", second.Body.String(), first.Body.String())
	}
	if ct := second.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("cached Content-Type = %q", ct)
	}
	if calls.Load() != 1 {
		t.Errorf("handler calls = %d, want 1", calls.Load())
	}
}

func TestMiddleware_Bypass(t *testing.T) {
	tests := []struct {
		name   string
		method string
		status int
		policy Policy
	}{
		{name: "post", method: http.MethodPost, status: http.StatusOK, policy: DefaultPolicy()},
		{name: "error status", method: http.MethodGet, status: http.StatusServiceUnavailable, policy: DefaultPolicy()},
		{name: "not found", method: http.MethodGet, status: http.StatusNotFound, policy: DefaultPolicy()},
		{name: "disabled", method: http.MethodGet, status: http.StatusOK, policy: NoCachePolicy()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			h := Middleware(NewMemoryCache(), DefaultKeyer{}, tt.policy)(countingHandler(tt.status, &calls))

			serve(h, tt.method, "/status")
			rec := serve(h, tt.method, "/status")
			if rec.Header().Get("X-Cache") == "HIT" {
				t.Error("response should not be served from cache")
			}
			if calls.Load() != 2 {
				t.Errorf("handler calls = %d, want 2", calls.Load())
			}
		})
	}
}

func TestMiddleware_NoStoreResponse(t *testing.T) {
	var calls atomic.Int32
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte("live"))
	})
	h := Middleware(NewMemoryCache(), nil, DefaultPolicy())(next)

	serve(h, http.MethodGet, "/status")
	serve(h, http.MethodGet, "/status")
	if calls.Load() != 2 {
		t.Errorf("handler calls = %d, want 2", calls.Load())
	}
}

func TestMiddleware_InvalidatedByPrefix(t *testing.T) {
	var calls atomic.Int32
	c := NewMemoryCache()
	h := Middleware(c, nil, DefaultPolicy())(countingHandler(http.StatusOK, &calls))

	serve(h, http.MethodGet, "/status?group=a")
	serve(h, http.MethodGet, "/status?group=b")
	_ = c.DeletePrefix(context.Background(), PathPrefix("/status"))

	rec := serve(h, http.MethodGet, "/status?group=a")
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache after invalidation = %q, want MISS", got)
	}
	if calls.Load() != 3 {
		t.Errorf("handler calls = %d, want 3", calls.Load())
	}
}

func TestMiddleware_CorruptEntry(t *testing.T) {
	var calls atomic.Int32
	c := NewMemoryCache()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	key, _ := DefaultKeyer{}.Key(req)
	_ = c.Set(context.Background(), key, []byte("not json"), DefaultPolicy().DefaultTTL)

	h := Middleware(c, nil, DefaultPolicy())(countingHandler(http.StatusOK, &calls))
	rec := serve(h, http.MethodGet, "/status")
	if rec.Header().Get("X-Cache") != "MISS" || calls.Load() != 1 {
		t.Errorf("corrupt entry should fall through to handler")
	}
}
