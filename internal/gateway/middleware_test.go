package gateway

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestPerClientRateLimit_AllowsUnderLimit verifies requests under the rate limit pass through.
func TestPerClientRateLimit_AllowsUnderLimit(t *testing.T) {
	cfg := RateLimitConfig{
		Enabled:        true,
		PerClientRPS:   100, // High limit
		PerClientBurst: 100,
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := PerClientRateLimit(cfg)(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gallery", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	for i := range 10 {
		rec := httptest.NewRecorder()
		middleware.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Request %d: got status %d, want %d", i, rec.Code, http.StatusOK)
		}
	}
}

// TestPerClientRateLimit_DifferentClientsIndependent verifies each client IP
// has its own bucket and ports do not matter.
func TestPerClientRateLimit_DifferentClientsIndependent(t *testing.T) {
	cfg := RateLimitConfig{
		Enabled:        true,
		PerClientRPS:   1,
		PerClientBurst: 1,
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := PerClientRateLimit(cfg)(handler)

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/play", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		middleware.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("10.0.0.1:5000"); code != http.StatusOK {
		t.Errorf("client 1 first request: got status %d, want %d", code, http.StatusOK)
	}
	if code := send("10.0.0.2:5000"); code != http.StatusOK {
		t.Errorf("client 2 first request: got status %d, want %d", code, http.StatusOK)
	}
	if code := send("10.0.0.1:6000"); code != http.StatusTooManyRequests {
		t.Errorf("client 1 second request: got status %d, want %d", code, http.StatusTooManyRequests)
	}
	if code := send("10.0.0.2:6000"); code != http.StatusTooManyRequests {
		t.Errorf("client 2 second request: got status %d, want %d", code, http.StatusTooManyRequests)
	}
}

// TestPerClientRateLimit_Disabled verifies disabled rate limiting passes all requests.
func TestPerClientRateLimit_Disabled(t *testing.T) {
	cfg := RateLimitConfig{
		Enabled: false,
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := PerClientRateLimit(cfg)(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gallery", nil)

	for i := range 100 {
		rec := httptest.NewRecorder()
		middleware.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Request %d with disabled rate limit: got status %d, want %d", i, rec.Code, http.StatusOK)
		}
	}
}

// TestBodySizeLimit_UnderLimit verifies requests under the body size limit pass through.
func TestBodySizeLimit_UnderLimit(t *testing.T) {
	maxSize := int64(1024) // 1KB

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Read the body to verify it's accessible
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("Failed to read body: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if len(body) != 100 {
			t.Errorf("Body length = %d, want 100", len(body))
		}
		w.WriteHeader(http.StatusOK)
	})

	middleware := BodySizeLimit(maxSize)(handler)

	// Small body (100 bytes)
	body := bytes.Repeat([]byte("a"), 100)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))

	rec := httptest.NewRecorder()
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Small body request: got status %d, want %d", rec.Code, http.StatusOK)
	}
}

// TestBodySizeLimit_OverLimit verifies requests over the body size limit are rejected.
func TestBodySizeLimit_OverLimit(t *testing.T) {
	maxSize := int64(100) // 100 bytes

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Try to read the body - should fail or be truncated
		_, err := io.ReadAll(r.Body)
		if err != nil {
			// MaxBytesReader returns an error when limit is exceeded
			http.Error(w, "Request too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	middleware := BodySizeLimit(maxSize)(handler)

	// Large body (200 bytes - over limit)
	body := bytes.Repeat([]byte("a"), 200)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))

	rec := httptest.NewRecorder()
	middleware.ServeHTTP(rec, req)

	// Should return 413 Request Entity Too Large
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Large body request: got status %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

// TestBodySizeLimit_ExactLimit verifies requests at exactly the body size limit pass.
func TestBodySizeLimit_ExactLimit(t *testing.T) {
	maxSize := int64(100) // 100 bytes

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Request too large", http.StatusRequestEntityTooLarge)
			return
		}
		if len(body) != 100 {
			t.Errorf("Body length = %d, want 100", len(body))
		}
		w.WriteHeader(http.StatusOK)
	})

	middleware := BodySizeLimit(maxSize)(handler)

	// Exact limit body (100 bytes)
	body := bytes.Repeat([]byte("a"), 100)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))

	rec := httptest.NewRecorder()
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Exact limit body request: got status %d, want %d", rec.Code, http.StatusOK)
	}
}

// TestRequestID_Generated verifies that a request ID is generated when not provided.
func TestRequestID_Generated(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request ID is in context
		requestID := GetRequestID(r.Context())
		if requestID == "" {
			t.Error("Request ID should be in context")
		}
		w.WriteHeader(http.StatusOK)
	})

	middleware := RequestID(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	rec := httptest.NewRecorder()

	middleware.ServeHTTP(rec, req)

	// Verify X-Request-ID is in response header
	respID := rec.Header().Get("X-Request-ID")
	if respID == "" {
		t.Error("X-Request-ID should be in response header")
	}
}

// TestRequestID_Preserved verifies that an existing request ID is preserved.
func TestRequestID_Preserved(t *testing.T) {
	existingID := "existing-request-id-12345"

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := GetRequestID(r.Context())
		if requestID != existingID {
			t.Errorf("Request ID = %q, want %q", requestID, existingID)
		}
		w.WriteHeader(http.StatusOK)
	})

	middleware := RequestID(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	req.Header.Set("X-Request-ID", existingID)
	rec := httptest.NewRecorder()

	middleware.ServeHTTP(rec, req)

	// Verify same ID is in response
	respID := rec.Header().Get("X-Request-ID")
	if respID != existingID {
		t.Errorf("Response X-Request-ID = %q, want %q", respID, existingID)
	}
}

// TestRecovery_PanicRecovered verifies that panics are recovered and return 500.
func TestRecovery_PanicRecovered(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	middleware := Recovery(slog.Default())(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	rec := httptest.NewRecorder()

	// Should not panic
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Panic recovery: got status %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

// TestCORS_Preflight verifies preflight requests are answered without
// reaching the handler.
func TestCORS_Preflight(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	middleware := CORS(CORSConfig{
		AllowedOrigins: []string{"https://wall.example"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	})(handler)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/search", nil)
	req.Header.Set("Origin", "https://wall.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()

	middleware.ServeHTTP(rec, req)

	if called {
		t.Error("preflight reached the handler")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Preflight: got status %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://wall.example" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Errorf("Allow-Methods = %q", got)
	}
}

// TestCORS_UnknownOrigin verifies disallowed origins get no CORS headers.
func TestCORS_UnknownOrigin(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := CORS(CORSConfig{AllowedOrigins: []string{"https://wall.example"}})(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gallery", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()

	middleware.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want none", got)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusOK)
	}
}

// TestChain_MiddlewareOrder verifies that middleware is applied in the correct order.
func TestChain_MiddlewareOrder(t *testing.T) {
	var order []string

	mw1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "mw1-before")
			next.ServeHTTP(w, r)
			order = append(order, "mw1-after")
		})
	}

	mw2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "mw2-before")
			next.ServeHTTP(w, r)
			order = append(order, "mw2-after")
		})
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusOK)
	})

	chained := Chain(handler, mw1, mw2)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	chained.ServeHTTP(rec, req)

	expected := []string{"mw1-before", "mw2-before", "handler", "mw2-after", "mw1-after"}
	if len(order) != len(expected) {
		t.Fatalf("Order length = %d, want %d", len(order), len(expected))
	}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("Order[%d] = %q, want %q", i, order[i], v)
		}
	}
}

// TestContentType_SetsJSON verifies that the Content-Type header is set to application/json.
func TestContentType_SetsJSON(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := ContentType(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	rec := httptest.NewRecorder()

	middleware.ServeHTTP(rec, req)

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q, want %q", contentType, "application/json")
	}
}

// TestGlobalRateLimit_AllowsUnderLimit verifies global rate limiting under limit.
func TestGlobalRateLimit_AllowsUnderLimit(t *testing.T) {
	cfg := RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 100,
		BurstSize:         100,
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := RateLimit(cfg)(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)

	for i := range 10 {
		rec := httptest.NewRecorder()
		middleware.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Request %d: got status %d, want %d", i, rec.Code, http.StatusOK)
		}
	}
}

// TestGlobalRateLimit_BlocksOverLimit verifies global rate limiting over limit.
func TestGlobalRateLimit_BlocksOverLimit(t *testing.T) {
	cfg := RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 1,
		BurstSize:         1,
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := RateLimit(cfg)(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)

	// First request should succeed
	rec1 := httptest.NewRecorder()
	middleware.ServeHTTP(rec1, req)
	if rec1.Code != http.StatusOK {
		t.Errorf("First request: got status %d, want %d", rec1.Code, http.StatusOK)
	}

	// Second request should be rate limited
	rec2 := httptest.NewRecorder()
	middleware.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusTooManyRequests {
		t.Errorf("Second request: got status %d, want %d", rec2.Code, http.StatusTooManyRequests)
	}
}
