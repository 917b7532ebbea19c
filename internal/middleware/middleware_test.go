package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/pkg/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCorrelationID(t *testing.T) {
	var seen string
	h := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set(RequestIDHeader, "dash-7f3a:stats")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "dash-7f3a:stats", seen)
	assert.Equal(t, "dash-7f3a:stats", w.Header().Get(RequestIDHeader))

	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestCorrelationID_ReplacesUnsafeIDs(t *testing.T) {
	var seen string
	h := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	tests := []struct {
		name string
		id   string
	}{
		{"newline", "abc\nlevel=error"},
		{"json quote", `abc","status":200`},
		{"space", "abc def"},
		{"too long", strings.Repeat("a", 65)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
			req.Header.Set(RequestIDHeader, tt.id)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.NotEqual(t, tt.id, seen)
			_, err := uuid.Parse(seen)
			assert.NoError(t, err)
			assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("a", 64))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, strings.Repeat("a", 64), seen)
}

func TestRequestFields(t *testing.T) {
	assert.Equal(t, map[string]interface{}{}, RequestFields(context.Background(), nil))

	ctx := context.WithValue(context.Background(), correlationKey{}, "req-9")
	fields := RequestFields(ctx, map[string]interface{}{"error": "boom"})
	assert.Equal(t, map[string]interface{}{"error": "boom", "request_id": "req-9"}, fields)
}

func TestCORS(t *testing.T) {
	restricted := CORS([]string{"https://ledger.example.com"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/filter-options", nil)
	req.Header.Set("Origin", "https://ledger.example.com")
	w := httptest.NewRecorder()
	restricted.ServeHTTP(w, req)
	assert.Equal(t, "https://ledger.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	restricted.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	open := CORS(nil)(okHandler)
	w = httptest.NewRecorder()
	open.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/filter-options", nil))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	open.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/transactions", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("test", &buf, "info")

	h := Recovery(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "boom")
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("test", &buf, "info")

	r := mux.NewRouter()
	r.Use(CorrelationID)
	r.Use(NewLoggingMiddleware(log).Log)
	r.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions?regions=North&page=2", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request served", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "/api/transactions", entry["route"])
	assert.Equal(t, "regions=North&page=2", entry["query"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
	assert.Equal(t, float64(len(`{"data":[]}`)), entry["bytes"])
	assert.Equal(t, "req-42", entry["request_id"])
}

func TestLoggingMiddleware_Levels(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		status  int
		level   string
		message string
	}{
		{"server error", "/api/transactions", http.StatusInternalServerError, "error", "request failed"},
		{"rate limited", "/api/transactions", http.StatusTooManyRequests, "warn", "request rejected"},
		{"health check", "/health", http.StatusOK, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.NewWithWriter("test", &buf, "info")

			h := NewLoggingMiddleware(log).Log(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			if tt.level == "" {
				assert.Empty(t, buf.String(), "health checks log at debug")
				return
			}
			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, tt.message, entry["message"])
			assert.Equal(t, tt.path, entry["route"])
			assert.NotContains(t, entry, "request_id")
		})
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	// Nothing listens on port 1.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	rl := NewRateLimiter(rdb, 1, time.Minute, logger.NewNop())
	assert.Error(t, rl.Ping(context.Background()))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		rl.Limit(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(nil, 0, time.Minute, logger.NewNop())

	w := httptest.NewRecorder()
	rl.Limit(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimiter_Redis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skip("Redis not available")
	}
	defer rdb.Close()

	rl := NewRateLimiter(rdb, 2, time.Minute, logger.NewNop())
	h := rl.Limit(okHandler)

	// Unique client address so reruns start a fresh window.
	addr := fmt.Sprintf("10.%d.%d.%d:5555", time.Now().UnixNano()%250, time.Now().Second(), time.Now().Nanosecond()%250)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
