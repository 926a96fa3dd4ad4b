package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hthillman/daydream-mcp/internal/auth"
	"github.com/hthillman/daydream-mcp/internal/logx"
	"github.com/hthillman/daydream-mcp/internal/metrics"
)

func middlewareChain() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		chiMiddleware.RequestID,
		requestLogger,
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logx.Log.Info().
			Str("request_id", chiMiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Msg("http")
	})
}

// errorBody is the envelope for every non-MCP error response. No stack
// traces, only a category code and a human-readable message.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// limiterKey partitions the rate limiter by credential prefix so full
// secrets never sit in the counter map.
func limiterKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}

// protect wraps the MCP handler with the per-request guard chain:
// method check, key extraction, rate limiting, upstream key
// validation, body presence. Order matters: a missing key is rejected
// before any rate or upstream check.
func (s *Server) protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed",
				"send a POST request with a JSON-RPC body; see GET / for usage")
			return
		}
		key := auth.ExtractKey(r)
		if key == "" {
			writeError(w, http.StatusUnauthorized, "missing_api_key",
				"supply a Daydream API key via 'Authorization: Bearer <key>', 'X-API-Key: <key>', or '?api_key=<key>'")
			return
		}
		id := limiterKey(key)
		if !s.limiter.Allow(id) {
			metrics.RecordRateLimited()
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(s.limiter.Limit()))
			w.Header().Set("X-RateLimit-Remaining", "0")
			msg := fmt.Sprintf("rate limit of %d requests per %s reached", s.limiter.Limit(), s.limiter.Window())
			if reset := s.limiter.ResetAt(id); !reset.IsZero() {
				msg += fmt.Sprintf("; retry after %s", time.Until(reset).Round(time.Second))
			}
			writeError(w, http.StatusTooManyRequests, "rate_limited", msg)
			return
		}
		if !s.client.ValidateKey(r.Context(), key) {
			metrics.RecordKeyRejected()
			writeError(w, http.StatusUnauthorized, "invalid_api_key",
				"the Daydream API rejected this key; check it at https://app.daydream.live")
			return
		}
		if r.Body == nil || r.ContentLength == 0 {
			writeError(w, http.StatusBadRequest, "empty_body",
				"request body must be a JSON-RPC message such as {\"jsonrpc\":\"2.0\",\"method\":\"tools/list\",\"id\":1}")
			return
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(s.limiter.Limit()))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(s.limiter.Remaining(id)))
		next.ServeHTTP(w, r)
	})
}
