package server

import (
	_ "embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/hthillman/daydream-mcp/internal/auth"
	"github.com/hthillman/daydream-mcp/internal/logx"
)

//go:embed index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

// handleIndex renders the landing page with the resolved base URL
// interpolated into the example requests.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		BaseURL string
		Version string
	}{
		BaseURL: scheme + "://" + r.Host,
		Version: s.version,
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		logx.Log.Error().Err(err).Msg("render index")
	}
}

type healthResponse struct {
	Status            string  `json:"status"`
	Service           string  `json:"service"`
	Version           string  `json:"version"`
	InstanceID        string  `json:"instance_id"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
	HostUptimeSeconds uint64  `json:"host_uptime_seconds,omitempty"`
	MemoryRSSBytes    uint64  `json:"memory_rss_bytes,omitempty"`
	Tools             int     `json:"tools"`
	RateLimit         int     `json:"rate_limit"`
	RateWindowSeconds float64 `json:"rate_window_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:            "ok",
		Service:           ServiceName,
		Version:           s.version,
		InstanceID:        s.instanceID,
		UptimeSeconds:     time.Since(s.started).Seconds(),
		Tools:             ToolCount,
		RateLimit:         s.limiter.Limit(),
		RateWindowSeconds: s.limiter.Window().Seconds(),
	}
	if up, err := host.Uptime(); err == nil {
		resp.HostUptimeSeconds = up
	}
	if s.proc != nil {
		if mem, err := s.proc.MemoryInfo(); err == nil {
			resp.MemoryRSSBytes = mem.RSS
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type testResponse struct {
	Valid      bool   `json:"valid"`
	KeyPreview string `json:"key_preview,omitempty"`
	Length     int    `json:"length,omitempty"`
	Message    string `json:"message"`
}

// handleTest checks only that a key is present and plausibly shaped.
// It never calls upstream.
func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	key := auth.ExtractKey(r)
	if key == "" {
		writeError(w, http.StatusUnauthorized, "missing_api_key",
			"supply a Daydream API key via 'Authorization: Bearer <key>', 'X-API-Key: <key>', or '?api_key=<key>'")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if len(key) < auth.MinKeyLength {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(testResponse{
			Valid:   false,
			Length:  len(key),
			Message: "key is too short to be a Daydream API key",
		})
		return
	}
	_ = json.NewEncoder(w).Encode(testResponse{
		Valid:      true,
		KeyPreview: auth.Mask(key),
		Length:     len(key),
		Message:    "key format accepted; use POST /mcp to validate it against the Daydream API",
	})
}
