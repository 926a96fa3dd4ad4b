package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	sdkserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/hthillman/daydream-mcp/internal/auth"
	"github.com/hthillman/daydream-mcp/internal/config"
	"github.com/hthillman/daydream-mcp/internal/daydream"
	"github.com/hthillman/daydream-mcp/internal/ratelimit"
	"github.com/hthillman/daydream-mcp/internal/tools"
)

// ServiceName identifies this server to MCP clients and in /health.
const ServiceName = "daydream-mcp"

// ToolCount is the number of tools the MCP server exposes.
const ToolCount = 7

// Server holds the wiring shared by the HTTP handlers. The rate
// limiter and upstream client are injected so tests can substitute
// their own instances and clocks.
type Server struct {
	cfg        config.ServerConfig
	limiter    *ratelimit.Limiter
	client     *daydream.Client
	version    string
	instanceID string
	started    time.Time
	proc       *process.Process
}

// New constructs the HTTP handler for the server.
func New(cfg config.ServerConfig, limiter *ratelimit.Limiter, client *daydream.Client, version string) http.Handler {
	s := &Server{
		cfg:        cfg,
		limiter:    limiter,
		client:     client,
		version:    version,
		instanceID: uuid.NewString(),
		started:    time.Now(),
	}
	s.proc, _ = process.NewProcess(int32(os.Getpid()))

	mcpSrv := sdkserver.NewMCPServer(
		ServiceName,
		version,
		sdkserver.WithToolCapabilities(true),
		sdkserver.WithRecovery(),
	)
	tools.Register(mcpSrv, client)
	mcpHandler := sdkserver.NewStreamableHTTPServer(
		mcpSrv,
		sdkserver.WithStateLess(true),
		sdkserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return tools.WithKey(ctx, auth.ExtractKey(r))
		}),
	)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key"},
	}))
	for _, m := range middlewareChain() {
		r.Use(m)
	}

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Post("/test", s.handleTest)
	r.Handle("/mcp", s.protect(mcpHandler))
	if cfg.MetricsAddr == fmt.Sprintf(":%d", cfg.Port) {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}
