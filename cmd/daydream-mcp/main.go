package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hthillman/daydream-mcp/internal/config"
	"github.com/hthillman/daydream-mcp/internal/daydream"
	"github.com/hthillman/daydream-mcp/internal/logx"
	"github.com/hthillman/daydream-mcp/internal/metrics"
	"github.com/hthillman/daydream-mcp/internal/ratelimit"
	"github.com/hthillman/daydream-mcp/internal/server"
)

var (
	version   = "dev"
	buildSHA  = "unknown"
	buildDate = "unknown"
)

func main() {
	var cfg config.ServerConfig
	cfg.SetDefaults()
	cfg.ApplyEnv()
	cfg.BindFlags()
	flag.Parse()
	if err := cfg.LoadFile(); err != nil {
		logx.Log.Fatal().Err(err).Str("file", cfg.ConfigFile).Msg("load config")
	}
	logx.Configure(cfg.LogLevel)

	metrics.Register(prometheus.DefaultRegisterer)
	metrics.SetBuildInfo(version, buildSHA, buildDate)

	limiter := ratelimit.New(cfg.RateLimit, cfg.RateWindow)
	client := daydream.New(cfg.UpstreamURL, cfg.RequestTimeout)
	handler := server.New(cfg, limiter, client, version)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	if cfg.MetricsAddr != fmt.Sprintf(":%d", cfg.Port) {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logx.Log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server starting")
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logx.Log.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	logx.Log.Info().
		Int("port", cfg.Port).
		Str("upstream", cfg.UpstreamURL).
		Int("rate_limit", cfg.RateLimit).
		Dur("rate_window", cfg.RateWindow).
		Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logx.Log.Fatal().Err(err).Msg("server error")
	}
}
