package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSetDefaults(t *testing.T) {
	var c ServerConfig
	c.SetDefaults()
	if c.Port != 8080 {
		t.Fatalf("port = %d", c.Port)
	}
	if c.UpstreamURL != "https://api.daydream.live" {
		t.Fatalf("upstream = %q", c.UpstreamURL)
	}
	if c.RateLimit != 100 || c.RateWindow != time.Hour {
		t.Fatalf("rate = %d per %s", c.RateLimit, c.RateWindow)
	}
	if c.MetricsAddr != ":8080" {
		t.Fatalf("metrics addr = %q", c.MetricsAddr)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DAYDREAM_API_URL", "http://upstream.test")
	t.Setenv("RATE_LIMIT", "5")
	t.Setenv("RATE_WINDOW", "10m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.test, https://b.test")

	var c ServerConfig
	c.SetDefaults()
	c.ApplyEnv()
	if c.Port != 9000 {
		t.Fatalf("port = %d", c.Port)
	}
	if c.UpstreamURL != "http://upstream.test" {
		t.Fatalf("upstream = %q", c.UpstreamURL)
	}
	if c.RateLimit != 5 || c.RateWindow != 10*time.Minute {
		t.Fatalf("rate = %d per %s", c.RateLimit, c.RateWindow)
	}
	if len(c.AllowedOrigins) != 2 || c.AllowedOrigins[1] != "https://b.test" {
		t.Fatalf("origins = %v", c.AllowedOrigins)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	data := "port: 7070\nrate_limit: 42\nupstream_url: http://file.test\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c := ServerConfig{ConfigFile: path}
	c.SetDefaults()
	if err := c.LoadFile(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Port != 7070 || c.RateLimit != 42 || c.UpstreamURL != "http://file.test" {
		t.Fatalf("config = %+v", c)
	}
}

func TestLoadFileMissing(t *testing.T) {
	c := ServerConfig{ConfigFile: "/nonexistent/server.yaml"}
	if err := c.LoadFile(); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
}
