package auth

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractKeyBearer(t *testing.T) {
	r := httptest.NewRequest("POST", "/mcp", nil)
	r.Header.Set("Authorization", "Bearer sk-abc123")
	if got := ExtractKey(r); got != "sk-abc123" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractKeyBearerCaseInsensitive(t *testing.T) {
	r := httptest.NewRequest("POST", "/mcp", nil)
	r.Header.Set("Authorization", "bearer sk-abc123")
	if got := ExtractKey(r); got != "sk-abc123" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractKeyHeader(t *testing.T) {
	r := httptest.NewRequest("POST", "/mcp", nil)
	r.Header.Set("X-API-Key", "sk-header")
	if got := ExtractKey(r); got != "sk-header" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractKeyQuery(t *testing.T) {
	r := httptest.NewRequest("POST", "/mcp?api_key=sk-query", nil)
	if got := ExtractKey(r); got != "sk-query" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractKeyPrecedence(t *testing.T) {
	r := httptest.NewRequest("POST", "/mcp?api_key=sk-query", nil)
	r.Header.Set("Authorization", "Bearer sk-bearer")
	r.Header.Set("X-API-Key", "sk-header")
	if got := ExtractKey(r); got != "sk-bearer" {
		t.Fatalf("bearer should win, got %q", got)
	}

	r2 := httptest.NewRequest("POST", "/mcp?api_key=sk-query", nil)
	r2.Header.Set("X-API-Key", "sk-header")
	if got := ExtractKey(r2); got != "sk-header" {
		t.Fatalf("header should beat query, got %q", got)
	}
}

func TestExtractKeyAbsent(t *testing.T) {
	r := httptest.NewRequest("POST", "/mcp", nil)
	if got := ExtractKey(r); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestMask(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "*****"},
		{"12345678", "********"},
		{"sk-abcdef123456", "sk-a*******3456"},
	}
	for _, c := range cases {
		if got := Mask(c.in); got != c.want {
			t.Fatalf("Mask(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMaskHidesMiddle(t *testing.T) {
	key := "sk-secret-secret-secret"
	masked := Mask(key)
	if strings.Contains(masked, "secret-secret") {
		t.Fatalf("mask leaked middle of key: %q", masked)
	}
	if len(masked) != len(key) {
		t.Fatalf("mask changed length: %d != %d", len(masked), len(key))
	}
}
