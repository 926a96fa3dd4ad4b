package auth

import (
	"net/http"
	"strings"
)

// MinKeyLength is the shortest credential the /test endpoint accepts.
const MinKeyLength = 10

// ExtractKey returns the API key carried by the request, or "" when none
// is present. Precedence, first match wins: Authorization bearer token,
// X-API-Key header, api_key query parameter.
func ExtractKey(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if k := r.Header.Get("X-API-Key"); k != "" {
		return k
	}
	return r.URL.Query().Get("api_key")
}

// Mask returns a masked preview of a credential.
// Short values are fully masked; longer ones keep the first and last
// four characters visible.
func Mask(s string) string {
	n := len(s)
	if n == 0 {
		return ""
	}
	if n <= 8 {
		return strings.Repeat("*", n)
	}
	return s[:4] + strings.Repeat("*", n-8) + s[n-4:]
}
