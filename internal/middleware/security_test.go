package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serveSecured(isSecure bool, method, path string) *httptest.ResponseRecorder {
	h := NewSecurityHeadersMiddleware(isSecure).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestSecurityHeadersMiddleware_SetsAllHeaders(t *testing.T) {
	rec := serveSecured(false, "GET", "/contact")

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	assert.Equal(t, "geolocation=(), microphone=(), camera=()", rec.Header().Get("Permissions-Policy"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSecurityHeadersMiddleware_HSTSOnlyInProduction(t *testing.T) {
	assert.Empty(t, serveSecured(false, "GET", "/").Header().Get("Strict-Transport-Security"))
	assert.Contains(t, serveSecured(true, "GET", "/").Header().Get("Strict-Transport-Security"), "max-age=31536000")
}

func TestSecurityHeadersMiddleware_CSP(t *testing.T) {
	csp := serveSecured(false, "POST", "/contact").Header().Get("Content-Security-Policy")

	assert.Contains(t, csp, "default-src 'self'")
	assert.Contains(t, csp, "script-src 'none'")
	assert.Contains(t, csp, "style-src 'self' 'unsafe-inline'")
	assert.Contains(t, csp, "frame-ancestors 'none'")
	assert.Contains(t, csp, "form-action 'self'")
	assert.NotContains(t, csp, "unpkg")
}

func TestSecurityHeadersMiddleware_NoStoreForFormPages(t *testing.T) {
	assert.Equal(t, "no-store", serveSecured(false, "GET", "/").Header().Get("Cache-Control"))
	assert.Equal(t, "no-store", serveSecured(false, "GET", "/contact/status").Header().Get("Cache-Control"))
	assert.Empty(t, serveSecured(false, "GET", "/health").Header().Get("Cache-Control"))
}
