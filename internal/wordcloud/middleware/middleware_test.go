package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/ratelimit"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORSPreflight(t *testing.T) {
	h := CORS(DefaultCORSConfig())(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/word-cloud", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSExplicitOriginIsEchoed(t *testing.T) {
	h := CORS(CORSConfig{AllowOrigins: []string{"http://ok"}})(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/word-cloud", nil)
	req.Header.Set("Origin", "http://ok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://ok", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestCORSDisallowedOrigin(t *testing.T) {
	h := CORS(CORSConfig{AllowOrigins: []string{"http://ok"}})(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Origin", "http://evil")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.New(1, time.Hour)
	defer limiter.Close()
	h := RateLimit(limiter, nil, nil)(okHandler)

	call := func(path, addr string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("/api/word-cloud", "10.0.0.1:1111"))
	assert.Equal(t, http.StatusTooManyRequests, call("/api/word-cloud", "10.0.0.1:2222"))
	assert.Equal(t, http.StatusOK, call("/api/word-cloud", "10.0.0.2:1111"))
	assert.Equal(t, http.StatusOK, call("/health/live", "10.0.0.1:1111"))
}

func TestClientKey(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.7"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		remote    string
		forwarded string
		proxies   TrustedProxies
		want      string
	}{
		{"no proxies ignores header", "198.51.100.4:5000", "203.0.113.9", nil, "198.51.100.4"},
		{"untrusted peer cannot spoof", "198.51.100.4:5000", "203.0.113.9", proxies, "198.51.100.4"},
		{"trusted peer forwards client", "10.1.2.3:5000", "203.0.113.9", proxies, "203.0.113.9"},
		{"trusted hops are skipped from the right", "192.0.2.7:5000", "1.1.1.1, 203.0.113.9, 10.0.0.5", proxies, "203.0.113.9"},
		{"all hops trusted falls back to peer", "10.1.2.3:5000", "10.0.0.9", proxies, "10.1.2.3"},
		{"empty header falls back to peer", "10.1.2.3:5000", "", proxies, "10.1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, clientKey(req, tt.proxies))
		})
	}
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	limiter := ratelimit.New(1, time.Hour)
	defer limiter.Close()
	h := RateLimit(limiter, nil, nil)(okHandler)

	call := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/word-cloud", nil)
		req.RemoteAddr = "198.51.100.4:5000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("203.0.113.2"))
}

func TestParseTrustedProxies(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{" 10.0.0.0/8 ", "::ffff:192.0.2.7", "2001:db8::/32"})
	require.NoError(t, err)
	assert.Len(t, proxies, 3)
	assert.True(t, proxies.trusts("10.200.0.1"))
	assert.True(t, proxies.trusts("192.0.2.7"))
	assert.True(t, proxies.trusts("2001:db8::1"))
	assert.False(t, proxies.trusts("192.0.2.8"))
	assert.False(t, proxies.trusts("not-an-ip"))

	_, err = ParseTrustedProxies([]string{"proxy.local"})
	assert.Error(t, err)
}
