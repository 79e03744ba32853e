package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/csvinsight/internal/config"
	"github.com/JonMunkholm/csvinsight/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "untrusted proxy keeps remote addr",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "203.0.113.5:4000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "203.0.113.5:4000",
		},
		{
			name:       "trusted proxy with X-Real-IP",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.1.1:4000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "1.2.3.4",
		},
		{
			name:       "trusted single address with X-Forwarded-For",
			trusted:    []string{"127.0.0.1"},
			remoteAddr: "127.0.0.1:9999",
			headers:    map[string]string{"X-Forwarded-For": "5.6.7.8, 10.0.0.1"},
			want:       "5.6.7.8",
		},
		{
			name:       "invalid header ignored",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.1.1:4000",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			want:       "10.1.1.1:4000",
		},
		{
			name:       "bad cidr skipped",
			trusted:    []string{"garbage"},
			remoteAddr: "10.1.1.1:4000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "10.1.1.1:4000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientContext(t *testing.T) {
	var ip, ua string
	h := ClientContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = core.GetIPAddressFromContext(r.Context())
		ua = core.GetUserAgentFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	req.Header.Set("User-Agent", "csv-test")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.10", ip)
	assert.Equal(t, "csv-test", ua)
}

func TestAPIKeyAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name string
		cfg  config.SecurityConfig
		key  string
		want int
	}{
		{"disabled", config.SecurityConfig{}, "", http.StatusNoContent},
		{"missing key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, "", http.StatusUnauthorized},
		{"wrong key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, "nope", http.StatusForbidden},
		{"second key accepted", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1", "k2"}}, "k2", http.StatusNoContent},
		{"no keys configured", config.SecurityConfig{RequireAPIKey: true}, "k1", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			req := httptest.NewRequest(http.MethodDelete, "/api/csv?path=a.csv", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			APIKeyAuth(&cfg)(ok).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLogger_CapturesStatusAndBytes(t *testing.T) {
	var captured *responseWriter
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = w.(*responseWriter)
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code, "first status wins")
	assert.Equal(t, http.StatusTeapot, captured.status)
	assert.Equal(t, int64(5), captured.bytes)
}
