package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
})

func TestAPIKeyAuth(t *testing.T) {
	keys := []string{"key-one", "key-two"}

	tests := []struct {
		name     string
		required bool
		header   string
		value    string
		want     int
	}{
		{name: "disabled", required: false, want: http.StatusOK},
		{name: "missing", required: true, want: http.StatusUnauthorized},
		{name: "invalid", required: true, header: "X-API-Key", value: "nope", want: http.StatusForbidden},
		{name: "valid header", required: true, header: "X-API-Key", value: "key-two", want: http.StatusOK},
		{name: "valid bearer", required: true, header: "Authorization", value: "Bearer key-one", want: http.StatusOK},
		{name: "basic scheme", required: true, header: "Authorization", value: "Basic key-one", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/imports", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()

			APIKeyAuth(tt.required, keys)(okHandler).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	trusted := []string{"10.0.0.0/8", "192.168.1.5", "not-an-ip"}

	tests := []struct {
		name   string
		remote string
		xrip   string
		xff    string
		want   string
	}{
		{name: "direct client", remote: "203.0.113.7:5555", want: "203.0.113.7"},
		{name: "untrusted spoof", remote: "203.0.113.7:5555", xrip: "1.2.3.4", want: "203.0.113.7"},
		{name: "trusted x-real-ip", remote: "10.1.2.3:80", xrip: "198.51.100.9", want: "198.51.100.9"},
		{name: "trusted xff first hop", remote: "192.168.1.5:80", xff: "198.51.100.1, 10.0.0.2", want: "198.51.100.1"},
		{name: "trusted bad header", remote: "10.1.2.3:80", xrip: "garbage", want: "10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := ClientIP(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = core.GetIPAddressFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xrip != "" {
				req.Header.Set("X-Real-IP", tt.xrip)
			}
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("client ip = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	got := ParseTrustedProxies([]string{"10.0.0.0/8", " ::1 ", "", "bogus"})
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 prefixes", got)
	}
	if got[1].Bits() != 128 {
		t.Errorf("bare IPv6 address should be a /128, got %v", got[1])
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "debug", "text")

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/imports", nil)
	req = req.WithContext(logging.WithContext(req.Context(), logger))
	req = req.WithContext(core.ContextWithIPAddress(req.Context(), "198.51.100.9"))
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{"status=418", "bytes=15", "ip=198.51.100.9", "path=/api/imports", "level=INFO"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestLogger_QuietPaths(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req = req.WithContext(logging.WithContext(context.Background(), logger))
	Logger(okHandler).ServeHTTP(httptest.NewRecorder(), req)

	if buf.Len() != 0 {
		t.Errorf("health checks should log at debug, got %q", buf.String())
	}
}
