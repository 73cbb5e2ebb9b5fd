package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.7:50211",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded header from untrusted peer is ignored",
			remoteAddr: "203.0.113.7:50211",
			xff:        "198.51.100.9",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded header from trusted proxy wins",
			remoteAddr: "10.0.0.5:41000",
			xff:        "198.51.100.9, 10.0.0.5",
			want:       "198.51.100.9",
		},
		{
			name:       "real-ip fallback behind trusted proxy",
			remoteAddr: "127.0.0.1:41000",
			xri:        "198.51.100.23",
			want:       "198.51.100.23",
		},
		{
			name:       "garbage forwarded value falls back to peer",
			remoteAddr: "192.168.1.20:41000",
			xff:        "not-an-ip",
			want:       "192.168.1.20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := extractClientIP(req); got != tt.want {
				t.Fatalf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name   string
		target string
		method string
		want   bool
	}{
		{"plain page", "/penalties", http.MethodGet, false},
		{"query with filters", "/penalties?player=3&date_from=2026-08-01", http.MethodGet, false},
		{"path traversal", "/static/../../../etc/passwd", http.MethodGet, true},
		{"wordpress probe", "/wp-admin/setup.php", http.MethodGet, true},
		{"sql injection in query", "/penalties?player=1%20union%20select", http.MethodGet, true},
		{"trace method", "/", "TRACE", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if got := detectSuspiciousRequest(req); got != tt.want {
				t.Fatalf("detectSuspiciousRequest(%s %s) = %v, want %v", tt.method, tt.target, got, tt.want)
			}
		})
	}
}
