package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"smpadmin/pkg/requestcontext"
)

func TestClientMetadata(t *testing.T) {
	var ip, ua string
	handler := ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/sml/capabilities", nil)
	req.RemoteAddr = "192.0.2.7:40000"
	req.Header.Set("User-Agent", "smp-console/1.2")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.7", ip)
	assert.Equal(t, "smp-console/1.2", ua)
}

func TestClientIPFromRequest(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.9"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.4 "}, "10.0.0.2:1234", "198.51.100.4"},
		{"remote ipv4", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"remote ipv6", nil, "[::1]:5555", "::1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ClientIPFromRequest(req))
		})
	}
}
