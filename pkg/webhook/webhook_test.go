package webhook

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip      string
		private bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"169.254.169.254", true},
		{"100.64.0.1", true},
		{"::1", true},
		{"fd00::1", true},
		{"::ffff:127.0.0.1", true},
		{"64:ff9b::a00:5", true},
		{"64:ff9b:1::1", true},
		{"2002:c0a8:101::1", true},
		{"8.8.8.8", false},
		{"1.1.1.1", false},
		{"2606:4700:4700::1111", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.private, IsPrivateIP(net.ParseIP(tt.ip)))
		})
	}

	assert.True(t, IsPrivateIP(nil))
}

func TestValidateURL_Rejects(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{
		"ftp://example.com/hook",
		"http://localhost:8080/hook",
		"http://api.localhost/hook",
		"http://127.0.0.1/hook",
		"http://10.0.0.5/hook",
		"http://[::1]/hook",
		"http://[64:ff9b::7f00:1]/hook",
		"http://[2002:a00:5::1]/hook",
		"http://169.254.169.254/latest/meta-data",
		"https:///nohost",
		"::not a url",
	} {
		t.Run(raw, func(t *testing.T) {
			assert.ErrorIs(t, ValidateURL(ctx, raw), ErrBlockedTarget)
		})
	}
}

func TestValidateURL_PublicIPLiteral(t *testing.T) {
	assert.NoError(t, ValidateURL(context.Background(), "https://8.8.8.8/hook"))
}

func allowAll(context.Context, string) error { return nil }

func TestPost_SendsJSONAndHeaders(t *testing.T) {
	var gotBody map[string]interface{}
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newClient(time.Second, http.DefaultTransport, allowAll)
	res, err := c.Post(context.Background(), srv.URL, map[string]string{"Authorization": "Bearer abc"}, map[string]interface{}{"test": true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, true, gotBody["test"])
}

func TestPost_DoesNotFollowRedirects(t *testing.T) {
	followed := false
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		followed = true
	}))
	defer target.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer srv.Close()

	c := newClient(time.Second, http.DefaultTransport, allowAll)
	res, err := c.Post(context.Background(), srv.URL, nil, map[string]bool{"test": true})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.False(t, followed)
}

func TestPost_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := newClient(50*time.Millisecond, http.DefaultTransport, allowAll)
	_, err := c.Post(context.Background(), srv.URL, nil, map[string]bool{"test": true})
	assert.Error(t, err)
}

func TestNewClient_BlocksLoopback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := NewClient(time.Second)
	_, err := c.Post(context.Background(), srv.URL, nil, map[string]bool{"test": true})
	assert.ErrorIs(t, err, ErrBlockedTarget)
}
