package httpclient

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MatchPublisher/internal/config"
	"MatchPublisher/internal/utils/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_DecompressesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(`{"ok":true}`))
		_ = gz.Close()
	}))
	defer srv.Close()

	client := NewHTTPClient(&config.TelegramConfig{Timeout: 5}, logging.Discard())
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(body))
	assert.Empty(t, resp.Header.Get("Content-Encoding"))
}

func TestNewHTTPClient_TimeoutFloor(t *testing.T) {
	client := NewHTTPClient(&config.TelegramConfig{Timeout: 5, PollTimeout: 50}, logging.Discard())
	assert.Equal(t, 60*time.Second, client.Timeout)

	client = NewHTTPClient(&config.TelegramConfig{Timeout: 120, PollTimeout: 50}, logging.Discard())
	assert.Equal(t, 120*time.Second, client.Timeout)
}

func TestNewHTTPClient_BadProxyIgnored(t *testing.T) {
	client := NewHTTPClient(&config.TelegramConfig{Timeout: 5, Proxy: "://bad"}, logging.Discard())
	assert.NotNil(t, client)
}
