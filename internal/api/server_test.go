package api

import (
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/mintworks-go/internal/testutil"
)

func TestServerServesAndShutsDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	server := NewServer(handler, DefaultServerConfig(), testutil.NopLogger())

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(resp.Body)
		return string(body) == "pong"
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, server.Shutdown(t.Context()))
	assert.NoError(t, <-errCh)
}

func TestServerStartFailsOnBusyAddress(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	cfg := DefaultServerConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	server := NewServer(http.NotFoundHandler(), cfg, testutil.NopLogger())

	assert.ErrorContains(t, server.Start(), "listen on")
}
