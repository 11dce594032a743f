package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	srv "github.com/avasilenko/authgate-server/internal/server"
)

func TestHTTPServer_Address(t *testing.T) {
	s := NewHTTPServer(http.NotFoundHandler(), ":0")
	assert.Equal(t, ":0", s.Address())
}

func TestHTTPServer_StartAndStop(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewHTTPServer(handler, ln.Addr().String())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(fixedListener{ln}) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(fmt.Sprintf("http://%s/", ln.Addr().String()))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.NoError(t, s.Stop(context.Background()))
	assert.NoError(t, <-errCh)
}

func TestHTTPServer_Start_WithPlainListener(t *testing.T) {
	t.Parallel()

	s := NewHTTPServer(http.NotFoundHandler(), "127.0.0.1:0")
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(srv.NewPlainListener()) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
	assert.NoError(t, <-errCh)
}

type fixedListener struct {
	ln net.Listener
}

func (f fixedListener) Listen(string, string) (net.Listener, error) {
	return f.ln, nil
}
