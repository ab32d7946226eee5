package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yigit/filechat/internal/config"
)

func TestNewHTTPServer(t *testing.T) {
	t.Run("should give reads the upload budget", func(t *testing.T) {
		req := require.New(t)
		cfg := &config.Config{}
		cfg.Server.Port = "5000"
		cfg.Storage.UploadTimeout = "2m"

		srv := newHTTPServer(cfg, http.NotFoundHandler())

		req.Equal(":5000", srv.Addr)
		req.Equal(2*time.Minute+10*time.Second, srv.ReadTimeout)
		req.Equal(4*time.Minute+10*time.Second, srv.WriteTimeout)
		req.Greater(srv.WriteTimeout, srv.ReadTimeout)
	})

	t.Run("should fall back to the default budget", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.UploadTimeout = "soon"

		srv := newHTTPServer(cfg, http.NotFoundHandler())

		require.Equal(t, 40*time.Second, srv.ReadTimeout)
	})
}
