package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeBadgerConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := "server:\n  mode: test\n" +
		"database:\n  driver: badger\n  badger_path: " + filepath.Join(dir, "messages") + "\n" +
		"jwt:\n  secret: bootstrap-secret\n" +
		"storage:\n  bucket: attachments\n  access_key: key\n  secret_key: secret\n" +
		"logging:\n  level: error\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBootstrap_BadgerStack(t *testing.T) {
	req := require.New(t)

	cfg, lgr, err := LoadConfigAndSetupLogger(writeBadgerConfig(t))
	req.NoError(err)

	store, err := SetupStore(context.Background(), cfg, lgr)
	req.NoError(err)
	t.Cleanup(func() { _ = store.Close() })

	deps, err := BuildDependencies(cfg, store, lgr)
	req.NoError(err)
	req.NotNil(deps.MessageService)

	router := SetupRouter(cfg, deps, lgr)
	req.Equal(cfg.Server.MaxMultipartMemory, router.MaxMultipartMemory)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	req.Equal(http.StatusOK, recorder.Code)

	token, err := deps.JWTService.GenerateToken("U1")
	req.NoError(err)
	request := httptest.NewRequest(http.MethodGet, "/api/message/channel/C1/messages", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	req.Equal(http.StatusOK, recorder.Code)
	req.JSONEq(`{"success":true,"messages":[]}`, recorder.Body.String())
}

func TestLoadConfigAndSetupLogger_InvalidConfig(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	req.NoError(os.WriteFile(path, []byte("database:\n  driver: sqlite\n"), 0o644))

	_, _, err := LoadConfigAndSetupLogger(path)

	req.Error(err)
}
