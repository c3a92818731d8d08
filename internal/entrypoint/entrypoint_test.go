package entrypoint

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbrief/bookbrief/internal/config"
	"github.com/bookbrief/bookbrief/internal/entities"
)

func TestCSRFSecret(t *testing.T) {
	secret, err := csrfSecret("00ff")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff}, secret)

	secret, err = csrfSecret("not-hex")
	require.NoError(t, err)
	assert.Equal(t, []byte("not-hex"), secret)

	secret, err = csrfSecret("")
	require.NoError(t, err)
	assert.Len(t, secret, 32)
}

func TestOpen_GeneratesTokenSecret(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "bookbrief.db")
	cfg.Auth.JWTSecret = ""
	cfg.Auth.BcryptCost = 4

	app, err := Open(cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.NotEmpty(t, cfg.Auth.JWTSecret)

	ctx := context.Background()
	_, err = app.Auth.CreateUser(ctx, "Admin", "admin@example.com", "secret123", entities.UserRoleAdmin)
	require.NoError(t, err)

	result, err := app.Auth.Login(ctx, "admin@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	shutdownCalled := false
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, srv, time.Second, func(context.Context) { shutdownCalled = true })
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
		assert.True(t, shutdownCalled)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
