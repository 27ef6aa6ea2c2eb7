package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethan2004g/interactive-web-novels/pkg/api"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRegisterLogsUndecodableResponse(t *testing.T) {
	var logins int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/register":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`["not", "tokens"]`))
		case "/auth/login":
			logins++
			_, _ = w.Write([]byte(`{"access_token": "a", "refresh_token": "r", "token_type": "bearer"}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL, data.NewMemoryTokens())
	require.NoError(t, err)
	core, logs := observer.New(zap.DebugLevel)
	svc := New(client, zap.New(core))

	tokens, err := svc.Auth.Register(context.Background(), data.RegisterRequest{
		Username: "newbie", Email: "newbie@example.com", Password: "longenough",
	})
	require.NoError(t, err)
	assert.Equal(t, "a", tokens.AccessToken)
	assert.Equal(t, 1, logins)
	assert.Equal(t, 1, logs.FilterMessage("register response is not a token pair").Len())
}
