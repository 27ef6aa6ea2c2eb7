package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethan2004g/interactive-web-novels/pkg/api"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/fakeapi"
	"go.uber.org/zap"
)

func newTestServices(t *testing.T, handler http.Handler) (*Services, *api.Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL, data.NewMemoryTokens())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return New(client, zap.NewNop()), client
}

func newFakeBackend(t *testing.T) (*Services, *fakeapi.Server) {
	t.Helper()
	backend := fakeapi.New()
	server := httptest.NewServer(backend.Handler())
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL+fakeapi.Prefix, data.NewMemoryTokens())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return New(client, zap.NewNop()), backend
}

// newFakeBackendClient returns services for a second user of the backend
// behind existing.
func newFakeBackendClient(t *testing.T, existing *Services) (*Services, *api.Client) {
	t.Helper()
	client, err := api.NewClient(existing.Auth.client.BaseURL(), data.NewMemoryTokens())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return New(client, zap.NewNop()), client
}
