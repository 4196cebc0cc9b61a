package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aviroop07/NL2DATA-sub000/internal/auth"
	"github.com/Aviroop07/NL2DATA-sub000/internal/config"
)

func TestHTTPClientWithoutAuth(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Timeout = 7 * time.Second

	client, err := auth.HTTPClient(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, client.Timeout)
	assert.Nil(t, client.Transport)
}

func TestHTTPClientIncompleteAuthConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.Enable = true
	cfg.Auth.TokenURL = "https://idp.example.com/token"
	// Client ID and secret missing.

	_, err := auth.HTTPClient(context.Background(), cfg)
	assert.Error(t, err)
}

func TestHTTPClientFetchesBearerToken(t *testing.T) {
	var sawAuthorization string
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-abc","token_type":"Bearer","expires_in":3600}`))
	}))
	defer idp.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuthorization = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer api.Close()

	cfg := &config.Config{}
	cfg.Server.Timeout = 5 * time.Second
	cfg.Auth.Enable = true
	cfg.Auth.TokenURL = idp.URL
	cfg.Auth.ClientID = "nl2data-cli"
	cfg.Auth.ClientSecret = "hunter2"

	client, err := auth.HTTPClient(context.Background(), cfg)
	require.NoError(t, err)

	resp, err := client.Get(api.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer tok-abc", sawAuthorization)
}
