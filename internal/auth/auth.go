// Package auth builds authenticated HTTP clients for the pipeline API.
package auth

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/Aviroop07/NL2DATA-sub000/internal/config"
)

// HTTPClient returns the HTTP client to use against the pipeline API.
// With auth disabled it is a plain client with the configured timeout;
// otherwise it wraps the transport in an oauth2 client-credentials token
// source so each request carries a bearer token.
func HTTPClient(ctx context.Context, cfg *config.Config) (*http.Client, error) {
	if !cfg.Auth.Enable {
		return &http.Client{Timeout: cfg.Server.Timeout}, nil
	}

	if cfg.Auth.TokenURL == "" || cfg.Auth.ClientID == "" || cfg.Auth.ClientSecret == "" {
		return nil, errors.New("auth configuration is incomplete")
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
		TokenURL:     cfg.Auth.TokenURL,
		Scopes:       AllScopes,
	}

	// Token refresh requests use a bounded client of their own instead of
	// http.DefaultClient.
	base := &http.Client{Timeout: cfg.Server.Timeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	client := cc.Client(ctx)
	client.Timeout = cfg.Server.Timeout
	return client, nil
}
