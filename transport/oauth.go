package transport

import (
	"context"
	"net/http"

	"github.com/httpbind/httpbind"
	"golang.org/x/oauth2"
)

// Context returns a context with our HTTP Client baked in for oauth2
func Context(ctx context.Context, client *http.Client) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}

// NewOAuthClient returns an http.Client which does OAuth2 token
// refreshes using conf and tok, making its requests through our
// Transport so the timeouts, dumping and pacing config all apply.
func NewOAuthClient(ctx context.Context, ci *httpbind.ConfigInfo, conf *oauth2.Config, tok *oauth2.Token) *http.Client {
	// Set our own http client in the context
	ctx = Context(ctx, NewClient(ci))
	return oauth2.NewClient(ctx, conf.TokenSource(ctx, tok))
}
