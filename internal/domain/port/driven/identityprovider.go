package driven

import "context"

// IdentityProvider defines the driven port for the OAuth sign-in flow.
type IdentityProvider interface {
	// AuthURL returns the provider URL the browser is sent to.
	AuthURL(state string) string
	// Exchange trades an authorization code for a bearer token. An empty
	// token with a nil error means the provider granted sign-in without a
	// usable token.
	Exchange(ctx context.Context, code string) (string, error)
}
