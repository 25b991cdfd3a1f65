// Package oauth implements the IdentityProvider port with the GitHub OAuth2
// authorization-code flow.
package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/ericfisherdev/autoreview/internal/domain/port/driven"
)

// CallbackPath is where GitHub redirects after the user approves access.
const CallbackPath = "/auth/github/callback"

// Scopes requested at sign-in. "repo" is required to list private
// repositories.
var Scopes = []string{"repo", "read:user", "user:email"}

var _ driven.IdentityProvider = (*GitHubProvider)(nil)

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub sign-in flow.
type GitHubProvider struct {
	config *oauth2.Config
}

// NewGitHubProvider creates a GitHubProvider. baseURL is the public origin
// of the application; the callback URL is derived from it and must match
// the one registered on the GitHub OAuth App.
func NewGitHubProvider(clientID, clientSecret, baseURL string) *GitHubProvider {
	return NewGitHubProviderWithEndpoint(clientID, clientSecret, baseURL, github.Endpoint)
}

// NewGitHubProviderWithEndpoint creates a GitHubProvider against a custom
// endpoint. Tests point it at an httptest server.
func NewGitHubProviderWithEndpoint(clientID, clientSecret, baseURL string, endpoint oauth2.Endpoint) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  baseURL + CallbackPath,
			Scopes:       Scopes,
			Endpoint:     endpoint,
		},
	}
}

// AuthURL returns the GitHub authorization URL carrying state. Sign-up is
// disabled so only existing GitHub accounts can authorize.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("allow_signup", "false"),
	)
}

// Exchange trades the authorization code for the GitHub access token.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (string, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("oauth: exchanging code: %w", err)
	}

	return token.AccessToken, nil
}
