package oauth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/ericfisherdev/autoreview/internal/adapter/driven/oauth"
)

func TestAuthURL_CarriesStateScopesAndSignupFlag(t *testing.T) {
	p := oauth.NewGitHubProvider("client-id", "secret", "https://autoreview.example")

	raw := p.AuthURL("state-123")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "github.com", u.Host)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "false", q.Get("allow_signup"))
	assert.Equal(t, "https://autoreview.example/auth/github/callback", q.Get("redirect_uri"))
	assert.ElementsMatch(t, []string{"repo", "read:user", "user:email"}, strings.Fields(q.Get("scope")))
}

func newTokenServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExchange_ReturnsAccessToken(t *testing.T) {
	server := newTokenServer(t, http.StatusOK, `{"access_token":"gho_abc","token_type":"bearer","scope":"repo"}`)
	p := oauth.NewGitHubProviderWithEndpoint("id", "secret", "http://localhost", oauth2.Endpoint{
		AuthURL:   server.URL + "/login/oauth/authorize",
		TokenURL:  server.URL + "/login/oauth/access_token",
		AuthStyle: oauth2.AuthStyleInParams,
	})

	token, err := p.Exchange(context.Background(), "the-code")

	require.NoError(t, err)
	assert.Equal(t, "gho_abc", token)
}

func TestExchange_ProviderErrorIsWrapped(t *testing.T) {
	server := newTokenServer(t, http.StatusBadRequest, `{"error":"bad_verification_code"}`)
	p := oauth.NewGitHubProviderWithEndpoint("id", "secret", "http://localhost", oauth2.Endpoint{
		TokenURL:  server.URL + "/login/oauth/access_token",
		AuthStyle: oauth2.AuthStyleInParams,
	})

	token, err := p.Exchange(context.Background(), "the-code")

	require.Error(t, err)
	assert.Empty(t, token)
	assert.Contains(t, err.Error(), "oauth: exchanging code")
}
