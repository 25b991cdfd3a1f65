package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/autoreview/internal/domain/model"
)

// ErrTokenRejected is returned when GitHub refuses the bearer token
// (revoked, expired or lacking scope).
var ErrTokenRejected = errors.New("github token rejected")

// GitHubClient defines the driven port for reading from the GitHub API on
// behalf of one user. Implementations are bound to a single bearer token.
type GitHubClient interface {
	// AuthenticatedUser returns the account that owns the token. It doubles
	// as token validation.
	AuthenticatedUser(ctx context.Context) (*model.GitHubUser, error)

	// ListRepositories returns one page (at most 100) of the user's
	// repositories of every visibility, most recently updated first.
	ListRepositories(ctx context.Context) ([]model.RemoteRepository, error)
}

// GitHubClientFactory creates token-bound GitHub clients.
type GitHubClientFactory interface {
	ForToken(token string) GitHubClient
}
