package driven

import (
	"context"

	"github.com/ericfisherdev/autoreview/internal/domain/model"
)

// IdentityDirectory maps a GitHub account to the stable user ID that
// preferences are keyed by, registering the account on first sight.
type IdentityDirectory interface {
	Resolve(ctx context.Context, user model.GitHubUser) (model.Session, error)
}
