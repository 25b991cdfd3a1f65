package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/autoreview/internal/domain/model"
)

// ErrStoreUnavailable indicates the preference store could not be reached or
// refused the request.
var ErrStoreUnavailable = errors.New("preference store unavailable")

// PreferenceStore defines the driven port for auto-review preference
// persistence. Put replaces the whole record stored under
// model.PreferenceKey(p.UserID, p.RepoName); it never merges fields.
type PreferenceStore interface {
	ListByUser(ctx context.Context, userID string) ([]model.Preference, error)
	Put(ctx context.Context, p model.Preference) error
}
