package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/ericfisherdev/autoreview/internal/domain/model"
	"github.com/ericfisherdev/autoreview/internal/domain/port/driven"
)

// ErrUnknownRepository is returned by Board.Toggle when the id/name pair is
// not on the board.
var ErrUnknownRepository = errors.New("repository is not on the board")

// Board is the mounted, in-memory list of reconciled repositories for one
// signed-in user. Toggles are applied optimistically and written through to
// the preference store.
type Board struct {
	mu     sync.RWMutex
	uid    string
	repos  []model.Repository
	store  driven.PreferenceStore
	logger *slog.Logger
}

// NewBoard creates a Board over repos, which must already be reconciled.
func NewBoard(uid string, repos []model.Repository, store driven.PreferenceStore, logger *slog.Logger) *Board {
	if repos == nil {
		repos = []model.Repository{}
	}
	return &Board{
		uid:    uid,
		repos:  repos,
		store:  store,
		logger: logger,
	}
}

// UID returns the user the board belongs to.
func (b *Board) UID() string {
	return b.uid
}

// Repositories returns a copy of the board in display order.
func (b *Board) Repositories() []model.Repository {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.repos)
}

// Repository returns the repository with the given id.
func (b *Board) Repository(id int64) (model.Repository, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i := b.indexOf(id); i >= 0 {
		return b.repos[i], true
	}
	return model.Repository{}, false
}

// Toggle negates current, shows the new value on the board immediately, and
// upserts the full preference record keyed by {uid}_{repoName}. If the write
// fails, the repository is put back to the value it had before the toggle
// and the error is returned together with that restored value.
//
// Toggles are not serialized per repository: two overlapping toggles of the
// same repository race and the last write to land decides what is shown.
func (b *Board) Toggle(ctx context.Context, repoID int64, repoName string, current bool) (bool, error) {
	next := !current

	b.mu.Lock()
	i := b.indexOf(repoID)
	if i < 0 || b.repos[i].Name != repoName {
		b.mu.Unlock()
		return current, fmt.Errorf("toggle %d/%s: %w", repoID, repoName, ErrUnknownRepository)
	}
	before := b.repos[i].AutoReview
	b.repos[i].AutoReview = next
	b.mu.Unlock()

	// The write runs to completion even if the request goes away.
	err := b.store.Put(context.WithoutCancel(ctx), model.Preference{
		UserID:     b.uid,
		RepoName:   repoName,
		AutoReview: next,
	})
	if err != nil {
		b.restore(repoID, before)
		b.logger.Error("auto-review update failed, reverted",
			"repo", repoName,
			"auto_review", next,
			"error", err,
		)
		return before, fmt.Errorf("save auto-review for %s: %w", repoName, err)
	}

	b.logger.Info("auto-review updated", "repo", repoName, "auto_review", next)
	return next, nil
}

func (b *Board) restore(repoID int64, value bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(repoID); i >= 0 {
		b.repos[i].AutoReview = value
	}
}

// indexOf must be called with mu held.
func (b *Board) indexOf(id int64) int {
	return slices.IndexFunc(b.repos, func(r model.Repository) bool { return r.ID == id })
}
