package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/autoreview/internal/domain/model"
	"github.com/ericfisherdev/autoreview/internal/domain/port/driven"
)

// ErrBootstrap wraps every failure that ends a mount in the error state:
// token validation, the repository fetch and the preference read.
var ErrBootstrap = errors.New("profile bootstrap failed")

// Profile is the outcome of one profile mount.
type Profile struct {
	State   model.BootstrapState
	Session *model.Session
	Board   *Board
	// Message is the user-facing text for the error states.
	Message string
	// Err is the underlying cause for the error states. It is for logs only.
	Err error
}

// DiscardToken reports whether the caller must delete the stored token.
func (p Profile) DiscardToken() bool {
	return p.State == model.BootstrapAuthenticatedError
}

func (p *Profile) advance(next model.BootstrapState) {
	if !p.State.CanTransitionTo(next) {
		panic(fmt.Sprintf("illegal bootstrap transition %s -> %s", p.State, next))
	}
	p.State = next
}

// ProfileService runs the profile mount sequence: token check, token
// validation, repository fetch, preference read, reconciliation. The steps
// run strictly one after another.
type ProfileService struct {
	clients driven.GitHubClientFactory
	store   driven.PreferenceStore
	boards  *BoardRegistry
	logger  *slog.Logger
}

// NewProfileService creates a ProfileService with the required dependencies.
func NewProfileService(
	clients driven.GitHubClientFactory,
	store driven.PreferenceStore,
	boards *BoardRegistry,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		clients: clients,
		store:   store,
		boards:  boards,
		logger:  logger,
	}
}

// Load mounts the profile for session using token. A nil session yields the
// unauthenticated state and nothing else is attempted. On success the new
// board replaces any board previously mounted for the user.
func (s *ProfileService) Load(ctx context.Context, session *model.Session, token string) Profile {
	p := Profile{State: model.BootstrapUnauthenticated}
	if session == nil {
		return p
	}
	p.advance(model.BootstrapAuthenticating)
	p.Session = session

	if token == "" {
		p.advance(model.BootstrapAuthenticatedNoToken)
		p.Message = model.MessageTokenNotFound
		s.logger.Warn("profile mount without github token", "uid", session.UID)
		return p
	}

	p.advance(model.BootstrapAuthenticatedLoading)

	repos, err := s.fetch(ctx, session.UID, token)
	if err != nil {
		p.advance(model.BootstrapAuthenticatedError)
		p.Message = model.MessageFetchFailed
		p.Err = fmt.Errorf("%w: %w", ErrBootstrap, err)
		s.boards.Unmount(session.UID)
		s.logger.Error("profile mount failed", "uid", session.UID, "error", err)
		return p
	}

	p.Board = NewBoard(session.UID, repos, s.store, s.logger)
	s.boards.Mount(p.Board)
	p.advance(model.BootstrapAuthenticatedReady)

	s.logger.Info("profile mounted", "uid", session.UID, "repositories", len(repos))
	return p
}

// Board returns the board currently mounted for uid.
func (s *ProfileService) Board(uid string) (*Board, bool) {
	return s.boards.Board(uid)
}

func (s *ProfileService) fetch(ctx context.Context, uid, token string) ([]model.Repository, error) {
	client := s.clients.ForToken(token)

	if _, err := client.AuthenticatedUser(ctx); err != nil {
		return nil, fmt.Errorf("validate token: %w", err)
	}

	remote, err := client.ListRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}

	prefs, err := s.store.ListByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}

	return Reconcile(remote, PreferenceMap(prefs)), nil
}
