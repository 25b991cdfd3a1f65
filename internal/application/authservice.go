package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rs/xid"

	"github.com/ericfisherdev/autoreview/internal/domain/model"
	"github.com/ericfisherdev/autoreview/internal/domain/port/driven"
)

// ProvisionalUIDPrefix marks the uid of a session that signed in without a
// usable bearer token. Such a session has no GitHub account behind it.
const ProvisionalUIDPrefix = "provisional:"

// SignIn is the result of a completed sign-in. Token is empty when the
// provider finished sign-in without handing out a usable token.
type SignIn struct {
	Session model.Session
	Token   string
}

// AuthService orchestrates the sign-in and sign-out flow.
type AuthService struct {
	provider  driven.IdentityProvider
	clients   driven.GitHubClientFactory
	directory driven.IdentityDirectory
	hub       *SessionHub
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with the required dependencies.
func NewAuthService(
	provider driven.IdentityProvider,
	clients driven.GitHubClientFactory,
	directory driven.IdentityDirectory,
	hub *SessionHub,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		provider:  provider,
		clients:   clients,
		directory: directory,
		hub:       hub,
		logger:    logger,
	}
}

// AuthURL returns the identity provider URL that starts sign-in.
func (s *AuthService) AuthURL(state string) string {
	return s.provider.AuthURL(state)
}

// Complete finishes sign-in: it exchanges code for a token, looks up the
// GitHub account behind it and resolves the stable user ID.
//
// An exchange that succeeds with an empty token still signs the user in, with
// a provisional session and no token. The profile then lands in the
// no-token state and offers sign-out.
func (s *AuthService) Complete(ctx context.Context, code string) (*SignIn, error) {
	token, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	if token == "" {
		session := model.Session{UID: ProvisionalUIDPrefix + xid.New().String()}
		s.hub.Publish(session.UID, &session)
		s.logger.Warn("user signed in without github token", "uid", session.UID)
		return &SignIn{Session: session}, nil
	}

	user, err := s.clients.ForToken(token).AuthenticatedUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch github user: %w", err)
	}

	session, err := s.directory.Resolve(ctx, *user)
	if err != nil {
		return nil, fmt.Errorf("resolve user %d: %w", user.ID, err)
	}

	s.hub.Publish(session.UID, &session)
	s.logger.Info("user signed in", "uid", session.UID, "login", user.Login)

	return &SignIn{Session: session, Token: token}, nil
}

// SignOut notifies session dependents that uid signed out.
func (s *AuthService) SignOut(uid string) {
	s.hub.Publish(uid, nil)
	s.logger.Info("user signed out", "uid", uid)
}
