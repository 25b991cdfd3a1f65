package application_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/autoreview/internal/domain/model"
	"github.com/ericfisherdev/autoreview/internal/domain/port/driven"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePreferenceStore is an in-memory PreferenceStore keyed like the real
// stores. It records every Put in order.
type fakePreferenceStore struct {
	mu      sync.Mutex
	docs    map[string]model.Preference
	puts    []model.Preference
	keys    []string
	listErr error
	putErr  error
	listed  int
}

func newFakePreferenceStore(prefs ...model.Preference) *fakePreferenceStore {
	s := &fakePreferenceStore{docs: make(map[string]model.Preference)}
	for _, p := range prefs {
		s.docs[p.Key()] = p
	}
	return s
}

func (s *fakePreferenceStore) ListByUser(_ context.Context, userID string) ([]model.Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listed++
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []model.Preference
	for _, p := range s.docs {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePreferenceStore) Put(_ context.Context, p model.Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, p)
	s.keys = append(s.keys, p.Key())
	if s.putErr != nil {
		return s.putErr
	}
	s.docs[p.Key()] = p
	return nil
}

// mockGitHubClient implements driven.GitHubClient with canned responses.
type mockGitHubClient struct {
	user     *model.GitHubUser
	userErr  error
	repos    []model.RemoteRepository
	reposErr error

	userCalls int
	repoCalls int
}

func (m *mockGitHubClient) AuthenticatedUser(_ context.Context) (*model.GitHubUser, error) {
	m.userCalls++
	if m.userErr != nil {
		return nil, m.userErr
	}
	return m.user, nil
}

func (m *mockGitHubClient) ListRepositories(_ context.Context) ([]model.RemoteRepository, error) {
	m.repoCalls++
	return m.repos, m.reposErr
}

// mockClientFactory hands out the same client for every token and records
// which tokens were requested.
type mockClientFactory struct {
	client *mockGitHubClient
	tokens []string
}

func (f *mockClientFactory) ForToken(token string) driven.GitHubClient {
	f.tokens = append(f.tokens, token)
	return f.client
}

type mockIdentityProvider struct {
	token   string
	err     error
	gotCode string
}

func (m *mockIdentityProvider) AuthURL(state string) string {
	return "https://github.test/login/oauth/authorize?state=" + state
}

func (m *mockIdentityProvider) Exchange(_ context.Context, code string) (string, error) {
	m.gotCode = code
	return m.token, m.err
}

type mockDirectory struct {
	err error
}

func (m *mockDirectory) Resolve(_ context.Context, user model.GitHubUser) (model.Session, error) {
	if m.err != nil {
		return model.Session{}, m.err
	}
	return model.Session{
		UID:         "uid-" + user.Login,
		DisplayName: user.DisplayName(),
		Email:       user.Email,
		PhotoURL:    user.AvatarURL,
	}, nil
}
