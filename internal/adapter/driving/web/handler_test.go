package web_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/autoreview/internal/adapter/driving/web"
	"github.com/ericfisherdev/autoreview/internal/application"
	"github.com/ericfisherdev/autoreview/internal/domain/model"
	"github.com/ericfisherdev/autoreview/internal/domain/port/driven"
)

// --- Fakes for driven ports ---

type fakeProvider struct {
	token string
	err   error
}

func (p *fakeProvider) AuthURL(state string) string {
	return "https://github.example/login/oauth/authorize?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, _ string) (string, error) {
	return p.token, p.err
}

type fakeClients struct {
	mu       sync.Mutex
	user     *model.GitHubUser
	userErr  error
	repos    []model.RemoteRepository
	reposErr error
	tokens   []string
}

func (f *fakeClients) ForToken(token string) driven.GitHubClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return f
}

func (f *fakeClients) AuthenticatedUser(context.Context) (*model.GitHubUser, error) {
	return f.user, f.userErr
}

func (f *fakeClients) ListRepositories(context.Context) ([]model.RemoteRepository, error) {
	return f.repos, f.reposErr
}

func (f *fakeClients) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

type fakeStore struct {
	mu     sync.Mutex
	docs   map[string]model.Preference
	puts   []model.Preference
	lists  int
	putErr error
}

func (s *fakeStore) ListByUser(_ context.Context, uid string) ([]model.Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	var out []model.Preference
	for _, p := range s.docs {
		if p.UserID == uid {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) Put(_ context.Context, p model.Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, p)
	if s.putErr != nil {
		return s.putErr
	}
	s.docs[p.Key()] = p
	return nil
}

type fakeDirectory struct{}

func (fakeDirectory) Resolve(_ context.Context, u model.GitHubUser) (model.Session, error) {
	return model.Session{UID: "uid-1", DisplayName: u.DisplayName(), Email: u.Email, PhotoURL: u.AvatarURL}, nil
}

// --- Fixture ---

type fixture struct {
	router   http.Handler
	provider *fakeProvider
	clients  *fakeClients
	store    *fakeStore
	profiles *application.ProfileService
	sessions *web.SessionCodec
	tokens   *web.TokenCipher
}

var testSession = model.Session{UID: "uid-1", DisplayName: "The Octocat", Email: "octo@example.com"}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		provider: &fakeProvider{token: "gho_secret"},
		clients: &fakeClients{
			user: &model.GitHubUser{ID: 1, Login: "octocat", Name: "The Octocat"},
			repos: []model.RemoteRepository{
				{ID: 10, Name: "alpha", FullName: "octocat/alpha"},
				{ID: 20, Name: "beta", FullName: "octocat/beta"},
			},
		},
		store: &fakeStore{docs: map[string]model.Preference{
			"uid-1_alpha": {UserID: "uid-1", RepoName: "alpha", AutoReview: true},
		}},
		sessions: web.NewSessionCodec([]byte("0123456789abcdef0123456789abcdef")),
	}

	var err error
	f.tokens, err = web.NewTokenCipher([]byte("abcdef0123456789abcdef0123456789"))
	require.NoError(t, err)

	hub := application.NewSessionHub()
	boards := application.NewBoardRegistry(hub)
	auth := application.NewAuthService(f.provider, f.clients, fakeDirectory{}, hub, logger)
	f.profiles = application.NewProfileService(f.clients, f.store, boards, logger)

	h := web.NewHandler(auth, f.profiles, f.sessions, f.tokens, false, logger)
	r := chi.NewRouter()
	web.RegisterRoutes(r, h)
	f.router = r

	return f
}

func (f *fixture) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	v, err := f.sessions.Encode(testSession)
	require.NoError(t, err)
	return &http.Cookie{Name: "session", Value: v}
}

func (f *fixture) tokenCookie(t *testing.T, token string) *http.Cookie {
	t.Helper()
	v, err := f.tokens.Seal(token)
	require.NoError(t, err)
	return &http.Cookie{Name: "github_token", Value: v}
}

func (f *fixture) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// mountProfile loads the profile and returns the CSRF cookie it issued.
func (f *fixture) mountProfile(t *testing.T) *http.Cookie {
	t.Helper()
	rec := f.do(httptest.NewRequest(http.MethodGet, "/profile", nil), f.sessionCookie(t), f.tokenCookie(t, "gho_secret"))
	require.Equal(t, http.StatusOK, rec.Code)
	csrf := findCookie(rec, "csrf_token")
	require.NotNil(t, csrf)
	return csrf
}

func toggleRequest(repoID, name, current, csrf string, script bool) *http.Request {
	form := url.Values{"repo_name": {name}, "auto_review": {current}, "csrf_token": {csrf}}
	req := httptest.NewRequest(http.MethodPost, "/profile/repos/"+repoID+"/toggle", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if script {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
	return req
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- Routing ---

func TestUnknownRoute_RedirectsToSignIn(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/does/not/exist", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestSignIn_RendersSignInAction(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sign in with GitHub")
	assert.Contains(t, rec.Body.String(), `href="/auth/github/login"`)
}

func TestSignIn_SignedInUserGoesToProfile(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil), f.sessionCookie(t))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile", rec.Header().Get("Location"))
}

func TestStaticAssetsServed(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/static/js/app.js", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "toggle-form")
	assert.NotContains(t, rec.Body.String(), "disabled", "toggles stay clickable during a write")
}

// --- Profile mount ---

func TestProfile_WithoutSessionRedirects(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/profile", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Zero(t, f.clients.calls())
}

func TestProfile_MissingTokenShowsMessageWithoutFetching(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/profile", nil), f.sessionCookie(t))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "GitHub token not found. Please sign in again.")
	assert.Contains(t, body, "Sign Out and Try Again")
	assert.NotContains(t, body, "repo-row")
	assert.Zero(t, f.clients.calls())
	assert.Zero(t, f.store.lists)
}

func TestProfile_UnreadableTokenIsTreatedAsMissing(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/profile", nil),
		f.sessionCookie(t), &http.Cookie{Name: "github_token", Value: "garbage"})

	assert.Contains(t, rec.Body.String(), "GitHub token not found. Please sign in again.")
	cleared := findCookie(rec, "github_token")
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
	assert.Zero(t, f.clients.calls())
}

func TestProfile_FetchFailureDiscardsToken(t *testing.T) {
	f := newFixture(t)
	f.clients.reposErr = errors.New("502 bad gateway")

	rec := f.do(httptest.NewRequest(http.MethodGet, "/profile", nil), f.sessionCookie(t), f.tokenCookie(t, "gho_secret"))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Failed to fetch repositories. Please sign in again.")
	assert.Contains(t, body, "Sign Out and Try Again")

	cleared := findCookie(rec, "github_token")
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

func TestProfile_RejectedTokenDiscardsToken(t *testing.T) {
	f := newFixture(t)
	f.clients.userErr = driven.ErrTokenRejected

	rec := f.do(httptest.NewRequest(http.MethodGet, "/profile", nil), f.sessionCookie(t), f.tokenCookie(t, "gho_secret"))

	assert.Contains(t, rec.Body.String(), "Failed to fetch repositories. Please sign in again.")
	assert.NotNil(t, findCookie(rec, "github_token"))
}

func TestProfile_ReadyRendersReconciledRows(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/profile", nil), f.sessionCookie(t), f.tokenCookie(t, "gho_secret"))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "The Octocat")
	assert.Contains(t, body, "octo@example.com")
	assert.Nil(t, findCookie(rec, "github_token"))

	alpha := strings.Index(body, `id="repo-10"`)
	beta := strings.Index(body, `id="repo-20"`)
	require.Positive(t, alpha)
	require.Positive(t, beta)
	assert.Less(t, alpha, beta)
	assert.Contains(t, body[alpha:beta], `aria-checked="true"`)
	assert.Contains(t, body[beta:], `aria-checked="false"`)
	assert.Equal(t, []string{"gho_secret"}, f.clients.tokens)
}

func TestProfile_EmptyListShowsPlaceholder(t *testing.T) {
	f := newFixture(t)
	f.clients.repos = nil

	rec := f.do(httptest.NewRequest(http.MethodGet, "/profile", nil), f.sessionCookie(t), f.tokenCookie(t, "gho_secret"))

	assert.Contains(t, rec.Body.String(), "No repositories found")
}

// --- Toggle ---

func TestToggle_ScriptRequestReturnsUpdatedRow(t *testing.T) {
	f := newFixture(t)
	csrf := f.mountProfile(t)

	rec := f.do(toggleRequest("20", "beta", "false", csrf.Value, true), f.sessionCookie(t), csrf)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="repo-20"`)
	assert.Contains(t, rec.Body.String(), `aria-checked="true"`)
	require.Len(t, f.store.puts, 1)
	assert.Equal(t, model.Preference{UserID: "uid-1", RepoName: "beta", AutoReview: true}, f.store.puts[0])
}

func TestToggle_OverlappingClicksEachWrite(t *testing.T) {
	f := newFixture(t)
	csrf := f.mountProfile(t)

	// Both clicks carry the value displayed before either response arrived.
	first := f.do(toggleRequest("20", "beta", "false", csrf.Value, true), f.sessionCookie(t), csrf)
	second := f.do(toggleRequest("20", "beta", "false", csrf.Value, true), f.sessionCookie(t), csrf)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	require.Len(t, f.store.puts, 2)
	assert.True(t, f.store.puts[0].AutoReview)
	assert.True(t, f.store.puts[1].AutoReview)
	assert.Equal(t, f.store.puts[0].Key(), f.store.puts[1].Key())
}

func TestToggle_WriteFailureRevertsDisplayedValue(t *testing.T) {
	f := newFixture(t)
	csrf := f.mountProfile(t)
	f.store.putErr = errors.New("unavailable")

	rec := f.do(toggleRequest("10", "alpha", "true", csrf.Value, true), f.sessionCookie(t), csrf)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `aria-checked="true"`)
	assert.Contains(t, rec.Body.String(), "Auto review: On")
	require.Len(t, f.store.puts, 1)
	assert.False(t, f.store.puts[0].AutoReview)

	board, ok := f.profiles.Board("uid-1")
	require.True(t, ok)
	repo, _ := board.Repository(10)
	assert.True(t, repo.AutoReview)
}

func TestToggle_FormPostRedirectsToProfile(t *testing.T) {
	f := newFixture(t)
	csrf := f.mountProfile(t)

	rec := f.do(toggleRequest("20", "beta", "false", csrf.Value, false), f.sessionCookie(t), csrf)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile", rec.Header().Get("Location"))
	assert.Len(t, f.store.puts, 1)
}

func TestToggle_RejectsBadCSRF(t *testing.T) {
	f := newFixture(t)
	csrf := f.mountProfile(t)

	rec := f.do(toggleRequest("20", "beta", "false", "forged", true), f.sessionCookie(t), csrf)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.store.puts)
}

func TestToggle_RejectsInvalidForm(t *testing.T) {
	f := newFixture(t)
	csrf := f.mountProfile(t)

	rec := f.do(toggleRequest("20", "beta", "maybe", csrf.Value, true), f.sessionCookie(t), csrf)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.store.puts)
}

func TestToggle_UnknownRepository(t *testing.T) {
	f := newFixture(t)
	csrf := f.mountProfile(t)

	rec := f.do(toggleRequest("99", "ghost", "false", csrf.Value, true), f.sessionCookie(t), csrf)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, f.store.puts)
}

func TestToggle_WithoutSessionRedirects(t *testing.T) {
	f := newFixture(t)

	rec := f.do(toggleRequest("20", "beta", "false", "x", true))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

// --- Sign-in flow ---

func TestLogin_SetsStateAndRedirects(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/auth/github/login", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	state := findCookie(rec, "oauth_state")
	require.NotNil(t, state)
	assert.True(t, state.HttpOnly)
	assert.Equal(t, 600, state.MaxAge)
	assert.Equal(t, "https://github.example/login/oauth/authorize?state="+state.Value, rec.Header().Get("Location"))
}

func TestCallback_StoresSessionAndEncryptedToken(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc&state=s1", nil)
	rec := f.do(req, &http.Cookie{Name: "oauth_state", Value: "s1"})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile", rec.Header().Get("Location"))

	session := findCookie(rec, "session")
	require.NotNil(t, session)
	decoded, err := f.sessions.Decode(session.Value)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", decoded.UID)

	token := findCookie(rec, "github_token")
	require.NotNil(t, token)
	assert.True(t, token.HttpOnly)
	assert.NotContains(t, token.Value, "gho_secret")
	plain, err := f.tokens.Open(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "gho_secret", plain)
}

func TestCallback_FailuresWriteNoSession(t *testing.T) {
	tests := []struct {
		name  string
		query string
		state string
		setup func(f *fixture)
	}{
		{name: "state mismatch", query: "code=abc&state=evil", state: "s1"},
		{name: "missing state cookie", query: "code=abc&state=s1"},
		{name: "user denied", query: "error=access_denied&state=s1", state: "s1"},
		{name: "missing code", query: "state=s1", state: "s1"},
		{name: "exchange error", query: "code=abc&state=s1", state: "s1", setup: func(f *fixture) {
			f.provider.err = errors.New("bad_verification_code")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			var cookies []*http.Cookie
			if tt.state != "" {
				cookies = append(cookies, &http.Cookie{Name: "oauth_state", Value: tt.state})
			}
			rec := f.do(httptest.NewRequest(http.MethodGet, "/auth/github/callback?"+tt.query, nil), cookies...)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/", rec.Header().Get("Location"))
			assert.Nil(t, findCookie(rec, "session"))
			assert.Nil(t, findCookie(rec, "github_token"))
		})
	}
}

func TestCallback_EmptyTokenLandsOnMissingTokenState(t *testing.T) {
	f := newFixture(t)
	f.provider.token = ""

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc&state=s1", nil)
	rec := f.do(req, &http.Cookie{Name: "oauth_state", Value: "s1"})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile", rec.Header().Get("Location"))

	session := findCookie(rec, "session")
	require.NotNil(t, session)
	decoded, err := f.sessions.Decode(session.Value)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(decoded.UID, application.ProvisionalUIDPrefix))

	token := findCookie(rec, "github_token")
	require.NotNil(t, token)
	assert.Negative(t, token.MaxAge)

	profile := f.do(httptest.NewRequest(http.MethodGet, "/profile", nil), session)

	assert.Equal(t, http.StatusOK, profile.Code)
	body := profile.Body.String()
	assert.Contains(t, body, "GitHub token not found. Please sign in again.")
	assert.Contains(t, body, "Sign Out and Try Again")
	assert.NotContains(t, body, "repo-row")
	assert.Zero(t, f.clients.calls())
	assert.Zero(t, f.store.lists)
}

func TestSignOut_ClearsCookiesAndTearsDownBoard(t *testing.T) {
	f := newFixture(t)
	csrf := f.mountProfile(t)
	_, ok := f.profiles.Board("uid-1")
	require.True(t, ok)

	form := url.Values{"csrf_token": {csrf.Value}}
	req := httptest.NewRequest(http.MethodPost, "/auth/signout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := f.do(req, f.sessionCookie(t), f.tokenCookie(t, "gho_secret"), csrf)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Negative(t, findCookie(rec, "session").MaxAge)
	assert.Negative(t, findCookie(rec, "github_token").MaxAge)

	_, ok = f.profiles.Board("uid-1")
	assert.False(t, ok)
}

func TestSignOut_RequiresCSRF(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/auth/signout", nil), f.sessionCookie(t))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
