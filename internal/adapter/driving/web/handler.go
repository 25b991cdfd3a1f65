// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/xid"

	"github.com/ericfisherdev/autoreview/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/autoreview/internal/adapter/driving/web/templates/components"
	"github.com/ericfisherdev/autoreview/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/autoreview/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/autoreview/internal/application"
	"github.com/ericfisherdev/autoreview/internal/domain/model"
)

const (
	loginPath   = "/auth/github/login"
	profilePath = "/profile"
	appTitle    = "Auto Review"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	auth     *application.AuthService
	profiles *application.ProfileService
	sessions *SessionCodec
	tokens   *TokenCipher
	cookies  cookieJar
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. secureCookies
// marks every cookie Secure and must be set when served over HTTPS.
func NewHandler(
	auth *application.AuthService,
	profiles *application.ProfileService,
	sessions *SessionCodec,
	tokens *TokenCipher,
	secureCookies bool,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		auth:     auth,
		profiles: profiles,
		sessions: sessions,
		tokens:   tokens,
		cookies:  cookieJar{secure: secureCookies},
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// toggleForm is the body of a toggle request. Current is the value the
// browser displayed when the user clicked.
type toggleForm struct {
	RepoID   int64  `validate:"gt=0"`
	RepoName string `validate:"required,max=255"`
	Current  string `validate:"oneof=true false"`
}

// SignIn renders the sign-in page, or sends a signed-in user to the profile.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	if h.currentSession(r) != nil {
		http.Redirect(w, r, profilePath, http.StatusFound)
		return
	}

	h.render(w, r, "Sign in - "+appTitle, pages.SignIn(vm.SignInPage{LoginURL: loginPath}))
}

// Login starts the GitHub OAuth flow.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()
	h.cookies.set(w, stateCookieName, state, stateCookieMaxAge, http.SameSiteLaxMode)

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusFound)
}

// Callback completes the GitHub OAuth flow. Any failure sends the browser
// back to the sign-in page without writing session cookies.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	expected := cookieValue(r, stateCookieName)
	h.cookies.clear(w, stateCookieName)

	if reason := q.Get("error"); reason != "" {
		h.logger.Warn("github sign-in denied", "reason", reason)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	state := q.Get("state")
	if expected == "" || subtle.ConstantTimeCompare([]byte(state), []byte(expected)) != 1 {
		h.logger.Warn("github sign-in state mismatch")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.logger.Warn("github sign-in callback without code")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	signIn, err := h.auth.Complete(r.Context(), code)
	if err != nil {
		h.logger.Error("github sign-in failed", "error", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	sessionValue, err := h.sessions.Encode(signIn.Session)
	if err != nil {
		h.logger.Error("failed to encode session", "uid", signIn.Session.UID, "error", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	// Without a token only the session is stored; the profile shows the
	// missing-token state.
	var tokenValue string
	if signIn.Token != "" {
		tokenValue, err = h.tokens.Seal(signIn.Token)
		if err != nil {
			h.logger.Error("failed to seal github token", "uid", signIn.Session.UID, "error", err)
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
	}

	h.cookies.set(w, sessionCookieName, sessionValue, h.sessions.MaxAge(), http.SameSiteLaxMode)
	if tokenValue != "" {
		h.cookies.set(w, tokenCookieName, tokenValue, h.sessions.MaxAge(), http.SameSiteLaxMode)
	} else {
		h.cookies.clear(w, tokenCookieName)
	}

	http.Redirect(w, r, profilePath, http.StatusFound)
}

// SignOut ends the session and deletes the stored token.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	if session := h.currentSession(r); session != nil {
		h.auth.SignOut(session.UID)
	}

	h.cookies.clear(w, sessionCookieName)
	h.cookies.clear(w, tokenCookieName)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Profile mounts the signed-in user's repository board.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	session := h.currentSession(r)
	token, tokenPresent := h.currentToken(r)

	p := h.profiles.Load(r.Context(), session, token)

	if p.State == model.BootstrapUnauthenticated {
		if tokenPresent {
			h.cookies.clear(w, tokenCookieName)
		}
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if p.DiscardToken() || (tokenPresent && token == "") {
		h.cookies.clear(w, tokenCookieName)
	}

	csrf := h.cookies.csrfToken(w, r)
	h.render(w, r, appTitle, pages.Profile(toProfilePage(p, csrf)))
}

// Toggle flips the auto-review preference of one repository on the mounted
// board. Script requests get the re-rendered row; plain form posts are
// redirected back to the profile.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	session := h.currentSession(r)
	if session == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	form := toggleForm{
		RepoID:   id,
		RepoName: r.PostFormValue("repo_name"),
		Current:  r.PostFormValue("auto_review"),
	}
	if err := h.validate.Struct(form); err != nil {
		http.Error(w, "invalid toggle request", http.StatusBadRequest)
		return
	}

	board, ok := h.profiles.Board(session.UID)
	if !ok {
		http.Redirect(w, r, profilePath, http.StatusSeeOther)
		return
	}

	// A failed write is logged by the board and the row shows the reverted value.
	_, err := board.Toggle(r.Context(), form.RepoID, form.RepoName, form.Current == "true")
	if errors.Is(err, application.ErrUnknownRepository) {
		http.Error(w, "unknown repository", http.StatusNotFound)
		return
	}

	if !isScriptRequest(r) {
		http.Redirect(w, r, profilePath, http.StatusSeeOther)
		return
	}

	repo, _ := board.Repository(form.RepoID)
	csrf := h.cookies.csrfToken(w, r)
	h.renderFragment(w, r, components.RepoRow(toRepoRow(repo, csrf)))
}

// NotFound sends unknown paths to the sign-in page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) currentSession(r *http.Request) *model.Session {
	raw := cookieValue(r, sessionCookieName)
	if raw == "" {
		return nil
	}
	session, err := h.sessions.Decode(raw)
	if err != nil {
		h.logger.Debug("ignoring session cookie", "error", err)
		return nil
	}
	return session
}

// currentToken returns the decrypted GitHub token and whether a token cookie
// was sent at all. An unreadable cookie yields an empty token.
func (h *Handler) currentToken(r *http.Request) (string, bool) {
	raw := cookieValue(r, tokenCookieName)
	if raw == "" {
		return "", false
	}
	token, err := h.tokens.Open(raw)
	if err != nil {
		h.logger.Warn("discarding unreadable github token cookie", "error", err)
		return "", true
	}
	return token, true
}

func isScriptRequest(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, title string, content templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	ctx := templ.WithChildren(r.Context(), content)
	if err := templates.Layout(title).Render(ctx, w); err != nil {
		h.renderError(r.Context(), w, err)
	}
}

func (h *Handler) renderFragment(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		h.renderError(r.Context(), w, err)
	}
}

func (h *Handler) renderError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return
	}
	h.logger.Error("failed to render page", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
