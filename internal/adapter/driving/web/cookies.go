package web

import (
	"net/http"
	"time"
)

const (
	sessionCookieName = "session"
	tokenCookieName   = "github_token"
	stateCookieName   = "oauth_state"

	stateCookieMaxAge = 600
	sessionTTL        = 7 * 24 * time.Hour
)

// cookieJar writes and clears the application's cookies with consistent
// attributes.
type cookieJar struct {
	secure bool
}

func (j cookieJar) set(w http.ResponseWriter, name, value string, maxAge int, sameSite http.SameSite) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: sameSite,
	})
}

func (j cookieJar) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
