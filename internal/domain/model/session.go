package model

// Session is the signed-in identity for one browser. UID is the stable
// identifier preferences are stored under; the other fields may be empty.
type Session struct {
	UID         string
	DisplayName string
	Email       string
	PhotoURL    string
}

// GitHubUser is the authenticated GitHub account behind a bearer token.
type GitHubUser struct {
	ID        int64
	Login     string
	Name      string
	Email     string
	AvatarURL string
}

// DisplayName returns the user's name, falling back to the login.
func (u GitHubUser) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}
