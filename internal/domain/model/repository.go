package model

import "time"

// Repository is a GitHub repository as shown on the profile page, with the
// user's auto-review preference joined in. ID and Name come from GitHub and
// do not change for the lifetime of a board.
type Repository struct {
	ID         int64
	Name       string
	AutoReview bool

	// Display-only metadata copied from the lister.
	FullName    string
	Description string
	Private     bool
	HTMLURL     string
}

// RemoteRepository is a repository as returned by the GitHub lister, before
// any stored preference is applied.
type RemoteRepository struct {
	ID          int64
	Name        string
	FullName    string
	Description string
	Private     bool
	HTMLURL     string
	UpdatedAt   time.Time
}
