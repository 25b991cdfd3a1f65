// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// SignInPage holds the data for the sign-in page.
type SignInPage struct {
	LoginURL string
}

// Header is the signed-in user's profile summary. Any field may be empty.
type Header struct {
	DisplayName string
	Email       string
	PhotoURL    string
}

// ProfilePage holds the data for the profile page in any authenticated state.
type ProfilePage struct {
	Header    Header
	State     string
	Message   string // set for the missing-token and fetch-error states
	Repos     []RepoRow
	CSRFToken string
}

// HasError reports whether the page shows the error panel instead of the list.
func (p ProfilePage) HasError() bool {
	return p.Message != ""
}

// RepoRow holds presentation-ready data for one repository toggle row.
type RepoRow struct {
	ID              int64
	DOMID           string
	Name            string
	FullName        string
	DescriptionHTML string
	Private         bool
	HTMLURL         string
	AutoReview      bool
	ToggleURL       string
	CSRFToken       string
}

// StateLabel is the toggle's visible text.
func (r RepoRow) StateLabel() string {
	if r.AutoReview {
		return "On"
	}
	return "Off"
}

// AriaChecked is the toggle's aria-checked value.
func (r RepoRow) AriaChecked() string {
	if r.AutoReview {
		return "true"
	}
	return "false"
}

// CurrentValue is the value posted back as the toggle's current state.
func (r RepoRow) CurrentValue() string {
	return r.AriaChecked()
}
