package web

import (
	"fmt"

	vm "github.com/ericfisherdev/autoreview/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/autoreview/internal/application"
	"github.com/ericfisherdev/autoreview/internal/domain/model"
)

// toHeader converts the session identity to the profile header.
func toHeader(s *model.Session) vm.Header {
	if s == nil {
		return vm.Header{}
	}
	return vm.Header{
		DisplayName: s.DisplayName,
		Email:       s.Email,
		PhotoURL:    s.PhotoURL,
	}
}

// toRepoRow converts a board repository to a toggle row.
func toRepoRow(repo model.Repository, csrf string) vm.RepoRow {
	return vm.RepoRow{
		ID:              repo.ID,
		DOMID:           fmt.Sprintf("repo-%d", repo.ID),
		Name:            repo.Name,
		FullName:        displayName(repo),
		DescriptionHTML: RenderDescription(repo.Description),
		Private:         repo.Private,
		HTMLURL:         repo.HTMLURL,
		AutoReview:      repo.AutoReview,
		ToggleURL:       fmt.Sprintf("/profile/repos/%d/toggle", repo.ID),
		CSRFToken:       csrf,
	}
}

func displayName(repo model.Repository) string {
	if repo.FullName != "" {
		return repo.FullName
	}
	return repo.Name
}

// toProfilePage converts a mount outcome to the profile page view model.
func toProfilePage(p application.Profile, csrf string) vm.ProfilePage {
	page := vm.ProfilePage{
		Header:    toHeader(p.Session),
		State:     string(p.State),
		Message:   p.Message,
		Repos:     []vm.RepoRow{},
		CSRFToken: csrf,
	}

	if p.Board == nil {
		return page
	}

	repos := p.Board.Repositories()
	page.Repos = make([]vm.RepoRow, 0, len(repos))
	for _, repo := range repos {
		page.Repos = append(page.Repos, toRepoRow(repo, csrf))
	}

	return page
}
