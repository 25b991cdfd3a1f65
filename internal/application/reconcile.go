package application

import "github.com/ericfisherdev/autoreview/internal/domain/model"

// PreferenceMap indexes stored preferences by repository name in a single
// pass. When two records share a name the later one wins.
func PreferenceMap(prefs []model.Preference) map[string]bool {
	saved := make(map[string]bool, len(prefs))
	for _, p := range prefs {
		saved[p.RepoName] = p.AutoReview
	}
	return saved
}

// Reconcile left-joins the lister's page against saved preferences by name.
// The result has one entry per remote repository, in the lister's order, and
// a repository with no saved preference is reported as AutoReview=false.
func Reconcile(remote []model.RemoteRepository, saved map[string]bool) []model.Repository {
	repos := make([]model.Repository, 0, len(remote))
	for _, r := range remote {
		repos = append(repos, model.Repository{
			ID:          r.ID,
			Name:        r.Name,
			AutoReview:  saved[r.Name],
			FullName:    r.FullName,
			Description: r.Description,
			Private:     r.Private,
			HTMLURL:     r.HTMLURL,
		})
	}
	return repos
}
