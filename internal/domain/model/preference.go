package model

// Preference is the persisted auto-review setting for one repository of one
// user. Records are keyed by PreferenceKey so a write is always an upsert.
type Preference struct {
	UserID     string
	RepoName   string
	AutoReview bool
}

// Key returns the document key for the preference.
func (p Preference) Key() string {
	return PreferenceKey(p.UserID, p.RepoName)
}

// PreferenceKey builds the composite document key "{uid}_{repoName}".
func PreferenceKey(uid, repoName string) string {
	return uid + "_" + repoName
}
