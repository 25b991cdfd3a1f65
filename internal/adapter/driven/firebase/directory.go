package firebase

import (
	"context"
	"fmt"
	"strconv"

	"firebase.google.com/go/v4/auth"

	"github.com/ericfisherdev/autoreview/internal/domain/model"
	"github.com/ericfisherdev/autoreview/internal/domain/port/driven"
)

// uidPrefix namespaces Firebase users created for GitHub accounts.
const uidPrefix = "github:"

// Compile-time interface satisfaction check.
var _ driven.IdentityDirectory = (*Directory)(nil)

// userClient is the subset of *auth.Client the directory calls.
type userClient interface {
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
}

// Directory registers each GitHub account as a Firebase user with uid
// "github:<numeric id>", so the uid survives login renames.
type Directory struct {
	client        userClient
	isNotFound    func(error) bool
	isEmailExists func(error) bool
}

// NewDirectory creates a Directory backed by Firebase Authentication.
func NewDirectory(client *auth.Client) *Directory {
	return &Directory{
		client:        client,
		isNotFound:    auth.IsUserNotFound,
		isEmailExists: auth.IsEmailAlreadyExists,
	}
}

// UID returns the Firebase uid for a GitHub account id.
func UID(githubID int64) string {
	return uidPrefix + strconv.FormatInt(githubID, 10)
}

// Resolve returns the Firebase user for the GitHub account, creating it on
// first sign-in.
func (d *Directory) Resolve(ctx context.Context, user model.GitHubUser) (model.Session, error) {
	uid := UID(user.ID)

	record, err := d.client.GetUser(ctx, uid)
	if err == nil {
		return sessionFrom(record, user), nil
	}
	if !d.isNotFound(err) {
		return model.Session{}, fmt.Errorf("get firebase user %s: %w", uid, err)
	}

	record, err = d.client.CreateUser(ctx, userToCreate(uid, user, true))
	if err != nil && user.Email != "" && d.isEmailExists(err) {
		// The address belongs to another Firebase account; register without it.
		record, err = d.client.CreateUser(ctx, userToCreate(uid, user, false))
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("create firebase user %s: %w", uid, err)
	}

	return sessionFrom(record, user), nil
}

// userToCreate builds the create request. The Admin SDK rejects empty
// display names, emails and photo URLs, so only set fields are sent.
func userToCreate(uid string, user model.GitHubUser, withEmail bool) *auth.UserToCreate {
	params := (&auth.UserToCreate{}).UID(uid)
	if name := user.DisplayName(); name != "" {
		params = params.DisplayName(name)
	}
	if user.AvatarURL != "" {
		params = params.PhotoURL(user.AvatarURL)
	}
	if withEmail && user.Email != "" {
		params = params.Email(user.Email)
	}
	return params
}

func sessionFrom(record *auth.UserRecord, fallback model.GitHubUser) model.Session {
	s := model.Session{
		DisplayName: fallback.DisplayName(),
		Email:       fallback.Email,
		PhotoURL:    fallback.AvatarURL,
	}
	if record == nil || record.UserInfo == nil {
		s.UID = UID(fallback.ID)
		return s
	}

	s.UID = record.UID
	if record.DisplayName != "" {
		s.DisplayName = record.DisplayName
	}
	if record.Email != "" {
		s.Email = record.Email
	}
	if record.PhotoURL != "" {
		s.PhotoURL = record.PhotoURL
	}
	return s
}
