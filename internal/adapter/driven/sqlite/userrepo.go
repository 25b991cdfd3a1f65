package sqlite

import (
	"context"
	"fmt"

	"github.com/rs/xid"

	"github.com/ericfisherdev/autoreview/internal/domain/model"
	"github.com/ericfisherdev/autoreview/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.IdentityDirectory = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the IdentityDirectory port. A
// GitHub account gets a generated uid the first time it signs in and keeps
// it afterwards; profile fields are refreshed on every sign-in.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo backed by the given DB.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Resolve upserts the GitHub account and returns its session identity.
func (r *UserRepo) Resolve(ctx context.Context, user model.GitHubUser) (model.Session, error) {
	const query = `
		INSERT INTO users (uid, github_id, login, display_name, email, photo_url)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(github_id) DO UPDATE SET
			login = excluded.login,
			display_name = excluded.display_name,
			email = excluded.email,
			photo_url = excluded.photo_url,
			updated_at = CURRENT_TIMESTAMP
		RETURNING uid, display_name, email, photo_url
	`

	var s model.Session
	err := r.db.Writer.QueryRowContext(ctx, query,
		xid.New().String(), user.ID, user.Login, user.DisplayName(), user.Email, user.AvatarURL,
	).Scan(&s.UID, &s.DisplayName, &s.Email, &s.PhotoURL)
	if err != nil {
		return model.Session{}, fmt.Errorf("upsert user %d: %w", user.ID, err)
	}

	return s, nil
}
