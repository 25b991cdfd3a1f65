package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/autoreview/internal/domain/model"
	"github.com/ericfisherdev/autoreview/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PreferenceStore = (*PreferenceRepo)(nil)

// PreferenceRepo is the SQLite implementation of the PreferenceStore port.
// Rows are keyed by the same "{uid}_{repoName}" key the Firestore store uses
// as document ID.
type PreferenceRepo struct {
	db *DB
}

// NewPreferenceRepo creates a new PreferenceRepo backed by the given DB.
func NewPreferenceRepo(db *DB) *PreferenceRepo {
	return &PreferenceRepo{db: db}
}

// ListByUser returns every preference stored for userID in insertion order.
func (r *PreferenceRepo) ListByUser(ctx context.Context, userID string) ([]model.Preference, error) {
	const query = `
		SELECT user_id, repo_name, auto_review
		FROM preferences
		WHERE user_id = ?
		ORDER BY rowid
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list preferences for %s: %w", driven.ErrStoreUnavailable, userID, err)
	}
	defer rows.Close()

	prefs := []model.Preference{}
	for rows.Next() {
		var p model.Preference
		if err := rows.Scan(&p.UserID, &p.RepoName, &p.AutoReview); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate preferences: %w", driven.ErrStoreUnavailable, err)
	}

	return prefs, nil
}

// Put replaces the record for the preference key with p.
func (r *PreferenceRepo) Put(ctx context.Context, p model.Preference) error {
	const query = `
		INSERT INTO preferences (doc_key, user_id, repo_name, auto_review, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(doc_key) DO UPDATE SET
			user_id = excluded.user_id,
			repo_name = excluded.repo_name,
			auto_review = excluded.auto_review,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Writer.ExecContext(ctx, query, p.Key(), p.UserID, p.RepoName, p.AutoReview)
	if err != nil {
		return fmt.Errorf("%w: put preference %s: %w", driven.ErrStoreUnavailable, p.Key(), err)
	}

	return nil
}
