// Package firestore implements the PreferenceStore port on Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ericfisherdev/autoreview/internal/domain/model"
	"github.com/ericfisherdev/autoreview/internal/domain/port/driven"
)

// DefaultCollection is the collection preference documents live in.
const DefaultCollection = "repositories"

const userIDField = "userId"

// Compile-time interface satisfaction check.
var _ driven.PreferenceStore = (*PreferenceStore)(nil)

// preferenceDoc is the schema of one document in the preference collection.
type preferenceDoc struct {
	UserID     string `firestore:"userId"`
	RepoName   string `firestore:"repoName"`
	AutoReview bool   `firestore:"autoReview"`
}

// PreferenceStore keeps one document per (user, repository), with document
// ID "{uid}_{repoName}".
type PreferenceStore struct {
	collection *firestore.CollectionRef
}

// NewPreferenceStore creates a PreferenceStore on the named collection.
func NewPreferenceStore(client *firestore.Client, collection string) *PreferenceStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &PreferenceStore{collection: client.Collection(collection)}
}

// ListByUser returns every preference document whose userId is userID.
func (s *PreferenceStore) ListByUser(ctx context.Context, userID string) ([]model.Preference, error) {
	iter := s.collection.Where(userIDField, "==", userID).Documents(ctx)
	defer iter.Stop()

	prefs := []model.Preference{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, unavailable("query preferences for "+userID, err)
		}

		var doc preferenceDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode preference %s: %w", snap.Ref.ID, err)
		}
		prefs = append(prefs, doc.toModel())
	}

	return prefs, nil
}

// Put overwrites the document for p. Fields absent from p are removed.
func (s *PreferenceStore) Put(ctx context.Context, p model.Preference) error {
	if _, err := s.collection.Doc(p.Key()).Set(ctx, newPreferenceDoc(p)); err != nil {
		return unavailable("set preference "+p.Key(), err)
	}
	return nil
}

func newPreferenceDoc(p model.Preference) preferenceDoc {
	return preferenceDoc{
		UserID:     p.UserID,
		RepoName:   p.RepoName,
		AutoReview: p.AutoReview,
	}
}

func (d preferenceDoc) toModel() model.Preference {
	return model.Preference{
		UserID:     d.UserID,
		RepoName:   d.RepoName,
		AutoReview: d.AutoReview,
	}
}

// unavailable wraps a Firestore failure with driven.ErrStoreUnavailable and
// the gRPC status code, if any.
func unavailable(op string, err error) error {
	if code := status.Code(err); code != codes.Unknown {
		return fmt.Errorf("%w: %s: %s: %w", driven.ErrStoreUnavailable, op, code, err)
	}
	return fmt.Errorf("%w: %s: %w", driven.ErrStoreUnavailable, op, err)
}
