// Package firebase bootstraps the Firebase Admin SDK and implements the
// IdentityDirectory port on Firebase Authentication.
package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// App holds the Firebase service clients the application uses.
type App struct {
	Firestore *firestore.Client
	Auth      *auth.Client
}

// NewApp initializes Firebase for projectID. credentialsFile may be empty, in
// which case Application Default Credentials are used. Setting
// FIRESTORE_EMULATOR_HOST and FIREBASE_AUTH_EMULATOR_HOST points the clients at
// local emulators.
func NewApp(ctx context.Context, projectID, credentialsFile string) (*App, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firestore client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("initialize firebase auth client: %w", err)
	}

	return &App{Firestore: fs, Auth: authClient}, nil
}

// Close releases the Firestore connection.
func (a *App) Close() error {
	return a.Firestore.Close()
}
