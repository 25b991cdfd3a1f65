package main

import (
	"context"
	"fmt"
	"log/slog"

	firebaseadapter "github.com/ericfisherdev/autoreview/internal/adapter/driven/firebase"
	firestoreadapter "github.com/ericfisherdev/autoreview/internal/adapter/driven/firestore"
	sqliteadapter "github.com/ericfisherdev/autoreview/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/autoreview/internal/config"
	"github.com/ericfisherdev/autoreview/internal/domain/port/driven"
)

// stores bundles the persistence adapters selected by AUTOREVIEW_STORE.
type stores struct {
	preferences driven.PreferenceStore
	directory   driven.IdentityDirectory
	close       func() error
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.UsesFirestore() {
		return openFirebase(ctx, cfg)
	}
	return openSQLite(cfg)
}

func openFirebase(ctx context.Context, cfg *config.Config) (*stores, error) {
	app, err := firebaseadapter.NewApp(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentials)
	if err != nil {
		return nil, err
	}
	slog.Info("firebase initialized",
		"project_id", cfg.FirebaseProjectID,
		"collection", cfg.FirestoreCollection,
	)

	return &stores{
		preferences: firestoreadapter.NewPreferenceStore(app.Firestore, cfg.FirestoreCollection),
		directory:   firebaseadapter.NewDirectory(app.Auth),
		close:       app.Close,
	}, nil
}

func openSQLite(cfg *config.Config) (*stores, error) {
	// Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	slog.Info("database opened", "path", cfg.DBPath)

	// Run migrations on writer connection.
	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", cfg.DBPath, err)
	}
	slog.Info("migrations complete", "version", version)

	return &stores{
		preferences: sqliteadapter.NewPreferenceRepo(db),
		directory:   sqliteadapter.NewUserRepo(db),
		close:       db.Close,
	}, nil
}

// migrate applies or rolls back the SQLite schema without starting the server.
func migrate(configPath string, down bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.UsesFirestore() {
		return fmt.Errorf("migrate applies to the sqlite store, AUTOREVIEW_STORE is %q", cfg.Store)
	}

	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if down {
		if err := sqliteadapter.RollbackMigrations(db.Writer); err != nil {
			return err
		}
		slog.Info("migrations rolled back", "path", cfg.DBPath)
		return nil
	}

	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		return err
	}
	slog.Info("migrations complete", "path", cfg.DBPath, "version", version)
	return nil
}
