package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/ericfisherdev/autoreview/internal/adapter/driven/cloudlog"
	"github.com/ericfisherdev/autoreview/internal/config"
)

// newLogger builds the process logger. The returned func flushes the Cloud
// Logging sink when one is attached.
func newLogger(ctx context.Context, cfg *config.Config) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	if !cfg.CloudLogging {
		return slog.New(handler), func() {}, nil
	}

	if cfg.FirebaseProjectID == "" {
		return nil, nil, errors.New("AUTOREVIEW_CLOUD_LOGGING requires AUTOREVIEW_FIREBASE_PROJECT_ID")
	}

	sink, err := cloudlog.NewSink(ctx, cfg.FirebaseProjectID)
	if err != nil {
		return nil, nil, err
	}

	closeSink := func() {
		if err := sink.Close(); err != nil {
			slog.Error("error flushing cloud logging", "error", err)
		}
	}
	return slog.New(sink.Handler(handler)), closeSink, nil
}
