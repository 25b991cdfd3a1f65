package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	githubadapter "github.com/ericfisherdev/autoreview/internal/adapter/driven/github"
	"github.com/ericfisherdev/autoreview/internal/adapter/driven/oauth"
	httphandler "github.com/ericfisherdev/autoreview/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/autoreview/internal/adapter/driving/web"
	"github.com/ericfisherdev/autoreview/internal/application"
	"github.com/ericfisherdev/autoreview/internal/config"
)

func serve(parent context.Context, configPath string) error {
	// 1. Load configuration (fail fast on missing required settings).
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Build the logger, optionally teed to Cloud Logging.
	logger, closeLogger, err := newLogger(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLogger()
	slog.SetDefault(logger)
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"base_url", cfg.BaseURL,
		"store", cfg.Store,
		"cloud_logging", cfg.CloudLogging,
	)

	// 4. Open the preference store and identity directory.
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.close(); closeErr != nil {
			slog.Error("error closing store", "store", cfg.Store, "error", closeErr)
		}
	}()

	// 5. Cookie codecs.
	tokenKey, err := cfg.TokenKey()
	if err != nil {
		return err
	}
	tokens, err := webhandler.NewTokenCipher(tokenKey)
	if err != nil {
		return err
	}
	sessions := webhandler.NewSessionCodec([]byte(cfg.SessionSecret))

	// 6. Wire adapters and services.
	clients := githubadapter.NewClientFactory()
	provider := oauth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.BaseURL)

	hub := application.NewSessionHub()
	boards := application.NewBoardRegistry(hub)

	authSvc := application.NewAuthService(provider, clients, st.directory, hub, logger)
	profileSvc := application.NewProfileService(clients, st.preferences, boards, logger)
	healthSvc := application.NewHealthService(cfg.Store, boards)

	// 7. Build the router: operational endpoints plus the pages.
	webHandler := webhandler.NewHandler(authSvc, profileSvc, sessions, tokens, cfg.SecureCookies, logger)
	handler := httphandler.NewRouter(httphandler.NewHandler(healthSvc), logger, func(r chi.Router) {
		webhandler.RegisterRoutes(r, webHandler)
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// 8. Log startup complete.
	slog.Info("autoreview started", "listen_addr", cfg.ListenAddr, "callback", cfg.BaseURL+oauth.CallbackPath)

	// 9. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serveErr:
		slog.Error("http server error", "error", err)
		return err
	}

	// 10. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	// 11. Log shutdown complete.
	slog.Info("shutdown complete")
	return nil
}
