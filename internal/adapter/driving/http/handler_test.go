package httphandler_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/autoreview/internal/adapter/driving/http"
	"github.com/ericfisherdev/autoreview/internal/application"
)

func newTestRouter(t *testing.T, mount func(chi.Router)) http.Handler {
	t.Helper()

	registry := application.NewBoardRegistry(application.NewSessionHub())
	h := httphandler.NewHandler(application.NewHealthService("firestore", registry))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return httphandler.NewRouter(h, logger, mount)
}

func TestHealth_ReturnsOK(t *testing.T) {
	router := newTestRouter(t, func(chi.Router) {})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body httphandler.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "firestore", body.Store)
	assert.Zero(t, body.MountedBoards)
}

func TestRouter_MountsRoutes(t *testing.T) {
	router := newTestRouter(t, func(r chi.Router) {
		r.Get("/hello", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("hi"))
		})
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", rec.Body.String())
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	router := newTestRouter(t, func(r chi.Router) {
		r.Get("/boom", func(http.ResponseWriter, *http.Request) {
			panic("boom")
		})
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
