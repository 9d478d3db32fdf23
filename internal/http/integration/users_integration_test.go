package integration_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/geocoder89/userhub/internal/config"
	apphttp "github.com/geocoder89/userhub/internal/http"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/geocoder89/userhub/internal/repo"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func testConfig(driver string, t *testing.T) config.Config {
	return config.Config{
		Env:                "test",
		StoreDriver:        driver,
		SQLitePath:         filepath.Join(t.TempDir(), "users.db"),
		OTelServiceName:    "userhub-test",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		RateLimitPerMinute: 0,
		MaxBodyBytes:       1 << 20,
	}
}

func setupRouter(t *testing.T, driver string) *gin.Engine {
	t.Helper()

	cfg := testConfig(driver, t)

	store, err := repo.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	prom := observability.NewProm(prometheus.NewRegistry())

	return apphttp.NewRouter(logger, cfg, store, prom)
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestUsersLifecycle(t *testing.T) {
	for _, driver := range []string{config.DriverMemory, config.DriverSQLite} {
		driver := driver

		t.Run(driver, func(t *testing.T) {
			r := setupRouter(t, driver)

			steps := []struct {
				name         string
				method       string
				path         string
				body         string
				wantStatus   int
				wantContains string
			}{
				{"create", http.MethodPost, "/users", `{"email":"a@b.com","name":"A","password":"p"}`, http.StatusCreated, `"a@b.com"`},
				{"create_empty_email", http.MethodPost, "/users", `{"email":"","name":"A","password":"p"}`, http.StatusBadRequest, "invalid_request"},
				{"patch", http.MethodPatch, "/users/1", `{"email":"a@b.com","name":"A2","password":"p"}`, http.StatusOK, `"A2"`},
				{"get_after_patch", http.MethodGet, "/users/1", "", http.StatusOK, `"name":"A2"`},
				{"patch_invalid", http.MethodPatch, "/users/1", `{"email":"","name":"","password":""}`, http.StatusBadRequest, "invalid_request"},
				{"patch_missing", http.MethodPatch, "/users/999", `{"email":"a@b.com","name":"A2","password":"p"}`, http.StatusNotFound, "not_found"},
				{"delete", http.MethodDelete, "/users/1", "", http.StatusNoContent, ""},
				{"delete_again", http.MethodDelete, "/users/1", "", http.StatusNotFound, "not_found"},
				{"get_deleted", http.MethodGet, "/users/1", "", http.StatusNotFound, "not_found"},
				{"delete_zero", http.MethodDelete, "/users/0", "", http.StatusNotFound, "not_found"},
				{"delete_negative", http.MethodDelete, "/users/-1", "", http.StatusNotFound, "not_found"},
				{"patch_zero", http.MethodPatch, "/users/0", `{"email":"a@b.com","name":"A","password":"p"}`, http.StatusNotFound, "not_found"},
				{"patch_negative", http.MethodPatch, "/users/-1", `{"email":"a@b.com","name":"A","password":"p"}`, http.StatusNotFound, "not_found"},
				{"delete_non_numeric", http.MethodDelete, "/users/abc", "", http.StatusBadRequest, "invalid_request"},
			}

			for _, s := range steps {
				w := do(r, s.method, s.path, s.body)

				if w.Code != s.wantStatus {
					t.Fatalf("%s: got status %d, want %d, body=%s", s.name, w.Code, s.wantStatus, w.Body.String())
				}
				if s.wantContains != "" && !strings.Contains(w.Body.String(), s.wantContains) {
					t.Fatalf("%s: body %s does not contain %s", s.name, w.Body.String(), s.wantContains)
				}
			}
		})
	}
}

func TestCreateReturnsAssignedID(t *testing.T) {
	r := setupRouter(t, config.DriverMemory)

	w := do(r, http.MethodPost, "/users", `{"email":"a@b.com","name":"A","password":"p"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"id":1`) {
		t.Fatalf("expected id 1 in %s", w.Body.String())
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected X-Request-Id header")
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("user responses must not be cached")
	}
}

func TestRejectsNonJSONBody(t *testing.T) {
	r := setupRouter(t, config.DriverMemory)

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`email=a@b.com`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("got %d, want 415", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	r := setupRouter(t, config.DriverMemory)

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/docs/openapi.yaml", "/swagger"} {
		if w := do(r, http.MethodGet, path, ""); w.Code != http.StatusOK {
			t.Fatalf("%s: got %d", path, w.Code)
		}
	}
}

type downStore struct{ repo.Store }

func (downStore) Ping(ctx context.Context) error { return errors.New("connection refused") }

func TestReadyzReportsUnreachableStore(t *testing.T) {
	cfg := testConfig(config.DriverMemory, t)

	store, err := repo.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := apphttp.NewRouter(logger, cfg, downStore{store}, nil)

	if w := do(r, http.MethodGet, "/readyz", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d, want 503", w.Code)
	}
}
