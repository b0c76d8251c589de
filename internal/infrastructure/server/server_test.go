package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/michael-i-mclean/toggle/internal/adapters/repository"
	"github.com/michael-i-mclean/toggle/internal/infrastructure/config"
	"github.com/michael-i-mclean/toggle/internal/infrastructure/logger"
	"github.com/michael-i-mclean/toggle/internal/infrastructure/persistence"
	"github.com/michael-i-mclean/toggle/internal/infrastructure/server"
	"github.com/michael-i-mclean/toggle/internal/ports"
)

func testConfig(storePath string) *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "toggled",
			Version:     "test",
			Environment: "test",
		},
		Server: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Store: config.StoreConfig{Path: storePath},
		Logger: config.LoggerConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: "*",
			RateLimitRequests:  1000,
			RateLimitWindow:    time.Minute,
		},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

// newToggleServer builds the full stack over the given snapshot path: loaded
// repository, echo server with every middleware, httptest listener.
func newToggleServer(t *testing.T, storePath string) (*httptest.Server, ports.ToggleRepository) {
	t.Helper()

	log := logger.NewNop()
	store := persistence.NewFileStore(storePath, log)
	repo := repository.NewToggleRepository(store, log)
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("repo.Load: %v", err)
	}

	srv, err := server.New(testConfig(storePath), repo, log)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, repo
}

func do(t *testing.T, ts *httptest.Server, method, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, nil)
	if err != nil {
		t.Fatalf("NewRequest %s %s: %v", method, path, err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("Do %s %s: %v", method, path, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
}

func requireStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("status = %d, want %d; body: %s", resp.StatusCode, expected, body)
	}
}

type toggleResponse struct {
	GUID  string `json:"guid"`
	State bool   `json:"state"`
}

// --- Tests ---

func TestCreateToggle(t *testing.T) {
	ts, _ := newToggleServer(t, filepath.Join(t.TempDir(), "toggles.json"))

	resp := do(t, ts, "POST", "/create")
	requireStatus(t, resp, http.StatusOK)

	var body toggleResponse
	decodeJSON(t, resp, &body)
	if body.GUID == "" {
		t.Error("POST /create: guid is empty")
	}
	if body.State {
		t.Error("POST /create: state = true, want false")
	}
}

func TestToggleLifecycle(t *testing.T) {
	ts, _ := newToggleServer(t, filepath.Join(t.TempDir(), "toggles.json"))

	var created toggleResponse
	resp := do(t, ts, "POST", "/create")
	requireStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp, &created)

	resp = do(t, ts, "POST", "/toggle/"+created.GUID)
	requireStatus(t, resp, http.StatusOK)
	var flipped toggleResponse
	decodeJSON(t, resp, &flipped)
	if !flipped.State {
		t.Error("first flip: state = false, want true")
	}
	if flipped.GUID != created.GUID {
		t.Errorf("flip returned guid %q, want %q", flipped.GUID, created.GUID)
	}

	resp = do(t, ts, "POST", "/toggle/"+created.GUID)
	requireStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp, &flipped)
	if flipped.State {
		t.Error("second flip: state = true, want false")
	}

	resp = do(t, ts, "GET", "/status/"+created.GUID)
	requireStatus(t, resp, http.StatusOK)
	var status toggleResponse
	decodeJSON(t, resp, &status)
	if status.State {
		t.Error("status after two flips: state = true, want false")
	}
}

func TestToggleNotFound(t *testing.T) {
	ts, _ := newToggleServer(t, filepath.Join(t.TempDir(), "toggles.json"))

	resp := do(t, ts, "POST", "/toggle/58a2bbac-e534-4479-8da2-5f344d91de79")
	requireStatus(t, resp, http.StatusNotFound)

	var errBody map[string]interface{}
	decodeJSON(t, resp, &errBody)
	if errBody["error"] != "Toggle not found" {
		t.Errorf("error = %v, want %q", errBody["error"], "Toggle not found")
	}
}

func TestStatusNotFound(t *testing.T) {
	ts, _ := newToggleServer(t, filepath.Join(t.TempDir(), "toggles.json"))

	resp := do(t, ts, "GET", "/status/58a2bbac-e534-4479-8da2-5f344d91de79")
	requireStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}

// Fresh start: no snapshot file at all, unknown lookups still answer 404.
func TestFreshStart_UnknownStatus404(t *testing.T) {
	dir := t.TempDir()
	ts, _ := newToggleServer(t, filepath.Join(dir, "toggles.json"))

	resp := do(t, ts, "GET", "/status/00000000-0000-4000-8000-000000000000")
	requireStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()

	if _, err := os.Stat(filepath.Join(dir, "toggles.json")); !os.IsNotExist(err) {
		t.Error("read-only traffic created a snapshot file")
	}
}

// The flip is on disk before the response arrives.
func TestMutationPersistedBeforeResponse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toggles.json")
	ts, _ := newToggleServer(t, path)

	var created toggleResponse
	resp := do(t, ts, "POST", "/create")
	requireStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp, &created)

	resp = do(t, ts, "POST", "/toggle/"+created.GUID)
	requireStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var onDisk map[string]bool
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("snapshot not valid JSON: %v", err)
	}
	if !onDisk[created.GUID] {
		t.Errorf("snapshot[%s] = false, want true", created.GUID)
	}
}

// Full restart scenario: mutate, tear the stack down, rebuild over the same
// file, and read the state back.
func TestRestartLoadsPersistedState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toggles.json")

	first, _ := newToggleServer(t, path)
	var created toggleResponse
	resp := do(t, first, "POST", "/create")
	requireStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp, &created)

	resp = do(t, first, "POST", "/toggle/"+created.GUID)
	requireStatus(t, resp, http.StatusOK)
	resp.Body.Close()
	first.Close()

	second, _ := newToggleServer(t, path)
	resp = do(t, second, "GET", "/status/"+created.GUID)
	requireStatus(t, resp, http.StatusOK)
	var status toggleResponse
	decodeJSON(t, resp, &status)
	if !status.State {
		t.Error("state after restart = false, want true")
	}
}

// A pre-seeded snapshot file is visible immediately after startup.
func TestStartupLoadsSeededFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toggles.json")
	guid := "58a2bbac-e534-4479-8da2-5f344d91de79"
	if err := os.WriteFile(path, []byte(`{"`+guid+`": true}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ts, _ := newToggleServer(t, path)

	resp := do(t, ts, "GET", "/status/"+guid)
	requireStatus(t, resp, http.StatusOK)
	var status toggleResponse
	decodeJSON(t, resp, &status)
	if !status.State {
		t.Error("seeded toggle state = false, want true")
	}
}

// A snapshot write failure surfaces as 500 while the in-memory mutation
// stays; memory and disk diverge until the next successful save.
func TestPersistenceFailureReturns500(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// MkdirAll on a path through a regular file fails, so every save fails.
	ts, repo := newToggleServer(t, filepath.Join(blocker, "toggles.json"))

	resp := do(t, ts, "POST", "/create")
	requireStatus(t, resp, http.StatusInternalServerError)
	resp.Body.Close()

	if repo.Len() != 1 {
		t.Errorf("store holds %d toggles after failed save, want 1 (mutation is not rolled back)", repo.Len())
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newToggleServer(t, filepath.Join(t.TempDir(), "toggles.json"))

	resp := do(t, ts, "GET", "/health")
	requireStatus(t, resp, http.StatusOK)
	var health map[string]string
	decodeJSON(t, resp, &health)
	if health["status"] != "ok" {
		t.Errorf("health status = %q, want ok", health["status"])
	}

	resp = do(t, ts, "GET", "/ready")
	requireStatus(t, resp, http.StatusOK)
	resp.Body.Close()
}

func TestDetailedHealthReportsStore(t *testing.T) {
	ts, _ := newToggleServer(t, filepath.Join(t.TempDir(), "toggles.json"))

	resp := do(t, ts, "POST", "/create")
	requireStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = do(t, ts, "GET", "/health/detailed")
	requireStatus(t, resp, http.StatusOK)

	var body struct {
		Status string `json:"status"`
		Checks struct {
			Store struct {
				Status  string  `json:"status"`
				Toggles float64 `json:"toggles"`
				Path    string  `json:"path"`
			} `json:"store"`
		} `json:"checks"`
	}
	decodeJSON(t, resp, &body)
	if body.Checks.Store.Toggles != 1 {
		t.Errorf("store.toggles = %v, want 1", body.Checks.Store.Toggles)
	}
	if body.Checks.Store.Path == "" {
		t.Error("store.path is empty")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newToggleServer(t, filepath.Join(t.TempDir(), "toggles.json"))

	resp := do(t, ts, "POST", "/create")
	requireStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = do(t, ts, "GET", "/metrics")
	requireStatus(t, resp, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "toggle_store_size") {
		t.Error("metrics output missing toggle_store_size gauge")
	}
	if !strings.Contains(string(body), "http_requests_total") {
		t.Error("metrics output missing http_requests_total counter")
	}
}

func TestUnknownRoute404(t *testing.T) {
	ts, _ := newToggleServer(t, filepath.Join(t.TempDir(), "toggles.json"))

	resp := do(t, ts, "GET", "/nope")
	requireStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}

func TestRequestIDHeader(t *testing.T) {
	ts, _ := newToggleServer(t, filepath.Join(t.TempDir(), "toggles.json"))

	resp := do(t, ts, "GET", "/health")
	requireStatus(t, resp, http.StatusOK)
	resp.Body.Close()
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("X-Request-Id header missing")
	}
}
