package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/2beens/fitnesstracker/internal/config"
	"github.com/2beens/fitnesstracker/internal/offline"
	"github.com/2beens/fitnesstracker/internal/progress"
	"github.com/2beens/fitnesstracker/internal/progress/storage"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprintf(w, "shell %s", r.URL.Path)
	}))
	t.Cleanup(origin.Close)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(`
[development]
storage_backend = "sqlite"
sqlite_path = %q
cache_backend = "memory"
cache_memory_size_mb = 8
app_shell_origin = %q
app_shell_manifest = ["/", "/index.html"]
`, filepath.Join(dir, "tracker.db"), origin.URL)), 0o600))

	cfg, err := config.Load("development", configPath)
	require.NoError(t, err)
	return cfg
}

func newTestServer(t *testing.T) (*Server, *mux.Router) {
	t.Helper()

	s, err := NewServer(context.Background(), NewServerParams{
		Config:      newTestConfig(t),
		VersionInfo: "test-version",
	})
	require.NoError(t, err)
	assert.Nil(t, s.redisClient)
	t.Cleanup(s.GracefulShutdown)

	router, err := s.routerSetup()
	require.NoError(t, err)
	return s, router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(method, target, reqBody))
	return rr
}

func TestServer_Routes(t *testing.T) {
	s, router := newTestServer(t)

	rr := serve(router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "I'm OK, thanks ;)", rr.Body.String())

	rr = serve(router, http.MethodGet, "/version", "")
	assert.Equal(t, "test-version", rr.Body.String())

	rr = serve(router, http.MethodPost, "/checkin", `{"field":"wakeup","value":true}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	record, ok := s.store.Record(s.store.Today())
	require.True(t, ok)
	assert.True(t, record.Wakeup)

	rr = serve(router, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.Equal(t, float64(1), testutil.ToFloat64(
		s.metricsManager.CounterRequests.WithLabelValues(http.MethodGet, "404"),
	))
}

func TestServer_AppShellThroughOfflineCache(t *testing.T) {
	s, router := newTestServer(t)

	// not yet installed, straight to the origin
	rr := serve(router, http.MethodGet, "/app/index.html", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "shell /index.html", rr.Body.String())
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))

	require.NoError(t, s.offlineApp.Deploy(context.Background(), s.initialCache))
	assert.Equal(t, offline.StateActive, s.initialCache.State())

	rr = serve(router, http.MethodGet, "/app/index.html", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "shell /index.html", rr.Body.String())
	assert.Equal(t, "HIT", rr.Header().Get("X-Cache"))

	rr = serve(router, http.MethodGet, "/offline/status", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"version":"fitness-tracker-v1.0","state":"active"}`, rr.Body.String())
}

func TestServer_SchedulerSetup(t *testing.T) {
	s, _ := newTestServer(t)

	require.NoError(t, s.schedulerSetup())
	assert.Equal(t,
		[]string{"flush", "morning-greeting", "morning-reminder", "evening-prep", "week-progression", "cache-activate"},
		s.scheduler.Tasks(),
	)

	require.NoError(t, s.store.RecordCheckin(s.store.Today(), progress.FieldSleep, true))
	require.NoError(t, s.flushTask(context.Background()))
	// week 1 just started, nothing to suggest
	require.NoError(t, s.weekProgressionTask(context.Background()))
	assert.Empty(t, s.notifier.Recent())
}

func TestServer_ProgressStorageLease(t *testing.T) {
	cfg := newTestConfig(t)
	ctx := context.Background()

	first, err := NewServer(ctx, NewServerParams{Config: cfg, LeaseOwner: "service@first"})
	require.NoError(t, err)

	second, err := NewServer(ctx, NewServerParams{Config: cfg, LeaseOwner: "service@second"})
	require.Error(t, err)
	assert.Nil(t, second)
	assert.Contains(t, err.Error(), "leased by [service@first]")

	// renewed by the flush task
	require.NoError(t, first.flushTask(ctx))
	owner, held, err := first.storageLease.LeaseHolder(ctx, storage.ServiceLease)
	require.NoError(t, err)
	assert.True(t, held)
	assert.Equal(t, "service@first", owner)

	first.GracefulShutdown()

	second, err = NewServer(ctx, NewServerParams{Config: cfg, LeaseOwner: "service@second"})
	require.NoError(t, err)
	t.Cleanup(second.GracefulShutdown)
	owner, _, err = second.storageLease.LeaseHolder(ctx, storage.ServiceLease)
	require.NoError(t, err)
	assert.Equal(t, "service@second", owner)
}

func TestStorageLeaseTTL(t *testing.T) {
	assert.Equal(t, 30*time.Second, storageLeaseTTL(time.Second))
	assert.Equal(t, 3*time.Minute, storageLeaseTTL(time.Minute))
}
