package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type configMock struct {
	listen  string
	timeout time.Duration
}

func (m *configMock) GetServerConfig() (string, time.Duration) {
	return m.listen, m.timeout
}

type storeMock struct {
	path string
}

func (m *storeMock) Path() string { return m.path }

type schedulerMock struct {
	calls int
	err   error
}

func (m *schedulerMock) RefreshNow(ctx context.Context) error {
	m.calls++
	return m.err
}

func newTestServer(t *testing.T, snapshotPath string, sched *schedulerMock) *httptest.Server {
	t.Helper()
	cfg := &configMock{listen: ":0", timeout: 5 * time.Second}
	var s *Server
	if sched != nil {
		s = New(cfg, &storeMock{path: snapshotPath}, sched, "", "test", false)
	} else {
		s = New(cfg, &storeMock{path: snapshotPath}, nil, "", "test", false)
	}
	ts := httptest.NewServer(s.router)
	t.Cleanup(ts.Close)
	return ts
}

func writeSnapshotFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "latest.json")
	content := `{"generatedAt":"2024-03-01T10:00:00Z","topics":[],"articlesById":{}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestServer_SnapshotEndpoint(t *testing.T) {
	path := writeSnapshotFile(t, t.TempDir())
	ts := newTestServer(t, path, nil)

	resp, err := http.Get(ts.URL + "/data/latest.json")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	var doc map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Contains(t, doc, "generatedAt")
	assert.Contains(t, doc, "topics")
	assert.Contains(t, doc, "articlesById")
}

func TestServer_SnapshotNotYetPublished(t *testing.T) {
	ts := newTestServer(t, filepath.Join(t.TempDir(), "absent.json"), nil)

	resp, err := http.Get(ts.URL + "/data/latest.json")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "not generated yet")
}

func TestServer_Status(t *testing.T) {
	path := writeSnapshotFile(t, t.TempDir())
	ts := newTestServer(t, path, nil)

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, "test", status["version"])
	require.Contains(t, status, "snapshot", "published snapshot reported in status")

	snap, ok := status["snapshot"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, snap, "updated")
	assert.Contains(t, snap, "size")
}

func TestServer_StatusWithoutSnapshot(t *testing.T) {
	ts := newTestServer(t, filepath.Join(t.TempDir(), "absent.json"), nil)

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "ok", status["status"])
	assert.NotContains(t, status, "snapshot")
}

func TestServer_Refresh(t *testing.T) {
	sched := &schedulerMock{}
	ts := newTestServer(t, filepath.Join(t.TempDir(), "latest.json"), sched)

	resp, err := http.Post(ts.URL+"/api/v1/refresh", "application/json", http.NoBody)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, sched.calls)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "refreshed", body["status"])
}

func TestServer_RefreshFailure(t *testing.T) {
	sched := &schedulerMock{err: errors.New("snapshot write failed")}
	ts := newTestServer(t, filepath.Join(t.TempDir(), "latest.json"), sched)

	resp, err := http.Post(ts.URL+"/api/v1/refresh", "application/json", http.NoBody)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "snapshot write failed")
}

func TestServer_RefreshUnavailable(t *testing.T) {
	ts := newTestServer(t, filepath.Join(t.TempDir(), "latest.json"), nil)

	resp, err := http.Post(ts.URL+"/api/v1/refresh", "application/json", http.NoBody)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_Ping(t *testing.T) {
	ts := newTestServer(t, filepath.Join(t.TempDir(), "latest.json"), nil)

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_StaticClient(t *testing.T) {
	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>client</html>"), 0o644))

	cfg := &configMock{listen: ":0", timeout: 5 * time.Second}
	s := New(cfg, &storeMock{path: filepath.Join(t.TempDir(), "latest.json")}, nil, staticDir, "test", false)
	ts := httptest.NewServer(s.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RunAndShutdown(t *testing.T) {
	cfg := &configMock{listen: "127.0.0.1:0", timeout: 5 * time.Second}
	s := New(cfg, &storeMock{path: filepath.Join(t.TempDir(), "latest.json")}, nil, "", "test", false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}
