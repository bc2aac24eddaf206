package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kiranshivaraju/podzine/internal/ai/mock"
	"github.com/kiranshivaraju/podzine/internal/api"
	"github.com/kiranshivaraju/podzine/internal/api/handler"
	"github.com/kiranshivaraju/podzine/internal/job"
	"github.com/kiranshivaraju/podzine/internal/pipeline"
	"github.com/kiranshivaraju/podzine/internal/web"
	"github.com/kiranshivaraju/podzine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, provider models.AIProvider) *httptest.Server {
	t.Helper()
	jobs := job.NewStore()
	runner := pipeline.NewRunner(provider, pipeline.RunnerConfig{UploadDir: t.TempDir(), Timeout: 5 * time.Second})
	svc := pipeline.NewService(jobs, runner)
	pages := web.MustPages()

	srv := httptest.NewServer(api.NewRouter(api.Dependencies{
		UploadHandler: handler.NewUploadHandler(svc, pages, 1<<20),
		StatusHandler: handler.NewStatusHandler(svc),
		ResultHandler: handler.NewResultHandler(svc, pages),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeEpisode(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("fake audio"), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func TestSubmitWait_PrintsArticle(t *testing.T) {
	srv := newTestServer(t, mock.NewMockProvider())

	out, errOut, err := runCLI(t, "--server", srv.URL, "submit", writeEpisode(t, "episode.mp3"), "--wait", "--interval", "10ms")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Submitted episode.mp3")
	assert.Contains(t, out, "<h1>Mock Article</h1>")
	assert.Contains(t, out, "image: https://images.example/mock.png")
}

func TestSubmitWait_JSON(t *testing.T) {
	srv := newTestServer(t, mock.NewMockProvider())

	out, _, err := runCLI(t, "--server", srv.URL, "submit", writeEpisode(t, "episode.wav"), "--wait", "--interval", "10ms", "--json")
	require.NoError(t, err)

	var res result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Failed)
	assert.Equal(t, []string{"https://images.example/mock.png"}, res.Images)
}

func TestSubmitWait_FailedJob(t *testing.T) {
	srv := newTestServer(t, mock.NewFailingProvider(errors.New("whisper down")))

	out, _, err := runCLI(t, "--server", srv.URL, "submit", writeEpisode(t, "episode.mp3"), "--wait", "--interval", "10ms")
	require.Error(t, err)
	assert.Contains(t, out, "transcription failed")
}

func TestSubmit_UnsupportedFormat(t *testing.T) {
	srv := newTestServer(t, mock.NewMockProvider())

	_, _, err := runCLI(t, "--server", srv.URL, "submit", writeEpisode(t, "notes.txt"))
	require.Error(t, err)

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "UNSUPPORTED_FORMAT", apiErr.Code)
}

func TestSubmit_MissingFile(t *testing.T) {
	_, _, err := runCLI(t, "--server", "http://127.0.0.1:1", "submit", filepath.Join(t.TempDir(), "missing.mp3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open episode")
}

func TestStatus_Idle(t *testing.T) {
	srv := newTestServer(t, mock.NewMockProvider())

	out, _, err := runCLI(t, "--server", srv.URL, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "idle")
}

func TestStatus_JSON(t *testing.T) {
	srv := newTestServer(t, mock.NewMockProvider())

	out, _, err := runCLI(t, "--server", srv.URL, "status", "--json")
	require.NoError(t, err)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, models.PhaseIdle, snap.Phase)
	assert.False(t, snap.Complete)
}

func TestClientResult_NotReady(t *testing.T) {
	srv := newTestServer(t, mock.NewMockProvider())

	_, err := newClient(srv.URL, time.Second).result(context.Background())
	assert.ErrorIs(t, err, errNotReady)
}

func TestClientDo_UnexpectedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, time.Second).status(context.Background())
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "UNEXPECTED", apiErr.Code)
}
