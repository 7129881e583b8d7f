package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mealmax/mealmax-smoke/internal/mealmaxtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*mealmaxtest.Server, string) {
	t.Helper()
	srv := mealmaxtest.NewServer()
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("MEALMAX_URL", srv.URL)
	t.Setenv("SMOKE_CONFIG", filepath.Join(dir, "none.json"))
	t.Setenv("SMOKE_ECHO_JSON", "")
	t.Setenv("SMOKE_TIMEOUT", "")
	t.Setenv("SMOKE_REPORT", "")
	t.Setenv("SMOKE_METRICS_FILE", "")
	t.Setenv("SMOKE_LOG_LEVEL", "error")
	return srv, dir
}

func TestRunPasses(t *testing.T) {
	srv, _ := setup(t)
	var stdout, stderr bytes.Buffer

	code := run(nil, &stdout, &stderr)
	assert.Equal(t, 0, code, "stderr: %s", stderr.String())
	assert.Contains(t, stdout.String(), "smoke checks passed")
	assert.NotContains(t, stdout.String(), `"status": "success"`)
	assert.NotEmpty(t, srv.Requests())
}

func TestRunEchoJSON(t *testing.T) {
	setup(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"--echo-json"}, &stdout, &stderr)
	assert.Equal(t, 0, code, "stderr: %s", stderr.String())
	assert.Contains(t, stdout.String(), `"status": "success"`)
	assert.Contains(t, stdout.String(), `"meal": "Sushi"`)
}

func TestRunUnknownFlagMakesNoCalls(t *testing.T) {
	srv, _ := setup(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"--bogus"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Equal(t, "Unknown parameter passed: --bogus\n", stderr.String())
	assert.Empty(t, stdout.String())
	assert.Empty(t, srv.Requests())
}

func TestRunUnknownFlagLoadsNoConfig(t *testing.T) {
	_, dir := setup(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MEALMAX_SMOKE_DOTENV_SEEN=1\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("MEALMAX_SMOKE_DOTENV_SEEN") })

	badConfig := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(badConfig, []byte("{not json"), 0o600))
	t.Setenv("SMOKE_CONFIG", badConfig)

	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	var stdout, stderr bytes.Buffer
	code := run([]string{"--bogus"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Equal(t, "Unknown parameter passed: --bogus\n", stderr.String())
	assert.Empty(t, logs.String(), "config file must not be read")
	_, loaded := os.LookupEnv("MEALMAX_SMOKE_DOTENV_SEEN")
	assert.False(t, loaded, ".env must not be loaded")
}

func TestRunFailureExitsOne(t *testing.T) {
	srv, _ := setup(t)
	srv.Override(mealmaxtest.RouteBattle, 400, `{"status":"error","error":"two combatants must be prepped for a battle"}`)
	var stdout, stderr bytes.Buffer

	code := run(nil, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "FAIL  battle")
	last := srv.Requests()[len(srv.Requests())-1]
	assert.Equal(t, "GET /api/battle", last, "no step runs after the failing one")
}

func TestRunInvalidBaseURL(t *testing.T) {
	setup(t)
	t.Setenv("MEALMAX_URL", "localhost:5000")
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 1, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "invalid base url")
}

func TestRunWritesReportAndMetrics(t *testing.T) {
	_, dir := setup(t)
	reportPath := filepath.Join(dir, "run.yaml")
	metricsPath := filepath.Join(dir, "smoke.prom")
	t.Setenv("SMOKE_REPORT", reportPath)
	t.Setenv("SMOKE_METRICS_FILE", metricsPath)
	var stdout, stderr bytes.Buffer

	require.Equal(t, 0, run(nil, &stdout, &stderr), "stderr: %s", stderr.String())

	rep, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(rep), "status: passed")

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(prom), "mealmax_smoke_last_run_success 1"))
}
