package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"backend-practicelog/internal/session"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func testConfig(t *testing.T, cfg cliConfig) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "practicelog.yaml")
	if cfg.SnapshotPath == "" {
		cfg.SnapshotPath = defaultSnapshotPath(path)
	}
	if err := saveConfig(path, cfg); err != nil {
		t.Fatalf("saving test config: %v", err)
	}
	return path
}

func TestStartRunsToGoal(t *testing.T) {
	oldInterval := tickInterval
	tickInterval = time.Millisecond
	defer func() { tickInterval = oldInterval }()

	cfgPath := testConfig(t, cliConfig{})

	out, err := runCmd(t, "start", "--config", cfgPath, "--goal", "1", "--instrument", "piano")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !strings.Contains(out, "goal reached") {
		t.Fatalf("expected goal reached message, got %q", out)
	}

	out, err = runCmd(t, "status", "--config", cfgPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "state=completed") || !strings.Contains(out, "instrument=piano") {
		t.Fatalf("unexpected status output: %q", out)
	}
}

func TestStartRefusesSecondTimer(t *testing.T) {
	oldInterval := tickInterval
	tickInterval = time.Millisecond
	defer func() { tickInterval = oldInterval }()

	cfgPath := testConfig(t, cliConfig{})
	if _, err := runCmd(t, "start", "--config", cfgPath, "--goal", "1"); err != nil {
		t.Fatalf("first start: %v", err)
	}

	_, err := runCmd(t, "start", "--config", cfgPath, "--goal", "1")
	if err == nil || !strings.Contains(err.Error(), "already in progress") {
		t.Fatalf("expected in-progress error, got %v", err)
	}
}

func TestLapAfterCompletion(t *testing.T) {
	oldInterval := tickInterval
	tickInterval = time.Millisecond
	defer func() { tickInterval = oldInterval }()

	cfgPath := testConfig(t, cliConfig{})
	if _, err := runCmd(t, "start", "--config", cfgPath, "--goal", "1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	out, err := runCmd(t, "lap", "--config", cfgPath, "--name", "Autumn Leaves", "--type", "piece", "--tempo", "120")
	if err != nil {
		t.Fatalf("lap: %v", err)
	}
	if !strings.Contains(out, "lap 1: Autumn Leaves (1 min)") {
		t.Fatalf("unexpected lap output: %q", out)
	}
}

func TestLapRequiresName(t *testing.T) {
	cfgPath := testConfig(t, cliConfig{})
	_, err := runCmd(t, "lap", "--config", cfgPath)
	if err == nil || !strings.Contains(err.Error(), "--name is required") {
		t.Fatalf("expected name error, got %v", err)
	}
}

func TestStopDiscards(t *testing.T) {
	oldInterval := tickInterval
	tickInterval = time.Millisecond
	defer func() { tickInterval = oldInterval }()

	cfgPath := testConfig(t, cliConfig{})
	if _, err := runCmd(t, "start", "--config", cfgPath, "--goal", "1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := runCmd(t, "stop", "--config", cfgPath); err != nil {
		t.Fatalf("stop: %v", err)
	}

	out, err := runCmd(t, "status", "--config", cfgPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "no timer in progress") {
		t.Fatalf("expected cleared timer, got %q", out)
	}
}

func TestSaveSubmitsSession(t *testing.T) {
	oldInterval := tickInterval
	tickInterval = time.Millisecond
	defer func() { tickInterval = oldInterval }()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/sessions/":
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(session.Session{ID: "sess-99"})
		case strings.HasSuffix(r.URL.Path, "/items"):
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(session.Item{ID: "item-1"})
		default:
			t.Fatalf("unexpected request %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	cfgPath := testConfig(t, cliConfig{BaseURL: srv.URL, Token: "tok"})
	if _, err := runCmd(t, "start", "--config", cfgPath, "--goal", "1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := runCmd(t, "lap", "--config", cfgPath, "--name", "C major scale", "--type", "scale"); err != nil {
		t.Fatalf("lap: %v", err)
	}

	out, err := runCmd(t, "save", "--config", cfgPath)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.Contains(out, "session saved: sess-99") {
		t.Fatalf("unexpected save output: %q", out)
	}

	out, _ = runCmd(t, "status", "--config", cfgPath)
	if !strings.Contains(out, "no timer in progress") {
		t.Fatalf("expected cleared timer after save, got %q", out)
	}
}

func TestSaveRequiresLogin(t *testing.T) {
	oldInterval := tickInterval
	tickInterval = time.Millisecond
	defer func() { tickInterval = oldInterval }()

	cfgPath := testConfig(t, cliConfig{})
	if _, err := runCmd(t, "start", "--config", cfgPath, "--goal", "1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err := runCmd(t, "save", "--config", cfgPath)
	if err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("expected login error, got %v", err)
	}
}

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-abc"})
	}))
	defer srv.Close()

	cfgPath := testConfig(t, cliConfig{BaseURL: srv.URL})
	if _, err := runCmd(t, "login", "--config", cfgPath, "--email", "a@b.c", "--password", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.Token != "tok-abc" {
		t.Fatalf("token not persisted: %+v", cfg)
	}
}

func TestConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL)
	}
	if cfg.SnapshotPath != defaultSnapshotPath(path) {
		t.Fatalf("unexpected snapshot path %q", cfg.SnapshotPath)
	}
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("loadConfig should not create the file")
	}
}
