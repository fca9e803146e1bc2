package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quesurifn/portal-deadline-sync/portal"
	"github.com/quesurifn/portal-deadline-sync/pkg/config"
	"go.uber.org/zap/zaptest"
)

// zero value of appConfig, before any defaults are applied
var blankConfig = appConfig

// loadTestConfig starts every test from a blank appConfig so nothing set by
// an earlier test survives.
func loadTestConfig(t *testing.T, yml string) {
	t.Helper()
	appConfig = blankConfig
	t.Cleanup(func() { appConfig = blankConfig })

	file := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(file, []byte(yml), 0600); err != nil {
		t.Fatal(err)
	}
	logger = zaptest.NewLogger(t)
	if err := config.New(&config.Settings{ENVPrefix: "DEADLINE_SYNC_TEST", Logger: logger}).Load(&appConfig, file); err != nil {
		t.Fatal(err)
	}
}

func TestConfigDefaults(t *testing.T) {
	loadTestConfig(t, "source:\n  kind: file\n")

	if appConfig.TimeZone != "Asia/Tokyo" || appConfig.Calendar.ID != "primary" || appConfig.Calendar.ColorID != "11" {
		t.Errorf("defaults not applied: %+v", appConfig)
	}
	if appConfig.Source.CacheTTL != 5*time.Minute || appConfig.Source.Window != "P360D" {
		t.Errorf("source defaults not applied: %+v", appConfig.Source)
	}
	if appConfig.Source.Paths.Deadline != "deadline" {
		t.Errorf("path defaults not applied: %+v", appConfig.Source.Paths)
	}
}

func TestConfigDoesNotLeakBetweenLoads(t *testing.T) {
	loadTestConfig(t, "source:\n  kind: scraper\n  url: https://portal.test/feed\n")
	appConfig.Calendar.Upcoming = 3

	loadTestConfig(t, "")
	if appConfig.Source.Kind != "file" || appConfig.Source.URL != "" || appConfig.Calendar.Upcoming != 10 {
		t.Errorf("state from the previous load survived: %+v %+v", appConfig.Source, appConfig.Calendar)
	}
}

func TestNewSourceKinds(t *testing.T) {
	dir := t.TempDir()
	items := filepath.Join(dir, "assignments.yml")
	if err := os.WriteFile(items, []byte("- subject: OS\n  title: Lab 1\n  deadline: 11/28 23:59\n"), 0600); err != nil {
		t.Fatal(err)
	}
	loadTestConfig(t, "source:\n  kind: file\n  path: "+items+"\n")

	src, err := newSource(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	got, err := portal.Drain(context.Background(), src)
	if err != nil || len(got) != 1 || got[0].Title != "Lab 1" {
		t.Fatalf("file source: %+v %v", got, err)
	}

	for _, kind := range []string{"feed", "json"} {
		appConfig.Source.Kind = kind
		appConfig.Source.URL = ""
		if _, err := newSource(time.Now()); err == nil || !strings.Contains(err.Error(), "source.url") {
			t.Errorf("%s without url: %v", kind, err)
		}
	}

	appConfig.Source.Kind = "scraper"
	if _, err := newSource(time.Now()); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestParseCommand(t *testing.T) {
	loadTestConfig(t, "")

	var out bytes.Buffer
	parseCmd.SetOut(&out)
	parseNow = "2025-11-01T09:00:00+09:00"
	defer func() { parseNow = "" }()

	if err := parseCmd.RunE(parseCmd, []string{"11/28", "23:59"}); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "2025-11-28T23:59:00+09:00 fallback=false" {
		t.Errorf("got %q", got)
	}
}
