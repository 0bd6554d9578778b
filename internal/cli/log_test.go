package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/simpleindex/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "warning at info level",
			level:   LogInfo,
			logFunc: func(l *log.Logger) { l.Warn("cache unavailable, continuing without") },
			wantLog: true,
		},
		{
			name:    "decode event at info level",
			level:   LogInfo,
			logFunc: func(l *log.Logger) { l.Debug("decoded", "kind", "index") },
			wantLog: false,
		},
		{
			name:    "decode event at debug level",
			level:   LogDebug,
			logFunc: func(l *log.Logger) { l.Debug("decoded", "kind", "index") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, LogInfo))

	time.Sleep(10 * time.Millisecond)
	prog.done("fetched project", "name", "requests", "files", 3)

	for _, want := range []string{"fetched project", "name=requests", "files=3", "took="} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("progress.done() output should contain %q, got %q", want, buf.String())
		}
	}
}

// TestDebugLogsFetchAndDecode runs a real command at debug level and checks
// the records emitted by the index client and the decode, cache and HTTP
// hooks.
func TestDebugLogsFetchAndDecode(t *testing.T) {
	ts := newIndexServer(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.SetLogLevel(LogDebug)

	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--index-url", ts.URL + "/simple/", "--no-cache", "files", "requests", "--format", "plain"})
	if err := root.Execute(); err != nil {
		t.Fatalf("files: %v", err)
	}

	logs := buf.String()
	for _, want := range []string{
		"cache miss",
		"path=/simple/requests/",
		"status=200",
		"decode start",
		"decoded",
		"format=json",
		"kind=details",
		"items=3",
		"fetched project",
		"name=requests",
		"files=3",
		"took=",
	} {
		if !strings.Contains(logs, want) {
			t.Errorf("debug log should contain %q, got:\n%s", want, logs)
		}
	}
}

func TestInfoLevelHidesClientRecords(t *testing.T) {
	ts := newIndexServer(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	root := New(&buf, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--index-url", ts.URL + "/simple/", "--no-cache", "files", "requests", "--format", "plain"})
	if err := root.Execute(); err != nil {
		t.Fatalf("files: %v", err)
	}

	logs := buf.String()
	if strings.Contains(logs, "decode start") || strings.Contains(logs, "status=200") {
		t.Errorf("info level should not log hook events, got:\n%s", logs)
	}
	if !strings.Contains(logs, "fetched project") {
		t.Errorf("info level should log the completed fetch, got:\n%s", logs)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext should fall back to the default logger")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, LogInfo)
	ctx := withLogger(context.Background(), custom)
	if got := loggerFromContext(ctx); got != custom {
		t.Fatal("loggerFromContext should return the attached logger")
	}
}
