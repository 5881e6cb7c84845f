package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specterops/xf/internal/config"
)

func newTestLogger(debug, noColors bool) (*Logger, *bytes.Buffer) {
	cfg := config.NewConfig(debug, &noColors)
	l := NewLogger(cfg, "")
	var buf bytes.Buffer
	l.SetOutput(&buf)
	return l, &buf
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name string
		log  func(*Logger, string)
		tag  string
	}{
		{"info", (*Logger).Info, "[info-]"},
		{"warning", (*Logger).Warning, "[warn-]"},
		{"error", (*Logger).Error, "[error]"},
		{"critical", (*Logger).Critical, "[crit-]"},
		{"debug", (*Logger).Debug, "[debug]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newTestLogger(true, true)
			tt.log(l, "hello")
			out := buf.String()
			if !strings.Contains(out, tt.tag) || !strings.HasSuffix(out, "hello\n") {
				t.Errorf("unexpected output %q", out)
			}
		})
	}
}

func TestLoggerDebugDisabled(t *testing.T) {
	l, buf := newTestLogger(false, true)
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestLoggerStripsColors(t *testing.T) {
	l, buf := newTestLogger(false, true)
	l.Info("\x1b[1;91mred\x1b[0m")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected ANSI codes to be stripped, got %q", buf.String())
	}
}

func TestLoggerColoredTag(t *testing.T) {
	l, buf := newTestLogger(false, false)
	l.Error("boom")
	out := buf.String()
	if !strings.Contains(out, "\x1b[") || !strings.Contains(out, "error") {
		t.Errorf("expected a coloured tag, got %q", out)
	}
	if strings.Contains(out, "[error]") {
		t.Errorf("tag was not coloured: %q", out)
	}
}

func TestPrintUntagged(t *testing.T) {
	l, buf := newTestLogger(false, true)
	l.PrintWithEnd("progress", "\r")
	if out := buf.String(); !strings.HasSuffix(out, "[-----] progress\r") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestLoggerIndent(t *testing.T) {
	l, buf := newTestLogger(false, true)
	l.IncrementIndent()
	l.IncrementIndent()
	l.Info("nested")
	l.DecrementIndent()
	l.DecrementIndent()
	l.DecrementIndent()
	l.Info("flat")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if !strings.Contains(lines[0], "  │   │ nested") {
		t.Errorf("expected two indent levels, got %q", lines[0])
	}
	if strings.Contains(lines[1], "│") {
		t.Errorf("expected no indent, got %q", lines[1])
	}
}

func TestLogfileRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xf.log")
	if err := os.WriteFile(path, []byte("old\n"), 0644); err != nil {
		t.Fatal(err)
	}

	noColors := true
	l := NewLogger(config.NewConfig(false, &noColors), path)
	l.SetOutput(&bytes.Buffer{})
	l.Warning("\x1b[1;95mrotated\x1b[0m")
	l.Close()

	if l.LogfilePath() != path+".1" {
		t.Fatalf("expected rotation to %s.1, got %s", path, l.LogfilePath())
	}
	data, err := os.ReadFile(path + ".1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[warn] rotated") {
		t.Errorf("unexpected logfile content %q", data)
	}
}

func TestTaskLoggerPrefix(t *testing.T) {
	l, buf := newTestLogger(false, true)
	tl := NewTaskLogger(l, "worker-3")
	tl.IncrementIndent()
	tl.Error("boom")

	out := buf.String()
	if !strings.Contains(out, "[error] [worker-3]   │ boom") {
		t.Errorf("unexpected task output %q", out)
	}
}
