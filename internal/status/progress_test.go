package status

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/specterops/xf/internal/collector"
)

type fixedCounter collector.Counts

func (f fixedCounter) Counts() collector.Counts { return collector.Counts(f) }

func TestLine(t *testing.T) {
	tests := []struct {
		name    string
		counts  collector.Counts
		total   int
		elapsed time.Duration
		want    string
	}{
		{
			name:    "half way",
			counts:  collector.Counts{Files: 45, Directories: 15, Fetched: 40, Failed: 10},
			total:   100,
			elapsed: 10 * time.Second,
			want: "[" + strings.Repeat("█", 12) + strings.Repeat("░", 13) + "]  50.0% │ Descriptors: 50/100 │ " +
				"Files: 45 │ Dirs: 15 │ Failed: 10 │ Rate: 5.0/s │ ETA: 10s",
		},
		{
			name:  "not started",
			total: 0,
			want: "[" + strings.Repeat("░", 25) + "]   0.0% │ Descriptors: 0/0 │ " +
				"Files: 0 │ Dirs: 0 │ Failed: 0 │ Rate: 0.0/s │ ETA: calculating...",
		},
		{
			name:    "complete",
			counts:  collector.Counts{Files: 4, Fetched: 4},
			total:   4,
			elapsed: 2 * time.Second,
			want: "[" + strings.Repeat("█", 25) + "] 100.0% │ Descriptors: 4/4 │ " +
				"Files: 4 │ Dirs: 0 │ Failed: 0 │ Rate: 2.0/s │ ETA: 0s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProgressTracker(&bytes.Buffer{}, fixedCounter(tt.counts), tt.total)
			if got := p.Line(tt.elapsed); got != tt.want {
				t.Errorf("Line =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestStopPrintsFinalLine(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, fixedCounter(collector.Counts{Files: 2, Fetched: 2}), 2)
	p.interval = time.Hour
	p.Start()
	p.Stop()

	out := buf.String()
	if !strings.HasPrefix(out, "\r\033[K[") {
		t.Errorf("output does not start by clearing the line: %q", out)
	}
	if !strings.Contains(out, "Descriptors: 2/2") {
		t.Errorf("output = %q, want the final count", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("output = %q, want a trailing newline", out)
	}
}
