// Package status draws a one-line progress display while descriptors are
// collected.
package status

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/specterops/xf/internal/collector"
	"github.com/specterops/xf/internal/utils"
)

const barWidth = 25

// Counter reports progress so far. *collector.Collector implements it.
type Counter interface {
	Counts() collector.Counts
}

// ProgressTracker tracks and displays progress.
type ProgressTracker struct {
	w         io.Writer
	counter   Counter
	total     int
	startTime time.Time
	interval  time.Duration
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewProgressTracker creates a tracker for total queries. It writes to w,
// which should be a terminal.
func NewProgressTracker(w io.Writer, counter Counter, total int) *ProgressTracker {
	return &ProgressTracker{
		w:         w,
		counter:   counter,
		total:     total,
		startTime: time.Now(),
		interval:  time.Second,
		done:      make(chan struct{}),
	}
}

// Start starts the progress display loop.
func (p *ProgressTracker) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-p.done:
				return
			case <-ticker.C:
				p.printStatus()
			}
		}
	}()
}

// Stop stops the display loop and leaves the final status on its own line.
func (p *ProgressTracker) Stop() {
	close(p.done)
	p.wg.Wait()
	p.printStatus()
	fmt.Fprintln(p.w)
}

func (p *ProgressTracker) printStatus() {
	// Clear line and print status
	fmt.Fprint(p.w, "\r\033[K"+p.Line(time.Since(p.startTime)))
}

// Line renders the status after elapsed.
func (p *ProgressTracker) Line(elapsed time.Duration) string {
	c := p.counter.Counts()
	done := c.Fetched + c.Failed

	pct := float64(0)
	if p.total > 0 {
		pct = float64(done) / float64(p.total) * 100
	}
	filled := min(int(pct/100*barWidth), barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	rate := float64(0)
	if elapsed.Seconds() > 0 {
		rate = float64(done) / elapsed.Seconds()
	}
	eta := "calculating..."
	if rate > 0 {
		remaining := float64(int64(p.total) - done)
		eta = utils.DeltaTime(time.Duration(remaining / rate * float64(time.Second)))
	}

	return fmt.Sprintf("[%s] %5.1f%% │ Descriptors: %d/%d │ Files: %d │ Dirs: %d │ Failed: %d │ Rate: %.1f/s │ ETA: %s",
		bar, pct, done, p.total, c.Files, c.Directories, c.Failed, rate, eta)
}
