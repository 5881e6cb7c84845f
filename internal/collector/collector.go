// Package collector fetches security descriptors for the entries of a
// listing, several at a time.
package collector

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/specterops/xf/internal/entry"
	"github.com/specterops/xf/internal/logger"
	"github.com/specterops/xf/internal/security"
)

// DefaultThreads is the number of queries in flight when none is given.
const DefaultThreads = 8

// Counts holds the collector counters.
type Counts struct {
	Files       int64
	Directories int64
	Fetched     int64
	Failed      int64
}

// Collector fetches descriptors with at most Threads queries in flight.
type Collector struct {
	source  entry.Source
	info    security.SecurityInformation
	threads int
	log     logger.LoggerInterface

	files   atomic.Int64
	dirs    atomic.Int64
	fetched atomic.Int64
	failed  atomic.Int64
}

// New creates a Collector for src.
func New(src entry.Source, info security.SecurityInformation, threads int, log logger.LoggerInterface) *Collector {
	if threads <= 0 {
		threads = DefaultThreads
	}
	if info == 0 {
		info = security.DefaultInformation
	}
	return &Collector{source: src, info: info, threads: threads, log: log}
}

// Collect fills Security or SecurityErr on every entry. A failed query
// never stops the others. When ctx is cancelled the entries not yet
// queried get ctx's error and Collect returns it.
func (c *Collector) Collect(ctx context.Context, entries []*entry.Entry) error {
	sem := semaphore.NewWeighted(int64(c.threads))
	var wg sync.WaitGroup

	for _, e := range entries {
		if e.IsDir() {
			c.dirs.Add(1)
		} else {
			c.files.Add(1)
		}
	}

	for i, e := range entries {
		err := ctx.Err()
		if err == nil {
			err = sem.Acquire(ctx, 1)
		}
		if err != nil {
			for _, rest := range entries[i:] {
				rest.SecurityErr = err
			}
			c.failed.Add(int64(len(entries) - i))
			wg.Wait()
			return err
		}

		wg.Add(1)
		go func(e *entry.Entry) {
			defer wg.Done()
			defer sem.Release(1)

			if err := CollectNTFSRights(c.source, e, c.info, c.taskLogger(e)); err != nil {
				c.failed.Add(1)
				return
			}
			c.fetched.Add(1)
		}(e)
	}

	wg.Wait()
	return nil
}

// Counts returns a snapshot of the counters.
func (c *Collector) Counts() Counts {
	return Counts{
		Files:       c.files.Load(),
		Directories: c.dirs.Load(),
		Fetched:     c.fetched.Load(),
		Failed:      c.failed.Load(),
	}
}

// taskLogger gives each query its own indentation when the base logger
// allows it.
func (c *Collector) taskLogger(e *entry.Entry) logger.LoggerInterface {
	if base, ok := c.log.(*logger.Logger); ok {
		return logger.NewTaskLogger(base, e.Rel)
	}
	return c.log
}
