// Package listing reads directories from a Source and applies the filter,
// rules, .gitignore files and sort order a listing asks for.
package listing

import (
	"fmt"

	"github.com/specterops/xf/internal/entry"
	"github.com/specterops/xf/internal/filter"
	"github.com/specterops/xf/internal/ignore"
	"github.com/specterops/xf/internal/logger"
	"github.com/specterops/xf/internal/rules"
	"github.com/specterops/xf/internal/sorting"
)

// Lister lists directories of one source.
type Lister struct {
	Source entry.Source
	Filter filter.Filter
	Sort   sorting.Strategy
	// Rules is optional. Without it every entry is shown and explored.
	Rules *rules.Evaluator
	// Ignore enables .gitignore handling during Walk.
	Ignore bool
	// MaxDepth limits Walk. Zero means unlimited.
	MaxDepth int
	Log      logger.LoggerInterface
}

// Root returns the entry of the source root.
func (l *Lister) Root() (*entry.Entry, error) {
	root, err := l.Source.Stat(l.Source.Root())
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", l.Source.Label(), err)
	}
	return root, nil
}

// List returns the visible children of dir, sorted. depth is the depth of
// the children, zero for the contents of the root.
func (l *Lister) List(dir *entry.Entry, depth int, stack ignore.Stack) ([]*entry.Entry, error) {
	children, err := l.Source.ReadDir(dir.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir.Path, err)
	}

	kept := children[:0]
	for _, child := range children {
		child.Depth = depth
		if l.Filter != nil && !l.Filter.Keep(child) {
			continue
		}
		if !stack.Keep(child) {
			continue
		}
		if l.Rules != nil && !l.Rules.Keep(child) {
			l.debug("[rules] skipping " + child.Rel)
			continue
		}
		kept = append(kept, child)
	}

	if l.Sort != nil {
		sorting.Sort(kept, l.Sort)
	}
	return kept, nil
}

// Explore reports whether Walk descends into dir.
func (l *Lister) Explore(dir *entry.Entry) bool {
	if !dir.IsDir() {
		return false
	}
	if l.Rules != nil && !l.Rules.Explore(dir) {
		l.debug("[rules] not exploring " + dir.Rel)
		return false
	}
	return true
}

func (l *Lister) debug(msg string) {
	if l.Log != nil {
		l.Log.Debug(msg)
	}
}
