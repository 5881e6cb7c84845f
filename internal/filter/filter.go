// Package filter decides which entries a listing keeps.
package filter

import (
	"strings"

	"github.com/specterops/xf/internal/entry"
	"github.com/specterops/xf/internal/utils"
)

// Filter keeps or drops an entry.
type Filter interface {
	Keep(e *entry.Entry) bool
}

// Func adapts a plain function to a Filter.
type Func func(e *entry.Entry) bool

func (f Func) Keep(e *entry.Entry) bool { return f(e) }

var (
	// All keeps everything.
	All Filter = Func(func(*entry.Entry) bool { return true })
	// Hidden keeps hidden entries.
	Hidden Filter = Func((*entry.Entry).IsHidden)
	// Directory keeps directories.
	Directory Filter = Func((*entry.Entry).IsDir)
)

// Default hides hidden entries.
func Default() Filter { return Not(Hidden) }

// Not inverts f.
func Not(f Filter) Filter {
	return Func(func(e *entry.Entry) bool { return !f.Keep(e) })
}

// And keeps entries every filter keeps.
func And(filters ...Filter) Filter {
	return Func(func(e *entry.Entry) bool {
		for _, f := range filters {
			if !f.Keep(e) {
				return false
			}
		}
		return true
	})
}

// Or keeps entries any filter keeps.
func Or(filters ...Filter) Filter {
	return Func(func(e *entry.Entry) bool {
		for _, f := range filters {
			if f.Keep(e) {
				return true
			}
		}
		return false
	})
}

// Extensions keeps files with one of exts, compared without case and
// without a leading dot. Directories are always kept so listings can still
// descend.
func Extensions(exts ...string) Filter {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		set[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return Func(func(e *entry.Entry) bool {
		if e.IsDir() {
			return true
		}
		_, ok := set[strings.ToLower(e.Extension())]
		return ok
	})
}

// Size keeps files matching a size expression such as "+10M" or "-4k".
// Directories are always kept.
func Size(expr string) (Filter, error) {
	threshold, op, err := utils.ParseSizeFilter(expr)
	if err != nil {
		return nil, err
	}
	return Func(func(e *entry.Entry) bool {
		return e.IsDir() || utils.MatchesSize(e.Size, threshold, op)
	}), nil
}

// Apply returns the entries f keeps, in order.
func Apply(entries []*entry.Entry, f Filter) []*entry.Entry {
	kept := entries[:0:0]
	for _, e := range entries {
		if f.Keep(e) {
			kept = append(kept, e)
		}
	}
	return kept
}
