package format

import (
	"io"

	"github.com/specterops/xf/internal/entry"
	"github.com/specterops/xf/internal/style"
)

// ListOptions configures List.
type ListOptions struct {
	// ACL appends the owner and per-principal access to each line.
	ACL   bool
	Names Names
}

// List prints one entry per line: perms, size, modified time, name.
func List(w io.Writer, c *style.Colorizer, entries []*entry.Entry, opts ListOptions) error {
	names := namesOrSIDs(opts.Names)
	sw := sizeWidth(entries)

	p := &printer{w: w}
	for _, e := range entries {
		line := longPrefix(c, e, sw) + c.Name(e)
		if opts.ACL {
			if col := aclColumn(c, e, names); col != "" {
				line += "  " + col
			}
		}
		p.line(line)
	}
	return p.err
}
