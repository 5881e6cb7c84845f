package format

import (
	"io"

	"github.com/specterops/xf/internal/listing"
	"github.com/specterops/xf/internal/style"
)

// TreeOptions configures Tree.
type TreeOptions struct {
	// Long prefixes every line with perms, size and date.
	Long  bool
	ACL   bool
	Names Names
}

const (
	branch     = "├ "
	lastBranch = "└ "
	pipeIndent = "│ "
	lastIndent = "  "
)

// Tree prints root under header, children drawn with box glyphs. An
// unreadable directory shows its error under it.
func Tree(w io.Writer, c *style.Colorizer, root *listing.Node, header string, opts TreeOptions) error {
	t := &treePrinter{
		printer: printer{w: w},
		c:       c,
		opts:    opts,
		names:   namesOrSIDs(opts.Names),
	}
	if opts.Long {
		t.sw = sizeWidth(root.Entries())
	}

	t.line(t.prefix(root) + c.Header(header) + t.acl(root))
	t.children(root, "")
	return t.err
}

type treePrinter struct {
	printer
	c     *style.Colorizer
	opts  TreeOptions
	names Names
	sw    int
}

func (t *treePrinter) prefix(n *listing.Node) string {
	if !t.opts.Long {
		return ""
	}
	return longPrefix(t.c, n.Entry, t.sw)
}

func (t *treePrinter) acl(n *listing.Node) string {
	if !t.opts.ACL {
		return ""
	}
	if col := aclColumn(t.c, n.Entry, t.names); col != "" {
		return "  " + col
	}
	return ""
}

func (t *treePrinter) children(n *listing.Node, indent string) {
	if n.Err != nil {
		t.line(t.c.Warn(indent + lastBranch + n.Err.Error()))
		return
	}
	for i, child := range n.Children {
		glyph, next := branch, indent+pipeIndent
		if i == len(n.Children)-1 {
			glyph, next = lastBranch, indent+lastIndent
		}
		t.line(t.prefix(child) + indent + glyph + t.c.Name(child.Entry) + t.acl(child))
		t.children(child, next)
	}
}
