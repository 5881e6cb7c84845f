package format

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/specterops/xf/internal/entry"
	"github.com/specterops/xf/internal/style"
)

const gutter = 2

// Grid prints names in as many columns as fit in width, row-major. Each
// column is as wide as its widest name. A width of zero prints one name
// per line.
func Grid(w io.Writer, c *style.Colorizer, entries []*entry.Entry, width int) error {
	if len(entries) == 0 {
		return nil
	}

	widths := make([]int, len(entries))
	for i, e := range entries {
		widths[i] = runewidth.StringWidth(e.Name)
	}
	cols, colWidths := gridLayout(widths, width)

	p := &printer{w: w}
	var sb strings.Builder
	for i, e := range entries {
		col := i % cols
		sb.WriteString(c.Name(e))
		last := col == cols-1 || i == len(entries)-1
		if last {
			p.line(sb.String())
			sb.Reset()
			continue
		}
		sb.WriteString(strings.Repeat(" ", colWidths[col]-widths[i]+gutter))
	}
	return p.err
}

// gridLayout returns the largest column count whose rows fit in width and
// the width of each column.
func gridLayout(widths []int, width int) (int, []int) {
	if width > 0 {
		for cols := len(widths); cols > 1; cols-- {
			colWidths := make([]int, cols)
			for i, w := range widths {
				colWidths[i%cols] = max(colWidths[i%cols], w)
			}
			total := gutter * (cols - 1)
			for _, w := range colWidths {
				total += w
			}
			if total <= width {
				return cols, colWidths
			}
		}
	}

	widest := 0
	for _, w := range widths {
		widest = max(widest, w)
	}
	return 1, []int{widest}
}
