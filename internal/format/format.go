// Package format renders listings: grid, list, tree, JSON and the ACL
// report.
package format

import (
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/specterops/xf/internal/entry"
	"github.com/specterops/xf/internal/security"
	"github.com/specterops/xf/internal/style"
	"github.com/specterops/xf/internal/utils"
)

// Mode selects the output format.
type Mode int

const (
	ModeGrid Mode = iota
	ModeList
	ModeTree
	ModeJSON
)

// ModeNames maps each Mode to its accepted spellings.
var ModeNames = map[Mode][]string{
	ModeGrid: {"grid"},
	ModeList: {"list", "long"},
	ModeTree: {"tree"},
	ModeJSON: {"json"},
}

// ParseMode looks a mode up by name.
func ParseMode(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for m, names := range ModeNames {
		if slices.Contains(names, name) {
			return m, nil
		}
	}
	return ModeGrid, fmt.Errorf("unknown format %q", name)
}

// Names resolves SIDs for display. *sid.Resolver implements it.
type Names interface {
	Name(*security.SID) string
}

type sidStrings struct{}

func (sidStrings) Name(s *security.SID) string {
	if s == nil {
		return "-"
	}
	return s.String()
}

func namesOrSIDs(n Names) Names {
	if n == nil {
		return sidStrings{}
	}
	return n
}

// TerminalWidth returns the width of the terminal f is attached to, or 0
// when f is not a terminal.
func TerminalWidth(f *os.File) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

// Header returns the "parent/name" form of a root path used above a tree.
// Both slash styles are accepted.
func Header(root string) string {
	p := strings.TrimRight(strings.ReplaceAll(root, `\`, "/"), "/")
	parent, name := path.Split(p)
	parent = strings.TrimRight(parent, "/")
	if parent == "" {
		if name == "" {
			return "/"
		}
		return name
	}
	return path.Base(parent) + "/" + name
}

// printer remembers the first write error so callers check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(parts ...string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, strings.Join(parts, "")+"\n")
}

func sizeText(e *entry.Entry) string {
	if e.IsDir() {
		return "-"
	}
	return utils.FormatFileSize(e.Size)
}

func sizeWidth(entries []*entry.Entry) int {
	width := 0
	for _, e := range entries {
		width = max(width, runewidth.StringWidth(sizeText(e)))
	}
	return width
}

func padLeft(s string, width int) string {
	if n := width - runewidth.StringWidth(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}

// longPrefix renders "perms size date " for list and tree -l.
func longPrefix(c *style.Colorizer, e *entry.Entry, sw int) string {
	return c.Perms(e.Perms) + " " +
		c.Size(padLeft(sizeText(e), sw)) + " " +
		c.Date(utils.FormatDate(e.Modified)) + " "
}

// aclColumn renders the owner and the effective access of each principal
// the DACL names, or "?" when the query failed.
func aclColumn(c *style.Colorizer, e *entry.Entry, names Names) string {
	if e.SecurityErr != nil {
		return c.Warn("?")
	}
	sd := e.Security
	if sd == nil {
		return ""
	}

	parts := []string{names.Name(sd.Owner)}
	if _, present, _ := sd.DACL(); present {
		for _, pa := range security.Principals(sd) {
			parts = append(parts, names.Name(pa.SID)+c.Dim(":")+"("+pa.Summary()+")")
		}
	}
	return strings.Join(parts, " ")
}
