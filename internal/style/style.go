// Package style colours listing output.
package style

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/specterops/xf/internal/config"
	"github.com/specterops/xf/internal/entry"
	"github.com/specterops/xf/internal/perms"
)

// Palette of ANSI colours used by the defaults.
const (
	ColorBlue    = "4"
	ColorGreen   = "2"
	ColorYellow  = "3"
	ColorMagenta = "5"
	ColorRed     = "1"
	ColorCyan    = "6"
	ColorGray    = "244"
	ColorRose    = "174"
)

// matcher is the merged set of matchers of one group. Any one matching
// selects the group.
type matcher struct {
	directory  bool
	hidden     bool
	executable bool
	startsWith []string
	endsWith   []string
	filenames  map[string]struct{}
	extensions map[string]struct{}
}

func (m *matcher) add(match config.Match) {
	m.directory = m.directory || match.Directory
	m.hidden = m.hidden || match.Hidden
	m.executable = m.executable || match.Executable
	m.startsWith = append(m.startsWith, match.StartsWith...)
	m.endsWith = append(m.endsWith, match.EndsWith...)
	for _, name := range match.Filenames {
		if m.filenames == nil {
			m.filenames = map[string]struct{}{}
		}
		m.filenames[name] = struct{}{}
	}
	for _, ext := range match.Extensions {
		if m.extensions == nil {
			m.extensions = map[string]struct{}{}
		}
		m.extensions[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
}

func (m *matcher) matches(e *entry.Entry) bool {
	switch {
	case m.directory && e.IsDir():
		return true
	case m.hidden && e.IsHidden():
		return true
	case m.executable && e.Executable():
		return true
	}
	for _, prefix := range m.startsWith {
		if strings.HasPrefix(e.Name, prefix) {
			return true
		}
	}
	for _, suffix := range m.endsWith {
		if strings.HasSuffix(e.Name, suffix) {
			return true
		}
	}
	if _, ok := m.filenames[e.Name]; ok {
		return true
	}
	if ext := e.Extension(); ext != "" {
		if _, ok := m.extensions[strings.ToLower(ext)]; ok {
			return true
		}
	}
	return false
}

type group struct {
	name  string
	style lipgloss.Style
	match matcher
}

// Colorizer picks the style of each piece of output. The first group whose
// matcher matches an entry wins.
type Colorizer struct {
	renderer *lipgloss.Renderer
	plain    bool
	groups   []*group
}

// NewColorizer renders for w. With noColors every method returns its text
// unchanged.
func NewColorizer(w io.Writer, noColors bool) *Colorizer {
	r := lipgloss.NewRenderer(w)
	if noColors {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Colorizer{renderer: r, plain: noColors}
}

// SetColorProfile overrides the detected terminal capabilities.
func (c *Colorizer) SetColorProfile(p termenv.Profile) {
	c.renderer.SetColorProfile(p)
	c.plain = p == termenv.Ascii
}

// NewStyle returns a style bound to this colorizer's renderer.
func (c *Colorizer) NewStyle() lipgloss.Style {
	return c.renderer.NewStyle()
}

// Group adds a named group, or merges match into the group of that name
// when it exists. A merged group keeps its first style.
func (c *Colorizer) Group(name string, style lipgloss.Style, match config.Match) *Colorizer {
	for _, g := range c.groups {
		if strings.EqualFold(g.name, name) {
			g.match.add(match)
			return c
		}
	}
	g := &group{name: name, style: style}
	g.match.add(match)
	c.groups = append(c.groups, g)
	return c
}

// Groups returns the group names in match order.
func (c *Colorizer) Groups() []string {
	names := make([]string, len(c.groups))
	for i, g := range c.groups {
		names[i] = g.name
	}
	return names
}

// WithDefaults installs the built-in groups.
func (c *Colorizer) WithDefaults() *Colorizer {
	fg := func(color string) lipgloss.Style {
		return c.NewStyle().Foreground(lipgloss.Color(color))
	}
	return c.
		Group("DIR", fg(ColorBlue), config.Match{Directory: true}).
		Group("HIDDEN", fg(ColorGray), config.Match{Hidden: true, StartsWith: []string{"."}}).
		Group("IMAGE", fg(ColorMagenta), config.Match{Extensions: []string{"jpg", "png", "gif", "webp", "avif", "ico"}}).
		Group("CONFIG", fg(ColorYellow).Underline(true), config.Match{Filenames: []string{"go.mod", "Cargo.toml", "config.toml"}}).
		Group("EXE", fg(ColorGreen), config.Match{Executable: true, Extensions: []string{"exe", "sh"}})
}

// WithConfig replaces the groups with those of a config file. An empty
// list keeps the current groups.
func (c *Colorizer) WithConfig(groups []config.Group) *Colorizer {
	if len(groups) == 0 {
		return c
	}
	c.groups = nil
	for _, g := range groups {
		c.Group(g.Name, c.FromConfig(g.Style), g.Match)
	}
	return c
}

// FromConfig converts a config style.
func (c *Colorizer) FromConfig(s config.Style) lipgloss.Style {
	st := c.NewStyle().
		Bold(s.Bold).
		Underline(s.Underline).
		Italic(s.Italic).
		Faint(s.Faint)
	if s.Foreground != "" {
		st = st.Foreground(lipgloss.Color(s.Foreground))
	}
	if s.Background != "" {
		st = st.Background(lipgloss.Color(s.Background))
	}
	return st
}

// Render applies style to text.
func (c *Colorizer) Render(style lipgloss.Style, text string) string {
	if c.plain || text == "" {
		return text
	}
	return style.Render(text)
}

// GroupOf returns the name of the group e falls in, or "".
func (c *Colorizer) GroupOf(e *entry.Entry) string {
	for _, g := range c.groups {
		if g.match.matches(e) {
			return g.name
		}
	}
	return ""
}

// Name renders the name of e in the style of its group.
func (c *Colorizer) Name(e *entry.Entry) string {
	for _, g := range c.groups {
		if g.match.matches(e) {
			return c.Render(g.style, e.Name)
		}
	}
	return e.Name
}

// Size renders a formatted size.
func (c *Colorizer) Size(text string) string {
	return c.Render(c.NewStyle().Foreground(lipgloss.Color(ColorGray)), text)
}

// Date renders a formatted date.
func (c *Colorizer) Date(text string) string {
	return c.Render(c.NewStyle().Foreground(lipgloss.Color(ColorBlue)), text)
}

// Header renders the tree header.
func (c *Colorizer) Header(text string) string {
	return c.Render(c.NewStyle().Foreground(lipgloss.Color(ColorRose)), text)
}

// Dim renders secondary text such as unset flags.
func (c *Colorizer) Dim(text string) string {
	return c.Render(c.NewStyle().Faint(true), text)
}

// Warn renders text that flags a problem, such as a failed query.
func (c *Colorizer) Warn(text string) string {
	return c.Render(c.NewStyle().Foreground(lipgloss.Color(ColorRed)), text)
}

// Good renders text that flags a granted right.
func (c *Colorizer) Good(text string) string {
	return c.Render(c.NewStyle().Foreground(lipgloss.Color(ColorGreen)), text)
}

var permColors = map[rune]string{
	'd': ColorBlue,
	'l': ColorCyan,
	'r': ColorYellow,
	'w': ColorRed,
	'x': ColorGreen,
	'a': ColorMagenta,
	'h': ColorGray,
	's': ColorRed,
}

// Perms renders the permission column with set flags coloured and dashes
// dimmed.
func (c *Colorizer) Perms(p perms.Perms) string {
	return p.Format(
		func(r rune) string {
			color, ok := permColors[r]
			if !ok {
				return string(r)
			}
			return c.Render(c.NewStyle().Foreground(lipgloss.Color(color)), string(r))
		},
		func(r rune) string { return c.Dim(string(r)) },
	)
}
