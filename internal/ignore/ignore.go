// Package ignore applies .gitignore files to listings.
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/specterops/xf/internal/entry"
)

// FileName is the name of an ignore file.
const FileName = ".gitignore"

type pattern struct {
	glob    string
	negate  bool
	dirOnly bool
}

func (p pattern) match(rel string, dir bool) bool {
	if p.dirOnly && !dir {
		return false
	}
	ok, _ := doublestar.Match(p.glob, rel)
	return ok
}

// GitIgnore holds the patterns of one .gitignore file. Base is the
// directory of the file relative to the listing root, "" for the root.
type GitIgnore struct {
	Base     string
	patterns []pattern
}

// Parse reads .gitignore content whose file lives in base.
func Parse(base, content string) (*GitIgnore, error) {
	g := &GitIgnore{Base: strings.Trim(base, "/")}
	if g.Base == "." {
		g.Base = ""
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var p pattern
		if strings.HasPrefix(line, "!") {
			p.negate = true
			line = line[1:]
		} else if strings.HasPrefix(line, `\!`) || strings.HasPrefix(line, `\#`) {
			line = line[1:]
		}
		if strings.HasSuffix(line, "/") {
			p.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}

		// A slash anywhere but the end anchors the pattern to the file's
		// directory. Otherwise it matches at any depth.
		if strings.Contains(line, "/") {
			line = strings.TrimPrefix(line, "/")
		} else {
			line = "**/" + line
		}
		if line == "" || line == "**/" {
			continue
		}
		if !doublestar.ValidatePattern(line) {
			return nil, fmt.Errorf("%s line %d: invalid pattern %q", FileName, n, scanner.Text())
		}
		p.glob = line
		g.patterns = append(g.patterns, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// Len returns the number of patterns.
func (g *GitIgnore) Len() int { return len(g.patterns) }

// verdict reports whether any pattern matched rel and, if so, whether the
// last one ignores it. rel is relative to the listing root.
func (g *GitIgnore) verdict(rel string, dir bool) (matched, ignored bool) {
	local, ok := g.local(rel)
	if !ok {
		return false, false
	}
	for _, p := range g.patterns {
		if p.match(local, dir) {
			matched, ignored = true, !p.negate
		}
	}
	return matched, ignored
}

func (g *GitIgnore) local(rel string) (string, bool) {
	if g.Base == "" {
		return rel, true
	}
	if strings.HasPrefix(rel, g.Base+"/") {
		return rel[len(g.Base)+1:], true
	}
	return "", false
}

// Include reports whether rel survives this file alone.
func (g *GitIgnore) Include(rel string, dir bool) bool {
	return Stack{g}.Include(rel, dir)
}

// Stack is the set of .gitignore files in effect, outermost first. Later
// files take precedence over earlier ones.
type Stack []*GitIgnore

// Push returns the stack with g added on top. A nil g returns s unchanged.
// The receiver is never modified, so sibling directories can share it.
func (s Stack) Push(g *GitIgnore) Stack {
	if g == nil {
		return s
	}
	out := make(Stack, len(s), len(s)+1)
	copy(out, s)
	return append(out, g)
}

func (s Stack) ignored(rel string, dir bool) bool {
	ignored := false
	for _, g := range s {
		if m, ig := g.verdict(rel, dir); m {
			ignored = ig
		}
	}
	return ignored
}

// Include reports whether rel, a path relative to the listing root, is
// shown. A path below an ignored directory is never shown.
func (s Stack) Include(rel string, dir bool) bool {
	rel = strings.Trim(strings.ReplaceAll(rel, `\`, "/"), "/")
	if rel == "" || rel == "." {
		return true
	}

	parts := strings.Split(rel, "/")
	for i := 1; i < len(parts); i++ {
		if s.ignored(strings.Join(parts[:i], "/"), true) {
			return false
		}
	}
	return !s.ignored(rel, dir)
}

// Keep lets a stack act as a listing filter.
func (s Stack) Keep(e *entry.Entry) bool {
	return s.Include(e.Rel, e.IsDir())
}

// Load reads the .gitignore of dir from src, or returns nil when there is
// none.
func Load(src entry.Source, dir string) (*GitIgnore, error) {
	data, err := src.ReadFile(src.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return Parse(path.Clean(src.Rel(dir)), string(data))
}
