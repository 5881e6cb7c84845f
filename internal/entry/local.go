package entry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/specterops/xf/internal/perms"
	"github.com/specterops/xf/internal/security"
)

// LocalSource reads entries from an afero file system.
type LocalSource struct {
	fs   afero.Fs
	root string
	os   bool
}

// NewLocalSource normalizes root and checks that it exists.
func NewLocalSource(fsys afero.Fs, root string) (*LocalSource, error) {
	abs, err := Normalize(fsys, root)
	if err != nil {
		return nil, err
	}
	return &LocalSource{fs: fsys, root: abs, os: isOsFs(fsys)}, nil
}

func isOsFs(fsys afero.Fs) bool {
	_, ok := fsys.(*afero.OsFs)
	return ok
}

// homeRelative reports whether p is "~" or starts with "~/". Names like
// "~backup" are left alone.
func homeRelative(p string) bool {
	if p == "~" {
		return true
	}
	return len(p) > 1 && p[0] == '~' && (p[1] == '/' || p[1] == filepath.Separator)
}

// Normalize expands a leading "~" and makes p absolute. On the OS file
// system symlinks are resolved as well.
func Normalize(fsys afero.Fs, p string) (string, error) {
	if p == "" {
		p = "."
	}
	if homeRelative(p) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %s: %w", p, err)
		}
		p = home + p[1:]
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}

	if isOsFs(fsys) {
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", p, err)
		}
		return resolved, nil
	}
	if _, err := fsys.Stat(abs); err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	return abs, nil
}

func (s *LocalSource) Root() string  { return s.root }
func (s *LocalSource) Label() string { return s.root }
func (s *LocalSource) Close() error  { return nil }

func (s *LocalSource) Join(elem ...string) string { return filepath.Join(elem...) }

func (s *LocalSource) Rel(p string) string {
	rel, err := filepath.Rel(s.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func (s *LocalSource) Stat(p string) (*Entry, error) {
	info, err := s.fs.Stat(p)
	if err != nil {
		return nil, err
	}
	return s.newEntry(p, info), nil
}

// ReadDir lists dir in file name order. Symlinks to directories are
// reported as directories.
func (s *LocalSource) ReadDir(dir string) ([]*Entry, error) {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, s.newEntry(filepath.Join(dir, info.Name()), info))
	}
	return entries, nil
}

func (s *LocalSource) ReadFile(p string) ([]byte, error) {
	return afero.ReadFile(s.fs, p)
}

func (s *LocalSource) Security(p string, info security.SecurityInformation) (*security.SecurityDescriptor, error) {
	if !s.os {
		return nil, fmt.Errorf("%w: %s is not on the OS file system", security.ErrNotSupported, p)
	}
	return security.QueryFile(p, info)
}

func (s *LocalSource) newEntry(p string, info fs.FileInfo) *Entry {
	e := &Entry{
		Name:     info.Name(),
		Path:     p,
		Rel:      s.Rel(p),
		Kind:     File,
		Size:     info.Size(),
		Modified: info.ModTime(),
		Created:  createdTime(info),
		Perms:    perms.FromFileInfo(info, p),
		Source:   s,
	}
	if p == s.root {
		e.Name = filepath.Base(p)
	}

	switch {
	case info.IsDir():
		e.Kind = Dir
	case info.Mode()&fs.ModeSymlink != 0:
		if target, err := s.fs.Stat(p); err == nil && target.IsDir() {
			e.Kind = Dir
		}
	}
	return e
}
