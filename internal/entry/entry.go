// Package entry models the files and directories a listing shows and the
// sources they are read from.
package entry

import (
	"strings"
	"time"

	"github.com/specterops/xf/internal/perms"
	"github.com/specterops/xf/internal/security"
)

// Kind tells files and directories apart.
type Kind int

const (
	File Kind = iota
	Dir
)

func (k Kind) String() string {
	if k == Dir {
		return "dir"
	}
	return "file"
}

// Entry is one file or directory of a listing.
type Entry struct {
	Name string
	// Path is the full path inside Source.
	Path string
	// Rel is the path relative to the listing root, slash separated.
	Rel      string
	Kind     Kind
	Size     int64
	Modified time.Time
	Created  time.Time
	Perms    perms.Perms
	Depth    int
	Source   Source

	// Security is filled in by the collector when descriptors are asked
	// for. SecurityErr records why a query failed.
	Security    *security.SecurityDescriptor
	SecurityErr error
}

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool { return e.Kind == Dir }

// IsFile reports whether the entry is a file.
func (e *Entry) IsFile() bool { return e.Kind == File }

// IsHidden reports a dot name or the Windows hidden attribute.
func (e *Entry) IsHidden() bool {
	return strings.HasPrefix(e.Name, ".") || e.Perms.Hidden()
}

// Executable reports whether the entry can be run.
func (e *Entry) Executable() bool {
	return e.Kind == File && e.Perms.Executable()
}

// Extension returns the text after the last dot of the name, or "" when
// there is none. A name whose only dot is the leading one has none.
func (e *Entry) Extension() string {
	i := strings.LastIndexByte(e.Name, '.')
	if i <= 0 {
		return ""
	}
	return e.Name[i+1:]
}
