// Package perms renders the permission column of a listing.
package perms

import (
	"io/fs"
	"path"
	"strings"
)

// Windows file attribute bits shown in the column.
const (
	FILE_ATTRIBUTE_READONLY      uint32 = 0x0001
	FILE_ATTRIBUTE_HIDDEN        uint32 = 0x0002
	FILE_ATTRIBUTE_SYSTEM        uint32 = 0x0004
	FILE_ATTRIBUTE_DIRECTORY     uint32 = 0x0010
	FILE_ATTRIBUTE_ARCHIVE       uint32 = 0x0020
	FILE_ATTRIBUTE_REPARSE_POINT uint32 = 0x0400
)

// Dash marks an unset flag.
const Dash = '-'

// Kind tells which column layout a Perms uses.
type Kind uint8

const (
	KindUnix Kind = iota
	KindWindows
)

// Perms is either a POSIX mode or a set of Windows attributes.
type Perms struct {
	kind       Kind
	mode       fs.FileMode
	attrs      uint32
	executable bool
}

// Flag is one character of the column.
type Flag struct {
	Char rune
	Set  bool
}

// Unix returns the permissions for a POSIX mode.
func Unix(mode fs.FileMode) Perms {
	return Perms{kind: KindUnix, mode: mode, executable: mode.Perm()&0o111 != 0 && !mode.IsDir()}
}

// Windows returns the permissions for Windows attributes.
func Windows(attrs uint32, executable bool) Perms {
	return Perms{kind: KindWindows, attrs: attrs, executable: executable}
}

// Kind returns the column layout.
func (p Perms) Kind() Kind { return p.kind }

// Mode returns the POSIX mode, zero for Windows attributes.
func (p Perms) Mode() fs.FileMode { return p.mode }

// Attributes returns the Windows attributes, zero for a POSIX mode.
func (p Perms) Attributes() uint32 { return p.attrs }

// Hidden reports the Windows hidden attribute. POSIX has no such bit.
func (p Perms) Hidden() bool {
	return p.kind == KindWindows && p.attrs&FILE_ATTRIBUTE_HIDDEN != 0
}

// Executable reports whether the entry can be run.
func (p Perms) Executable() bool { return p.executable }

// Flags returns the column characters in order: "darhslx" for Windows,
// "drwxrwxrwx" for POSIX.
func (p Perms) Flags() []Flag {
	if p.kind == KindWindows {
		return []Flag{
			{'d', p.attrs&FILE_ATTRIBUTE_DIRECTORY != 0},
			{'a', p.attrs&FILE_ATTRIBUTE_ARCHIVE != 0},
			{'r', p.attrs&FILE_ATTRIBUTE_READONLY != 0},
			{'h', p.attrs&FILE_ATTRIBUTE_HIDDEN != 0},
			{'s', p.attrs&FILE_ATTRIBUTE_SYSTEM != 0},
			{'l', p.attrs&FILE_ATTRIBUTE_REPARSE_POINT != 0},
			{'x', p.executable},
		}
	}

	flags := make([]Flag, 0, 10)
	flags = append(flags, Flag{typeChar(p.mode), p.mode.Type() != 0})
	const rwx = "rwxrwxrwx"
	for i, c := range rwx {
		flags = append(flags, Flag{c, p.mode&(1<<uint(8-i)) != 0})
	}
	return flags
}

func typeChar(mode fs.FileMode) rune {
	switch {
	case mode.IsDir():
		return 'd'
	case mode&fs.ModeSymlink != 0:
		return 'l'
	case mode&fs.ModeNamedPipe != 0:
		return 'p'
	case mode&fs.ModeSocket != 0:
		return 's'
	case mode&fs.ModeCharDevice != 0:
		return 'c'
	case mode&fs.ModeDevice != 0:
		return 'b'
	}
	return Dash
}

// String renders the column without colour.
func (p Perms) String() string {
	return p.Format(func(r rune) string { return string(r) }, func(r rune) string { return string(r) })
}

// Format renders the column, passing set characters to set and dashes to
// unset.
func (p Perms) Format(set, unset func(rune) string) string {
	var sb strings.Builder
	for _, f := range p.Flags() {
		if f.Set {
			sb.WriteString(set(f.Char))
		} else {
			sb.WriteString(unset(Dash))
		}
	}
	return sb.String()
}

// scriptExtensions are run by the shell on Windows without being binaries.
var scriptExtensions = map[string]bool{
	"exe": true,
	"com": true,
	"bat": true,
	"cmd": true,
	"ps1": true,
	"vbs": true,
	"msi": true,
}

// ExecutableName reports whether a file name carries a Windows executable
// extension. Remote entries have nothing else to go on.
func ExecutableName(name string) bool {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	return scriptExtensions[strings.ToLower(ext)]
}
