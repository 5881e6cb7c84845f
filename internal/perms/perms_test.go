package perms

import (
	"io/fs"
	"strings"
	"testing"
)

func TestWindowsString(t *testing.T) {
	tests := []struct {
		name  string
		attrs uint32
		exe   bool
		want  string
	}{
		{"nothing", 0, false, "-------"},
		{"directory", FILE_ATTRIBUTE_DIRECTORY, false, "d------"},
		{"archive readonly", FILE_ATTRIBUTE_ARCHIVE | FILE_ATTRIBUTE_READONLY, false, "-ar----"},
		{"hidden system", FILE_ATTRIBUTE_HIDDEN | FILE_ATTRIBUTE_SYSTEM, false, "---hs--"},
		{"junction", FILE_ATTRIBUTE_DIRECTORY | FILE_ATTRIBUTE_REPARSE_POINT, false, "d----l-"},
		{"executable", FILE_ATTRIBUTE_ARCHIVE, true, "-a----x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Windows(tt.attrs, tt.exe)
			if got := p.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnixString(t *testing.T) {
	tests := []struct {
		mode fs.FileMode
		want string
		exe  bool
	}{
		{0o644, "-rw-r--r--", false},
		{fs.ModeDir | 0o755, "drwxr-xr-x", false},
		{0o700, "-rwx------", true},
		{fs.ModeSymlink | 0o777, "lrwxrwxrwx", true},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			p := Unix(tt.mode)
			if got := p.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if p.Executable() != tt.exe {
				t.Errorf("Executable() = %v, want %v", p.Executable(), tt.exe)
			}
		})
	}
}

func TestHidden(t *testing.T) {
	if !Windows(FILE_ATTRIBUTE_HIDDEN, false).Hidden() {
		t.Error("Expected hidden attribute to be reported")
	}
	if Unix(0o644).Hidden() {
		t.Error("POSIX modes are never hidden")
	}
}

func TestFormat(t *testing.T) {
	p := Windows(FILE_ATTRIBUTE_DIRECTORY, false)
	got := p.Format(
		func(r rune) string { return strings.ToUpper(string(r)) },
		func(r rune) string { return "." },
	)
	if got != "D......" {
		t.Errorf("Format() = %q", got)
	}
}

func TestExecutableName(t *testing.T) {
	for name, want := range map[string]bool{
		"setup.EXE":  true,
		"run.ps1":    true,
		"build.bat":  true,
		"notes.txt":  false,
		"Makefile":   false,
		"script.sh":  false,
		".gitignore": false,
	} {
		if got := ExecutableName(name); got != want {
			t.Errorf("ExecutableName(%q) = %v, want %v", name, got, want)
		}
	}
}
