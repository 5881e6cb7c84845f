package style

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/specterops/xf/internal/config"
	"github.com/specterops/xf/internal/entry"
	"github.com/specterops/xf/internal/perms"
)

func TestDefaultGroups(t *testing.T) {
	c := NewColorizer(&bytes.Buffer{}, true).WithDefaults()

	tests := []struct {
		entry *entry.Entry
		group string
	}{
		{&entry.Entry{Name: "src", Kind: entry.Dir}, "DIR"},
		{&entry.Entry{Name: ".git", Kind: entry.Dir}, "DIR"},
		{&entry.Entry{Name: ".env"}, "HIDDEN"},
		{&entry.Entry{Name: "pagefile.sys", Perms: perms.Windows(perms.FILE_ATTRIBUTE_HIDDEN, false)}, "HIDDEN"},
		{&entry.Entry{Name: "logo.PNG"}, "IMAGE"},
		{&entry.Entry{Name: "go.mod"}, "CONFIG"},
		{&entry.Entry{Name: "Cargo.toml"}, "CONFIG"},
		{&entry.Entry{Name: "build.sh"}, "EXE"},
		{&entry.Entry{Name: "run", Perms: perms.Unix(0o755)}, "EXE"},
		{&entry.Entry{Name: "readme.md"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.entry.Name, func(t *testing.T) {
			if got := c.GroupOf(tt.entry); got != tt.group {
				t.Errorf("GroupOf(%s) = %q, want %q", tt.entry.Name, got, tt.group)
			}
		})
	}
}

func TestPlainRendering(t *testing.T) {
	c := NewColorizer(&bytes.Buffer{}, true).WithDefaults()
	e := &entry.Entry{Name: "src", Kind: entry.Dir}

	if got := c.Name(e); got != "src" {
		t.Errorf("Name = %q, want plain text", got)
	}
	if got := c.Perms(perms.Windows(perms.FILE_ATTRIBUTE_DIRECTORY, false)); got != "d------" {
		t.Errorf("Perms = %q", got)
	}
	if got := c.Size("1.50 kB") + c.Date("2024-01-01 10:00") + c.Header("a/b"); got != "1.50 kB2024-01-01 10:00a/b" {
		t.Errorf("plain helpers = %q", got)
	}
}

func TestColorRendering(t *testing.T) {
	c := NewColorizer(&bytes.Buffer{}, false)
	c.SetColorProfile(termenv.ANSI256)
	c.WithDefaults()

	got := c.Name(&entry.Entry{Name: "src", Kind: entry.Dir})
	if !strings.Contains(got, "\x1b[") || !strings.Contains(got, "src") {
		t.Errorf("Name = %q, want an escape sequence around src", got)
	}
	if got := c.Name(&entry.Entry{Name: "readme.md"}); got != "readme.md" {
		t.Errorf("ungrouped name = %q, want plain", got)
	}
}

func TestGroupMerge(t *testing.T) {
	c := NewColorizer(&bytes.Buffer{}, true)
	c.Group("DOCS", c.NewStyle(), config.Match{Extensions: []string{"md"}})
	c.Group("docs", c.NewStyle(), config.Match{Extensions: []string{".TXT"}, StartsWith: []string{"README"}})

	if got := c.Groups(); len(got) != 1 {
		t.Fatalf("Groups = %v, want one merged group", got)
	}
	for _, name := range []string{"a.md", "b.txt", "README"} {
		if c.GroupOf(&entry.Entry{Name: name}) != "DOCS" {
			t.Errorf("%s not in merged group", name)
		}
	}
}

func TestWithConfig(t *testing.T) {
	c := NewColorizer(&bytes.Buffer{}, true).WithDefaults()
	c.WithConfig([]config.Group{
		{Name: "SECRETS", Style: config.Style{Foreground: "#ff0000", Bold: true}, Match: config.Match{EndsWith: []string{".key"}}},
		{Name: "DIR", Style: config.Style{Foreground: "12"}, Match: config.Match{Directory: true}},
	})

	if got := c.Groups(); strings.Join(got, ",") != "SECRETS,DIR" {
		t.Errorf("Groups = %v", got)
	}
	if c.GroupOf(&entry.Entry{Name: "id.key"}) != "SECRETS" {
		t.Error("id.key not in SECRETS")
	}
	if c.GroupOf(&entry.Entry{Name: "logo.png"}) != "" {
		t.Error("defaults should have been replaced")
	}

	c.WithConfig(nil)
	if len(c.Groups()) != 2 {
		t.Error("empty config should keep groups")
	}
}
