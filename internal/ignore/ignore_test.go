package ignore

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/specterops/xf/internal/entry"
)

func mustParse(t *testing.T, base, content string) *GitIgnore {
	t.Helper()
	g, err := Parse(base, content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return g
}

func TestParseCounts(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"**/test.txt", 1},
		{"target/*", 1},
		{"*.txt", 1},
		{"!test.txt", 1},
		{"# test.txt", 0},
		{"\n\n   \n", 0},
		{"/", 0},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			if got := mustParse(t, "", tt.content).Len(); got != tt.want {
				t.Errorf("Len() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInclude(t *testing.T) {
	g := mustParse(t, "", `
**/test.rs
*.zip
# comment
tests/**/*.log
!examples/test.rs
`)

	tests := []struct {
		path    string
		dir     bool
		include bool
	}{
		{"examples/test.rs", false, true},
		{"compressed.zip", false, false},
		{"nested/deep/compressed.zip", false, false},
		{"tests/nested/output.log", false, false},
		{"tests/output.log", false, false},
		{"output.log", false, true},
		{"tests/test.rs", false, false},
		{"test.rs", false, false},
		{"src/main.rs", false, true},
		{"", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := g.Include(tt.path, tt.dir); got != tt.include {
				t.Errorf("Include(%q) = %v, want %v", tt.path, got, tt.include)
			}
		})
	}
}

func TestIncludeAnchorsAndDirectories(t *testing.T) {
	g := mustParse(t, "", `
/build
node_modules/
docs/*.tmp
?.bak
`)

	tests := []struct {
		path    string
		dir     bool
		include bool
	}{
		{"build", true, false},
		{"build/out.bin", false, false},
		{"src/build", true, true},
		{"node_modules", true, false},
		{"web/node_modules", true, false},
		{"web/node_modules/react/index.js", false, false},
		{"node_modules", false, true},
		{"docs/a.tmp", false, false},
		{"docs/sub/a.tmp", false, true},
		{"a.bak", false, false},
		{"ab.bak", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := g.Include(tt.path, tt.dir); got != tt.include {
				t.Errorf("Include(%q, dir=%v) = %v, want %v", tt.path, tt.dir, got, tt.include)
			}
		})
	}
}

func TestLastMatchWins(t *testing.T) {
	g := mustParse(t, "", "*.log\n!keep.log\nkeep.log\n")
	if g.Include("keep.log", false) {
		t.Error("keep.log should be ignored by the last pattern")
	}

	g = mustParse(t, "", "*.log\n!important.log\n")
	if !g.Include("important.log", false) {
		t.Error("important.log should be re-included")
	}
}

func TestStack(t *testing.T) {
	root := mustParse(t, "", "*.log\n")
	sub := mustParse(t, "pkg", "!debug.log\n/gen\n")

	var empty Stack
	stack := empty.Push(root).Push(nil)
	if len(stack) != 1 {
		t.Fatalf("Push(nil) changed the stack")
	}
	nested := stack.Push(sub)

	tests := []struct {
		stack   Stack
		path    string
		dir     bool
		include bool
	}{
		{stack, "pkg/debug.log", false, false},
		{nested, "pkg/debug.log", false, true},
		{nested, "pkg/trace.log", false, false},
		{nested, "debug.log", false, false},
		{nested, "pkg/gen", true, false},
		{nested, "pkg/gen/types.go", false, false},
		{nested, "gen", true, true},
		{nested, "pkgs/gen", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := tt.stack.Include(tt.path, tt.dir); got != tt.include {
				t.Errorf("Include(%q) = %v, want %v", tt.path, got, tt.include)
			}
		})
	}

	if len(stack) != 1 {
		t.Error("Push modified its receiver")
	}
}

func TestLoad(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/repo/pkg", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fsys, "/repo/pkg/.gitignore", []byte("*.o\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := entry.NewLocalSource(fsys, "/repo")
	if err != nil {
		t.Fatal(err)
	}

	g, err := Load(src, "/repo/pkg")
	if err != nil || g == nil {
		t.Fatalf("Load = %v, %v", g, err)
	}
	if g.Base != "pkg" {
		t.Errorf("Base = %q, want pkg", g.Base)
	}
	if g.Include("pkg/main.o", false) {
		t.Error("pkg/main.o should be ignored")
	}
	if !g.Include("main.o", false) {
		t.Error("main.o is outside the file's directory")
	}

	if g, err := Load(src, "/repo"); g != nil || err != nil {
		t.Errorf("Load without a file = %v, %v", g, err)
	}

	e := &entry.Entry{Name: "main.o", Rel: "pkg/main.o"}
	if (Stack{g}).Keep(e) {
		t.Error("Keep should drop pkg/main.o")
	}
}
