package targets

import (
	"io"
	"reflect"
	"testing"

	"github.com/spf13/afero"

	"github.com/specterops/xf/internal/config"
	"github.com/specterops/xf/internal/logger"
)

func testLogger() *logger.Logger {
	noColors := true
	l := logger.NewLogger(config.NewConfig(false, &noColors), "")
	l.SetOutput(io.Discard)
	return l
}

func TestLoadTargets(t *testing.T) {
	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "/hosts.txt", []byte("# file servers\nFS01\n\n10.0.0.5\n  fe80::1  \n"), 0o644)

	got, err := LoadTargets(fsys, Options{
		TargetsFile: "/hosts.txt",
		Targets:     []string{`\\fs01\data`, "10.0.0.5", "smb://fs02.corp.local/share", "//", "::ffff:10.0.0.5"},
	}, testLogger())
	if err != nil {
		t.Fatalf("LoadTargets error: %v", err)
	}

	want := []Target{
		{Type: TypeIPv4, Value: "10.0.0.5"},
		{Type: TypeIPv6, Value: "fe80::1"},
		{Type: TypeName, Value: "fs01"},
		{Type: TypeName, Value: "fs02.corp.local"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadTargets = %+v\nwant %+v", got, want)
	}
}

func TestLoadTargetsMissingFile(t *testing.T) {
	_, err := LoadTargets(afero.NewMemMapFs(), Options{TargetsFile: "/missing"}, testLogger())
	if err == nil {
		t.Fatal("LoadTargets with a missing file succeeded")
	}
}

func TestLoadTargetsEmpty(t *testing.T) {
	got, err := LoadTargets(afero.NewMemMapFs(), Options{}, testLogger())
	if err != nil {
		t.Fatalf("LoadTargets error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("LoadTargets = %v, want none", got)
	}
}
