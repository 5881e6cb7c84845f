//go:build unix

package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestQueryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(path, []byte("data"), 0o640); err != nil {
		t.Fatal(err)
	}

	sd, err := QueryFile(path, DefaultInformation)
	if err != nil {
		t.Fatalf("QueryFile: %v", err)
	}
	if sd.Owner == nil || sd.Group == nil {
		t.Fatal("Expected owner and group")
	}
	if uid, group, ok := sd.Owner.UnixID(); !ok || group || uid != uint32(os.Getuid()) {
		t.Errorf("Owner %s does not carry uid %d", sd.Owner, os.Getuid())
	}
	if _, present, _ := sd.DACL(); !present {
		t.Error("Expected a DACL")
	}

	ownerOnly, err := QueryFile(path, OWNER_SECURITY_INFORMATION)
	if err != nil {
		t.Fatalf("QueryFile(owner): %v", err)
	}
	if ownerOnly.Group != nil || ownerOnly.HasControl(SE_DACL_PRESENT) {
		t.Errorf("Expected owner only, got %+v", ownerOnly)
	}
}

func TestQueryFileMissing(t *testing.T) {
	if _, err := QueryFile(filepath.Join(t.TempDir(), "missing"), DefaultInformation); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
