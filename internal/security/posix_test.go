package security

import (
	"errors"
	"io/fs"
	"testing"
)

func TestFromMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  fs.FileMode
		flags uint8
		want  []string
	}{
		{"directory 0755", fs.ModeDir | 0o755, OBJECT_INHERIT_ACE | CONTAINER_INHERIT_ACE, []string{"F", "RX", "RX"}},
		{"file 0644", 0o644, 0, []string{"R,W,D,WDAC,WO", "R", "R"}},
		{"file 0600", 0o600, 0, []string{"R,W,D,WDAC,WO"}},
		{"file 0070", 0o070, 0, []string{"RC,WDAC,WO", "RX,W"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sd := FromMode(tt.mode, 1000, 100)
			if sd.Owner.String() != "S-1-22-1-1000" || sd.Group.String() != "S-1-22-2-100" {
				t.Fatalf("Unexpected owner/group %s %s", sd.Owner, sd.Group)
			}
			if len(sd.Dacl.Entries) != len(tt.want) {
				t.Fatalf("Expected %d ACEs, got %d", len(tt.want), len(sd.Dacl.Entries))
			}
			for i, ace := range sd.Dacl.Entries {
				if ace.Summary() != tt.want[i] {
					t.Errorf("ACE %d: Summary() = %q, want %q", i, ace.Summary(), tt.want[i])
				}
				if ace.Flags != tt.flags {
					t.Errorf("ACE %d: flags 0x%02x, want 0x%02x", i, ace.Flags, tt.flags)
				}
			}
		})
	}
}

func TestSelect(t *testing.T) {
	sd := FromMode(0o644, 0, 0)
	only := sd.Select(OWNER_SECURITY_INFORMATION)
	if only.Owner == nil || only.Group != nil || only.Dacl != nil {
		t.Errorf("Select(owner) kept %+v", only)
	}
	if only.HasControl(SE_DACL_PRESENT) {
		t.Error("Select(owner) should clear SE_DACL_PRESENT")
	}
	if sd.Dacl == nil {
		t.Error("Select must not modify the receiver")
	}
}

func TestSelectRaw(t *testing.T) {
	raw := FromMode(0o640, 1000, 1000).Bytes()

	got, err := SelectRaw(raw, OWNER_SECURITY_INFORMATION)
	if err != nil {
		t.Fatalf("SelectRaw: %v", err)
	}
	sd, err := ParseSecurityDescriptor(got)
	if err != nil {
		t.Fatalf("ParseSecurityDescriptor: %v", err)
	}
	if sd.Owner == nil || sd.Owner.String() != "S-1-22-1-1000" {
		t.Errorf("Owner = %v, want S-1-22-1-1000", sd.Owner)
	}
	if sd.Group != nil || sd.Dacl != nil || sd.HasControl(SE_DACL_PRESENT) {
		t.Errorf("SelectRaw(owner) kept %+v", sd)
	}

	if _, err := SelectRaw([]byte{1, 0}, DefaultInformation); !errors.Is(err, ErrMalformed) {
		t.Errorf("SelectRaw(short) error = %v, want ErrMalformed", err)
	}
}

func TestParseInformation(t *testing.T) {
	tests := []struct {
		input   string
		want    SecurityInformation
		wantErr bool
	}{
		{"owner,dacl", OWNER_SECURITY_INFORMATION | DACL_SECURITY_INFORMATION, false},
		{" Owner , Group ,DACL", DefaultInformation, false},
		{"sacl,label", SACL_SECURITY_INFORMATION | LABEL_SECURITY_INFORMATION, false},
		{"owner,acl", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInformation(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseInformation(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseInformation(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}

	if DefaultInformation.String() != "owner,group,dacl" {
		t.Errorf("String() = %q", DefaultInformation.String())
	}
}
