package security

import (
	"reflect"
	"testing"
)

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		mask uint32
		want string
	}{
		{"full control", FILE_ALL_ACCESS, "F"},
		{"modify", FILE_MODIFY, "M"},
		{"read and execute", FILE_READ_EXECUTE, "RX"},
		{"read execute write", FILE_READ_EXECUTE | FILE_WRITE, "RX,W"},
		{"read and change permissions", FILE_GENERIC_READ | WRITE_DAC, "R,WDAC"},
		{"generic read", GENERIC_READ, "GR"},
		{"delete", DELETE, "D"},
		{"single bits", FILE_READ_DATA | FILE_READ_ATTRIBUTES, "RD,RA"},
		{"unnamed bit", 0x00000200, "0x200"},
		{"none", 0, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summary(tt.mask); got != tt.want {
				t.Errorf("Summary(0x%08x) = %q, want %q", tt.mask, got, tt.want)
			}
		})
	}
}

func TestRightNames(t *testing.T) {
	tests := []struct {
		name string
		mask uint32
		dir  bool
		want []string
	}{
		{"file read", FILE_READ_DATA | FILE_EXECUTE, false, []string{"FILE_READ_DATA", "FILE_EXECUTE"}},
		{"directory read", FILE_LIST_DIRECTORY | FILE_TRAVERSE, true, []string{"FILE_LIST_DIRECTORY", "FILE_TRAVERSE"}},
		{"standard", DELETE | WRITE_OWNER, true, []string{"DELETE", "WRITE_OWNER"}},
		{"unknown bits", FILE_WRITE_EA | 0x00000600, false, []string{"FILE_WRITE_EA", "0x00000600"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RightNames(tt.mask, tt.dir); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RightNames() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapGeneric(t *testing.T) {
	tests := []struct {
		mask uint32
		want uint32
	}{
		{GENERIC_READ, FILE_GENERIC_READ},
		{GENERIC_WRITE, FILE_GENERIC_WRITE},
		{GENERIC_EXECUTE, FILE_GENERIC_EXECUTE},
		{GENERIC_ALL, FILE_ALL_ACCESS},
		{GENERIC_READ | DELETE, FILE_GENERIC_READ | DELETE},
		{FILE_READ_DATA, FILE_READ_DATA},
	}

	for _, tt := range tests {
		if got := MapGeneric(tt.mask); got != tt.want {
			t.Errorf("MapGeneric(0x%08x) = 0x%08x, want 0x%08x", tt.mask, got, tt.want)
		}
	}
}

func TestLabelRights(t *testing.T) {
	ace := ACE{Type: SYSTEM_MANDATORY_LABEL_ACE_TYPE, Mask: SYSTEM_MANDATORY_LABEL_NO_WRITE_UP | SYSTEM_MANDATORY_LABEL_NO_READ_UP}
	if got := ace.Summary(); got != "NW,NR" {
		t.Errorf("Summary() = %q", got)
	}
	if got := ace.Rights(false); !reflect.DeepEqual(got, []string{"NO_WRITE_UP", "NO_READ_UP"}) {
		t.Errorf("Rights() = %v", got)
	}
}
