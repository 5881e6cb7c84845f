package security

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

// minimalSD is a self-relative descriptor with:
// - Control: SE_SELF_RELATIVE | SE_DACL_PRESENT (0x8004)
// - Owner and group: S-1-5-32-544 (Administrators)
// - DACL with one ACE allowing Everyone full access
var minimalSD = []byte{
	// Header (20 bytes)
	0x01,       // Revision
	0x00,       // Sbz1
	0x04, 0x80, // Control (SE_SELF_RELATIVE | SE_DACL_PRESENT)
	0x30, 0x00, 0x00, 0x00, // OwnerOffset (48)
	0x40, 0x00, 0x00, 0x00, // GroupOffset (64)
	0x00, 0x00, 0x00, 0x00, // SaclOffset (0 = none)
	0x14, 0x00, 0x00, 0x00, // DaclOffset (20)

	// DACL at offset 20 (28 bytes)
	0x02,       // Revision
	0x00,       // Sbz1
	0x1c, 0x00, // AclSize (28)
	0x01, 0x00, // AceCount (1)
	0x00, 0x00, // Sbz2

	// ACE 1: ACCESS_ALLOWED_ACE for Everyone (S-1-1-0)
	0x00,       // AceType (ACCESS_ALLOWED)
	0x00,       // AceFlags
	0x14, 0x00, // AceSize (20)
	0xff, 0x01, 0x1f, 0x00, // Mask (FILE_ALL_ACCESS)
	0x01,                               // Revision
	0x01,                               // SubAuthorityCount
	0x00, 0x00, 0x00, 0x00, 0x00, 0x01, // IdentifierAuthority (1)
	0x00, 0x00, 0x00, 0x00, // SubAuthority[0] (0)

	// Owner SID at offset 48: S-1-5-32-544 (16 bytes)
	0x01,
	0x02,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
	0x20, 0x00, 0x00, 0x00,
	0x20, 0x02, 0x00, 0x00,

	// Group SID at offset 64: S-1-5-32-544 (16 bytes)
	0x01,
	0x02,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
	0x20, 0x00, 0x00, 0x00,
	0x20, 0x02, 0x00, 0x00,
}

func TestParseSecurityDescriptor(t *testing.T) {
	sd, err := ParseSecurityDescriptor(minimalSD)
	if err != nil {
		t.Fatalf("Failed to parse security descriptor: %v", err)
	}

	if sd.Revision != 1 {
		t.Errorf("Expected revision 1, got %d", sd.Revision)
	}
	if sd.Control != 0x8004 {
		t.Errorf("Expected control 0x8004, got 0x%04x", sd.Control)
	}

	acl, present, defaulted := sd.DACL()
	if !present || defaulted {
		t.Fatalf("Expected present, non-defaulted DACL, got present=%v defaulted=%v", present, defaulted)
	}
	if acl == nil || len(acl.Entries) != 1 {
		t.Fatalf("Expected 1 ACE, got %+v", acl)
	}

	ace := acl.Entries[0]
	if !ace.IsAccessAllowed() || ace.Mask != FILE_ALL_ACCESS || ace.SID.String() != "S-1-1-0" {
		t.Errorf("Unexpected ACE: %+v", ace)
	}
	if sd.Owner.String() != "S-1-5-32-544" || sd.Group.String() != "S-1-5-32-544" {
		t.Errorf("Unexpected owner/group: %s %s", sd.Owner, sd.Group)
	}
}

func TestParseSecurityDescriptorErrors(t *testing.T) {
	header := func(control uint16, owner, group, sacl, dacl uint32) []byte {
		b := make([]byte, 20)
		b[0] = 1
		b[2], b[3] = byte(control), byte(control>>8)
		for i, v := range []uint32{owner, group, sacl, dacl} {
			b[4+i*4] = byte(v)
			b[5+i*4] = byte(v >> 8)
		}
		return b
	}

	truncatedACE := append(header(0x8004, 0, 0, 0, 20),
		0x02, 0x00, 0x10, 0x00, 0x01, 0x00, 0x00, 0x00, // ACL: size 16, 1 ACE
		0x00, 0x00, 0x14, 0x00, 0xff, 0x01, 0x1f, 0x00, // ACE claims 20 bytes
	)
	aclTooBig := append(header(0x8004, 0, 0, 0, 20),
		0x02, 0x00, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, // ACL claims 64 bytes
	)

	tests := []struct {
		name string
		data []byte
	}{
		{"too short", []byte{0x01, 0x00, 0x04, 0x80}},
		{"owner offset past end", header(0x8000, 200, 0, 0, 0)},
		{"owner offset inside header", header(0x8000, 4, 0, 0, 0)},
		{"truncated owner SID", append(header(0x8000, 20, 0, 0, 0), 0x01, 0x02, 0, 0, 0, 0, 0, 5)},
		{"ACE overruns ACL", truncatedACE},
		{"ACL size overruns buffer", aclTooBig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSecurityDescriptor(tt.data)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestDACLStates(t *testing.T) {
	tests := []struct {
		name    string
		control uint16
		dacl    []byte
		present bool
		null    bool
		state   string
	}{
		{"absent", 0x8000, nil, false, false, "absent"},
		{"null DACL", 0x8004, nil, true, true, "NULL (everyone has full access)"},
		{"empty DACL", 0x8004, []byte{0x02, 0x00, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00}, true, false, "empty (no access)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]byte, 20)
			data[0] = 1
			data[2], data[3] = byte(tt.control), byte(tt.control>>8)
			if tt.dacl != nil {
				data[16] = 20
				data = append(data, tt.dacl...)
			}

			sd, err := ParseSecurityDescriptor(data)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			acl, present, _ := sd.DACL()
			if present != tt.present || (acl == nil) != (tt.null || !tt.present) {
				t.Errorf("DACL() = %v, %v", acl, present)
			}
			if got := sd.DACLState(); got != tt.state {
				t.Errorf("DACLState() = %q, want %q", got, tt.state)
			}
		})
	}
}

func TestSecurityDescriptorEncode(t *testing.T) {
	guid := uuid.MustParse("bf967a86-0de6-11d0-a285-00aa003049e2")
	sd := &SecurityDescriptor{
		Revision: 1,
		Control:  SE_SELF_RELATIVE | SE_DACL_PRESENT | SE_DACL_PROTECTED | SE_SACL_PRESENT,
		Owner:    MustParseSID("S-1-5-21-1-2-3-1001"),
		Group:    MustParseSID("S-1-5-21-1-2-3-513"),
		Sacl: &ACL{Revision: ACL_REVISION, Entries: []ACE{
			{Type: SYSTEM_MANDATORY_LABEL_ACE_TYPE, Mask: SYSTEM_MANDATORY_LABEL_NO_WRITE_UP, SID: MustParseSID("S-1-16-4096")},
		}},
		Dacl: &ACL{Revision: ACL_REVISION_DS, Entries: []ACE{
			{Type: ACCESS_DENIED_ACE_TYPE, Flags: OBJECT_INHERIT_ACE, Mask: DELETE, SID: SIDEveryone},
			{Type: ACCESS_ALLOWED_OBJECT_ACE_TYPE, Mask: FILE_GENERIC_READ, ObjectFlags: ACE_OBJECT_TYPE_PRESENT, ObjectType: &guid, SID: SIDLocalSystem},
			{Type: ACCESS_ALLOWED_CALLBACK_ACE_TYPE, Mask: FILE_GENERIC_READ, SID: SIDEveryone, ApplicationData: []byte("artx")},
			// Five bytes of expression, padded to eight on the wire
			{Type: ACCESS_DENIED_CALLBACK_ACE_TYPE, Mask: FILE_WRITE_DATA, SID: SIDEveryone, ApplicationData: []byte{'a', 'r', 't', 'x', 0x01}},
		}},
	}

	parsed, err := ParseSecurityDescriptor(sd.Bytes())
	if err != nil {
		t.Fatalf("Failed to parse encoded descriptor: %v", err)
	}
	if !reflect.DeepEqual(parsed, sd) {
		t.Errorf("Decoded descriptor differs:\n got  %+v\n want %+v", parsed, sd)
	}

	if got := len(sd.Dacl.Entries[3].Bytes()); got != 28 {
		t.Errorf("Expected a 28 byte callback ACE, got %d", got)
	}

	obj := parsed.Dacl.Entries[1]
	if obj.ObjectFlags != ACE_OBJECT_TYPE_PRESENT {
		t.Errorf("Expected object type flag, got 0x%x", obj.ObjectFlags)
	}
	if obj.ObjectType.String() != "bf967a86-0de6-11d0-a285-00aa003049e2" {
		t.Errorf("Unexpected GUID %s", obj.ObjectType)
	}
}

func TestObjectACEWireGUID(t *testing.T) {
	ace := []byte{
		0x05, 0x00, 0x2c, 0x00, // AceType (ACCESS_ALLOWED_OBJECT), flags, AceSize (44)
		0x10, 0x00, 0x00, 0x00, // Mask
		0x01, 0x00, 0x00, 0x00, // ObjectFlags (ACE_OBJECT_TYPE_PRESENT)
		0x86, 0x7a, 0x96, 0xbf, 0xe6, 0x0d, 0xd0, 0x11, // GUID, mixed endian
		0xa2, 0x85, 0x00, 0xaa, 0x00, 0x30, 0x49, 0xe2,
		0x01, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05, // S-1-5-32-545
		0x20, 0x00, 0x00, 0x00,
		0x21, 0x02, 0x00, 0x00,
	}

	parsed, size, err := ParseACE(ace)
	if err != nil {
		t.Fatalf("ParseACE: %v", err)
	}
	if size != 44 {
		t.Errorf("Expected size 44, got %d", size)
	}
	if parsed.ObjectType == nil || parsed.ObjectType.String() != "bf967a86-0de6-11d0-a285-00aa003049e2" {
		t.Errorf("Unexpected object type %v", parsed.ObjectType)
	}
	if parsed.SID.String() != "S-1-5-32-545" {
		t.Errorf("Unexpected SID %s", parsed.SID)
	}
}

func TestUnknownACEKeptVerbatim(t *testing.T) {
	ace := []byte{0x04, 0x00, 0x0c, 0x00, 1, 2, 3, 4, 5, 6, 7, 8}
	parsed, _, err := ParseACE(ace)
	if err != nil {
		t.Fatalf("ParseACE: %v", err)
	}
	if parsed.SID != nil || parsed.TypeName() != "AllowCompound" {
		t.Errorf("Unexpected decode: %+v", parsed)
	}
	if got := parsed.Bytes(); !reflect.DeepEqual(got, ace) {
		t.Errorf("Bytes() = %x, want %x", got, ace)
	}
}

func TestControlString(t *testing.T) {
	sd := &SecurityDescriptor{Control: SE_SELF_RELATIVE | SE_DACL_PRESENT | SE_DACL_AUTO_INHERITED}
	if got := sd.ControlString(); got != "DaclPresent|DaclAutoInherited|SelfRelative" {
		t.Errorf("ControlString() = %q", got)
	}
	if got := (&SecurityDescriptor{}).ControlString(); got != "none" {
		t.Errorf("ControlString() = %q", got)
	}
}
