package security

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Security descriptor control flags
const (
	SE_OWNER_DEFAULTED       = 0x0001
	SE_GROUP_DEFAULTED       = 0x0002
	SE_DACL_PRESENT          = 0x0004
	SE_DACL_DEFAULTED        = 0x0008
	SE_SACL_PRESENT          = 0x0010
	SE_SACL_DEFAULTED        = 0x0020
	SE_DACL_AUTO_INHERIT_REQ = 0x0100
	SE_SACL_AUTO_INHERIT_REQ = 0x0200
	SE_DACL_AUTO_INHERITED   = 0x0400
	SE_SACL_AUTO_INHERITED   = 0x0800
	SE_DACL_PROTECTED        = 0x1000
	SE_SACL_PROTECTED        = 0x2000
	SE_RM_CONTROL_VALID      = 0x4000
	SE_SELF_RELATIVE         = 0x8000
)

const sdHeaderSize = 20

var controlNames = []struct {
	flag uint16
	name string
}{
	{SE_OWNER_DEFAULTED, "OwnerDefaulted"},
	{SE_GROUP_DEFAULTED, "GroupDefaulted"},
	{SE_DACL_PRESENT, "DaclPresent"},
	{SE_DACL_DEFAULTED, "DaclDefaulted"},
	{SE_SACL_PRESENT, "SaclPresent"},
	{SE_SACL_DEFAULTED, "SaclDefaulted"},
	{SE_DACL_AUTO_INHERIT_REQ, "DaclAutoInheritReq"},
	{SE_SACL_AUTO_INHERIT_REQ, "SaclAutoInheritReq"},
	{SE_DACL_AUTO_INHERITED, "DaclAutoInherited"},
	{SE_SACL_AUTO_INHERITED, "SaclAutoInherited"},
	{SE_DACL_PROTECTED, "DaclProtected"},
	{SE_SACL_PROTECTED, "SaclProtected"},
	{SE_RM_CONTROL_VALID, "RmControlValid"},
	{SE_SELF_RELATIVE, "SelfRelative"},
}

// SecurityDescriptor represents a self-relative Windows security descriptor.
type SecurityDescriptor struct {
	Revision uint8
	Sbz1     uint8
	Control  uint16
	Owner    *SID
	Group    *SID
	Sacl     *ACL
	Dacl     *ACL
}

// ParseSecurityDescriptor parses a binary self-relative security descriptor.
// An offset of zero means the part is absent.
func ParseSecurityDescriptor(data []byte) (*SecurityDescriptor, error) {
	if len(data) < sdHeaderSize {
		return nil, fmt.Errorf("%w: security descriptor too short: %d bytes", ErrMalformed, len(data))
	}

	sd := &SecurityDescriptor{
		Revision: data[0],
		Sbz1:     data[1],
		Control:  binary.LittleEndian.Uint16(data[2:4]),
	}

	offsetOwner := binary.LittleEndian.Uint32(data[4:8])
	offsetGroup := binary.LittleEndian.Uint32(data[8:12])
	offsetSacl := binary.LittleEndian.Uint32(data[12:16])
	offsetDacl := binary.LittleEndian.Uint32(data[16:20])

	section := func(name string, offset uint32) ([]byte, error) {
		if offset < sdHeaderSize || int(offset) >= len(data) {
			return nil, fmt.Errorf("%w: %s offset %d out of range (%d bytes)", ErrMalformed, name, offset, len(data))
		}
		return data[offset:], nil
	}

	if offsetOwner != 0 {
		b, err := section("owner", offsetOwner)
		if err != nil {
			return nil, err
		}
		if sd.Owner, err = ParseSID(b); err != nil {
			return nil, fmt.Errorf("owner: %w", err)
		}
	}

	if offsetGroup != 0 {
		b, err := section("group", offsetGroup)
		if err != nil {
			return nil, err
		}
		if sd.Group, err = ParseSID(b); err != nil {
			return nil, fmt.Errorf("group: %w", err)
		}
	}

	if offsetSacl != 0 && sd.Control&SE_SACL_PRESENT != 0 {
		b, err := section("SACL", offsetSacl)
		if err != nil {
			return nil, err
		}
		if sd.Sacl, err = ParseACL(b); err != nil {
			return nil, fmt.Errorf("SACL: %w", err)
		}
	}

	if offsetDacl != 0 && sd.Control&SE_DACL_PRESENT != 0 {
		b, err := section("DACL", offsetDacl)
		if err != nil {
			return nil, err
		}
		if sd.Dacl, err = ParseACL(b); err != nil {
			return nil, fmt.Errorf("DACL: %w", err)
		}
	}

	return sd, nil
}

// DACL mirrors GetSecurityDescriptorDacl. present=false means the
// descriptor carries no DACL information. present=true with a nil ACL is a
// NULL DACL, which grants everyone full access.
func (sd *SecurityDescriptor) DACL() (acl *ACL, present, defaulted bool) {
	present = sd.Control&SE_DACL_PRESENT != 0
	defaulted = sd.Control&SE_DACL_DEFAULTED != 0
	if !present {
		return nil, false, defaulted
	}
	return sd.Dacl, true, defaulted
}

// DACLState describes the DACL in one word: absent, null, empty or the
// number of entries.
func (sd *SecurityDescriptor) DACLState() string {
	acl, present, _ := sd.DACL()
	switch {
	case !present:
		return "absent"
	case acl == nil:
		return "NULL (everyone has full access)"
	case len(acl.Entries) == 0:
		return "empty (no access)"
	case len(acl.Entries) == 1:
		return "1 entry"
	default:
		return fmt.Sprintf("%d entries", len(acl.Entries))
	}
}

// HasControl checks a control flag.
func (sd *SecurityDescriptor) HasControl(flag uint16) bool {
	return sd.Control&flag != 0
}

// ControlNames returns the names of the control flags that are set.
func (sd *SecurityDescriptor) ControlNames() []string {
	var names []string
	for _, c := range controlNames {
		if sd.Control&c.flag != 0 {
			names = append(names, c.name)
		}
	}
	return names
}

// ControlString joins ControlNames with '|'.
func (sd *SecurityDescriptor) ControlString() string {
	names := sd.ControlNames()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Bytes encodes the descriptor in self-relative form: header, SACL, DACL,
// owner, group. The present flags follow the ACL fields, except that a
// NULL DACL keeps SE_DACL_PRESENT with a zero offset.
func (sd *SecurityDescriptor) Bytes() []byte {
	control := sd.Control | SE_SELF_RELATIVE
	if sd.Sacl != nil {
		control |= SE_SACL_PRESENT
	}
	if sd.Dacl != nil {
		control |= SE_DACL_PRESENT
	}

	b := make([]byte, sdHeaderSize)
	b[0] = sd.Revision
	if b[0] == 0 {
		b[0] = 1
	}
	b[1] = sd.Sbz1
	binary.LittleEndian.PutUint16(b[2:4], control)

	put := func(at int, part []byte) {
		binary.LittleEndian.PutUint32(b[at:at+4], uint32(len(b)))
		b = append(b, part...)
	}
	if sd.Sacl != nil {
		put(12, sd.Sacl.Bytes())
	}
	if sd.Dacl != nil {
		put(16, sd.Dacl.Bytes())
	}
	if sd.Owner != nil {
		put(4, sd.Owner.Bytes())
	}
	if sd.Group != nil {
		put(8, sd.Group.Bytes())
	}
	return b
}
