package security

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// ACE type constants
const (
	ACCESS_ALLOWED_ACE_TYPE                 = 0x00
	ACCESS_DENIED_ACE_TYPE                  = 0x01
	SYSTEM_AUDIT_ACE_TYPE                   = 0x02
	SYSTEM_ALARM_ACE_TYPE                   = 0x03
	ACCESS_ALLOWED_COMPOUND_ACE_TYPE        = 0x04
	ACCESS_ALLOWED_OBJECT_ACE_TYPE          = 0x05
	ACCESS_DENIED_OBJECT_ACE_TYPE           = 0x06
	SYSTEM_AUDIT_OBJECT_ACE_TYPE            = 0x07
	SYSTEM_ALARM_OBJECT_ACE_TYPE            = 0x08
	ACCESS_ALLOWED_CALLBACK_ACE_TYPE        = 0x09
	ACCESS_DENIED_CALLBACK_ACE_TYPE         = 0x0A
	ACCESS_ALLOWED_CALLBACK_OBJECT_ACE_TYPE = 0x0B
	ACCESS_DENIED_CALLBACK_OBJECT_ACE_TYPE  = 0x0C
	SYSTEM_AUDIT_CALLBACK_ACE_TYPE          = 0x0D
	SYSTEM_ALARM_CALLBACK_ACE_TYPE          = 0x0E
	SYSTEM_AUDIT_CALLBACK_OBJECT_ACE_TYPE   = 0x0F
	SYSTEM_ALARM_CALLBACK_OBJECT_ACE_TYPE   = 0x10
	SYSTEM_MANDATORY_LABEL_ACE_TYPE         = 0x11
	SYSTEM_RESOURCE_ATTRIBUTE_ACE_TYPE      = 0x12
	SYSTEM_SCOPED_POLICY_ID_ACE_TYPE        = 0x13
)

// ACE flag constants
const (
	OBJECT_INHERIT_ACE         = 0x01
	CONTAINER_INHERIT_ACE      = 0x02
	NO_PROPAGATE_INHERIT_ACE   = 0x04
	INHERIT_ONLY_ACE           = 0x08
	INHERITED_ACE              = 0x10
	SUCCESSFUL_ACCESS_ACE_FLAG = 0x40
	FAILED_ACCESS_ACE_FLAG     = 0x80
)

// Object ACE flags
const (
	ACE_OBJECT_TYPE_PRESENT           = 0x1
	ACE_INHERITED_OBJECT_TYPE_PRESENT = 0x2
)

// ACL revisions
const (
	ACL_REVISION    = 2
	ACL_REVISION_DS = 4
)

const (
	aclHeaderSize = 8
	aceHeaderSize = 4
)

// ACL represents an Access Control List.
type ACL struct {
	Revision uint8
	Entries  []ACE
}

// ACE represents an Access Control Entry.
type ACE struct {
	Type  uint8
	Flags uint8
	Mask  uint32
	SID   *SID

	// Object ACEs only.
	ObjectFlags         uint32
	ObjectType          *uuid.UUID
	InheritedObjectType *uuid.UUID

	// Callback and resource attribute ACEs carry trailing data after the SID.
	ApplicationData []byte

	// Body holds everything after the header for types that are not decoded.
	Body []byte
}

// ParseACL parses a binary ACL. Every ACE must lie within the AclSize the
// header declares.
func ParseACL(data []byte) (*ACL, error) {
	if len(data) < aclHeaderSize {
		return nil, fmt.Errorf("%w: ACL too short: %d bytes", ErrMalformed, len(data))
	}

	acl := &ACL{Revision: data[0]}
	aclSize := int(binary.LittleEndian.Uint16(data[2:4]))
	aceCount := int(binary.LittleEndian.Uint16(data[4:6]))

	if aclSize < aclHeaderSize || aclSize > len(data) {
		return nil, fmt.Errorf("%w: ACL size %d out of range (%d available)", ErrMalformed, aclSize, len(data))
	}
	data = data[:aclSize]

	offset := aclHeaderSize
	acl.Entries = make([]ACE, 0, aceCount)
	for i := 0; i < aceCount; i++ {
		ace, size, err := ParseACE(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("ACE %d: %w", i, err)
		}
		acl.Entries = append(acl.Entries, *ace)
		offset += size
	}

	return acl, nil
}

// ParseACE parses a binary ACE and returns the ACE and its size.
func ParseACE(data []byte) (*ACE, int, error) {
	if len(data) < aceHeaderSize {
		return nil, 0, fmt.Errorf("%w: ACE header too short", ErrMalformed)
	}

	ace := &ACE{
		Type:  data[0],
		Flags: data[1],
	}
	size := int(binary.LittleEndian.Uint16(data[2:4]))
	if size < aceHeaderSize || size > len(data) {
		return nil, 0, fmt.Errorf("%w: ACE size %d out of range (%d available)", ErrMalformed, size, len(data))
	}
	body := data[aceHeaderSize:size]

	switch {
	case ace.IsObject():
		if err := ace.decodeObject(body); err != nil {
			return nil, 0, err
		}
	case hasMaskAndSID(ace.Type):
		if len(body) < 4 {
			return nil, 0, fmt.Errorf("%w: ACE too short for mask", ErrMalformed)
		}
		ace.Mask = binary.LittleEndian.Uint32(body[0:4])
		sid, err := ParseSID(body[4:])
		if err != nil {
			return nil, 0, err
		}
		ace.SID = sid
		ace.ApplicationData = trailing(body[4+sid.Size():], ace.Type)
	default:
		ace.Body = append([]byte(nil), body...)
	}

	return ace, size, nil
}

func (a *ACE) decodeObject(body []byte) error {
	if len(body) < 8 {
		return fmt.Errorf("%w: object ACE too short", ErrMalformed)
	}
	a.Mask = binary.LittleEndian.Uint32(body[0:4])
	a.ObjectFlags = binary.LittleEndian.Uint32(body[4:8])
	rest := body[8:]

	if a.ObjectFlags&ACE_OBJECT_TYPE_PRESENT != 0 {
		if len(rest) < 16 {
			return fmt.Errorf("%w: object ACE truncated in object type", ErrMalformed)
		}
		g := guidFromBytes(rest[:16])
		a.ObjectType = &g
		rest = rest[16:]
	}
	if a.ObjectFlags&ACE_INHERITED_OBJECT_TYPE_PRESENT != 0 {
		if len(rest) < 16 {
			return fmt.Errorf("%w: object ACE truncated in inherited object type", ErrMalformed)
		}
		g := guidFromBytes(rest[:16])
		a.InheritedObjectType = &g
		rest = rest[16:]
	}

	sid, err := ParseSID(rest)
	if err != nil {
		return err
	}
	a.SID = sid
	a.ApplicationData = trailing(rest[sid.Size():], a.Type)
	return nil
}

// conditionalSignature starts the application data of a conditional ACE.
var conditionalSignature = []byte("artx")

// trailing keeps the bytes after the SID for the types that define them.
// For the others they are alignment padding. A conditional expression
// loses its trailing 0x00 padding tokens, which Bytes adds back; other
// application data is kept as stored, padding included.
func trailing(rest []byte, aceType uint8) []byte {
	if len(rest) == 0 || !hasApplicationData(aceType) {
		return nil
	}
	data := append([]byte(nil), rest...)
	if bytes.HasPrefix(data, conditionalSignature) {
		data = bytes.TrimRight(data, "\x00")
	}
	return data
}

func hasMaskAndSID(t uint8) bool {
	switch t {
	case ACCESS_ALLOWED_ACE_TYPE, ACCESS_DENIED_ACE_TYPE,
		SYSTEM_AUDIT_ACE_TYPE, SYSTEM_ALARM_ACE_TYPE,
		ACCESS_ALLOWED_CALLBACK_ACE_TYPE, ACCESS_DENIED_CALLBACK_ACE_TYPE,
		SYSTEM_AUDIT_CALLBACK_ACE_TYPE, SYSTEM_ALARM_CALLBACK_ACE_TYPE,
		SYSTEM_MANDATORY_LABEL_ACE_TYPE, SYSTEM_RESOURCE_ATTRIBUTE_ACE_TYPE,
		SYSTEM_SCOPED_POLICY_ID_ACE_TYPE:
		return true
	}
	return false
}

func hasApplicationData(t uint8) bool {
	switch t {
	case ACCESS_ALLOWED_CALLBACK_ACE_TYPE, ACCESS_DENIED_CALLBACK_ACE_TYPE,
		ACCESS_ALLOWED_CALLBACK_OBJECT_ACE_TYPE, ACCESS_DENIED_CALLBACK_OBJECT_ACE_TYPE,
		SYSTEM_AUDIT_CALLBACK_ACE_TYPE, SYSTEM_ALARM_CALLBACK_ACE_TYPE,
		SYSTEM_AUDIT_CALLBACK_OBJECT_ACE_TYPE, SYSTEM_ALARM_CALLBACK_OBJECT_ACE_TYPE,
		SYSTEM_RESOURCE_ATTRIBUTE_ACE_TYPE:
		return true
	}
	return false
}

// Bytes encodes the ACL, recomputing AclSize and AceCount.
func (acl *ACL) Bytes() []byte {
	b := make([]byte, aclHeaderSize)
	b[0] = acl.Revision
	for i := range acl.Entries {
		b = append(b, acl.Entries[i].Bytes()...)
	}
	binary.LittleEndian.PutUint16(b[2:4], uint16(len(b)))
	binary.LittleEndian.PutUint16(b[4:6], uint16(len(acl.Entries)))
	return b
}

// Bytes encodes the ACE, padding the body to a 4-byte boundary.
func (a *ACE) Bytes() []byte {
	var body []byte
	switch {
	case a.IsObject():
		body = binary.LittleEndian.AppendUint32(body, a.Mask)
		flags := a.ObjectFlags &^ (ACE_OBJECT_TYPE_PRESENT | ACE_INHERITED_OBJECT_TYPE_PRESENT)
		if a.ObjectType != nil {
			flags |= ACE_OBJECT_TYPE_PRESENT
		}
		if a.InheritedObjectType != nil {
			flags |= ACE_INHERITED_OBJECT_TYPE_PRESENT
		}
		body = binary.LittleEndian.AppendUint32(body, flags)
		if a.ObjectType != nil {
			body = append(body, guidToBytes(*a.ObjectType)...)
		}
		if a.InheritedObjectType != nil {
			body = append(body, guidToBytes(*a.InheritedObjectType)...)
		}
		body = append(body, a.sidBytes()...)
		body = append(body, a.ApplicationData...)
	case hasMaskAndSID(a.Type):
		body = binary.LittleEndian.AppendUint32(body, a.Mask)
		body = append(body, a.sidBytes()...)
		body = append(body, a.ApplicationData...)
	default:
		body = append(body, a.Body...)
	}

	for len(body)%4 != 0 {
		body = append(body, 0)
	}

	b := make([]byte, aceHeaderSize, aceHeaderSize+len(body))
	b[0] = a.Type
	b[1] = a.Flags
	binary.LittleEndian.PutUint16(b[2:4], uint16(aceHeaderSize+len(body)))
	return append(b, body...)
}

func (a *ACE) sidBytes() []byte {
	if a.SID == nil {
		return NewSID(0, 0).Bytes()
	}
	return a.SID.Bytes()
}

// IsObject reports whether the ACE uses the object ACE layout.
func (a *ACE) IsObject() bool {
	switch a.Type {
	case ACCESS_ALLOWED_OBJECT_ACE_TYPE, ACCESS_DENIED_OBJECT_ACE_TYPE,
		SYSTEM_AUDIT_OBJECT_ACE_TYPE, SYSTEM_ALARM_OBJECT_ACE_TYPE,
		ACCESS_ALLOWED_CALLBACK_OBJECT_ACE_TYPE, ACCESS_DENIED_CALLBACK_OBJECT_ACE_TYPE,
		SYSTEM_AUDIT_CALLBACK_OBJECT_ACE_TYPE, SYSTEM_ALARM_CALLBACK_OBJECT_ACE_TYPE:
		return true
	}
	return false
}

// IsAccessAllowed returns true for every allow variant.
func (a *ACE) IsAccessAllowed() bool {
	switch a.Type {
	case ACCESS_ALLOWED_ACE_TYPE, ACCESS_ALLOWED_OBJECT_ACE_TYPE,
		ACCESS_ALLOWED_CALLBACK_ACE_TYPE, ACCESS_ALLOWED_CALLBACK_OBJECT_ACE_TYPE:
		return true
	}
	return false
}

// IsAccessDenied returns true for every deny variant.
func (a *ACE) IsAccessDenied() bool {
	switch a.Type {
	case ACCESS_DENIED_ACE_TYPE, ACCESS_DENIED_OBJECT_ACE_TYPE,
		ACCESS_DENIED_CALLBACK_ACE_TYPE, ACCESS_DENIED_CALLBACK_OBJECT_ACE_TYPE:
		return true
	}
	return false
}

// IsInherited reports whether the ACE was inherited from a parent.
func (a *ACE) IsInherited() bool {
	return a.Flags&INHERITED_ACE != 0
}

// InheritOnly reports whether the ACE only propagates to children.
func (a *ACE) InheritOnly() bool {
	return a.Flags&INHERIT_ONLY_ACE != 0
}

// HasMask checks if the ACE mask contains the specified flag.
func (a *ACE) HasMask(flag uint32) bool {
	return (a.Mask & flag) != 0
}

var aceTypeNames = map[uint8]string{
	ACCESS_ALLOWED_ACE_TYPE:                 "Allow",
	ACCESS_DENIED_ACE_TYPE:                  "Deny",
	SYSTEM_AUDIT_ACE_TYPE:                   "Audit",
	SYSTEM_ALARM_ACE_TYPE:                   "Alarm",
	ACCESS_ALLOWED_COMPOUND_ACE_TYPE:        "AllowCompound",
	ACCESS_ALLOWED_OBJECT_ACE_TYPE:          "AllowObject",
	ACCESS_DENIED_OBJECT_ACE_TYPE:           "DenyObject",
	SYSTEM_AUDIT_OBJECT_ACE_TYPE:            "AuditObject",
	SYSTEM_ALARM_OBJECT_ACE_TYPE:            "AlarmObject",
	ACCESS_ALLOWED_CALLBACK_ACE_TYPE:        "AllowCallback",
	ACCESS_DENIED_CALLBACK_ACE_TYPE:         "DenyCallback",
	ACCESS_ALLOWED_CALLBACK_OBJECT_ACE_TYPE: "AllowCallbackObject",
	ACCESS_DENIED_CALLBACK_OBJECT_ACE_TYPE:  "DenyCallbackObject",
	SYSTEM_AUDIT_CALLBACK_ACE_TYPE:          "AuditCallback",
	SYSTEM_ALARM_CALLBACK_ACE_TYPE:          "AlarmCallback",
	SYSTEM_AUDIT_CALLBACK_OBJECT_ACE_TYPE:   "AuditCallbackObject",
	SYSTEM_ALARM_CALLBACK_OBJECT_ACE_TYPE:   "AlarmCallbackObject",
	SYSTEM_MANDATORY_LABEL_ACE_TYPE:         "MandatoryLabel",
	SYSTEM_RESOURCE_ATTRIBUTE_ACE_TYPE:      "ResourceAttribute",
	SYSTEM_SCOPED_POLICY_ID_ACE_TYPE:        "ScopedPolicyID",
}

// TypeName returns the name of the ACE type.
func (a *ACE) TypeName() string {
	if name, ok := aceTypeNames[a.Type]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%02x)", a.Type)
}

// guidFromBytes decodes the mixed-endian GUID layout Windows uses on disk.
func guidFromBytes(b []byte) uuid.UUID {
	var g uuid.UUID
	g[0], g[1], g[2], g[3] = b[3], b[2], b[1], b[0]
	g[4], g[5] = b[5], b[4]
	g[6], g[7] = b[7], b[6]
	copy(g[8:], b[8:16])
	return g
}

func guidToBytes(g uuid.UUID) []byte {
	b := make([]byte, 16)
	b[0], b[1], b[2], b[3] = g[3], g[2], g[1], g[0]
	b[4], b[5] = g[5], g[4]
	b[6], b[7] = g[7], g[6]
	copy(b[8:], g[8:])
	return b
}
