package security

import (
	"fmt"
	"strings"
)

var sddlAliases = map[string]string{
	"S-1-1-0":      "WD",
	"S-1-3-0":      "CO",
	"S-1-3-1":      "CG",
	"S-1-3-4":      "OW",
	"S-1-5-2":      "NU",
	"S-1-5-4":      "IU",
	"S-1-5-6":      "SU",
	"S-1-5-7":      "AN",
	"S-1-5-9":      "ED",
	"S-1-5-10":     "PS",
	"S-1-5-11":     "AU",
	"S-1-5-12":     "RC",
	"S-1-5-18":     "SY",
	"S-1-5-19":     "LS",
	"S-1-5-20":     "NS",
	"S-1-5-32-544": "BA",
	"S-1-5-32-545": "BU",
	"S-1-5-32-546": "BG",
	"S-1-5-32-547": "PU",
	"S-1-5-32-548": "AO",
	"S-1-5-32-549": "SO",
	"S-1-5-32-550": "PO",
	"S-1-5-32-551": "BO",
	"S-1-5-32-552": "RE",
	"S-1-5-32-555": "RD",
	"S-1-15-2-1":   "AC",
	"S-1-16-4096":  "LW",
	"S-1-16-8192":  "ME",
	"S-1-16-8448":  "MP",
	"S-1-16-12288": "HI",
	"S-1-16-16384": "SI",
}

var sddlTypes = map[uint8]string{
	ACCESS_ALLOWED_ACE_TYPE:                 "A",
	ACCESS_DENIED_ACE_TYPE:                  "D",
	SYSTEM_AUDIT_ACE_TYPE:                   "AU",
	SYSTEM_ALARM_ACE_TYPE:                   "AL",
	ACCESS_ALLOWED_OBJECT_ACE_TYPE:          "OA",
	ACCESS_DENIED_OBJECT_ACE_TYPE:           "OD",
	SYSTEM_AUDIT_OBJECT_ACE_TYPE:            "OU",
	SYSTEM_ALARM_OBJECT_ACE_TYPE:            "OL",
	ACCESS_ALLOWED_CALLBACK_ACE_TYPE:        "XA",
	ACCESS_DENIED_CALLBACK_ACE_TYPE:         "XD",
	ACCESS_ALLOWED_CALLBACK_OBJECT_ACE_TYPE: "ZA",
	SYSTEM_AUDIT_CALLBACK_ACE_TYPE:          "XU",
	SYSTEM_MANDATORY_LABEL_ACE_TYPE:         "ML",
	SYSTEM_RESOURCE_ATTRIBUTE_ACE_TYPE:      "RA",
	SYSTEM_SCOPED_POLICY_ID_ACE_TYPE:        "SP",
}

var sddlFlags = []struct {
	flag  uint8
	token string
}{
	{OBJECT_INHERIT_ACE, "OI"},
	{CONTAINER_INHERIT_ACE, "CI"},
	{NO_PROPAGATE_INHERIT_ACE, "NP"},
	{INHERIT_ONLY_ACE, "IO"},
	{INHERITED_ACE, "ID"},
	{SUCCESSFUL_ACCESS_ACE_FLAG, "SA"},
	{FAILED_ACCESS_ACE_FLAG, "FA"},
}

var sddlExactRights = map[uint32]string{
	FILE_ALL_ACCESS:      "FA",
	FILE_GENERIC_READ:    "FR",
	FILE_GENERIC_WRITE:   "FW",
	FILE_GENERIC_EXECUTE: "FX",
}

var sddlRightTokens = []struct {
	mask  uint32
	token string
}{
	{GENERIC_ALL, "GA"},
	{GENERIC_READ, "GR"},
	{GENERIC_WRITE, "GW"},
	{GENERIC_EXECUTE, "GX"},
	{READ_CONTROL, "RC"},
	{DELETE, "SD"},
	{WRITE_DAC, "WD"},
	{WRITE_OWNER, "WO"},
}

var sddlLabelTokens = []struct {
	mask  uint32
	token string
}{
	{SYSTEM_MANDATORY_LABEL_NO_WRITE_UP, "NW"},
	{SYSTEM_MANDATORY_LABEL_NO_READ_UP, "NR"},
	{SYSTEM_MANDATORY_LABEL_NO_EXECUTE_UP, "NX"},
}

// SIDString renders a SID for SDDL, using its two-letter alias if it has one.
func SIDString(sid *SID) string {
	s := sid.String()
	if alias, ok := sddlAliases[s]; ok {
		return alias
	}
	return s
}

// SDDL renders the descriptor in Security Descriptor Definition Language.
func (sd *SecurityDescriptor) SDDL() string {
	var sb strings.Builder
	if sd.Owner != nil {
		sb.WriteString("O:" + SIDString(sd.Owner))
	}
	if sd.Group != nil {
		sb.WriteString("G:" + SIDString(sd.Group))
	}
	if sd.HasControl(SE_DACL_PRESENT) {
		sb.WriteString("D:")
		sb.WriteString(aclFlags(sd.Control, SE_DACL_PROTECTED, SE_DACL_AUTO_INHERITED, SE_DACL_AUTO_INHERIT_REQ))
		writeACL(&sb, sd.Dacl)
	}
	if sd.HasControl(SE_SACL_PRESENT) {
		sb.WriteString("S:")
		sb.WriteString(aclFlags(sd.Control, SE_SACL_PROTECTED, SE_SACL_AUTO_INHERITED, SE_SACL_AUTO_INHERIT_REQ))
		writeACL(&sb, sd.Sacl)
	}
	return sb.String()
}

func aclFlags(control, protected, inherited, req uint16) string {
	var s string
	if control&protected != 0 {
		s += "P"
	}
	if control&req != 0 {
		s += "AR"
	}
	if control&inherited != 0 {
		s += "AI"
	}
	return s
}

func writeACL(sb *strings.Builder, acl *ACL) {
	if acl == nil {
		sb.WriteString("NO_ACCESS_CONTROL")
		return
	}
	for i := range acl.Entries {
		sb.WriteString(acl.Entries[i].SDDL())
	}
}

// SDDL renders a single ACE string, e.g. "(A;OICI;FA;;;SY)".
func (a *ACE) SDDL() string {
	typ, ok := sddlTypes[a.Type]
	if !ok {
		typ = fmt.Sprintf("0x%02x", a.Type)
	}

	var flags strings.Builder
	for _, f := range sddlFlags {
		if a.Flags&f.flag != 0 {
			flags.WriteString(f.token)
		}
	}

	var objectType, inheritedType string
	if a.ObjectType != nil {
		objectType = a.ObjectType.String()
	}
	if a.InheritedObjectType != nil {
		inheritedType = a.InheritedObjectType.String()
	}

	sid := ""
	if a.SID != nil {
		sid = SIDString(a.SID)
	}

	return fmt.Sprintf("(%s;%s;%s;%s;%s;%s)", typ, flags.String(), a.sddlRights(), objectType, inheritedType, sid)
}

func (a *ACE) sddlRights() string {
	if a.Type == SYSTEM_MANDATORY_LABEL_ACE_TYPE {
		return tokenize(a.Mask, sddlLabelTokens)
	}
	if token, ok := sddlExactRights[a.Mask]; ok {
		return token
	}
	return tokenize(a.Mask, sddlRightTokens)
}

// tokenize spells mask with tokens when every bit has one, and falls back
// to hex otherwise.
func tokenize(mask uint32, tokens []struct {
	mask  uint32
	token string
}) string {
	if mask == 0 {
		return ""
	}
	var sb strings.Builder
	rest := mask
	for _, t := range tokens {
		if mask&t.mask != 0 {
			sb.WriteString(t.token)
			rest &^= t.mask
		}
	}
	if rest != 0 {
		return fmt.Sprintf("0x%x", mask)
	}
	return sb.String()
}
