package security

import (
	"fmt"
	"strings"
)

// SecurityInformation selects the parts of a descriptor to query.
type SecurityInformation uint32

// Security Information flags
const (
	OWNER_SECURITY_INFORMATION SecurityInformation = 0x00000001
	GROUP_SECURITY_INFORMATION SecurityInformation = 0x00000002
	DACL_SECURITY_INFORMATION  SecurityInformation = 0x00000004
	SACL_SECURITY_INFORMATION  SecurityInformation = 0x00000008
	LABEL_SECURITY_INFORMATION SecurityInformation = 0x00000010
)

// DefaultInformation is owner, group and DACL.
const DefaultInformation = OWNER_SECURITY_INFORMATION | GROUP_SECURITY_INFORMATION | DACL_SECURITY_INFORMATION

var informationNames = []struct {
	flag SecurityInformation
	name string
}{
	{OWNER_SECURITY_INFORMATION, "owner"},
	{GROUP_SECURITY_INFORMATION, "group"},
	{DACL_SECURITY_INFORMATION, "dacl"},
	{SACL_SECURITY_INFORMATION, "sacl"},
	{LABEL_SECURITY_INFORMATION, "label"},
}

// ParseInformation parses a comma separated list such as "owner,dacl".
func ParseInformation(s string) (SecurityInformation, error) {
	var info SecurityInformation
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		found := false
		for _, n := range informationNames {
			if n.name == part {
				info |= n.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown security information %q (want owner, group, dacl, sacl or label)", part)
		}
	}
	if info == 0 {
		return 0, fmt.Errorf("no security information selected")
	}
	return info, nil
}

func (si SecurityInformation) String() string {
	var names []string
	for _, n := range informationNames {
		if si&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// QueryFile fetches and decodes the security descriptor of a local file.
func QueryFile(path string, info SecurityInformation) (*SecurityDescriptor, error) {
	raw, err := QueryFileRaw(path, info)
	if err != nil {
		return nil, err
	}
	sd, err := ParseSecurityDescriptor(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sd, nil
}

// QueryFileRaw returns the self-relative descriptor bytes of a local file.
func QueryFileRaw(path string, info SecurityInformation) ([]byte, error) {
	return queryFile(path, info)
}

// Select returns a copy holding only the parts info asks for.
func (sd *SecurityDescriptor) Select(info SecurityInformation) *SecurityDescriptor {
	out := *sd
	if info&OWNER_SECURITY_INFORMATION == 0 {
		out.Owner = nil
		out.Control &^= SE_OWNER_DEFAULTED
	}
	if info&GROUP_SECURITY_INFORMATION == 0 {
		out.Group = nil
		out.Control &^= SE_GROUP_DEFAULTED
	}
	if info&DACL_SECURITY_INFORMATION == 0 {
		out.Dacl = nil
		out.Control &^= SE_DACL_PRESENT | SE_DACL_DEFAULTED | SE_DACL_PROTECTED | SE_DACL_AUTO_INHERITED
	}
	if info&SACL_SECURITY_INFORMATION == 0 {
		out.Sacl = nil
		out.Control &^= SE_SACL_PRESENT | SE_SACL_DEFAULTED | SE_SACL_PROTECTED | SE_SACL_AUTO_INHERITED
	}
	return &out
}

// SelectRaw trims a self-relative descriptor to the parts info asks for.
// It serves sources that hand back more than was requested.
func SelectRaw(raw []byte, info SecurityInformation) ([]byte, error) {
	sd, err := ParseSecurityDescriptor(raw)
	if err != nil {
		return nil, err
	}
	return sd.Select(info).Bytes(), nil
}
