package security

import (
	"fmt"
	"strings"
)

// File and directory specific rights
const (
	FILE_READ_DATA        uint32 = 0x00000001
	FILE_LIST_DIRECTORY   uint32 = 0x00000001
	FILE_WRITE_DATA       uint32 = 0x00000002
	FILE_ADD_FILE         uint32 = 0x00000002
	FILE_APPEND_DATA      uint32 = 0x00000004
	FILE_ADD_SUBDIRECTORY uint32 = 0x00000004
	FILE_READ_EA          uint32 = 0x00000008
	FILE_WRITE_EA         uint32 = 0x00000010
	FILE_EXECUTE          uint32 = 0x00000020
	FILE_TRAVERSE         uint32 = 0x00000020
	FILE_DELETE_CHILD     uint32 = 0x00000040
	FILE_READ_ATTRIBUTES  uint32 = 0x00000080
	FILE_WRITE_ATTRIBUTES uint32 = 0x00000100
)

// Standard rights
const (
	DELETE                 uint32 = 0x00010000
	READ_CONTROL           uint32 = 0x00020000
	WRITE_DAC              uint32 = 0x00040000
	WRITE_OWNER            uint32 = 0x00080000
	SYNCHRONIZE            uint32 = 0x00100000
	ACCESS_SYSTEM_SECURITY uint32 = 0x01000000
	MAXIMUM_ALLOWED        uint32 = 0x02000000
)

// Generic rights
const (
	GENERIC_ALL     uint32 = 0x10000000
	GENERIC_EXECUTE uint32 = 0x20000000
	GENERIC_WRITE   uint32 = 0x40000000
	GENERIC_READ    uint32 = 0x80000000
)

// Composite file rights, as icacls groups them.
const (
	FILE_ALL_ACCESS      uint32 = 0x001F01FF
	FILE_MODIFY          uint32 = 0x001301BF
	FILE_READ_EXECUTE    uint32 = 0x001200A9
	FILE_GENERIC_READ    uint32 = 0x00120089
	FILE_GENERIC_WRITE   uint32 = 0x00120116
	FILE_GENERIC_EXECUTE uint32 = 0x001200A0
	FILE_WRITE           uint32 = 0x00100116
)

// Mandatory label policy bits
const (
	SYSTEM_MANDATORY_LABEL_NO_WRITE_UP   uint32 = 0x1
	SYSTEM_MANDATORY_LABEL_NO_READ_UP    uint32 = 0x2
	SYSTEM_MANDATORY_LABEL_NO_EXECUTE_UP uint32 = 0x4
)

type right struct {
	mask    uint32
	name    string
	dirName string
	short   string
}

// fileRights lists every named bit in mask order.
var fileRights = []right{
	{FILE_READ_DATA, "FILE_READ_DATA", "FILE_LIST_DIRECTORY", "RD"},
	{FILE_WRITE_DATA, "FILE_WRITE_DATA", "FILE_ADD_FILE", "WD"},
	{FILE_APPEND_DATA, "FILE_APPEND_DATA", "FILE_ADD_SUBDIRECTORY", "AD"},
	{FILE_READ_EA, "FILE_READ_EA", "", "REA"},
	{FILE_WRITE_EA, "FILE_WRITE_EA", "", "WEA"},
	{FILE_EXECUTE, "FILE_EXECUTE", "FILE_TRAVERSE", "X"},
	{FILE_DELETE_CHILD, "FILE_DELETE_CHILD", "", "DC"},
	{FILE_READ_ATTRIBUTES, "FILE_READ_ATTRIBUTES", "", "RA"},
	{FILE_WRITE_ATTRIBUTES, "FILE_WRITE_ATTRIBUTES", "", "WA"},
	{DELETE, "DELETE", "", "D"},
	{READ_CONTROL, "READ_CONTROL", "", "RC"},
	{WRITE_DAC, "WRITE_DAC", "", "WDAC"},
	{WRITE_OWNER, "WRITE_OWNER", "", "WO"},
	{SYNCHRONIZE, "SYNCHRONIZE", "", "S"},
	{ACCESS_SYSTEM_SECURITY, "ACCESS_SYSTEM_SECURITY", "", "AS"},
	{MAXIMUM_ALLOWED, "MAXIMUM_ALLOWED", "", "MA"},
	{GENERIC_ALL, "GENERIC_ALL", "", "GA"},
	{GENERIC_EXECUTE, "GENERIC_EXECUTE", "", "GE"},
	{GENERIC_WRITE, "GENERIC_WRITE", "", "GW"},
	{GENERIC_READ, "GENERIC_READ", "", "GR"},
}

var labelRights = []right{
	{SYSTEM_MANDATORY_LABEL_NO_WRITE_UP, "NO_WRITE_UP", "", "NW"},
	{SYSTEM_MANDATORY_LABEL_NO_READ_UP, "NO_READ_UP", "", "NR"},
	{SYSTEM_MANDATORY_LABEL_NO_EXECUTE_UP, "NO_EXECUTE_UP", "", "NX"},
}

// composites are tried in order; a composite is only reported when it adds
// bits not already covered by an earlier one.
var composites = []struct {
	mask uint32
	name string
}{
	{FILE_ALL_ACCESS, "F"},
	{FILE_MODIFY, "M"},
	{FILE_READ_EXECUTE, "RX"},
	{FILE_GENERIC_READ, "R"},
	{FILE_WRITE, "W"},
}

// MapGeneric replaces generic bits with the file rights they stand for.
func MapGeneric(mask uint32) uint32 {
	mapped := mask &^ (GENERIC_ALL | GENERIC_EXECUTE | GENERIC_WRITE | GENERIC_READ)
	if mask&GENERIC_READ != 0 {
		mapped |= FILE_GENERIC_READ
	}
	if mask&GENERIC_WRITE != 0 {
		mapped |= FILE_GENERIC_WRITE
	}
	if mask&GENERIC_EXECUTE != 0 {
		mapped |= FILE_GENERIC_EXECUTE
	}
	if mask&GENERIC_ALL != 0 {
		mapped |= FILE_ALL_ACCESS
	}
	return mapped
}

// RightNames returns the name of every bit set in mask. Directories use
// the directory spelling where one exists. Bits without a name are
// reported in hex.
func RightNames(mask uint32, dir bool) []string {
	return namesFor(fileRights, mask, dir)
}

func namesFor(table []right, mask uint32, dir bool) []string {
	var names []string
	known := uint32(0)
	for _, r := range table {
		known |= r.mask
		if mask&r.mask == 0 {
			continue
		}
		if dir && r.dirName != "" {
			names = append(names, r.dirName)
		} else {
			names = append(names, r.name)
		}
	}
	if rest := mask &^ known; rest != 0 {
		names = append(names, fmt.Sprintf("0x%08x", rest))
	}
	return names
}

// Summary renders a mask the way icacls does: composites first, then the
// abbreviations of what is left, e.g. "F", "M", "RX,W", "R,WDAC".
func Summary(mask uint32) string {
	if mask == 0 {
		return "none"
	}

	var parts []string
	covered := uint32(0)
	for _, c := range composites {
		if mask&c.mask == c.mask && c.mask&^covered != 0 {
			parts = append(parts, c.name)
			covered |= c.mask
		}
	}

	for _, r := range fileRights {
		if mask&r.mask != 0 && covered&r.mask == 0 {
			parts = append(parts, r.short)
			covered |= r.mask
		}
	}
	if rest := mask &^ covered; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", rest))
	}
	return strings.Join(parts, ",")
}

// Rights returns the rights of an ACE named for the object kind. Mandatory
// label ACEs carry a policy instead of rights.
func (a *ACE) Rights(dir bool) []string {
	if a.Type == SYSTEM_MANDATORY_LABEL_ACE_TYPE {
		return namesFor(labelRights, a.Mask, false)
	}
	return RightNames(a.Mask, dir)
}

// Summary returns the icacls-style rights of the ACE.
func (a *ACE) Summary() string {
	if a.Type == SYSTEM_MANDATORY_LABEL_ACE_TYPE {
		var parts []string
		for _, r := range labelRights {
			if a.Mask&r.mask != 0 {
				parts = append(parts, r.short)
			}
		}
		return strings.Join(parts, ",")
	}
	return Summary(a.Mask)
}
