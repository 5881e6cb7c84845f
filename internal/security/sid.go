// Package security decodes, encodes and interprets Windows security
// descriptors, and queries them for local files.
package security

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// SID represents a Windows Security Identifier.
type SID struct {
	Revision            uint8
	IdentifierAuthority [6]byte
	SubAuthorities      []uint32
}

// Well-known SIDs used when evaluating access.
var (
	SIDEveryone     = MustParseSID("S-1-1-0")
	SIDCreatorOwner = MustParseSID("S-1-3-0")
	SIDOwnerRights  = MustParseSID("S-1-3-4")
	SIDLocalSystem  = MustParseSID("S-1-5-18")
)

// NewSID builds a SID from an authority value and sub-authorities.
func NewSID(authority uint64, subAuthorities ...uint32) *SID {
	sid := &SID{Revision: 1, SubAuthorities: append([]uint32(nil), subAuthorities...)}
	for i := 5; i >= 0; i-- {
		sid.IdentifierAuthority[i] = byte(authority)
		authority >>= 8
	}
	return sid
}

// ParseSID parses a binary SID into a SID structure.
func ParseSID(data []byte) (*SID, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: SID data too short: %d bytes", ErrMalformed, len(data))
	}

	count := int(data[1])
	expectedLen := 8 + count*4
	if len(data) < expectedLen {
		return nil, fmt.Errorf("%w: SID data too short for %d sub-authorities", ErrMalformed, count)
	}

	sid := &SID{Revision: data[0]}
	copy(sid.IdentifierAuthority[:], data[2:8])

	sid.SubAuthorities = make([]uint32, count)
	for i := 0; i < count; i++ {
		offset := 8 + i*4
		sid.SubAuthorities[i] = binary.LittleEndian.Uint32(data[offset : offset+4])
	}

	return sid, nil
}

// ParseSIDString parses the S-R-I-S1-…-Sn form. The authority may be
// written in hex (0x…) as the Windows API allows for values of 2^32 and up.
func ParseSIDString(s string) (*SID, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) < 3 || !strings.EqualFold(parts[0], "S") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSID, s)
	}

	revision, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: bad revision", ErrInvalidSID, s)
	}

	authority, err := strconv.ParseUint(parts[2], 0, 48)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: bad authority", ErrInvalidSID, s)
	}

	if len(parts)-3 > 15 {
		return nil, fmt.Errorf("%w: %q: too many sub-authorities", ErrInvalidSID, s)
	}

	subs := make([]uint32, 0, len(parts)-3)
	for _, p := range parts[3:] {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: bad sub-authority %q", ErrInvalidSID, s, p)
		}
		subs = append(subs, uint32(v))
	}

	sid := NewSID(authority, subs...)
	sid.Revision = uint8(revision)
	return sid, nil
}

// MustParseSID is ParseSIDString for constants; it panics on error.
func MustParseSID(s string) *SID {
	sid, err := ParseSIDString(s)
	if err != nil {
		panic(err)
	}
	return sid
}

// Authority returns the 48-bit identifier authority value.
func (s *SID) Authority() uint64 {
	var identAuth uint64
	for i := 0; i < 6; i++ {
		identAuth = (identAuth << 8) | uint64(s.IdentifierAuthority[i])
	}
	return identAuth
}

// String returns the canonical string representation of the SID.
// Format: S-R-I-S1-S2-...-Sn
func (s *SID) String() string {
	if s == nil {
		return ""
	}

	var sb strings.Builder
	auth := s.Authority()
	if auth >= 1<<32 {
		fmt.Fprintf(&sb, "S-%d-0x%012X", s.Revision, auth)
	} else {
		fmt.Fprintf(&sb, "S-%d-%d", s.Revision, auth)
	}

	for _, sa := range s.SubAuthorities {
		sb.WriteString("-")
		sb.WriteString(strconv.FormatUint(uint64(sa), 10))
	}

	return sb.String()
}

// Size returns the size of the SID in bytes.
func (s *SID) Size() int {
	return 8 + len(s.SubAuthorities)*4
}

// Bytes encodes the SID in its binary form.
func (s *SID) Bytes() []byte {
	b := make([]byte, s.Size())
	b[0] = s.Revision
	b[1] = uint8(len(s.SubAuthorities))
	copy(b[2:8], s.IdentifierAuthority[:])
	for i, sa := range s.SubAuthorities {
		binary.LittleEndian.PutUint32(b[8+i*4:], sa)
	}
	return b
}

// Equal reports whether two SIDs are identical.
func (s *SID) Equal(other *SID) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.Revision != other.Revision || s.IdentifierAuthority != other.IdentifierAuthority ||
		len(s.SubAuthorities) != len(other.SubAuthorities) {
		return false
	}
	for i := range s.SubAuthorities {
		if s.SubAuthorities[i] != other.SubAuthorities[i] {
			return false
		}
	}
	return true
}

// RID returns the last sub-authority, or 0 for a SID without any.
func (s *SID) RID() uint32 {
	if len(s.SubAuthorities) == 0 {
		return 0
	}
	return s.SubAuthorities[len(s.SubAuthorities)-1]
}

// IsWellKnown checks if this is a well-known SID.
func (s *SID) IsWellKnown() bool {
	return WellKnownName(s.String()) != ""
}

// IsDomainSID returns true if the SID is a domain-relative SID (S-1-5-21-*).
func (s *SID) IsDomainSID() bool {
	return s.Authority() == 5 && len(s.SubAuthorities) >= 4 && s.SubAuthorities[0] == 21
}

// UnixID returns the uid or gid carried by a Samba "Unix User" (S-1-22-1-N)
// or "Unix Group" (S-1-22-2-N) SID.
func (s *SID) UnixID() (id uint32, group bool, ok bool) {
	if s.Authority() != 22 || len(s.SubAuthorities) != 2 {
		return 0, false, false
	}
	switch s.SubAuthorities[0] {
	case 1:
		return s.SubAuthorities[1], false, true
	case 2:
		return s.SubAuthorities[1], true, true
	}
	return 0, false, false
}

// wellKnownSIDs maps well-known SIDs to their names.
var wellKnownSIDs = map[string]string{
	"S-1-0-0":      "Null SID",
	"S-1-1-0":      "Everyone",
	"S-1-2-0":      "Local",
	"S-1-2-1":      "Console Logon",
	"S-1-3-0":      "CREATOR OWNER",
	"S-1-3-1":      "CREATOR GROUP",
	"S-1-3-4":      "OWNER RIGHTS",
	"S-1-5-1":      "NT AUTHORITY\\DIALUP",
	"S-1-5-2":      "NT AUTHORITY\\NETWORK",
	"S-1-5-3":      "NT AUTHORITY\\BATCH",
	"S-1-5-4":      "NT AUTHORITY\\INTERACTIVE",
	"S-1-5-6":      "NT AUTHORITY\\SERVICE",
	"S-1-5-7":      "NT AUTHORITY\\ANONYMOUS LOGON",
	"S-1-5-9":      "NT AUTHORITY\\ENTERPRISE DOMAIN CONTROLLERS",
	"S-1-5-10":     "NT AUTHORITY\\SELF",
	"S-1-5-11":     "NT AUTHORITY\\Authenticated Users",
	"S-1-5-12":     "NT AUTHORITY\\RESTRICTED",
	"S-1-5-13":     "NT AUTHORITY\\TERMINAL SERVER USER",
	"S-1-5-14":     "NT AUTHORITY\\REMOTE INTERACTIVE LOGON",
	"S-1-5-18":     "NT AUTHORITY\\SYSTEM",
	"S-1-5-19":     "NT AUTHORITY\\LOCAL SERVICE",
	"S-1-5-20":     "NT AUTHORITY\\NETWORK SERVICE",
	"S-1-5-32-544": "BUILTIN\\Administrators",
	"S-1-5-32-545": "BUILTIN\\Users",
	"S-1-5-32-546": "BUILTIN\\Guests",
	"S-1-5-32-547": "BUILTIN\\Power Users",
	"S-1-5-32-548": "BUILTIN\\Account Operators",
	"S-1-5-32-549": "BUILTIN\\Server Operators",
	"S-1-5-32-550": "BUILTIN\\Print Operators",
	"S-1-5-32-551": "BUILTIN\\Backup Operators",
	"S-1-5-32-552": "BUILTIN\\Replicators",
	"S-1-5-32-555": "BUILTIN\\Remote Desktop Users",
	"S-1-5-32-568": "BUILTIN\\IIS_IUSRS",
	"S-1-5-80-0":   "NT SERVICE\\ALL SERVICES",
	"S-1-15-2-1":   "APPLICATION PACKAGE AUTHORITY\\ALL APPLICATION PACKAGES",
	"S-1-15-2-2":   "APPLICATION PACKAGE AUTHORITY\\ALL RESTRICTED APPLICATION PACKAGES",
	"S-1-16-0":     "Mandatory Label\\Untrusted Mandatory Level",
	"S-1-16-4096":  "Mandatory Label\\Low Mandatory Level",
	"S-1-16-8192":  "Mandatory Label\\Medium Mandatory Level",
	"S-1-16-8448":  "Mandatory Label\\Medium Plus Mandatory Level",
	"S-1-16-12288": "Mandatory Label\\High Mandatory Level",
	"S-1-16-16384": "Mandatory Label\\System Mandatory Level",
}

// domainRIDs names the well-known relative IDs of a domain SID.
var domainRIDs = map[uint32]string{
	500: "Administrator",
	501: "Guest",
	502: "krbtgt",
	512: "Domain Admins",
	513: "Domain Users",
	514: "Domain Guests",
	515: "Domain Computers",
	516: "Domain Controllers",
	518: "Schema Admins",
	519: "Enterprise Admins",
	520: "Group Policy Creator Owners",
}

// WellKnownName returns the name for a well-known SID, or empty string if not known.
func WellKnownName(sidString string) string {
	if name, ok := wellKnownSIDs[sidString]; ok {
		return name
	}
	if sid, err := ParseSIDString(sidString); err == nil && sid.IsDomainSID() && len(sid.SubAuthorities) == 5 {
		return domainRIDs[sid.RID()]
	}
	return ""
}
