package security

import "io/fs"

// Samba maps POSIX ids into these authorities.
const (
	unixUserAuthority  = 22
	unixUserRID        = 1
	unixGroupRID       = 2
	ownerAlwaysAllowed = READ_CONTROL | WRITE_DAC | WRITE_OWNER
)

// UnixUserSID returns S-1-22-1-uid.
func UnixUserSID(uid uint32) *SID {
	return NewSID(unixUserAuthority, unixUserRID, uid)
}

// UnixGroupSID returns S-1-22-2-gid.
func UnixGroupSID(gid uint32) *SID {
	return NewSID(unixUserAuthority, unixGroupRID, gid)
}

// FromMode synthesises a descriptor from POSIX ownership and mode bits:
// one allow ACE each for the owner, the group and Everyone. The owner ACE
// is always present and also carries READ_CONTROL, WRITE_DAC and
// WRITE_OWNER. Empty group and other triplets produce no ACE.
func FromMode(mode fs.FileMode, uid, gid uint32) *SecurityDescriptor {
	dir := mode.IsDir()
	perm := mode.Perm()

	var flags uint8
	if dir {
		flags = OBJECT_INHERIT_ACE | CONTAINER_INHERIT_ACE
	}

	owner := UnixUserSID(uid)
	group := UnixGroupSID(gid)

	dacl := &ACL{Revision: ACL_REVISION}
	dacl.Entries = append(dacl.Entries, ACE{
		Type:  ACCESS_ALLOWED_ACE_TYPE,
		Flags: flags,
		Mask:  tripletMask(uint32(perm>>6)&7, dir, true) | ownerAlwaysAllowed,
		SID:   owner,
	})
	if bits := uint32(perm>>3) & 7; bits != 0 {
		dacl.Entries = append(dacl.Entries, ACE{
			Type:  ACCESS_ALLOWED_ACE_TYPE,
			Flags: flags,
			Mask:  tripletMask(bits, dir, false),
			SID:   group,
		})
	}
	if bits := uint32(perm) & 7; bits != 0 {
		dacl.Entries = append(dacl.Entries, ACE{
			Type:  ACCESS_ALLOWED_ACE_TYPE,
			Flags: flags,
			Mask:  tripletMask(bits, dir, false),
			SID:   SIDEveryone,
		})
	}

	return &SecurityDescriptor{
		Revision: 1,
		Control:  SE_SELF_RELATIVE | SE_DACL_PRESENT,
		Owner:    owner,
		Group:    group,
		Dacl:     dacl,
	}
}

func tripletMask(bits uint32, dir, owner bool) uint32 {
	var mask uint32
	if bits&4 != 0 {
		mask |= FILE_GENERIC_READ
	}
	if bits&2 != 0 {
		mask |= FILE_WRITE
		if owner {
			mask |= DELETE
		}
		if dir {
			mask |= FILE_DELETE_CHILD
		}
	}
	if bits&1 != 0 {
		mask |= FILE_GENERIC_EXECUTE
	}
	return mask
}
