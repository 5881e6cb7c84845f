package security

// Access is the outcome of evaluating a DACL for a token.
type Access struct {
	Granted uint32
	Denied  uint32
}

// Allows reports whether every bit of desired is granted.
func (a Access) Allows(desired uint32) bool {
	desired = MapGeneric(desired)
	return desired != 0 && a.Granted&desired == desired
}

// Summary returns the icacls-style rendering of the granted rights.
func (a Access) Summary() string {
	return Summary(a.Granted)
}

// PrincipalAccess is the effective access of one principal named in a DACL.
type PrincipalAccess struct {
	SID *SID
	Access
}

// ownerImplicit is what an owner may always do unless OWNER RIGHTS is named.
const ownerImplicit = READ_CONTROL | WRITE_DAC

// EffectiveAccess evaluates the DACL for a token made of sids plus Everyone.
// ACEs are walked in order and the first ACE to decide a bit wins, which is
// what AccessCheck does. Inherit-only ACEs do not apply to the object
// itself. Group memberships are not expanded: the token is exactly what is
// passed in.
func EffectiveAccess(sd *SecurityDescriptor, sids ...*SID) Access {
	token := append([]*SID{SIDEveryone}, sids...)

	acl, present, _ := sd.DACL()
	if !present || acl == nil {
		return Access{Granted: FILE_ALL_ACCESS}
	}

	isOwner := sd.Owner != nil && containsSID(token, sd.Owner)

	var access Access
	if isOwner && !namesSID(acl, SIDOwnerRights) {
		access.Granted = ownerImplicit
	}

	for i := range acl.Entries {
		ace := &acl.Entries[i]
		if ace.InheritOnly() || ace.SID == nil {
			continue
		}

		applies := containsSID(token, ace.SID) || (isOwner && ace.SID.Equal(SIDOwnerRights))
		if !applies {
			continue
		}

		mask := MapGeneric(ace.Mask) &^ MAXIMUM_ALLOWED
		switch {
		case ace.IsAccessDenied():
			// Conditional deny ACEs cannot be evaluated here; they are
			// assumed to match.
			access.Denied |= mask &^ access.Granted
		case ace.IsAccessAllowed():
			if isCallback(ace.Type) {
				continue
			}
			access.Granted |= mask &^ access.Denied
		}
	}

	return access
}

// Principals evaluates EffectiveAccess for every distinct SID that has at
// least one ACE applying to the object, in order of first appearance.
func Principals(sd *SecurityDescriptor) []PrincipalAccess {
	acl, present, _ := sd.DACL()
	if !present || acl == nil {
		return []PrincipalAccess{{SID: SIDEveryone, Access: Access{Granted: FILE_ALL_ACCESS}}}
	}

	var seen []*SID
	var result []PrincipalAccess
	for i := range acl.Entries {
		ace := &acl.Entries[i]
		if ace.InheritOnly() || ace.SID == nil || containsSID(seen, ace.SID) {
			continue
		}
		if !ace.IsAccessAllowed() && !ace.IsAccessDenied() {
			continue
		}
		seen = append(seen, ace.SID)
		result = append(result, PrincipalAccess{SID: ace.SID, Access: EffectiveAccess(sd, ace.SID)})
	}
	return result
}

func containsSID(list []*SID, sid *SID) bool {
	for _, s := range list {
		if s.Equal(sid) {
			return true
		}
	}
	return false
}

func namesSID(acl *ACL, sid *SID) bool {
	for i := range acl.Entries {
		if acl.Entries[i].SID.Equal(sid) {
			return true
		}
	}
	return false
}

func isCallback(t uint8) bool {
	switch t {
	case ACCESS_ALLOWED_CALLBACK_ACE_TYPE, ACCESS_ALLOWED_CALLBACK_OBJECT_ACE_TYPE,
		ACCESS_DENIED_CALLBACK_ACE_TYPE, ACCESS_DENIED_CALLBACK_OBJECT_ACE_TYPE:
		return true
	}
	return false
}
