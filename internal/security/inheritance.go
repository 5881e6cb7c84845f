package security

import "strings"

// InheritanceFlags renders the ACE flags the way icacls prints them,
// e.g. "(OI)(CI)(IO)(I)". Audit success/failure flags are not shown.
func (a *ACE) InheritanceFlags() string {
	var sb strings.Builder
	if a.Flags&OBJECT_INHERIT_ACE != 0 {
		sb.WriteString("(OI)")
	}
	if a.Flags&CONTAINER_INHERIT_ACE != 0 {
		sb.WriteString("(CI)")
	}
	if a.Flags&INHERIT_ONLY_ACE != 0 {
		sb.WriteString("(IO)")
	}
	if a.Flags&NO_PROPAGATE_INHERIT_ACE != 0 {
		sb.WriteString("(NP)")
	}
	if a.Flags&INHERITED_ACE != 0 {
		sb.WriteString("(I)")
	}
	return sb.String()
}

// AppliesTo describes where the ACE takes effect, using the wording of the
// Windows advanced security dialog. Non-container objects only ever see
// the ACE itself.
func (a *ACE) AppliesTo(dir bool) string {
	if !dir {
		if a.InheritOnly() {
			return "Nothing (inherit only)"
		}
		return "This object only"
	}

	oi := a.Flags&OBJECT_INHERIT_ACE != 0
	ci := a.Flags&CONTAINER_INHERIT_ACE != 0

	var text string
	switch {
	case a.InheritOnly() && oi && ci:
		text = "Subfolders and files only"
	case a.InheritOnly() && ci:
		text = "Subfolders only"
	case a.InheritOnly() && oi:
		text = "Files only"
	case a.InheritOnly():
		text = "Nothing (inherit only)"
	case oi && ci:
		text = "This folder, subfolders and files"
	case ci:
		text = "This folder and subfolders"
	case oi:
		text = "This folder and files"
	default:
		text = "This folder only"
	}

	if a.Flags&NO_PROPAGATE_INHERIT_ACE != 0 && (oi || ci) {
		text += " (no propagation)"
	}
	return text
}
