package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/specterops/xf/internal/entry"
	"github.com/specterops/xf/internal/security"
	"github.com/specterops/xf/internal/style"
)

// ACLOptions configures the ACL report.
type ACLOptions struct {
	// SDDL prints one SDDL line per path instead of the decoded report.
	SDDL bool
	// Principals, when set, replaces the per-principal table with the
	// access of a token made of exactly these SIDs plus Everyone.
	Principals []*security.SID
	Names      Names
}

// ACL prints the decoded security descriptor of every entry.
func ACL(w io.Writer, c *style.Colorizer, entries []*entry.Entry, opts ACLOptions) error {
	r := &aclReport{printer: printer{w: w}, c: c, opts: opts, names: namesOrSIDs(opts.Names)}
	for i, e := range entries {
		if opts.SDDL {
			r.sddl(e)
			continue
		}
		if i > 0 {
			r.line()
		}
		r.entry(e)
	}
	return r.err
}

type aclReport struct {
	printer
	c     *style.Colorizer
	opts  ACLOptions
	names Names
}

func (r *aclReport) principal(s *security.SID) string {
	if s == nil {
		return r.c.Dim("-")
	}
	name := r.names.Name(s)
	if name == s.String() {
		return name
	}
	return name + " " + r.c.Dim("("+s.String()+")")
}

func (r *aclReport) sddl(e *entry.Entry) {
	switch {
	case e.SecurityErr != nil:
		r.line(e.Path, ": ", r.c.Warn("? "+e.SecurityErr.Error()))
	case e.Security == nil:
		r.line(e.Path, ": ", r.c.Warn("?"))
	default:
		r.line(e.Path, ": ", e.Security.SDDL())
	}
}

func (r *aclReport) field(name, value string) {
	r.line("  ", r.c.Dim(fmt.Sprintf("%-9s", name+":")), " ", value)
}

func (r *aclReport) entry(e *entry.Entry) {
	r.line(r.c.Name(e), " ", r.c.Dim(e.Path))
	if e.SecurityErr != nil {
		r.field("Error", r.c.Warn(e.SecurityErr.Error()))
		return
	}
	sd := e.Security
	if sd == nil {
		r.field("Error", r.c.Warn("no security descriptor"))
		return
	}

	r.field("Owner", r.principal(sd.Owner))
	r.field("Group", r.principal(sd.Group))
	r.field("Control", sd.ControlString())
	r.field("DACL", sd.DACLState())

	acl, present, _ := sd.DACL()
	if present && acl != nil {
		for i := range acl.Entries {
			r.ace(i, &acl.Entries[i], e.IsDir())
		}
	}
	if !present {
		return
	}

	if len(r.opts.Principals) > 0 {
		sids := make([]string, len(r.opts.Principals))
		for i, s := range r.opts.Principals {
			sids[i] = r.names.Name(s)
		}
		access := security.EffectiveAccess(sd, r.opts.Principals...)
		r.line("  ", r.c.Dim("Effective access for "+strings.Join(sids, ", ")+":"), " ", access.Summary())
		return
	}

	r.line("  ", r.c.Dim("Effective access:"))
	for _, pa := range security.Principals(sd) {
		r.line("    ", r.principal(pa.SID), " ", pa.Summary())
	}
}

func (r *aclReport) ace(i int, ace *security.ACE, dir bool) {
	kind := ace.TypeName()
	switch {
	case ace.IsAccessDenied():
		kind = r.c.Warn(kind)
	case ace.IsAccessAllowed():
		kind = r.c.Good(kind)
	}

	r.line(fmt.Sprintf("  [%d] ", i), kind, " ", r.principal(ace.SID))
	r.line("      ", r.c.Dim("Rights:    "), ace.Summary(), " ", r.c.Dim(fmt.Sprintf("0x%08x", ace.Mask)))
	if rights := ace.Rights(dir); len(rights) > 0 {
		r.line("      ", r.c.Dim("           "), strings.Join(rights, ", "))
	}
	flags := ace.InheritanceFlags()
	if flags == "" {
		flags = "-"
	}
	r.line("      ", r.c.Dim("Applies:   "), ace.AppliesTo(dir), " ", r.c.Dim(flags))
	inherited := "no"
	if ace.IsInherited() {
		inherited = "yes"
	}
	r.line("      ", r.c.Dim("Inherited: "), inherited)
}
