package format

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/specterops/xf/internal/entry"
	"github.com/specterops/xf/internal/security"
)

type jsonEntry struct {
	Name          string        `json:"name"`
	Path          string        `json:"path"`
	Kind          string        `json:"kind"`
	Size          int64         `json:"size"`
	Modified      *time.Time    `json:"modified,omitempty"`
	Perms         string        `json:"perms"`
	Hidden        bool          `json:"hidden"`
	Executable    bool          `json:"executable"`
	Security      *jsonSecurity `json:"security,omitempty"`
	SecurityError string        `json:"security_error,omitempty"`
}

type jsonPrincipal struct {
	SID  string `json:"sid"`
	Name string `json:"name"`
}

type jsonSecurity struct {
	Owner   *jsonPrincipal `json:"owner,omitempty"`
	Group   *jsonPrincipal `json:"group,omitempty"`
	Control []string       `json:"control"`
	DACL    string         `json:"dacl"`
	SDDL    string         `json:"sddl"`
	ACEs    []jsonACE      `json:"aces,omitempty"`
	Access  []jsonAccess   `json:"access,omitempty"`
}

type jsonACE struct {
	Type        string         `json:"type"`
	Principal   *jsonPrincipal `json:"principal,omitempty"`
	Mask        string         `json:"mask"`
	Summary     string         `json:"summary"`
	Rights      []string       `json:"rights"`
	Inheritance string         `json:"inheritance,omitempty"`
	AppliesTo   string         `json:"applies_to"`
	Inherited   bool           `json:"inherited"`
}

type jsonAccess struct {
	jsonPrincipal
	Granted string `json:"granted"`
	Summary string `json:"summary"`
}

// JSON writes entries as an indented JSON array. Descriptors are included
// for entries the collector reached.
func JSON(w io.Writer, entries []*entry.Entry, names Names) error {
	names = namesOrSIDs(names)
	out := make([]jsonEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, newJSONEntry(e, names))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func newJSONEntry(e *entry.Entry, names Names) jsonEntry {
	je := jsonEntry{
		Name:       e.Name,
		Path:       e.Path,
		Kind:       e.Kind.String(),
		Size:       e.Size,
		Perms:      e.Perms.String(),
		Hidden:     e.IsHidden(),
		Executable: e.Executable(),
	}
	if !e.Modified.IsZero() {
		m := e.Modified.UTC()
		je.Modified = &m
	}
	if e.SecurityErr != nil {
		je.SecurityError = e.SecurityErr.Error()
	}
	if e.Security != nil {
		je.Security = newJSONSecurity(e.Security, e.IsDir(), names)
	}
	return je
}

func principal(s *security.SID, names Names) *jsonPrincipal {
	if s == nil {
		return nil
	}
	return &jsonPrincipal{SID: s.String(), Name: names.Name(s)}
}

func newJSONSecurity(sd *security.SecurityDescriptor, dir bool, names Names) *jsonSecurity {
	js := &jsonSecurity{
		Owner:   principal(sd.Owner, names),
		Group:   principal(sd.Group, names),
		Control: sd.ControlNames(),
		DACL:    sd.DACLState(),
		SDDL:    sd.SDDL(),
	}

	acl, present, _ := sd.DACL()
	if !present {
		return js
	}
	if acl != nil {
		for i := range acl.Entries {
			ace := &acl.Entries[i]
			js.ACEs = append(js.ACEs, jsonACE{
				Type:        ace.TypeName(),
				Principal:   principal(ace.SID, names),
				Mask:        fmt.Sprintf("0x%08x", ace.Mask),
				Summary:     ace.Summary(),
				Rights:      ace.Rights(dir),
				Inheritance: ace.InheritanceFlags(),
				AppliesTo:   ace.AppliesTo(dir),
				Inherited:   ace.IsInherited(),
			})
		}
	}
	for _, pa := range security.Principals(sd) {
		js.Access = append(js.Access, jsonAccess{
			jsonPrincipal: *principal(pa.SID, names),
			Granted:       fmt.Sprintf("0x%08x", pa.Granted),
			Summary:       pa.Summary(),
		})
	}
	return js
}
