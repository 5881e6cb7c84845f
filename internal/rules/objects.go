package rules

import (
	"strings"

	"github.com/specterops/xf/internal/entry"
)

// RuleObjectShare represents the share a remote listing reads from.
type RuleObjectShare struct {
	Name string
}

// Hidden reports an administrative share name.
func (s *RuleObjectShare) Hidden() bool { return strings.HasSuffix(s.Name, "$") }

// RuleObject is the view of an entry that rules see.
type RuleObject struct {
	Name string
	Path string
	Size int64
	// Extension carries its leading dot, or is empty.
	Extension string
	Hidden    bool
}

// NewRuleObject builds the rule view of e.
func NewRuleObject(e *entry.Entry) *RuleObject {
	obj := &RuleObject{
		Name:   e.Name,
		Path:   e.Rel,
		Size:   e.Size,
		Hidden: e.IsHidden(),
	}
	if ext := e.Extension(); ext != "" {
		obj.Extension = "." + ext
	}
	return obj
}
