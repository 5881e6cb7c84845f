package rules

import (
	"strings"

	"github.com/specterops/xf/internal/entry"
)

// EvaluationContext holds what one evaluation can see. A new context is
// built for every entry.
type EvaluationContext struct {
	Share     *RuleObjectShare
	File      *RuleObject
	Directory *RuleObject
	Entry     *RuleObject
	Depth     int
}

// knownFields lists every field a condition may name.
var knownFields = map[string]struct{}{
	"DEPTH":          {},
	"SHARE.NAME":     {},
	"SHARE.HIDDEN":   {},
	"FILE.NAME":      {},
	"FILE.PATH":      {},
	"FILE.SIZE":      {},
	"FILE.EXTENSION": {},
	"FILE.HIDDEN":    {},
	"DIR.NAME":       {},
	"DIR.PATH":       {},
	"DIR.HIDDEN":     {},
	"ENTRY.NAME":     {},
	"ENTRY.PATH":     {},
	"ENTRY.SIZE":     {},
	"ENTRY.HIDDEN":   {},
}

// canonicalField upper-cases field and folds the DIRECTORY. alias.
func canonicalField(field string) string {
	field = strings.ToUpper(strings.TrimSpace(field))
	if strings.HasPrefix(field, "DIRECTORY.") {
		field = "DIR." + strings.TrimPrefix(field, "DIRECTORY.")
	}
	return field
}

// GetFieldValue returns the value of a field, or nil when the object it
// belongs to is not part of this context.
func (c *EvaluationContext) GetFieldValue(field string) interface{} {
	field = canonicalField(field)
	if field == "DEPTH" {
		return c.Depth
	}

	if strings.HasPrefix(field, "SHARE.") {
		if c.Share == nil {
			return nil
		}
		switch field {
		case "SHARE.NAME":
			return c.Share.Name
		case "SHARE.HIDDEN":
			return c.Share.Hidden()
		}
		return nil
	}

	var obj *RuleObject
	switch {
	case strings.HasPrefix(field, "FILE."):
		obj = c.File
	case strings.HasPrefix(field, "DIR."):
		obj = c.Directory
	case strings.HasPrefix(field, "ENTRY."):
		obj = c.Entry
	}
	if obj == nil {
		return nil
	}

	switch field[strings.IndexByte(field, '.')+1:] {
	case "NAME":
		return obj.Name
	case "PATH":
		return obj.Path
	case "SIZE":
		return obj.Size
	case "EXTENSION":
		return obj.Extension
	case "HIDDEN":
		return obj.Hidden
	}
	return nil
}

// Evaluator evaluates rules against entries. It holds no per-entry state
// and is safe for concurrent use.
type Evaluator struct {
	rules        []Rule
	defaultAllow bool
	share        *RuleObjectShare
}

// NewEvaluator creates a new rule evaluator.
func NewEvaluator(rules []Rule) *Evaluator {
	e := &Evaluator{rules: rules, defaultAllow: true}
	for _, rule := range rules {
		if rule.IsDefault {
			e.defaultAllow = rule.DefaultBehavior == ActionAllow
			break
		}
	}
	return e
}

// WithShare returns an evaluator that exposes share as SHARE.*.
func (e *Evaluator) WithShare(share string) *Evaluator {
	out := *e
	if share != "" {
		out.share = &RuleObjectShare{Name: share}
	}
	return &out
}

// Context builds the evaluation context of ent.
func (e *Evaluator) Context(ent *entry.Entry) *EvaluationContext {
	obj := NewRuleObject(ent)
	ctx := &EvaluationContext{Share: e.share, Entry: obj, Depth: ent.Depth}
	if ent.IsDir() {
		ctx.Directory = obj
	} else {
		ctx.File = obj
	}
	return ctx
}

// Keep reports whether ent is shown. It lets an Evaluator act as a
// listing filter.
func (e *Evaluator) Keep(ent *entry.Entry) bool {
	return e.evaluate(ScopeProcessing, e.Context(ent))
}

// Explore reports whether the directory ent is descended into.
func (e *Evaluator) Explore(ent *entry.Entry) bool {
	if !ent.IsDir() {
		return false
	}
	return e.evaluate(ScopeExploration, e.Context(ent))
}

// evaluate runs the rules and returns the final decision. The first rule
// whose scope and condition match wins.
func (e *Evaluator) evaluate(scope RuleScope, ctx *EvaluationContext) bool {
	for _, rule := range e.rules {
		if rule.IsDefault {
			continue
		}
		if rule.Scope != ScopeAll && rule.Scope != scope {
			continue
		}
		if rule.Condition == nil || rule.Condition.Evaluate(ctx) {
			return rule.Action == ActionAllow
		}
	}
	return e.defaultAllow
}
