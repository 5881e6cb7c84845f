// Package rules provides ShareQL rule parsing and evaluation for listings.
package rules

import (
	"cmp"
	"regexp"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// RuleAction represents the action of a rule.
type RuleAction string

const (
	ActionAllow RuleAction = "ALLOW"
	ActionDeny  RuleAction = "DENY"
)

// RuleScope represents what the rule applies to. EXPLORATION decides
// whether a directory is descended into, PROCESSING whether an entry is
// shown.
type RuleScope string

const (
	ScopeExploration RuleScope = "EXPLORATION"
	ScopeProcessing  RuleScope = "PROCESSING"
	ScopeAll         RuleScope = ""
)

// Rule represents a parsed ShareQL rule.
type Rule struct {
	IsDefault       bool
	DefaultBehavior RuleAction
	Action          RuleAction
	Scope           RuleScope
	Condition       Condition
	Line            int
}

// Comparator is the operator of a field condition, in canonical upper case.
type Comparator string

const (
	Equal        Comparator = "="
	DoubleEqual  Comparator = "=="
	NotEqual     Comparator = "!="
	Less         Comparator = "<"
	Greater      Comparator = ">"
	LessEqual    Comparator = "<="
	GreaterEqual Comparator = ">="
	In           Comparator = "IN"
	NotIn        Comparator = "NOT IN"
	// Matches takes a regular expression.
	Matches Comparator = "MATCHES"
	// Like takes a doublestar glob, matched without case.
	Like Comparator = "LIKE"
)

// Condition represents a rule condition.
type Condition interface {
	Evaluate(ctx *EvaluationContext) bool
}

// AlwaysTrueCondition always returns true.
type AlwaysTrueCondition struct{}

func (c *AlwaysTrueCondition) Evaluate(*EvaluationContext) bool { return true }

// FieldCondition compares a field against a value.
type FieldCondition struct {
	Field      string
	Comparator Comparator
	Value      interface{}

	pattern *regexp.Regexp
	glob    string
}

// Evaluate never matches a field whose object is absent from ctx, whatever
// the comparator.
func (c *FieldCondition) Evaluate(ctx *EvaluationContext) bool {
	v := ctx.GetFieldValue(c.Field)
	if v == nil {
		return false
	}

	switch c.Comparator {
	case Equal, DoubleEqual:
		return equal(v, c.Value)
	case NotEqual:
		return !equal(v, c.Value)
	case In:
		return member(v, c.Value)
	case NotIn:
		return !member(v, c.Value)
	case Matches:
		return c.pattern != nil && c.pattern.MatchString(text(v))
	case Like:
		ok, _ := doublestar.Match(c.glob, strings.ToLower(text(v)))
		return ok
	}

	order, ok := compareNumbers(v, c.Value)
	if !ok {
		return false
	}
	switch c.Comparator {
	case Less:
		return order < 0
	case Greater:
		return order > 0
	case LessEqual:
		return order <= 0
	case GreaterEqual:
		return order >= 0
	}
	return false
}

// NotCondition negates a condition.
type NotCondition struct {
	Inner Condition
}

func (c *NotCondition) Evaluate(ctx *EvaluationContext) bool {
	return !c.Inner.Evaluate(ctx)
}

// AndCondition holds when every condition does. An empty one holds.
type AndCondition struct {
	Conditions []Condition
}

func (c *AndCondition) Evaluate(ctx *EvaluationContext) bool {
	for _, cond := range c.Conditions {
		if !cond.Evaluate(ctx) {
			return false
		}
	}
	return true
}

// OrCondition holds when any condition does.
type OrCondition struct {
	Conditions []Condition
}

func (c *OrCondition) Evaluate(ctx *EvaluationContext) bool {
	for _, cond := range c.Conditions {
		if cond.Evaluate(ctx) {
			return true
		}
	}
	return false
}

// equal compares numerically when both sides are numbers, and as text
// without case otherwise, so "1" = 1 holds.
func equal(a, b interface{}) bool {
	if order, ok := compareNumbers(a, b); ok {
		return order == 0
	}
	return strings.EqualFold(text(a), text(b))
}

func compareNumbers(a, b interface{}) (int, bool) {
	x, ok := number(a)
	if !ok {
		return 0, false
	}
	y, ok := number(b)
	if !ok {
		return 0, false
	}
	return cmp.Compare(x, y), true
}

func member(v, list interface{}) bool {
	items, _ := list.([]interface{})
	for _, item := range items {
		if equal(v, item) {
			return true
		}
	}
	return false
}

func text(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	return ""
}

func number(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	}
	return 0, false
}
