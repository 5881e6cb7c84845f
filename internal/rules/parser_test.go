package rules

import (
	"errors"
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func TestParseDefaultRule(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		input    string
		expected RuleAction
	}{
		{"DEFAULT: ALLOW", ActionAllow},
		{"DEFAULT: DENY", ActionDeny},
		{"default: allow", ActionAllow},
		{"DEFAULT : deny", ActionDeny},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rules, errs := parser.Parse(tt.input)
			if len(errs) > 0 {
				t.Fatalf("Parse errors: %v", errs)
			}
			if len(rules) != 1 {
				t.Fatalf("Expected 1 rule, got %d", len(rules))
			}
			// DEFAULT rules store the action in DefaultBehavior, not Action
			if rules[0].DefaultBehavior != tt.expected {
				t.Errorf("Expected DefaultBehavior %v, got %v", tt.expected, rules[0].DefaultBehavior)
			}
			if !rules[0].IsDefault {
				t.Error("Expected rule to be default")
			}
		})
	}
}

func TestParseSimpleRules(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		input  string
		action RuleAction
		scope  RuleScope
	}{
		{"ALLOW EXPLORATION", ActionAllow, ScopeExploration},
		{"DENY EXPLORATION", ActionDeny, ScopeExploration},
		{"allow processing", ActionAllow, ScopeProcessing},
		{"DENY PROCESSING", ActionDeny, ScopeProcessing},
		{"ALLOW", ActionAllow, ScopeAll},
		{"DENY", ActionDeny, ScopeAll},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rules, errs := parser.Parse(tt.input)
			if len(errs) > 0 {
				t.Fatalf("Parse errors: %v", errs)
			}
			if len(rules) != 1 {
				t.Fatalf("Expected 1 rule, got %d", len(rules))
			}
			if rules[0].Action != tt.action {
				t.Errorf("Expected action %v, got %v", tt.action, rules[0].Action)
			}
			if rules[0].Scope != tt.scope {
				t.Errorf("Expected scope %v, got %v", tt.scope, rules[0].Scope)
			}
		})
	}
}

func TestParseComparisons(t *testing.T) {
	tests := []struct {
		input      string
		field      string
		comparator Comparator
		value      interface{}
	}{
		{"ALLOW IF FILE.NAME = 'a.txt'", "FILE.NAME", "=", "a.txt"},
		{"ALLOW IF FILE.NAME == \"a.txt\"", "FILE.NAME", "==", "a.txt"},
		{"ALLOW IF file.size>=1024", "FILE.SIZE", ">=", 1024.0},
		{"ALLOW IF DEPTH<2", "DEPTH", "<", 2.0},
		{"ALLOW IF DEPTH != 0", "DEPTH", "!=", 0.0},
		{"ALLOW IF DIRECTORY.HIDDEN = false", "DIR.HIDDEN", "=", false},
		{"ALLOW IF ENTRY.NAME MATCHES '^a.*'", "ENTRY.NAME", "MATCHES", "^a.*"},
		{"ALLOW IF SHARE.NAME = data", "SHARE.NAME", "=", "data"},
		{"DENY IF FILE.NAME like '*.TMP'", "FILE.NAME", "LIKE", "*.TMP"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rules, errs := NewParser().Parse(tt.input)
			if len(errs) > 0 {
				t.Fatalf("Parse errors: %v", errs)
			}
			cond, ok := rules[0].Condition.(*FieldCondition)
			if !ok {
				t.Fatalf("Condition is %T, want *FieldCondition", rules[0].Condition)
			}
			if cond.Field != tt.field || cond.Comparator != tt.comparator || cond.Value != tt.value {
				t.Errorf("got %s %s %#v, want %s %s %#v",
					cond.Field, cond.Comparator, cond.Value, tt.field, tt.comparator, tt.value)
			}
		})
	}
}

func TestParseLists(t *testing.T) {
	rules, errs := NewParser().Parse("DENY IF FILE.NAME NOT IN ['a, b', \"c\", 3, TRUE]")
	if len(errs) > 0 {
		t.Fatalf("Parse errors: %v", errs)
	}
	cond := rules[0].Condition.(*FieldCondition)
	if cond.Comparator != "NOT IN" {
		t.Fatalf("Comparator = %q, want NOT IN", cond.Comparator)
	}
	list := cond.Value.([]interface{})
	want := []interface{}{"a, b", "c", 3.0, true}
	if len(list) != len(want) {
		t.Fatalf("list = %#v, want %#v", list, want)
	}
	for i := range want {
		if list[i] != want[i] {
			t.Errorf("item %d = %#v, want %#v", i, list[i], want[i])
		}
	}
}

func TestParseBooleanStructure(t *testing.T) {
	rules, errs := NewParser().Parse("DENY IF NOT (DEPTH = 1 OR DEPTH = 2) AND FILE.NAME = 'x or y'")
	if len(errs) > 0 {
		t.Fatalf("Parse errors: %v", errs)
	}
	and, ok := rules[0].Condition.(*AndCondition)
	if !ok || len(and.Conditions) != 2 {
		t.Fatalf("Condition = %#v, want a two-part AND", rules[0].Condition)
	}
	not, ok := and.Conditions[0].(*NotCondition)
	if !ok {
		t.Fatalf("first part is %T, want *NotCondition", and.Conditions[0])
	}
	if or, ok := not.Inner.(*OrCondition); !ok || len(or.Conditions) != 2 {
		t.Errorf("NOT wraps %#v, want a two-part OR", not.Inner)
	}
	if cond := and.Conditions[1].(*FieldCondition); cond.Value != "x or y" {
		t.Errorf("quoted OR was split: %#v", cond.Value)
	}
}

func TestParseComments(t *testing.T) {
	input := `
# This is a comment
DEFAULT: ALLOW
// Another comment
DENY EXPLORATION IF DIR.NAME = 'test'
`

	rules, errs := NewParser().Parse(input)
	if len(errs) > 0 {
		t.Fatalf("Parse errors: %v", errs)
	}
	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules (comments should be ignored), got %d", len(rules))
	}
	if rules[1].Line != 5 {
		t.Errorf("Line = %d, want 5", rules[1].Line)
	}
}

func TestParseInvalidRule(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Invalid keyword", "MAYBE EXPLORATION"},
		{"Keyword prefix", "ALLOWED"},
		{"Bad default", "DEFAULT: MAYBE"},
		{"Missing IF", "DENY EXPLORATION DEPTH > 1"},
		{"Empty condition", "DENY IF"},
		{"Unknown field", "DENY EXPLORATION IF INVALID.FIELD = 'test'"},
		{"Missing comparator", "DENY IF FILE.NAME 'x'"},
		{"Missing value", "DENY IF FILE.NAME ="},
		{"IN without list", "DENY IF FILE.NAME IN 'x'"},
		{"Bad pattern", "DENY IF FILE.NAME MATCHES '('"},
		{"Bad glob", "DENY IF FILE.NAME LIKE '[a'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := NewParser().Parse("\n" + tt.input)
			if len(errs) != 1 {
				t.Fatalf("Expected 1 parse error, got %v", errs)
			}
			var perr *ParseError
			if !errors.As(errs[0], &perr) || perr.Line != 2 {
				t.Errorf("error %v does not carry line 2", errs[0])
			}
			if !errors.Is(errs[0], ErrSyntax) {
				t.Errorf("error %v does not wrap ErrSyntax", errs[0])
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/rules.txt", []byte("DEFAULT: DENY\nALLOW PROCESSING\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, errs := NewParser().ParseFile(fsys, "/rules.txt")
	if len(errs) > 0 || len(rules) != 2 {
		t.Fatalf("ParseFile = %v, %v", rules, errs)
	}

	if _, errs := NewParser().ParseFile(fsys, "/missing.txt"); len(errs) != 1 {
		t.Errorf("missing file errors = %v", errs)
	}
}

func TestSplitTop(t *testing.T) {
	tests := []struct {
		in   string
		sep  string
		want []string
	}{
		{"a OR b", " OR ", []string{"a", "b"}},
		{"a or b", " OR ", []string{"a", "b"}},
		{"(a OR b) AND c", " OR ", []string{"(a OR b) AND c"}},
		{"x = 'a OR b'", " OR ", []string{"x = 'a OR b'"}},
		{"1, [2, 3], '4,5'", ",", []string{"1", " [2, 3]", " '4,5'"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := splitTop(tt.in, tt.sep); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitTop(%q, %q) = %q, want %q", tt.in, tt.sep, got, tt.want)
			}
		})
	}
}
