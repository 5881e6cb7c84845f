package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// DefaultRules contains the default rules if none are specified.
var DefaultRules = []string{
	"DEFAULT: ALLOW",
}

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("rule syntax error")

// ParseError reports the line a rule failed to parse on.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// comparators is ordered so that no entry is a prefix of an entry after it.
var comparators = []Comparator{NotIn, Matches, Like, In, DoubleEqual, NotEqual, LessEqual, GreaterEqual, Equal, Less, Greater}

var numberPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// Parser parses ShareQL rules.
type Parser struct{}

// NewParser creates a new rule parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads ShareQL rules, one per line. Blank lines and lines starting
// with # or // are skipped. A line that fails is reported as *ParseError
// and the rest still parse.
func (p *Parser) Parse(input string) (rules []Rule, errs []error) {
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		rule, err := p.parseLine(line)
		if err != nil {
			errs = append(errs, &ParseError{Line: i + 1, Err: err})
			continue
		}
		rule.Line = i + 1
		rules = append(rules, *rule)
	}
	return rules, errs
}

// ParseStrings parses multiple rule strings.
func (p *Parser) ParseStrings(inputs []string) ([]Rule, []error) {
	combined := strings.Join(inputs, "\n")
	return p.Parse(combined)
}

// ParseFile parses the rules file at path.
func (p *Parser) ParseFile(fsys afero.Fs, path string) ([]Rule, []error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, []error{fmt.Errorf("read rules %s: %w", path, err)}
	}
	return p.Parse(string(data))
}

// Load parses inputs and returns an evaluator, or every parse error joined.
func Load(inputs []string) (*Evaluator, error) {
	if len(inputs) == 0 {
		inputs = DefaultRules
	}
	rules, errs := NewParser().ParseStrings(inputs)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return NewEvaluator(rules), nil
}

// hasPrefixFold reports whether s starts with the ASCII prefix, ignoring case.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// hasKeyword reports whether s starts with keyword as a whole word.
func hasKeyword(s, keyword string) bool {
	if !hasPrefixFold(s, keyword) {
		return false
	}
	return len(s) == len(keyword) || s[len(keyword)] == ' ' || s[len(keyword)] == '\t'
}

// cutKeyword strips keyword from the front of s when it stands as a
// whole word.
func cutKeyword(s, keyword string) (string, bool) {
	if !hasKeyword(s, keyword) {
		return s, false
	}
	return strings.TrimSpace(s[len(keyword):]), true
}

func (p *Parser) parseLine(line string) (*Rule, error) {
	if hasPrefixFold(line, "DEFAULT") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line[len("DEFAULT"):]), ":")
		if !ok {
			return nil, fmt.Errorf("%w: invalid DEFAULT rule", ErrSyntax)
		}
		behavior := RuleAction(strings.ToUpper(strings.TrimSpace(rest)))
		if behavior != ActionAllow && behavior != ActionDeny {
			return nil, fmt.Errorf("%w: DEFAULT must be ALLOW or DENY, got: %s", ErrSyntax, behavior)
		}
		return &Rule{IsDefault: true, DefaultBehavior: behavior}, nil
	}

	rule := &Rule{Condition: &AlwaysTrueCondition{}}
	rest, ok := line, false
	for _, action := range []RuleAction{ActionAllow, ActionDeny} {
		if rest, ok = cutKeyword(line, string(action)); ok {
			rule.Action = action
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: rule must start with ALLOW, DENY, or DEFAULT", ErrSyntax)
	}
	for _, scope := range []RuleScope{ScopeExploration, ScopeProcessing} {
		if r, ok := cutKeyword(rest, string(scope)); ok {
			rule.Scope, rest = scope, r
			break
		}
	}
	if rest == "" {
		return rule, nil
	}

	expr, ok := cutKeyword(rest, "IF")
	if !ok {
		return nil, fmt.Errorf("%w: expected IF, got: %s", ErrSyntax, rest)
	}
	cond, err := p.parseCondition(expr)
	if err != nil {
		return nil, fmt.Errorf("condition: %w", err)
	}
	rule.Condition = cond
	return rule, nil
}

// parseCondition parses a boolean expression. OR binds loosest, then AND,
// then NOT.
func (p *Parser) parseCondition(input string) (Condition, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%w: empty condition", ErrSyntax)
	}

	for _, op := range []string{" OR ", " AND "} {
		parts := splitTop(input, op)
		if len(parts) == 1 {
			continue
		}
		conds := make([]Condition, 0, len(parts))
		for _, part := range parts {
			cond, err := p.parseCondition(part)
			if err != nil {
				return nil, err
			}
			conds = append(conds, cond)
		}
		if op == " OR " {
			return &OrCondition{Conditions: conds}, nil
		}
		return &AndCondition{Conditions: conds}, nil
	}

	if inner, ok := cutKeyword(input, "NOT"); ok {
		cond, err := p.parseCondition(inner)
		if err != nil {
			return nil, err
		}
		return &NotCondition{Inner: cond}, nil
	}

	if strings.HasPrefix(input, "(") && enclosed(input) {
		return p.parseCondition(input[1 : len(input)-1])
	}
	return p.parseComparison(input)
}

// quoting follows a left-to-right scan, tracking quotes and bracket depth.
type quoting struct {
	quote byte
	depth int
}

func (q *quoting) step(c byte) {
	switch {
	case q.quote != 0:
		if c == q.quote {
			q.quote = 0
		}
	case c == '\'' || c == '"':
		q.quote = c
	case c == '(' || c == '[':
		q.depth++
	case c == ')' || c == ']':
		q.depth--
	}
}

func (q *quoting) outside() bool { return q.quote == 0 && q.depth == 0 }

// splitTop splits s at each sep found outside quotes and brackets. sep is
// matched without case.
func splitTop(s, sep string) []string {
	var parts []string
	var q quoting
	start := 0
	for i := 0; i < len(s); i++ {
		if q.outside() && hasPrefixFold(s[i:], sep) {
			parts = append(parts, s[start:i])
			i += len(sep) - 1
			start = i + 1
			continue
		}
		q.step(s[i])
	}
	return append(parts, s[start:])
}

// enclosed reports whether the bracket opening s closes at its last byte.
func enclosed(s string) bool {
	var q quoting
	for i := 0; i < len(s); i++ {
		q.step(s[i])
		if q.outside() {
			return i == len(s)-1
		}
	}
	return false
}

func isFieldChar(c byte) bool {
	return c == '.' || c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// parseComparison parses FIELD COMPARATOR VALUE.
func (p *Parser) parseComparison(input string) (Condition, error) {
	input = strings.TrimSpace(input)

	end := 0
	for end < len(input) && isFieldChar(input[end]) {
		end++
	}
	field := canonicalField(input[:end])
	if _, ok := knownFields[field]; !ok {
		return nil, fmt.Errorf("%w: unknown field %q", ErrSyntax, input[:end])
	}

	rest := strings.TrimSpace(input[end:])
	for _, comp := range comparators {
		if !hasPrefixFold(rest, string(comp)) {
			continue
		}
		valueStr := rest[len(comp):]
		if isWordComparator(comp) && valueStr != "" && isFieldChar(valueStr[0]) {
			continue
		}

		value, err := p.parseValue(valueStr)
		if err != nil {
			return nil, err
		}

		cond := &FieldCondition{Field: field, Comparator: comp, Value: value}
		switch comp {
		case In, NotIn:
			if _, ok := value.([]interface{}); !ok {
				return nil, fmt.Errorf("%w: %s needs a list, got: %s", ErrSyntax, comp, strings.TrimSpace(valueStr))
			}
		case Matches:
			re, err := regexp.Compile(text(value))
			if err != nil {
				return nil, fmt.Errorf("%w: bad pattern: %v", ErrSyntax, err)
			}
			cond.pattern = re
		case Like:
			glob := strings.ToLower(text(value))
			if !doublestar.ValidatePattern(glob) {
				return nil, fmt.Errorf("%w: bad glob: %s", ErrSyntax, text(value))
			}
			cond.glob = glob
		}
		return cond, nil
	}

	return nil, fmt.Errorf("%w: could not parse comparison: %s", ErrSyntax, input)
}

func isWordComparator(comp Comparator) bool {
	return comp[0] >= 'A' && comp[0] <= 'Z'
}

// parseValue parses a quoted string, number, boolean or [list]. Bare words
// are strings.
func (p *Parser) parseValue(input string) (interface{}, error) {
	v := strings.TrimSpace(input)
	switch {
	case v == "":
		return nil, fmt.Errorf("%w: missing value", ErrSyntax)
	case v[0] == '[' && v[len(v)-1] == ']':
		return p.parseList(v[1 : len(v)-1])
	case len(v) >= 2 && (v[0] == '\'' || v[0] == '"') && v[len(v)-1] == v[0]:
		return v[1 : len(v)-1], nil
	case strings.EqualFold(v, "true"):
		return true, nil
	case strings.EqualFold(v, "false"):
		return false, nil
	case numberPattern.MatchString(v):
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %s", ErrSyntax, v)
		}
		return n, nil
	}
	return v, nil
}

func (p *Parser) parseList(inner string) ([]interface{}, error) {
	values := []interface{}{}
	if strings.TrimSpace(inner) == "" {
		return values, nil
	}
	for _, item := range splitTop(inner, ",") {
		v, err := p.parseValue(item)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
