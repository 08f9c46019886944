package filter

import (
	"cmp"
	"fmt"
	"regexp"
	"strings"

	"github.com/vburojevic/logscope/internal/domain"
)

// fieldKind decides which operators and values a field accepts
type fieldKind int

const (
	textField   fieldKind = iota // =, !=, ~, !~, ^, $
	rankField                    // severity labels, ordered low < medium < high < critical
	numberField                  // =, !=, >, >=, <, <= against a number literal
)

type whereField struct {
	kind fieldKind
	// lexical reports whether a text field also orders with < and >
	lexical bool
	text    func(a *domain.Anomaly) string
	number  func(a *domain.Anomaly) (float64, bool)
}

var whereFields = map[string]whereField{
	"severity": {kind: rankField},
	"type":     {kind: textField, text: func(a *domain.Anomaly) string { return a.Type }},
	"message":  {kind: textField, text: func(a *domain.Anomaly) string { return a.MessageText() }},
	// ISO-8601 timestamps sort lexically
	"timestamp": {kind: textField, lexical: true, text: func(a *domain.Anomaly) string { return a.Timestamp }},
	"score": {kind: numberField, number: func(a *domain.Anomaly) (float64, bool) {
		if a.Score == nil {
			return 0, false
		}
		return *a.Score, true
	}},
	"id": {kind: numberField, number: func(a *domain.Anomaly) (float64, bool) { return float64(a.ID), true }},
	"log_id": {kind: numberField, number: func(a *domain.Anomaly) (float64, bool) {
		if a.LogID == nil {
			return 0, false
		}
		return float64(*a.LogID), true
	}},
}

var whereFieldOrder = []string{"severity", "type", "message", "timestamp", "score", "id", "log_id"}

// WhereFields lists the anomaly fields a where expression can test
func WhereFields() []string {
	return append([]string(nil), whereFieldOrder...)
}

func (f whereField) allows(op string) bool {
	switch op {
	case "=", "!=":
		return true
	case "~", "!~", "^", "$":
		return f.kind == textField
	case ">", ">=", "<", "<=":
		return f.kind != textField || f.lexical
	}
	return false
}

// WhereClause is one field comparison such as "severity>=high"
type WhereClause struct {
	Field    string
	Operator string
	Value    string

	match func(a *domain.Anomaly) bool
}

// Match reports whether a satisfies the comparison
func (wc *WhereClause) Match(a *domain.Anomaly) bool {
	return wc.match(a)
}

// ParseWhereClause parses a single comparison. Use NewWhereFilter for
// expressions joined with AND, OR or NOT.
func ParseWhereClause(clause string) (*WhereClause, error) {
	node, err := parseWhere(clause)
	if err != nil {
		return nil, err
	}
	wc, ok := node.(*WhereClause)
	if !ok {
		return nil, fmt.Errorf("where %q: expected one comparison, found a combined expression", clause)
	}
	return wc, nil
}

func newWhereClause(field, op string, val whereToken) (*WhereClause, error) {
	name := strings.ToLower(field)
	spec, ok := whereFields[name]
	if !ok {
		return nil, fmt.Errorf("unknown where field %q (fields: %s)", field, strings.Join(whereFieldOrder, ", "))
	}
	if !spec.allows(op) {
		return nil, fmt.Errorf("where: %s cannot be compared with %s", name, op)
	}
	if val.kind == tokPattern && op != "~" && op != "!~" {
		return nil, fmt.Errorf("where: regex /%s/ needs ~ or !~, not %s", val.text, op)
	}

	wc := &WhereClause{Field: name, Operator: op, Value: val.text}
	var err error
	switch spec.kind {
	case rankField:
		wc.match, err = severityMatcher(op, val)
	case numberField:
		wc.match, err = numberMatcher(name, spec.number, op, val)
	default:
		wc.match, err = textMatcher(name, spec.text, op, val.text)
	}
	if err != nil {
		return nil, err
	}
	return wc, nil
}

// holds applies a comparison operator to ordered values
func holds[T cmp.Ordered](op string, got, want T) bool {
	c := cmp.Compare(got, want)
	switch op {
	case "=":
		return c == 0
	case "!=":
		return c != 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	}
	return false
}

// severityMatcher compares labels case-insensitively for = and != and by
// rank otherwise. Unknown labels rank below low.
func severityMatcher(op string, val whereToken) (func(*domain.Anomaly) bool, error) {
	if val.kind != tokWord && val.kind != tokText {
		return nil, fmt.Errorf("where: severity takes a label (low, medium, high, critical), got %q", val.text)
	}
	want := domain.ParseSeverity(val.text)
	if op == "=" || op == "!=" {
		return func(a *domain.Anomaly) bool {
			return holds(op, string(domain.ParseSeverity(string(a.Severity))), string(want))
		}, nil
	}
	if !want.Known() {
		return nil, fmt.Errorf("where: severity%s%s: only low, medium, high and critical are ranked", op, val.text)
	}
	rank := want.Priority()
	return func(a *domain.Anomaly) bool {
		return holds(op, a.Severity.Priority(), rank)
	}, nil
}

// numberMatcher compares against a number literal. An anomaly without the
// field only satisfies !=.
func numberMatcher(field string, get func(*domain.Anomaly) (float64, bool), op string, val whereToken) (func(*domain.Anomaly) bool, error) {
	if val.kind != tokNumber {
		return nil, fmt.Errorf("where: %s compares numbers, got %q", field, val.text)
	}
	want := val.num
	return func(a *domain.Anomaly) bool {
		got, ok := get(a)
		if !ok {
			return op == "!="
		}
		return holds(op, got, want)
	}, nil
}

func textMatcher(field string, get func(*domain.Anomaly) string, op, value string) (func(*domain.Anomaly) bool, error) {
	switch op {
	case "~", "!~":
		re, err := regexp.Compile(value)
		if err != nil {
			return nil, fmt.Errorf("where: bad %s pattern %q: %w", field, value, err)
		}
		want := op == "~"
		return func(a *domain.Anomaly) bool { return re.MatchString(get(a)) == want }, nil
	case "^":
		return func(a *domain.Anomaly) bool { return strings.HasPrefix(get(a), value) }, nil
	case "$":
		return func(a *domain.Anomaly) bool { return strings.HasSuffix(get(a), value) }, nil
	default:
		return func(a *domain.Anomaly) bool { return holds(op, get(a), value) }, nil
	}
}

// WhereFilter matches anomalies against one or more where expressions; all
// of them must hold
type WhereFilter struct {
	expr whereNode
}

// NewWhereFilter parses each expression. It returns nil when there are none.
func NewWhereFilter(exprs []string) (*WhereFilter, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	all := make(allNode, 0, len(exprs))
	for _, src := range exprs {
		node, err := parseWhere(src)
		if err != nil {
			return nil, err
		}
		all = append(all, node)
	}
	if len(all) == 1 {
		return &WhereFilter{expr: all[0]}, nil
	}
	return &WhereFilter{expr: all}, nil
}

// Match reports whether a satisfies every expression
func (f *WhereFilter) Match(a *domain.Anomaly) bool {
	if f == nil || f.expr == nil {
		return true
	}
	return f.expr.Match(a)
}
