package hxl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// RowQuery is a single predicate over a row, parsed once from a spec
// such as "sector=WASH", "affected>100", "adm1~^co", or "date is not
// empty". Supported operators:
//
//	=  !=  <  <=  >  >=    value comparison, numeric and date aware
//	~  !~                  case-insensitive regular expression
//	is [not] empty|number|date|min|max
//
// The "is min" / "is max" forms need a dataset-wide pre-pass: call
// CalcAggregate against a replayable source exactly once before the
// first MatchRow, which substitutes a concrete comparison value and
// downgrades the query to a plain equality test.
//
// A comparison value wrapped in "{{...}}" is an expression evaluated
// per row; the row's tagged values are in scope by tag name (hashtag
// stripped, "+" replaced by "_").
type RowQuery struct {
	Pattern *TagPattern
	Op      string
	Value   string

	isForm    string
	isNegated bool

	re      *regexp.Regexp
	program *vm.Program

	needsAggregate bool
	aggregateReady bool

	// Matching column indexes are memoised per column list; a row
	// carrying a different column list triggers a recompute, so one
	// query instance can serve rows from several datasets.
	indexes    []int
	indexedFor []*Column
}

var queryIsRE = regexp.MustCompile(`^\s*(.+?)\s+is\s+(.+?)\s*$`)
var queryOpRE = regexp.MustCompile(`^\s*([^!=~<>]+?)\s*(!=|!~|<=|>=|=|~|<|>)\s*(.*?)\s*$`)

// ParseRowQuery parses a row-query spec string. Malformed specs fail
// here, never during iteration. The operator form is tried first: no
// operator character can appear in a valid "is" spec, while a
// comparison value may well contain the word "is".
func ParseRowQuery(spec string) (*RowQuery, error) {
	if m := queryOpRE.FindStringSubmatch(spec); m != nil {
		pattern, err := ParseTagPattern(m[1])
		if err != nil {
			return nil, &QuerySpecError{Spec: spec, Reason: err.Error()}
		}
		q := &RowQuery{Pattern: pattern, Op: m[2], Value: m[3]}

		switch q.Op {
		case "~", "!~":
			re, err := regexp.Compile("(?i)" + q.Value)
			if err != nil {
				return nil, &QuerySpecError{Spec: spec, Reason: fmt.Sprintf("bad regular expression: %v", err)}
			}
			q.re = re
		}

		if inner, ok := formulaBody(q.Value); ok {
			program, err := expr.Compile(inner, expr.AllowUndefinedVariables())
			if err != nil {
				return nil, &QuerySpecError{Spec: spec, Reason: fmt.Sprintf("bad formula: %v", err)}
			}
			q.program = program
		}
		return q, nil
	}

	m := queryIsRE.FindStringSubmatch(spec)
	if m == nil {
		return nil, &QuerySpecError{Spec: spec, Reason: "expected <pattern> <op> <value>"}
	}
	pattern, err := ParseTagPattern(m[1])
	if err != nil {
		return nil, &QuerySpecError{Spec: spec, Reason: err.Error()}
	}
	form := strings.ToLower(m[2])
	negated := false
	if rest, ok := strings.CutPrefix(form, "not "); ok {
		negated = true
		form = strings.TrimSpace(rest)
	}
	switch form {
	case "empty", "number", "date", "min", "max":
	default:
		return nil, &QuerySpecError{Spec: spec, Reason: fmt.Sprintf("unknown test %q after 'is'", form)}
	}
	q := &RowQuery{
		Pattern:   pattern,
		Op:        "is",
		Value:     m[2],
		isForm:    form,
		isNegated: negated,
	}
	if form == "min" || form == "max" {
		q.needsAggregate = true
	}
	return q, nil
}

// ParseRowQueries parses a list of query specs. Specs are not split on
// commas, since comparison values may contain them.
func ParseRowQueries(specs ...string) ([]*RowQuery, error) {
	queries := make([]*RowQuery, 0, len(specs))
	for _, spec := range specs {
		if strings.TrimSpace(spec) == "" {
			continue
		}
		q, err := ParseRowQuery(spec)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, nil
}

// NeedsAggregate reports whether the query requires a CalcAggregate
// pre-pass before matching.
func (q *RowQuery) NeedsAggregate() bool {
	return q.needsAggregate
}

// CalcAggregate scans the whole source for the minimum or maximum
// value of the query's pattern and rewrites the query into a plain
// equality (or inequality, for the negated form) against it. Must run
// exactly once, against a replayable source, before any MatchRow call.
func (q *RowQuery) CalcAggregate(source Source) error {
	if !q.needsAggregate {
		return nil
	}
	it, err := source.Iterate()
	if err != nil {
		return err
	}
	best := ""
	found := false
	for {
		row, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		for _, v := range row.GetAll(q.Pattern) {
			if IsEmpty(v) {
				continue
			}
			if !found {
				best, found = v, true
				continue
			}
			cmp := compareValues(v, best)
			if (q.isForm == "min" && cmp < 0) || (q.isForm == "max" && cmp > 0) {
				best = v
			}
		}
	}
	q.Value = best
	if q.isNegated {
		q.Op = "!="
	} else {
		q.Op = "="
	}
	q.isForm = ""
	q.aggregateReady = true
	return nil
}

// MatchRow evaluates the predicate against a row. A query matches when
// any value in a matching column satisfies it.
func (q *RowQuery) MatchRow(row *Row) (bool, error) {
	if q.needsAggregate && !q.aggregateReady {
		return false, ErrAggregateNotCalculated
	}
	if !sameColumnList(q.indexedFor, row.Columns) {
		q.indexes = q.indexes[:0]
		for i, column := range row.Columns {
			if q.Pattern.Match(column) {
				q.indexes = append(q.indexes, i)
			}
		}
		q.indexedFor = row.Columns
	}

	if q.Op == "is" {
		return q.matchIs(row), nil
	}

	operand := q.Value
	if q.program != nil {
		result, err := expr.Run(q.program, formulaEnv(row))
		if err != nil {
			return false, fmt.Errorf("formula %q: %w", q.Value, err)
		}
		operand = formulaResult(result)
	}
	for _, i := range q.indexes {
		if q.matchValue(row.Value(i), operand) {
			return true, nil
		}
	}
	return false, nil
}

// matchIs handles the "is ..." test forms. "is empty" holds when every
// matching value is empty, or no column matches at all; the other
// forms hold when any matching value qualifies. "not" inverts.
func (q *RowQuery) matchIs(row *Row) bool {
	var result bool
	switch q.isForm {
	case "empty":
		result = true
		for _, i := range q.indexes {
			if !IsEmpty(row.Value(i)) {
				result = false
				break
			}
		}
	case "number":
		for _, i := range q.indexes {
			if IsNumber(row.Value(i)) {
				result = true
				break
			}
		}
	case "date":
		for _, i := range q.indexes {
			if IsDate(row.Value(i)) {
				result = true
				break
			}
		}
	}
	if q.isNegated {
		return !result
	}
	return result
}

func (q *RowQuery) matchValue(cell, operand string) bool {
	switch q.Op {
	case "~":
		return q.re.MatchString(NormaliseString(cell))
	case "!~":
		return !q.re.MatchString(NormaliseString(cell))
	}
	cmp := compareValues(cell, operand)
	switch q.Op {
	case "=":
		return cmp == 0
	case "!=":
		return cmp != 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}

// sameColumnList reports whether two rows share the same column list,
// by slice identity rather than content.
func sameColumnList(a, b []*Column) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}

// compareValues orders two cell values: numerically when both parse as
// numbers, by normalised date when both parse as dates, otherwise by
// normalised string.
func compareValues(a, b string) int {
	if na, ok := ParseNumber(a); ok {
		if nb, ok := ParseNumber(b); ok {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			default:
				return 0
			}
		}
	}
	if da, ok := NormaliseDate(a); ok {
		if db, ok := NormaliseDate(b); ok {
			return strings.Compare(da, db)
		}
	}
	return strings.Compare(NormaliseString(a), NormaliseString(b))
}

// formulaBody extracts the expression inside "{{...}}" wrapping, if
// present.
func formulaBody(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if strings.HasPrefix(v, "{{") && strings.HasSuffix(v, "}}") {
		return strings.TrimSpace(v[2 : len(v)-2]), true
	}
	return "", false
}

// formulaEnv exposes a row's tagged values to an expression: the first
// value per display tag, keyed with the hashtag stripped and "+"
// replaced by "_", as a number when the value parses as one.
func formulaEnv(row *Row) map[string]any {
	env := map[string]any{}
	for tag, value := range row.Dictionary() {
		key := strings.ReplaceAll(strings.TrimPrefix(tag, "#"), "+", "_")
		if _, seen := env[key]; seen {
			continue
		}
		if n, ok := ParseNumber(value); ok {
			env[key] = n
		} else {
			env[key] = value
		}
	}
	return env
}

// formulaResult renders an expression result back into cell-value form.
func formulaResult(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int:
		return FormatNumber(float64(t))
	case int64:
		return FormatNumber(float64(t))
	case float64:
		return FormatNumber(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
