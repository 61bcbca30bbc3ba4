package intent

import (
	"fmt"
	"regexp"
	"strconv"
)

// Op is a predicate comparison operator.
type Op string

// Supported operators.
const (
	OpGreaterThan Op = ">"
	OpLessThan    Op = "<"
	OpContains    Op = "@>"
)

var fieldPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Predicate is a single structured constraint on a relational record.
// Numeric predicates compare a column against a bound; containment predicates
// require a text[] column to include a tag.
type Predicate struct {
	field  string
	op     Op
	number float64
	tag    string
}

// NewGreaterThan creates a `field > bound` predicate.
func NewGreaterThan(field string, bound float64) (Predicate, error) {
	return newNumeric(field, OpGreaterThan, bound)
}

// NewLessThan creates a `field < bound` predicate.
func NewLessThan(field string, bound float64) (Predicate, error) {
	return newNumeric(field, OpLessThan, bound)
}

// NewContains creates a `field @> ARRAY['tag']` predicate.
func NewContains(field, tag string) (Predicate, error) {
	if err := checkField(field); err != nil {
		return Predicate{}, err
	}
	if tag == "" {
		return Predicate{}, fmt.Errorf("tag is required for field %q", field)
	}
	return Predicate{field: field, op: OpContains, tag: tag}, nil
}

func newNumeric(field string, op Op, bound float64) (Predicate, error) {
	if err := checkField(field); err != nil {
		return Predicate{}, err
	}
	return Predicate{field: field, op: op, number: bound}, nil
}

// Field names are interpolated into SQL, only the value is bound.
func checkField(field string) error {
	if !fieldPattern.MatchString(field) {
		return fmt.Errorf("invalid predicate field %q", field)
	}
	return nil
}

func mustPredicate(p Predicate, err error) Predicate {
	if err != nil {
		panic(err)
	}
	return p
}

// Field returns the column name.
func (p Predicate) Field() string { return p.field }

// Op returns the operator.
func (p Predicate) Op() Op { return p.op }

// Number returns the numeric bound of a comparison predicate.
func (p Predicate) Number() float64 { return p.number }

// Tag returns the required tag of a containment predicate.
func (p Predicate) Tag() string { return p.tag }

// IsContains reports whether this is an array containment predicate.
func (p Predicate) IsContains() bool { return p.op == OpContains }

// String renders the predicate in its literal SQL form, e.g. `calories > 500`.
func (p Predicate) String() string {
	if p.IsContains() {
		return fmt.Sprintf("%s @> ARRAY['%s']", p.field, p.tag)
	}
	return fmt.Sprintf("%s %s %s", p.field, p.op, strconv.FormatFloat(p.number, 'f', -1, 64))
}

// Clause returns a parameterised SQL clause and its bind value.
// Containment values are returned as a []string; the caller adapts them to the driver.
func (p Predicate) Clause() (string, any) {
	if p.IsContains() {
		return p.field + " @> ?", []string{p.tag}
	}
	return fmt.Sprintf("%s %s ?", p.field, p.op), p.number
}

// Stricter reports whether p bounds the same field in the same direction as q and
// excludes strictly more values.
func (p Predicate) Stricter(q Predicate) bool {
	if p.field != q.field || p.op != q.op || p.IsContains() {
		return false
	}
	switch p.op {
	case OpGreaterThan:
		return p.number > q.number
	case OpLessThan:
		return p.number < q.number
	default:
		return false
	}
}
