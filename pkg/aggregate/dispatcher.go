// Package aggregate implements spec.md §4.7: mapping a query-aggregate
// identifier (Any, All, Where, FirstOrDefault, ...) to a fixed calling
// convention and result type, given the element type of the enumerable
// receiver it is dispatched against.
package aggregate

import (
	"reflect"

	"github.com/exprlang/dynlinq/pkg/ir"
)

// ArgKind classifies what, if anything, an aggregate form's single
// optional argument must be.
type ArgKind int

const (
	ArgNone     ArgKind = iota // no body: Any(), Count(), Distinct(), ...
	ArgBool                    // predicate body, promoted to bool: Where(p), Any(p), All(p)
	ArgAny                     // selector body of any type: Select(f), Min(f), Max(f), GroupBy(f), SelectMany(f)
	ArgNumeric                 // numeric selector body: Sum(f), Average(f)
	ArgContains                // Contains(x): x is numeric or string, evaluated once under a pushed "it" frame rather than per element
)

// Result classifies how a form's result type is derived from the
// element type (and, for Min/Max/Sum/Average/Select, the body's type).
type Result int

const (
	ResultBool             Result = iota // Any, All, Contains
	ResultInt                            // Count
	ResultElement                        // Where, First, FirstOrDefault, Distinct, Union, Concat
	ResultBody                           // Min(f), Max(f) — the body expression's type
	ResultNumeric                        // Sum, Average — follows the body's numeric type (nullable-preserving)
	ResultEnumerableOfBody               // Select, SelectMany (flattened when the body is a slice), GroupBy ([]ir.Group)
)

// Form is one entry of the fixed signature table of spec.md §4.7.
type Form struct {
	Name   string
	Arg    ArgKind
	Result Result
}

// Table is keyed by (name, hasArg): the spec lists distinct forms for a
// name with and without a body (e.g. "Any"/0 vs "Any"/1).
type key struct {
	Name   string
	HasArg bool
}

var table = map[key]Form{
	{"Where", true}:           {"Where", ArgBool, ResultElement},
	{"Any", false}:            {"Any", ArgNone, ResultBool},
	{"Any", true}:             {"Any", ArgBool, ResultBool},
	{"All", true}:             {"All", ArgBool, ResultBool},
	{"Count", false}:          {"Count", ArgNone, ResultInt},
	{"Count", true}:           {"Count", ArgBool, ResultInt},
	{"First", false}:          {"First", ArgNone, ResultElement},
	{"First", true}:           {"First", ArgBool, ResultElement},
	{"FirstOrDefault", false}: {"FirstOrDefault", ArgNone, ResultElement},
	{"FirstOrDefault", true}:  {"FirstOrDefault", ArgBool, ResultElement},
	{"Min", true}:             {"Min", ArgAny, ResultBody},
	{"Max", true}:             {"Max", ArgAny, ResultBody},
	{"Sum", true}:             {"Sum", ArgNumeric, ResultNumeric},
	{"Average", true}:         {"Average", ArgNumeric, ResultNumeric},
	{"Contains", true}:        {"Contains", ArgContains, ResultBool},
	{"Select", true}:          {"Select", ArgAny, ResultEnumerableOfBody},
	{"SelectMany", true}:      {"SelectMany", ArgAny, ResultEnumerableOfBody},
	{"GroupBy", true}:         {"GroupBy", ArgAny, ResultEnumerableOfBody},
	{"Distinct", false}:       {"Distinct", ArgNone, ResultElement},
	{"Distinct", true}:        {"Distinct", ArgBool, ResultElement},
	{"Union", false}:          {"Union", ArgNone, ResultElement},
	{"Union", true}:           {"Union", ArgBool, ResultElement},
	{"Concat", false}:         {"Concat", ArgNone, ResultElement},
	{"Concat", true}:          {"Concat", ArgBool, ResultElement},
}

// Lookup finds the form matching name with the given argument presence.
// Case-sensitive: JSONata-style case folding does not apply to this
// grammar's aggregate names (they are ordinary host method names).
func Lookup(name string, hasArg bool) (Form, bool) {
	f, ok := table[key{name, hasArg}]
	return f, ok
}

// IsAggregateName reports whether name matches any arity of the table,
// used by the parser to decide whether aggregate dispatch preempts
// ordinary member-access resolution (spec.md §4.4/§9).
func IsAggregateName(name string) bool {
	_, a := table[key{name, false}]
	_, b := table[key{name, true}]
	return a || b
}

// ResultType computes the call's result type given the element type and,
// where relevant, the body expression's resolved type.
func ResultType(f Form, elemType, bodyType reflect.Type) reflect.Type {
	switch f.Result {
	case ResultBool:
		return reflect.TypeOf(false)
	case ResultInt:
		return reflect.TypeOf(0)
	case ResultElement:
		if IsSingleElement(f) {
			return elemType
		}
		return reflect.SliceOf(elemType)
	case ResultBody:
		return bodyType
	case ResultNumeric:
		return bodyType
	case ResultEnumerableOfBody:
		if f.Name == "GroupBy" {
			return reflect.SliceOf(reflect.TypeOf(ir.Group{}))
		}
		if f.Name == "SelectMany" && bodyType != nil && (bodyType.Kind() == reflect.Slice || bodyType.Kind() == reflect.Array) {
			return reflect.SliceOf(bodyType.Elem())
		}
		return reflect.SliceOf(bodyType)
	default:
		return elemType
	}
}

// singleElementForms are the forms whose result is a single element of
// elemType rather than a slice of it, despite sharing ResultElement's
// classification at the table level (First/FirstOrDefault only).
var singleElementForms = map[string]bool{"First": true, "FirstOrDefault": true}

// IsSingleElement reports whether f returns one elemType, not []elemType.
func IsSingleElement(f Form) bool { return singleElementForms[f.Name] }
