// Package dynlinq parses a C#-family infix expression language —
// query-aggregate calls (Any, All, Where, FirstOrDefault, ...),
// new(a alias X, ...) tuple construction, is/as type-test/cast, and
// it/it_1/... sub-lambda scope references — into a typed expression
// tree against a reflect-based host type system, with full overload
// resolution and numeric/enum promotion.
//
// # Quick start
//
//	node, err := dynlinq.Parse(nil, "1 + 2 * 3")
//	v, err := ir.Eval(node, ir.NewScope(reflect.Value{}))
//
//	lambda, err := dynlinq.ParseLambdaOfIt(reflect.TypeOf(Person{}), reflect.TypeOf(false), "Age > 18")
//	v, err := ir.CallLambda(lambda.Node, ir.NewScope(reflect.Value{}), []reflect.Value{reflect.ValueOf(p)})
//
// For repeated parses of the same expression text, use a *parser.Parser
// directly (New, Parse) so the allowed-type table and record factory are
// configured once, or wrap calls in a pkg/cache.Cache keyed by source text.
package dynlinq

import (
	"fmt"
	"reflect"

	"github.com/exprlang/dynlinq/pkg/ir"
	"github.com/exprlang/dynlinq/pkg/parser"
	"github.com/exprlang/dynlinq/pkg/types"
)

// Version returns the current version of this module.
func Version() string {
	return "v0.1.0-dev"
}

var defaultParser = parser.New()

// Parse compiles a single expression against the default parser
// configuration (spec.md §6's Parse entry point). resultType, if
// non-nil, promotes the top-level result to it exactly.
func Parse(resultType reflect.Type, expression string, opts ...parser.CallOption) (*ir.Node, error) {
	return defaultParser.Parse(resultType, expression, opts...)
}

// ParseLambda compiles expression as a lambda over named parameters
// (spec.md §6's ParseLambda(parameters, resultType, expression, ...)).
func ParseLambda(paramTypes []reflect.Type, paramNames []string, resultType reflect.Type, expression string, opts ...parser.CallOption) (*ir.Lambda, error) {
	if len(paramTypes) != len(paramNames) {
		return nil, fmt.Errorf("dynlinq: ParseLambda: %d parameter types but %d names", len(paramTypes), len(paramNames))
	}
	params := make([]ir.Parameter, len(paramTypes))
	for i := range paramTypes {
		params[i] = ir.Parameter{Name: paramNames[i], Type: paramTypes[i]}
	}
	return defaultParser.ParseLambda(params, resultType, expression, opts...)
}

// ParseLambdaOfIt compiles expression as a lambda over a single
// anonymous parameter ("it") of itType (spec.md §6's single-parameter
// ParseLambda form).
func ParseLambdaOfIt(itType reflect.Type, resultType reflect.Type, expression string, opts ...parser.CallOption) (*ir.Lambda, error) {
	return defaultParser.ParseLambdaIt(itType, resultType, expression, opts...)
}

// ParseOrdering compiles a comma-separated orderby clause list, each
// selector evaluated over an implicit "it" of itType (spec.md §6's
// ParseOrdering entry point).
func ParseOrdering(expression string, itType reflect.Type, opts ...parser.CallOption) ([]types.Ordering, error) {
	return defaultParser.ParseOrdering(itType, expression, opts...)
}

// CreateClass mints (or returns the cached) anonymous record type for
// fields, without going through new(...) syntax (spec.md §6's
// record-factory entry).
func CreateClass(fields []types.DynamicProperty) (reflect.Type, error) {
	return defaultParser.CreateClass(fields)
}

// MustParse is like Parse but panics if expression cannot be compiled.
// It simplifies safe initialization of package-level expression values.
func MustParse(resultType reflect.Type, expression string, opts ...parser.CallOption) *ir.Node {
	node, err := Parse(resultType, expression, opts...)
	if err != nil {
		panic(fmt.Sprintf("dynlinq: Parse(%q): %v", expression, err))
	}
	return node
}
