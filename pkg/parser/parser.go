// Package parser implements spec.md §4.4: a recursive-descent parser
// over an explicit precedence ladder (ternary, or, and, relational,
// additive, multiplicative, unary, primary) producing a typed
// expression tree (package ir) against a reflect-based host type
// system (package hostkit), invoking the promotion engine and overload
// resolver at every operator and call site.
//
// Grounded on sandrolain-gosonata's pkg/parser, but rewritten from its
// Pratt/precedence-climbing loop into the explicit ladder this grammar
// calls for: the grammar is not table-driven the way JSONata's
// getPrecedence/parseInfix is, so a single generic loop can't produce it.
package parser

import (
	"log/slog"
	"reflect"
	"strings"

	"github.com/exprlang/dynlinq/pkg/hostkit"
	"github.com/exprlang/dynlinq/pkg/ir"
	"github.com/exprlang/dynlinq/pkg/promote"
	"github.com/exprlang/dynlinq/pkg/record"
	"github.com/exprlang/dynlinq/pkg/token"
	"github.com/exprlang/dynlinq/pkg/types"
	"github.com/google/uuid"
)

// Parser holds configuration shared across parses: the allowed-type
// table, the record factory, recursion guard, and logger. A Parser is
// safe for concurrent use — each Parse/ParseLambda call builds its own
// single-threaded state instance (spec.md §5: "a parse is a pure
// function of its inputs").
type Parser struct {
	allowedTypes map[string]reflect.Type
	records      *record.Factory
	maxDepth     int
	logger       *slog.Logger
}

// Option configures a Parser, mirroring sandrolain-gosonata's
// CompileOption functional-options pattern.
type Option func(*Parser)

// WithAllowedTypes extends the default allowed-type table with
// additional name→type bindings, for unqualified lookup, method targets,
// and constructor use (spec.md §3).
func WithAllowedTypes(extra map[string]reflect.Type) Option {
	return func(p *Parser) {
		for name, t := range extra {
			p.allowedTypes[strings.ToLower(name)] = t
		}
	}
}

// WithRecordFactory overrides the default process-wide record.Factory
// (useful for tests wanting a fresh, isolated cache).
func WithRecordFactory(f *record.Factory) Option {
	return func(p *Parser) { p.records = f }
}

// WithMaxDepth bounds recursive-descent nesting, failing parses deeper
// than depth with ErrMaxDepthExceeded instead of overflowing the Go
// call stack on adversarial input.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) { p.maxDepth = depth }
}

// WithLogger installs a structured logger for parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

var defaultRecords = record.New()

// New creates a Parser with the default allowed-type table (bool, the
// integer and floating types, decimal, char, string, object, guid, and
// the two math/conversion utility types) plus whatever Options extend
// or override. The default table has no DateTime or TimeSpan entry.
func New(opts ...Option) *Parser {
	p := &Parser{
		allowedTypes: defaultAllowedTypes(),
		records:      defaultRecords,
		maxDepth:     256,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

func defaultAllowedTypes() map[string]reflect.Type {
	return map[string]reflect.Type{
		"bool":    reflect.TypeOf(false),
		"byte":    reflect.TypeOf(byte(0)),
		"sbyte":   reflect.TypeOf(int8(0)),
		"short":   reflect.TypeOf(int16(0)),
		"ushort":  reflect.TypeOf(uint16(0)),
		"int":     reflect.TypeOf(int32(0)),
		"uint":    reflect.TypeOf(uint32(0)),
		"long":    reflect.TypeOf(int64(0)),
		"ulong":   reflect.TypeOf(uint64(0)),
		"float":   reflect.TypeOf(float32(0)),
		"double":  reflect.TypeOf(float64(0)),
		"decimal": reflect.TypeOf(hostkit.Decimal(0)),
		"char":    reflect.TypeOf(hostkit.Char(0)),
		"string":  reflect.TypeOf(""),
		"object":  reflect.TypeOf((*interface{})(nil)).Elem(),
		"guid":    reflect.TypeOf(uuid.UUID{}),
		"math":    reflect.TypeOf(hostkit.MathUtil{}),
		"convert": reflect.TypeOf(hostkit.ConvertUtil{}),
	}
}

// Parse implements spec.md §6's single-expression entry point.
// resultType, if non-nil, promotes the top-level result to it exactly.
func (p *Parser) Parse(resultType reflect.Type, expression string, opts ...CallOption) (*ir.Node, error) {
	st, err := p.newState(expression, opts...)
	if err != nil {
		return nil, err
	}
	node, err := st.parseTopLevel()
	if err != nil {
		return nil, err
	}
	if resultType != nil {
		return promoteResult(node, resultType, st.literals)
	}
	return node, nil
}

// ParseLambda wraps Parse's result in a lambda over named parameters
// (spec.md §6's ParseLambda(parameters, resultType, expression, ...)).
func (p *Parser) ParseLambda(params []ir.Parameter, resultType reflect.Type, expression string, opts ...CallOption) (*ir.Lambda, error) {
	opts = append(opts, withNamedParams(params))
	st, err := p.newState(expression, opts...)
	if err != nil {
		return nil, err
	}
	body, err := st.parseTopLevel()
	if err != nil {
		return nil, err
	}
	if resultType != nil {
		body, err = promoteResult(body, resultType, st.literals)
		if err != nil {
			return nil, err
		}
	}
	return &ir.Lambda{
		Node:   &ir.Node{Kind: ir.KindLambda, Type: reflect.FuncOf(paramTypes(params), []reflect.Type{body.Type}, false), Params: params, Body: body},
		Params: params,
	}, nil
}

// ParseLambdaIt is spec.md §6's single-anonymous-parameter ParseLambda
// form: iterType is pushed as the implicit "it".
func (p *Parser) ParseLambdaIt(iterType reflect.Type, resultType reflect.Type, expression string, opts ...CallOption) (*ir.Lambda, error) {
	opts = append(opts, withInitialIt(iterType))
	st, err := p.newState(expression, opts...)
	if err != nil {
		return nil, err
	}
	body, err := st.parseTopLevel()
	if err != nil {
		return nil, err
	}
	if resultType != nil {
		body, err = promoteResult(body, resultType, st.literals)
		if err != nil {
			return nil, err
		}
	}
	params := []ir.Parameter{{Name: "", Type: iterType}}
	return &ir.Lambda{
		Node:   &ir.Node{Kind: ir.KindLambda, Type: reflect.FuncOf([]reflect.Type{iterType}, []reflect.Type{body.Type}, false), Params: params, Body: body},
		Params: params,
	}, nil
}

func paramTypes(params []ir.Parameter) []reflect.Type {
	out := make([]reflect.Type, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}

func promoteResult(node *ir.Node, target reflect.Type, literals promote.LiteralText) (*ir.Node, error) {
	return promote.Expression(node, target, true, literals)
}

// ParseOrdering implements spec.md §6's ParseOrdering entry point: a
// comma-separated list of "selector [asc|ascending|desc|descending]"
// clauses, each selector compiled over an implicit "it" of itType.
func (p *Parser) ParseOrdering(itType reflect.Type, expression string, opts ...CallOption) ([]types.Ordering, error) {
	opts = append(opts, withInitialIt(itType))
	st, err := p.newState(expression, opts...)
	if err != nil {
		return nil, err
	}
	var out []types.Ordering
	for {
		start := st.tok.Position
		sel, err := st.parseTernary()
		if err != nil {
			return nil, err
		}
		ascending := true
		switch {
		case st.isWordOp("asc") || st.isWordOp("ascending"):
			if err := st.advance(); err != nil {
				return nil, err
			}
		case st.isWordOp("desc") || st.isWordOp("descending"):
			ascending = false
			if err := st.advance(); err != nil {
				return nil, err
			}
		}
		out = append(out, types.Ordering{Source: sourceSlice(expression, start, st.tok.Position), Selector: sel, Ascending: ascending})
		if st.tok.Kind == token.Comma {
			if err := st.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if st.tok.Kind != token.End {
		return nil, st.errorf(types.ErrSyntaxError, "unexpected token after ordering clause")
	}
	return out, nil
}

func sourceSlice(s string, start, end int) string {
	if start < 0 || end > len(s) || start > end {
		return ""
	}
	return strings.TrimSpace(s[start:end])
}

// CreateClass exposes the record factory for callers that want an
// anonymous type directly, without going through `new(...)` syntax
// (spec.md §6's "Record-factory entry").
func (p *Parser) CreateClass(fields []types.DynamicProperty) (reflect.Type, error) {
	return p.records.CreateClass(fields)
}
