// Package query implements spec.md §1's "query surface": thin
// Where/OrderBy/Select wrappers translating a parsed expression into
// calls against a query provider. This module has no actual external
// .NET IQueryable provider to target, so Queryable's provider is its
// own ir.Eval interpreter running directly against an in-memory Go
// slice — the same resolution SPEC_FULL.md §1 makes for the
// expression-tree IR itself, applied one layer up.
package query

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/exprlang/dynlinq/pkg/ir"
	"github.com/exprlang/dynlinq/pkg/parser"
)

// Queryable wraps an in-memory slice with the parser configuration
// needed to compile and run Where/OrderBy/Select clauses against it.
// Each call returns a new Queryable; the receiver is never mutated,
// mirroring a real IQueryable's deferred, composable query shape.
type Queryable struct {
	elemType reflect.Type
	values   reflect.Value
	parser   *parser.Parser
	logger   *slog.Logger
}

// Option configures a Queryable at construction time.
type Option func(*Queryable)

// WithParser installs a pre-configured *parser.Parser (e.g. one with
// extra allowed types) instead of a default parser.New().
func WithParser(p *parser.Parser) Option {
	return func(q *Queryable) { q.parser = p }
}

// WithLogger installs a structured logger, defaulting to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queryable) { q.logger = logger }
}

// New wraps values (a Go slice) as a Queryable over its element type.
func New(values interface{}, opts ...Option) (*Queryable, error) {
	v := reflect.ValueOf(values)
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("query: New requires a slice, got %T", values)
	}
	q := &Queryable{elemType: v.Type().Elem(), values: v, parser: parser.New()}
	for _, opt := range opts {
		opt(q)
	}
	if q.logger == nil {
		q.logger = slog.Default()
	}
	return q, nil
}

// ElementType returns the type of one element of the current result set.
func (q *Queryable) ElementType() reflect.Type { return q.elemType }

// Values returns the current result set as a reflect.Value slice.
func (q *Queryable) Values() reflect.Value { return q.values }

// Where filters the result set to elements for which predicate
// evaluates true, compiled with an implicit "it" of the element type.
func (q *Queryable) Where(predicate string, opts ...parser.CallOption) (*Queryable, error) {
	lambda, err := q.parser.ParseLambdaIt(q.elemType, reflect.TypeOf(false), predicate, opts...)
	if err != nil {
		return nil, err
	}
	q.logger.Debug("query.Where", "predicate", predicate, "elemType", q.elemType)

	out := reflect.MakeSlice(q.values.Type(), 0, q.values.Len())
	for i := 0; i < q.values.Len(); i++ {
		elem := q.values.Index(i)
		v, err := ir.CallLambda(lambda.Node, ir.NewScope(reflect.Value{}), []reflect.Value{elem})
		if err != nil {
			return nil, err
		}
		if v.IsValid() && v.Kind() == reflect.Bool && v.Bool() {
			out = reflect.Append(out, elem)
		}
	}
	return &Queryable{elemType: q.elemType, values: out, parser: q.parser, logger: q.logger}, nil
}

// Select projects each element through selector, compiled with an
// implicit "it" of the element type; the result's element type is
// whatever the selector expression resolves to.
func (q *Queryable) Select(selector string, opts ...parser.CallOption) (*Queryable, error) {
	lambda, err := q.parser.ParseLambdaIt(q.elemType, nil, selector, opts...)
	if err != nil {
		return nil, err
	}
	bodyType := lambda.Node.Body.Type
	q.logger.Debug("query.Select", "selector", selector, "resultType", bodyType)

	out := reflect.MakeSlice(reflect.SliceOf(bodyType), 0, q.values.Len())
	for i := 0; i < q.values.Len(); i++ {
		elem := q.values.Index(i)
		v, err := ir.CallLambda(lambda.Node, ir.NewScope(reflect.Value{}), []reflect.Value{elem})
		if err != nil {
			return nil, err
		}
		out = reflect.Append(out, v)
	}
	return &Queryable{elemType: bodyType, values: out, parser: q.parser, logger: q.logger}, nil
}

// OrderBy sorts the result set (stably) by a comma-separated list of
// "selector [asc|desc]" clauses, each compiled with an implicit "it" of
// the element type, applied in listed order as tie-breaks.
func (q *Queryable) OrderBy(ordering string, opts ...parser.CallOption) (*Queryable, error) {
	clauses, err := q.parser.ParseOrdering(q.elemType, ordering, opts...)
	if err != nil {
		return nil, err
	}
	q.logger.Debug("query.OrderBy", "ordering", ordering, "clauses", len(clauses))

	out := reflect.MakeSlice(q.values.Type(), q.values.Len(), q.values.Len())
	reflect.Copy(out, q.values)

	indices := make([]int, out.Len())
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		a, b := out.Index(indices[i]), out.Index(indices[j])
		for _, c := range clauses {
			node := c.Selector.(*ir.Node)
			va, errA := ir.CallLambda(&ir.Node{Kind: ir.KindLambda, Params: []ir.Parameter{{Type: q.elemType}}, Body: node}, ir.NewScope(reflect.Value{}), []reflect.Value{a})
			vb, errB := ir.CallLambda(&ir.Node{Kind: ir.KindLambda, Params: []ir.Parameter{{Type: q.elemType}}, Body: node}, ir.NewScope(reflect.Value{}), []reflect.Value{b})
			if errA != nil || errB != nil {
				continue
			}
			cmp := compareValues(va, vb)
			if cmp == 0 {
				continue
			}
			if !c.Ascending {
				cmp = -cmp
			}
			return cmp < 0
		}
		return false
	})

	sorted := reflect.MakeSlice(q.values.Type(), out.Len(), out.Len())
	for i, idx := range indices {
		sorted.Index(i).Set(out.Index(idx))
	}
	return &Queryable{elemType: q.elemType, values: sorted, parser: q.parser, logger: q.logger}, nil
}

// compareValues orders two scalar reflect.Values the way ir's own
// comparison evaluation does (string, then numeric, then fmt fallback),
// without importing ir's unexported helpers — the query provider owns
// its own ordering policy, independent of expression evaluation.
func compareValues(a, b reflect.Value) int {
	if a.Kind() == reflect.String && b.Kind() == reflect.String {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		default:
			return 0
		}
	}
	af, aok := floatOf(a)
	bf, bok := floatOf(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	sa, sb := fmt.Sprintf("%v", valueOrNil(a)), fmt.Sprintf("%v", valueOrNil(b))
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

func valueOrNil(v reflect.Value) interface{} {
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

func floatOf(v reflect.Value) (float64, bool) {
	if !v.IsValid() {
		return 0, false
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}
