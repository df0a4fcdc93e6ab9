package parser

import (
	"reflect"
	"regexp"

	"github.com/exprlang/dynlinq/pkg/aggregate"
	"github.com/exprlang/dynlinq/pkg/ir"
	"github.com/exprlang/dynlinq/pkg/promote"
	"github.com/exprlang/dynlinq/pkg/record"
	"github.com/exprlang/dynlinq/pkg/token"
	"github.com/exprlang/dynlinq/pkg/types"
)

// keywordKind discriminates what a keyword-table entry denotes
// (spec.md §3's "name → (TypeRef | SentinelIt | SentinelIif |
// SentinelNew | ConstantLiteral)").
type keywordKind int

const (
	kwType keywordKind = iota
	kwIt
	kwIif
	kwNew
	kwConst
)

type keywordEntry struct {
	kind  keywordKind
	typ   reflect.Type
	value interface{}
}

// symbolEntry is a resolved name → (ParameterRef | value) binding.
type symbolEntry struct {
	node *ir.Node // set when this name names a parameter
}

// state is one parse's mutable instance: everything spec.md §3 lists
// under "Parser state" except allowedTypes/records, which are shared,
// read-only Parser configuration.
type state struct {
	p *Parser

	lex   *token.Lexer
	tok   token.Token
	quote byte // quote char of the current StringLiteral token, 0 otherwise

	keywords map[string]keywordEntry
	symbols  map[string]symbolEntry
	extern   map[string]interface{}

	literals promote.LiteralText

	itStack []reflect.Type

	allowedTypes map[string]reflect.Type
	records      *record.Factory

	depth int
}

// CallOption configures a single Parse/ParseLambda call (values,
// externals); distinct from Option, which configures the Parser itself.
type CallOption func(*state)

// WithValues supplies spec.md §6's positional substitution array:
// values[i] resolves to "@i". If the final element is a
// map[string]interface{}, it is installed as externals instead of
// being bound to a positional name.
func WithValues(values ...interface{}) CallOption {
	return func(s *state) {
		if len(values) > 0 {
			if m, ok := values[len(values)-1].(map[string]interface{}); ok {
				for k, v := range m {
					s.extern[k] = v
				}
				values = values[:len(values)-1]
			}
		}
		for i, v := range values {
			s.symbols[positionalName(i)] = symbolEntry{node: constantOf(v)}
		}
	}
}

// WithExternals installs a string-keyed external value table, checked
// after symbols during identifier dispatch (spec.md §4.4).
func WithExternals(m map[string]interface{}) CallOption {
	return func(s *state) {
		for k, v := range m {
			s.extern[k] = v
		}
	}
}

func withNamedParams(params []ir.Parameter) CallOption {
	return func(s *state) {
		for _, p := range params {
			s.symbols[p.Name] = symbolEntry{node: &ir.Node{Kind: ir.KindParameter, Type: p.Type, ParamName: p.Name}}
		}
	}
}

func withInitialIt(t reflect.Type) CallOption {
	return func(s *state) { s.itStack = append(s.itStack, t) }
}

func positionalName(i int) string {
	return "@" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

func constantOf(v interface{}) *ir.Node {
	if v == nil {
		return &ir.Node{Kind: ir.KindConstant, Type: nil, Value: nil}
	}
	return &ir.Node{Kind: ir.KindConstant, Type: reflect.TypeOf(v), Value: v}
}

func (p *Parser) newState(expression string, opts ...CallOption) (*state, error) {
	allowed := make(map[string]reflect.Type, len(p.allowedTypes))
	for k, v := range p.allowedTypes {
		allowed[k] = v
	}

	s := &state{
		p:            p,
		lex:          token.New(expression),
		keywords:     defaultKeywords(allowed),
		symbols:      map[string]symbolEntry{},
		extern:       map[string]interface{}{},
		literals:     promote.LiteralText{},
		allowedTypes: allowed,
		records:      p.records,
	}
	for _, opt := range opts {
		opt(s)
	}
	// Re-seed type keywords in case a CallOption (none currently do, but
	// kept for symmetry with Parser-level allowedTypes extension) added
	// to s.allowedTypes after construction.
	for name, t := range s.allowedTypes {
		if _, exists := s.keywords[name]; !exists {
			s.keywords[name] = keywordEntry{kind: kwType, typ: t}
		}
	}

	if err := s.advance(); err != nil {
		return nil, err
	}
	return s, nil
}

func defaultKeywords(allowed map[string]reflect.Type) map[string]keywordEntry {
	kw := map[string]keywordEntry{
		"true":  {kind: kwConst, typ: reflect.TypeOf(false), value: true},
		"false": {kind: kwConst, typ: reflect.TypeOf(false), value: false},
		"null":  {kind: kwConst, typ: nil, value: nil},
		"it":    {kind: kwIt},
		"iif":   {kind: kwIif},
		"new":   {kind: kwNew},
	}
	for name, t := range allowed {
		kw[name] = keywordEntry{kind: kwType, typ: t}
	}
	return kw
}

// parseTopLevel parses a full expression and requires the End token to
// follow, per spec.md §4.4's expr := ternary grammar root.
func (s *state) parseTopLevel() (*ir.Node, error) {
	node, err := s.parseTernary()
	if err != nil {
		return nil, err
	}
	if s.tok.Kind != token.End {
		return nil, s.errorf(types.ErrSyntaxError, "unexpected token after expression")
	}
	return node, nil
}

// advance reads the next token into s.tok.
func (s *state) advance() error {
	tok, quote, err := s.lex.NextRich()
	if err != nil {
		return err
	}
	s.tok = tok
	s.quote = quote
	return nil
}

func (s *state) expect(k token.Kind, code types.ErrorCode, msg string) error {
	if s.tok.Kind != k {
		return s.errorf(code, msg)
	}
	return s.advance()
}

func (s *state) errorf(code types.ErrorCode, format string, args ...interface{}) error {
	return types.NewParseError(code, s.tok.Position, format, args...).WithToken(s.tok.Lexeme)
}

// enter/leave implement the recursion guard of spec.md §4.4 (the ladder
// recurses through nested parenthesized/aggregate-body expressions).
func (s *state) enter() error {
	s.depth++
	if s.p.maxDepth > 0 && s.depth > s.p.maxDepth {
		return s.errorf(types.ErrMaxDepthExceeded, "expression nesting exceeds max depth %d", s.p.maxDepth)
	}
	return nil
}

func (s *state) leave() { s.depth-- }

// pushIt enters a fresh iteration scope (an aggregate call's body),
// per spec.md §4.5.
func (s *state) pushIt(elemType reflect.Type) {
	s.itStack = append(s.itStack, elemType)
}

func (s *state) popIt() {
	s.itStack = s.itStack[:len(s.itStack)-1]
}

var itKRegexp = regexp.MustCompile(`^[iI][tT]_(\d+)$`)

// isAggregateName is a package-level alias of aggregate.IsAggregateName;
// identifiers.go calls aggregate.IsAggregateName directly.
var isAggregateName = aggregate.IsAggregateName
