package parser

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/exprlang/dynlinq/pkg/aggregate"
	"github.com/exprlang/dynlinq/pkg/hostkit"
	"github.com/exprlang/dynlinq/pkg/ir"
	"github.com/exprlang/dynlinq/pkg/overload"
	"github.com/exprlang/dynlinq/pkg/promote"
	"github.com/exprlang/dynlinq/pkg/token"
	"github.com/exprlang/dynlinq/pkg/types"
	"github.com/google/uuid"
)

// typeAliases maps common host-style dotted type names (as seen after
// "is"/"as", e.g. "System.String") onto this module's short allowed-type
// names, so spec.md §8 scenario 5 ("resource is System.String") resolves
// without requiring every possible fully-qualified spelling in
// allowedTypes itself.
var typeAliases = map[string]string{
	"string":  "string",
	"boolean": "bool",
	"bool":    "bool",
	"int32":   "int",
	"int":     "int",
	"int64":   "long",
	"long":    "long",
	"uint32":  "uint",
	"uint64":  "ulong",
	"int16":   "short",
	"uint16":  "ushort",
	"byte":    "byte",
	"sbyte":   "sbyte",
	"double":  "double",
	"single":  "float",
	"float":   "float",
	"decimal": "decimal",
	"char":    "char",
	"object":  "object",
	"guid":    "guid",
}

type staticMember struct {
	isFunc bool
	fn     reflect.Value
	val    interface{}
}

var staticMembers = map[reflect.Type]map[string]staticMember{
	reflect.TypeOf(uuid.UUID{}): {
		"NewGuid": {isFunc: true, fn: reflect.ValueOf(uuid.New)},
		"Empty":   {isFunc: false, val: uuid.UUID{}},
	},
}

func (s *state) lookupType(name string) (reflect.Type, bool) {
	lower := strings.ToLower(name)
	if t, ok := s.allowedTypes[lower]; ok {
		return t, true
	}
	if canon, ok := typeAliases[lower]; ok {
		if t, ok := s.allowedTypes[canon]; ok {
			return t, true
		}
	}
	return nil, false
}

// parseQualType consumes identifier ('.' identifier)* and resolves the
// dotted name to a host type, taking the last segment (spec.md §4.4's
// qualType), followed by an optional '?' nullable lift.
func (s *state) parseQualType() (reflect.Type, error) {
	if s.tok.Kind != token.Identifier {
		return nil, s.errorf(types.ErrIdentifierExpected, "expected type name")
	}
	last := s.tok.Lexeme
	pos := s.tok.Position
	if err := s.advance(); err != nil {
		return nil, err
	}
	for s.tok.Kind == token.Dot {
		if err := s.advance(); err != nil {
			return nil, err
		}
		if s.tok.Kind != token.Identifier {
			return nil, s.errorf(types.ErrIdentifierExpected, "expected identifier after '.' in type name")
		}
		last = s.tok.Lexeme
		if err := s.advance(); err != nil {
			return nil, err
		}
	}
	t, ok := s.lookupType(last)
	if !ok {
		return nil, types.NewParseError(types.ErrUnknownIdentifier, pos, "unknown type %q", last)
	}
	if s.tok.Kind == token.Question {
		if err := s.advance(); err != nil {
			return nil, err
		}
		if isReferenceType(t) || hostkit.IsNullable(t) {
			return nil, types.NewParseError(types.ErrTypeHasNoNullableForm, pos, "%s has no nullable form", t)
		}
		t = hostkit.NullableOf(t)
	}
	return t, nil
}

// parsePrimarySuffixed is spec.md §4.4 level 7's
// primary-suffixed := primary ('.' member | '[' args ']')*.
func (s *state) parsePrimarySuffixed() (*ir.Node, error) {
	node, err := s.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch s.tok.Kind {
		case token.Dot:
			if err := s.advance(); err != nil {
				return nil, err
			}
			node, err = s.parseMemberAccess(node)
			if err != nil {
				return nil, err
			}
		case token.LBracket:
			if err := s.advance(); err != nil {
				return nil, err
			}
			idx, err := s.parseTernary()
			if err != nil {
				return nil, err
			}
			if err := s.expect(token.RBracket, types.ErrCloseBracketOrCommaExpected, "expected ']'"); err != nil {
				return nil, err
			}
			node, err = s.buildIndex(node, idx)
			if err != nil {
				return nil, err
			}
		default:
			return node, nil
		}
	}
}

func (s *state) buildIndex(recv, idx *ir.Node) (*ir.Node, error) {
	elemType := recv.Type
	if elemType != nil && (elemType.Kind() == reflect.Slice || elemType.Kind() == reflect.Array) {
		elemType = elemType.Elem()
	}
	pidx, err := promote.Expression(idx, reflect.TypeOf(int32(0)), false, s.literals)
	if err != nil {
		return nil, types.NewParseError(types.ErrInvalidIndex, idx.Position, "index must be an integer")
	}
	return &ir.Node{Kind: ir.KindIndex, Type: elemType, Receiver: recv, Index: pidx, Position: recv.Position}, nil
}

// parsePrimary is spec.md §4.4 level 7's primary production.
func (s *state) parsePrimary() (*ir.Node, error) {
	switch s.tok.Kind {
	case token.LParen:
		if err := s.advance(); err != nil {
			return nil, err
		}
		e, err := s.parseTernary()
		if err != nil {
			return nil, err
		}
		if err := s.expect(token.RParen, types.ErrCloseParenOrOperatorExpected, "expected ')'"); err != nil {
			return nil, err
		}
		return e, nil
	case token.StringLiteral:
		return s.parseStringLiteral()
	case token.IntegerLiteral, token.RealLiteral:
		text := s.tok.Lexeme
		pos := s.tok.Position
		isReal := s.tok.Kind == token.RealLiteral
		if err := s.advance(); err != nil {
			return nil, err
		}
		return s.numberLiteralFromText(text, pos, isReal)
	case token.Identifier:
		return s.parseIdentifierForm()
	default:
		return nil, s.errorf(types.ErrExpressionExpected, "expected expression")
	}
}

func (s *state) parseStringLiteral() (*ir.Node, error) {
	text := s.tok.Lexeme
	pos := s.tok.Position
	quote := s.quote
	if err := s.advance(); err != nil {
		return nil, err
	}
	runes := []rune(text)
	if quote == '\'' && len(runes) == 1 {
		node := &ir.Node{Kind: ir.KindConstant, Type: reflect.TypeOf(hostkit.Char(0)), Value: hostkit.Char(runes[0]), Position: pos}
		s.literals[node] = text
		return node, nil
	}
	node := &ir.Node{Kind: ir.KindConstant, Type: reflect.TypeOf(""), Value: text, Position: pos}
	s.literals[node] = text
	return node, nil
}

func (s *state) numberLiteralFromText(text string, pos int, isReal bool) (*ir.Node, error) {
	if isReal {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, types.NewParseError(types.ErrInvalidRealLiteral, pos, "invalid real literal %q", text)
		}
		node := &ir.Node{Kind: ir.KindConstant, Type: reflect.TypeOf(float64(0)), Value: v, Position: pos}
		s.literals[node] = text
		return node, nil
	}
	if v, err := strconv.ParseInt(text, 10, 32); err == nil {
		node := &ir.Node{Kind: ir.KindConstant, Type: reflect.TypeOf(int32(0)), Value: int32(v), Position: pos}
		s.literals[node] = text
		return node, nil
	}
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		node := &ir.Node{Kind: ir.KindConstant, Type: reflect.TypeOf(int64(0)), Value: v, Position: pos}
		s.literals[node] = text
		return node, nil
	}
	v, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return nil, types.NewParseError(types.ErrInvalidIntegerLiteral, pos, "invalid integer literal %q", text)
	}
	node := &ir.Node{Kind: ir.KindConstant, Type: reflect.TypeOf(uint64(0)), Value: v, Position: pos}
	s.literals[node] = text
	return node, nil
}

var itKeyword = itKRegexp

// parseIdentifierForm implements spec.md §4.4's "Identifier dispatch"
// list (a)-(d), in order.
func (s *state) parseIdentifierForm() (*ir.Node, error) {
	lexeme := s.tok.Lexeme
	pos := s.tok.Position

	// (a) it_<idx> parent-iteration reference.
	if m := itKeyword.FindStringSubmatch(lexeme); m != nil {
		k, _ := strconv.Atoi(m[1])
		if err := s.advance(); err != nil {
			return nil, err
		}
		t, ok := s.itType(k)
		if !ok {
			return nil, types.NewParseError(types.ErrNoItInScope, pos, "it_%d not in scope", k)
		}
		return &ir.Node{Kind: ir.KindParameter, Type: t, IsIt: true, ItDepth: k, Position: pos}, nil
	}

	// (b) keyword table.
	if kw, ok := s.keywords[strings.ToLower(lexeme)]; ok {
		switch kw.kind {
		case kwType:
			if err := s.advance(); err != nil {
				return nil, err
			}
			return s.parseTypeAccess(kw.typ, pos)
		case kwIt:
			if err := s.advance(); err != nil {
				return nil, err
			}
			t, ok := s.itType(0)
			if !ok {
				return nil, types.NewParseError(types.ErrNoItInScope, pos, "'it' not in scope")
			}
			return &ir.Node{Kind: ir.KindParameter, Type: t, IsIt: true, ItDepth: 0, Position: pos}, nil
		case kwIif:
			if err := s.advance(); err != nil {
				return nil, err
			}
			return s.parseIif(pos)
		case kwNew:
			if err := s.advance(); err != nil {
				return nil, err
			}
			return s.parseNew(pos)
		case kwConst:
			if err := s.advance(); err != nil {
				return nil, err
			}
			return &ir.Node{Kind: ir.KindConstant, Type: kw.typ, Value: kw.value, Position: pos}, nil
		}
	}

	// (c) symbols, then externals.
	if sym, ok := s.symbols[lexeme]; ok {
		if err := s.advance(); err != nil {
			return nil, err
		}
		return s.maybeInvokeLambdaValue(sym.node, pos)
	}
	if v, ok := s.extern[lexeme]; ok {
		if err := s.advance(); err != nil {
			return nil, err
		}
		return s.maybeInvokeLambdaValue(constantOf(v), pos)
	}

	// (d) fallback: member access on the implicit "it" receiver.
	t, ok := s.itType(0)
	if !ok {
		return nil, types.NewParseError(types.ErrUnknownIdentifier, pos, "unknown identifier %q", lexeme)
	}
	recv := &ir.Node{Kind: ir.KindParameter, Type: t, IsIt: true, ItDepth: 0, Position: pos}
	return s.parseMemberAccess(recv)
}

// maybeInvokeLambdaValue handles spec.md §4.4(c)'s "if the value is
// itself a lambda, the token is consumed as a lambda invocation" —
// relevant for externals/values holding a Go function value.
func (s *state) maybeInvokeLambdaValue(node *ir.Node, pos int) (*ir.Node, error) {
	if node.Type != nil && node.Type.Kind() == reflect.Func && s.tok.Kind == token.LParen {
		args, err := s.parseArgList()
		if err != nil {
			return nil, err
		}
		if node.Type.NumIn() != len(args) {
			return nil, types.NewParseError(types.ErrArgsIncompatibleWithLambda, pos, "lambda expects %d argument(s), got %d", node.Type.NumIn(), len(args))
		}
		promoted := make([]*ir.Node, len(args))
		for i, a := range args {
			p, err := promote.Expression(a, node.Type.In(i), false, s.literals)
			if err != nil {
				return nil, err
			}
			promoted[i] = p
		}
		var resultType reflect.Type
		if node.Type.NumOut() > 0 {
			resultType = node.Type.Out(0)
		}
		return &ir.Node{Kind: ir.KindCall, Type: resultType, Args: promoted, Func: reflect.ValueOf(node.Value), Position: pos}, nil
	}
	return node, nil
}

// itType returns the type of the k-th element below the top of itStack
// (k=0 is the current "it"), per spec.md §4.5.
func (s *state) itType(k int) (reflect.Type, bool) {
	idx := len(s.itStack) - 1 - k
	if idx < 0 || idx >= len(s.itStack) {
		return nil, false
	}
	return s.itStack[idx], true
}

// parseTypeAccess implements spec.md §4.4's "Type access": optional '?'
// lift, then a call on '(' or static member on '.'. A call with exactly
// one argument becomes a conversion (promote.GenerateConversion); the
// type's declared constructors are not searched, and any other argument
// count fails with ErrNoMatchingConstructor.
func (s *state) parseTypeAccess(t reflect.Type, pos int) (*ir.Node, error) {
	if s.tok.Kind == token.Question {
		if err := s.advance(); err != nil {
			return nil, err
		}
		if isReferenceType(t) || hostkit.IsNullable(t) {
			return nil, types.NewParseError(types.ErrTypeHasNoNullableForm, pos, "%s has no nullable form", t)
		}
		t = hostkit.NullableOf(t)
	}

	switch s.tok.Kind {
	case token.LParen:
		args, err := s.parseArgList()
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			conv, err := promote.GenerateConversion(args[0], t)
			if err == nil {
				return conv, nil
			}
			return nil, err
		}
		return nil, types.NewParseError(types.ErrNoMatchingConstructor, pos, "no constructor on %s accepting %d argument(s)", t, len(args))
	case token.Dot:
		if err := s.advance(); err != nil {
			return nil, err
		}
		return s.parseStaticMember(t, pos)
	default:
		return nil, s.errorf(types.ErrDotOrOpenParenExpected, "expected '.' or '(' after type name")
	}
}

func (s *state) parseStaticMember(t reflect.Type, pos int) (*ir.Node, error) {
	if s.tok.Kind != token.Identifier {
		return nil, s.errorf(types.ErrIdentifierExpected, "expected member name after '.'")
	}
	name := s.tok.Lexeme
	memberPos := s.tok.Position
	if err := s.advance(); err != nil {
		return nil, err
	}

	if members, ok := staticMembers[t]; ok {
		if sm, ok := members[name]; ok {
			if sm.isFunc {
				args, err := s.parseArgList()
				if err != nil {
					return nil, err
				}
				callArgs := make([]reflect.Value, len(args))
				for i, a := range args {
					v, err := constFold(a)
					if err != nil {
						return nil, err
					}
					callArgs[i] = v
				}
				var resultType reflect.Type
				if sm.fn.Type().NumOut() > 0 {
					resultType = sm.fn.Type().Out(0)
				}
				return &ir.Node{Kind: ir.KindCall, Type: resultType, Callee: name, Args: args, Func: sm.fn, Position: memberPos}, nil
			}
			return &ir.Node{Kind: ir.KindConstant, Type: reflect.TypeOf(sm.val), Value: sm.val, Position: memberPos}, nil
		}
	}

	// Enum member access, e.g. MyEnum.Yes.
	if hostkit.IsEnum(t) {
		if val, ok := hostkit.EnumValue(t, name); ok {
			rv := reflect.New(t).Elem()
			rv.SetInt(val)
			return &ir.Node{Kind: ir.KindConstant, Type: t, Value: rv.Interface(), Position: memberPos}, nil
		}
	}

	// Zero-value receiver method/property access (MathUtil, ConvertUtil,
	// and any other allowed type whose members are used statelessly).
	recv := &ir.Node{Kind: ir.KindConstant, Type: t, Value: reflect.Zero(t).Interface(), Position: pos}
	return s.memberAccessOn(recv, name, memberPos)
}

// constFold evaluates a constant-only argument node for use in a
// static-member call built at parse time (e.g. Guid.NewGuid() takes no
// arguments, but a future static call with constant arguments would
// reach here).
func constFold(n *ir.Node) (reflect.Value, error) {
	if n.Kind != ir.KindConstant {
		return reflect.Value{}, types.NewParseError(types.ErrExpressionTypeMismatch, n.Position, "static member arguments must be constant")
	}
	if n.Value == nil {
		return reflect.Zero(n.Type), nil
	}
	return reflect.ValueOf(n.Value), nil
}

// parseMemberAccess implements spec.md §4.4's "Member access": a method
// call (with aggregate-dispatch preemption over enumerables), else a
// property/field lookup.
func (s *state) parseMemberAccess(recv *ir.Node) (*ir.Node, error) {
	if s.tok.Kind != token.Identifier {
		return nil, s.errorf(types.ErrIdentifierExpected, "expected member name after '.'")
	}
	name := s.tok.Lexeme
	pos := s.tok.Position
	if err := s.advance(); err != nil {
		return nil, err
	}
	return s.memberAccessOn(recv, name, pos)
}

func (s *state) memberAccessOn(recv *ir.Node, name string, pos int) (*ir.Node, error) {
	recvType := recv.Type
	isCall := s.tok.Kind == token.LParen

	if isCall && isEnumerable(recvType) && aggregate.IsAggregateName(name) {
		return s.parseAggregateCall(recv, name, pos)
	}

	if isCall {
		return s.parseMethodCall(recv, name, pos)
	}

	return s.parsePropertyAccess(recv, name, pos)
}

func isEnumerable(t reflect.Type) bool {
	return t != nil && (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && t != reflect.TypeOf([]byte(nil))
}

func (s *state) parsePropertyAccess(recv *ir.Node, name string, pos int) (*ir.Node, error) {
	t := recv.Type
	if t == nil {
		return nil, types.NewParseError(types.ErrUnknownPropertyOrField, pos, "no type to resolve member %q on", name)
	}
	if t.Kind() == reflect.String && strings.EqualFold(name, "Length") {
		length := func(s string) int32 { return int32(len([]rune(s))) }
		return &ir.Node{Kind: ir.KindCall, Type: reflect.TypeOf(int32(0)), Callee: name, Args: []*ir.Node{recv}, Func: reflect.ValueOf(length), Position: pos}, nil
	}
	base := t
	for base.Kind() == reflect.Ptr {
		base = base.Elem()
	}
	if base.Kind() != reflect.Struct {
		return nil, types.NewParseError(types.ErrUnknownPropertyOrField, pos, "%q has no member %q", t, name)
	}
	if f, ok := fieldByNameFold(base, name); ok {
		return &ir.Node{Kind: ir.KindMember, Type: f.Type, Receiver: recv, FieldName: f.Name, FieldIdx: f.Index, Position: pos}, nil
	}
	return nil, types.NewParseError(types.ErrUnknownPropertyOrField, pos, "%q has no member %q", t, name)
}

func fieldByNameFold(t reflect.Type, name string) (reflect.StructField, bool) {
	if f, ok := t.FieldByName(name); ok {
		return f, true
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

func (s *state) parseMethodCall(recv *ir.Node, name string, pos int) (*ir.Node, error) {
	args, err := s.parseArgList()
	if err != nil {
		return nil, err
	}
	t := recv.Type
	m, ok := t.MethodByName(name)
	if !ok {
		return nil, types.NewParseError(types.ErrNoApplicableMethod, pos, "%s has no method %q", t, name)
	}
	numParams := m.Type.NumIn() - 1 // drop receiver
	if numParams != len(args) {
		return nil, types.NewParseError(types.ErrNoApplicableMethod, pos, "%s.%s expects %d argument(s), got %d", t, name, numParams, len(args))
	}
	if m.Type.NumOut() == 0 {
		return nil, types.NewParseError(types.ErrMethodIsVoid, pos, "%s.%s is void", t, name)
	}

	params := make([]overload.Param, numParams)
	for i := 0; i < numParams; i++ {
		params[i] = overload.One(m.Type.In(i + 1))
	}
	outcome, err := overload.Resolve([]overload.Candidate{{Params: params, Payload: m}}, args, s.literals, pos)
	if err != nil {
		return nil, err
	}
	return &ir.Node{Kind: ir.KindCall, Type: m.Type.Out(0), Callee: name, Receiver: recv, Args: outcome.Promoted, Method: m, Position: pos}, nil
}

// parseAggregateCall implements spec.md §4.7: push a fresh iteration
// scope typed as the receiver's element type, parse the (optional)
// body as an expression over that scope, and build the IR call node
// the aggregate dispatcher says this form produces.
func (s *state) parseAggregateCall(recv *ir.Node, name string, pos int) (*ir.Node, error) {
	if err := s.expect(token.LParen, types.ErrOpenParenExpected, "expected '('"); err != nil {
		return nil, err
	}
	elemType := recv.Type.Elem()

	if s.tok.Kind == token.RParen {
		if err := s.advance(); err != nil {
			return nil, err
		}
		form, ok := aggregate.Lookup(name, false)
		if !ok {
			return nil, types.NewParseError(types.ErrNoApplicableAggregate, pos, "no applicable aggregate %s()", name)
		}
		resultType := aggregate.ResultType(form, elemType, elemType)
		return &ir.Node{Kind: ir.KindCall, Type: resultType, Callee: name, Receiver: recv, IsBuiltin: true, Position: pos}, nil
	}

	s.pushIt(elemType)
	body, err := s.parseTernary()
	s.popIt()
	if err != nil {
		return nil, err
	}
	if err := s.expect(token.RParen, types.ErrCloseParenOrCommaExpected, "expected ')'"); err != nil {
		return nil, err
	}

	form, ok := aggregate.Lookup(name, true)
	if !ok {
		return nil, types.NewParseError(types.ErrNoApplicableAggregate, pos, "no applicable aggregate %s(...)", name)
	}
	if form.Arg == aggregate.ArgBool {
		promoted, err := promote.Expression(body, reflect.TypeOf(false), false, s.literals)
		if err != nil {
			return nil, types.NewParseError(types.ErrArgsIncompatibleWithLambda, body.Position, "%s predicate must be bool", name)
		}
		body = promoted
	}
	lambda := &ir.Node{Kind: ir.KindLambda, Type: reflect.FuncOf([]reflect.Type{elemType}, []reflect.Type{body.Type}, false),
		Params: []ir.Parameter{{Name: "", Type: elemType}}, Body: body, Position: body.Position}
	resultType := aggregate.ResultType(form, elemType, body.Type)
	return &ir.Node{Kind: ir.KindCall, Type: resultType, Callee: name, Receiver: recv, Args: []*ir.Node{lambda}, IsBuiltin: true, Position: pos}, nil
}

// parseArgList implements spec.md §4.4's "Argument list": '(' e, e, ... ')'
// or '()', trailing comma forbidden.
func (s *state) parseArgList() ([]*ir.Node, error) {
	if err := s.expect(token.LParen, types.ErrOpenParenExpected, "expected '('"); err != nil {
		return nil, err
	}
	var args []*ir.Node
	if s.tok.Kind == token.RParen {
		return args, s.advance()
	}
	for {
		e, err := s.parseTernary()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if s.tok.Kind == token.Comma {
			if err := s.advance(); err != nil {
				return nil, err
			}
			if s.tok.Kind == token.RParen {
				return nil, s.errorf(types.ErrExpressionExpected, "trailing comma not allowed in argument list")
			}
			continue
		}
		break
	}
	if err := s.expect(token.RParen, types.ErrCloseParenOrCommaExpected, "expected ')' or ','"); err != nil {
		return nil, err
	}
	return args, nil
}

// parseIif implements spec.md §4.4's "iif(a, b, c)" sugar for the
// ternary, sharing its bidirectional-promotion reconciliation.
func (s *state) parseIif(pos int) (*ir.Node, error) {
	args, err := s.parseArgList()
	if err != nil {
		return nil, err
	}
	if len(args) != 3 {
		return nil, types.NewParseError(types.ErrIifRequiresThreeArgs, pos, "iif requires exactly 3 arguments, got %d", len(args))
	}
	test, err := promote.Expression(args[0], reflect.TypeOf(false), false, s.literals)
	if err != nil {
		return nil, types.NewParseError(types.ErrFirstExprMustBeBool, args[0].Position, "iif's first argument must be bool")
	}
	a, b, err := promote.Reconcile(args[1], args[2], s.literals)
	if err != nil {
		return nil, err
	}
	return &ir.Node{Kind: ir.KindConditional, Type: a.Type, Test: test, IfTrue: a, IfFalse: b, Position: pos}, nil
}

// parseNew implements spec.md §4.4's "new(...) record construction".
func (s *state) parseNew(pos int) (*ir.Node, error) {
	if err := s.expect(token.LParen, types.ErrOpenParenExpected, "expected '(' after 'new'"); err != nil {
		return nil, err
	}
	var fields []types.DynamicProperty
	var bindings []ir.MemberBinding
	for {
		expr, err := s.parseTernary()
		if err != nil {
			return nil, err
		}
		name := ""
		if s.isWordOp("alias") {
			if err := s.advance(); err != nil {
				return nil, err
			}
			if s.tok.Kind != token.Identifier {
				return nil, s.errorf(types.ErrIdentifierExpected, "expected identifier after 'alias'")
			}
			name = s.tok.Lexeme
			if err := s.advance(); err != nil {
				return nil, err
			}
		} else if expr.Kind == ir.KindMember {
			name = expr.FieldName
		} else {
			return nil, s.errorf(types.ErrMissingAsClause, "new(...) element requires 'alias' unless it is a member access")
		}
		fields = append(fields, types.DynamicProperty{Name: name, Type: expr.Type})
		bindings = append(bindings, ir.MemberBinding{Name: name, Value: expr})

		if s.tok.Kind == token.Comma {
			if err := s.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := s.expect(token.RParen, types.ErrCloseParenOrCommaExpected, "expected ')' or ','"); err != nil {
		return nil, err
	}
	recordType, err := s.records.CreateClass(fields)
	if err != nil {
		return nil, err
	}
	// Record field names are exported (Go requirement); rewrite bindings
	// to the synthesized struct's actual field names, in field order.
	for i := range bindings {
		bindings[i].Name = recordType.Field(i).Name
	}
	return &ir.Node{Kind: ir.KindMemberInit, Type: recordType, Fields: bindings, Position: pos}, nil
}
