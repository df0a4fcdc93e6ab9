package parser

import (
	"reflect"
	"strings"

	"github.com/exprlang/dynlinq/pkg/hostkit"
	"github.com/exprlang/dynlinq/pkg/ir"
	"github.com/exprlang/dynlinq/pkg/overload"
	"github.com/exprlang/dynlinq/pkg/promote"
	"github.com/exprlang/dynlinq/pkg/token"
	"github.com/exprlang/dynlinq/pkg/types"
)

// parseTernary is precedence level 0: E ? E : E, with bidirectional
// promotion reconciling the two branches (spec.md §4.4 level 0).
func (s *state) parseTernary() (*ir.Node, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.leave()

	test, err := s.parseOr()
	if err != nil {
		return nil, err
	}
	if s.tok.Kind != token.Question {
		return test, nil
	}
	if err := promoteTestExact(test); err != nil {
		return nil, err
	}
	if err := s.advance(); err != nil {
		return nil, err
	}
	ifTrue, err := s.parseTernary()
	if err != nil {
		return nil, err
	}
	if err := s.expect(token.Colon, types.ErrColonExpected, "expected ':' in conditional expression"); err != nil {
		return nil, err
	}
	ifFalse, err := s.parseTernary()
	if err != nil {
		return nil, err
	}
	a, b, err := promote.Reconcile(ifTrue, ifFalse, s.literals)
	if err != nil {
		return nil, err
	}
	return &ir.Node{Kind: ir.KindConditional, Type: a.Type, Test: test, IfTrue: a, IfFalse: b, Position: test.Position}, nil
}

func promoteTestExact(test *ir.Node) error {
	if hostkit.NonNullable(test.Type) != reflect.TypeOf(false) {
		return types.NewParseError(types.ErrFirstExprMustBeBool, test.Position, "conditional test must be boolean, got %s", test.Type)
	}
	return nil
}

// parseOr is level 1: || and the word "or".
func (s *state) parseOr() (*ir.Node, error) {
	left, err := s.parseAnd()
	if err != nil {
		return nil, err
	}
	for s.tok.Kind == token.OrOr || s.isWordOp("or") {
		pos := s.tok.Position
		if err := s.advance(); err != nil {
			return nil, err
		}
		right, err := s.parseAnd()
		if err != nil {
			return nil, err
		}
		left, err = s.buildLogical(ir.OpOr, left, right, pos)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// parseAnd is level 2: && and the word "and".
func (s *state) parseAnd() (*ir.Node, error) {
	left, err := s.parseRel()
	if err != nil {
		return nil, err
	}
	for s.tok.Kind == token.AndAnd || s.isWordOp("and") {
		pos := s.tok.Position
		if err := s.advance(); err != nil {
			return nil, err
		}
		right, err := s.parseRel()
		if err != nil {
			return nil, err
		}
		left, err = s.buildLogical(ir.OpAnd, left, right, pos)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (s *state) buildLogical(op ir.Op, left, right *ir.Node, pos int) (*ir.Node, error) {
	l, err := promote.Expression(left, reflect.TypeOf(false), false, s.literals)
	if err != nil {
		return nil, types.NewParseError(types.ErrIncompatibleOperand, left.Position, "logical operand must be bool")
	}
	r, err := promote.Expression(right, reflect.TypeOf(false), false, s.literals)
	if err != nil {
		return nil, types.NewParseError(types.ErrIncompatibleOperand, right.Position, "logical operand must be bool")
	}
	return &ir.Node{Kind: ir.KindBinary, Type: reflect.TypeOf(false), Op: op, Left: l, Right: r, Position: pos}, nil
}

// isWordOp reports whether the current token is an Identifier whose
// lexeme case-insensitively equals word (spec.md's "word operators").
func (s *state) isWordOp(word string) bool {
	return s.tok.Kind == token.Identifier && strings.EqualFold(s.tok.Lexeme, word)
}

var relOps = map[token.Kind]ir.Op{
	token.Equal:        ir.OpEqual,
	token.EqualEqual:   ir.OpEqual,
	token.NotEqual:     ir.OpNotEqual,
	token.NotEqualAlt:  ir.OpNotEqual,
	token.Less:         ir.OpLess,
	token.LessEqual:    ir.OpLessEqual,
	token.Greater:      ir.OpGreater,
	token.GreaterEqual: ir.OpGreaterEqual,
}

// parseRel is level 3: relational/equality/type-test (spec.md §4.4
// level 3), looping left-to-right over = == != <> < <= > >= as is.
func (s *state) parseRel() (*ir.Node, error) {
	left, err := s.parseAdd()
	if err != nil {
		return nil, err
	}
	for {
		if s.tok.Kind == token.AsType || s.tok.Kind == token.IsType {
			isAs := s.tok.Kind == token.AsType
			pos := s.tok.Position
			if err := s.advance(); err != nil {
				return nil, err
			}
			target, err := s.parseQualType()
			if err != nil {
				return nil, err
			}
			if isAs {
				left = &ir.Node{Kind: ir.KindTypeAs, Type: target, Operand: left, TargetType: target, Position: pos}
			} else {
				left = &ir.Node{Kind: ir.KindTypeTest, Type: reflect.TypeOf(false), Operand: left, TargetType: target, Position: pos}
			}
			continue
		}
		op, ok := relOps[s.tok.Kind]
		if !ok {
			return left, nil
		}
		pos := s.tok.Position
		if err := s.advance(); err != nil {
			return nil, err
		}
		right, err := s.parseAdd()
		if err != nil {
			return nil, err
		}
		left, err = s.buildRelational(op, left, right, pos)
		if err != nil {
			return nil, err
		}
	}
}

func (s *state) buildRelational(op ir.Op, left, right *ir.Node, pos int) (*ir.Node, error) {
	isEq := op == ir.OpEqual || op == ir.OpNotEqual

	// Reference-type equality: one-directional assignability.
	if isEq && isReferenceType(left.Type) && isReferenceType(right.Type) {
		if left.Type != right.Type {
			conv, ok := s.referenceConvert(left, right.Type)
			if ok {
				left = conv
			} else if conv, ok := s.referenceConvert(right, left.Type); ok {
				right = conv
			} else {
				return nil, types.NewParseError(types.ErrIncompatibleOperand, pos, "incompatible operand types %s and %s", left.Type, right.Type)
			}
		}
		return &ir.Node{Kind: ir.KindBinary, Type: reflect.TypeOf(false), Op: op, Left: left, Right: right, Position: pos}, nil
	}

	// Enum involvement: one-directional exact promotion.
	if hostkit.IsEnum(hostkit.NonNullable(left.Type)) || hostkit.IsEnum(hostkit.NonNullable(right.Type)) {
		if n, err := promote.Expression(left, right.Type, true, s.literals); err == nil {
			left = n
		} else if n, err := promote.Expression(right, left.Type, true, s.literals); err == nil {
			right = n
		} else {
			return nil, types.NewParseError(types.ErrIncompatibleOperand, pos, "incompatible enum operand types %s and %s", left.Type, right.Type)
		}
		return &ir.Node{Kind: ir.KindBinary, Type: reflect.TypeOf(false), Op: op, Left: left, Right: right, Position: pos}, nil
	}

	var sigTypes []reflect.Type
	if isEq {
		sigTypes = overload.EqualitySignature(nil, hostkit.NullableOf)
	} else {
		sigTypes = overload.RelationalSignature(nil, hostkit.NullableOf)
	}
	outcome, err := overload.Resolve(overload.SameTypeCandidates(sigTypes), []*ir.Node{left, right}, s.literals, pos)
	if err != nil {
		return nil, err
	}
	pl, pr := outcome.Promoted[0], outcome.Promoted[1]

	if pl.Type == reflect.TypeOf("") && !isEq {
		// String ordering compiles to Compare(a,b) against 0, per spec.md §4.4 level 3.
		cmp := &ir.Node{Kind: ir.KindCall, Type: reflect.TypeOf(0), Callee: "Compare",
			Args: []*ir.Node{pl, pr}, Func: reflect.ValueOf(strings.Compare), Position: pos}
		zero := &ir.Node{Kind: ir.KindConstant, Type: reflect.TypeOf(0), Value: 0, Position: pos}
		return &ir.Node{Kind: ir.KindBinary, Type: reflect.TypeOf(false), Op: op, Left: cmp, Right: zero, Position: pos}, nil
	}
	return &ir.Node{Kind: ir.KindBinary, Type: reflect.TypeOf(false), Op: op, Left: pl, Right: pr, Position: pos}, nil
}

func (s *state) referenceConvert(e *ir.Node, target reflect.Type) (*ir.Node, bool) {
	if e.Type != nil && e.Type.AssignableTo(target) {
		return &ir.Node{Kind: ir.KindConvert, Type: target, TargetType: target, Operand: e, Position: e.Position}, true
	}
	return nil, false
}

func isReferenceType(t reflect.Type) bool {
	if t == nil {
		return true // the null-constant literal
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.String:
		return true
	default:
		return false
	}
}

// parseAdd is level 4: + - & (spec.md §4.4 level 4).
func (s *state) parseAdd() (*ir.Node, error) {
	left, err := s.parseMul()
	if err != nil {
		return nil, err
	}
	for s.tok.Kind == token.Plus || s.tok.Kind == token.Minus || s.tok.Kind == token.Amp {
		kind := s.tok.Kind
		pos := s.tok.Position
		if err := s.advance(); err != nil {
			return nil, err
		}
		right, err := s.parseMul()
		if err != nil {
			return nil, err
		}
		left, err = s.buildAdditive(kind, left, right, pos)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (s *state) buildAdditive(kind token.Kind, left, right *ir.Node, pos int) (*ir.Node, error) {
	if kind == token.Amp || (kind == token.Plus && (left.Type == reflect.TypeOf("") || right.Type == reflect.TypeOf(""))) {
		return &ir.Node{Kind: ir.KindBinary, Type: reflect.TypeOf(""), Op: ir.OpConcat, Left: left, Right: right, Position: pos}, nil
	}
	op := ir.OpAdd
	if kind == token.Minus {
		op = ir.OpSubtract
	}
	sig := overload.AdditiveSignature(hostkit.NullableOf)
	outcome, err := overload.Resolve(overload.SameTypeCandidates(sig), []*ir.Node{left, right}, s.literals, pos)
	if err != nil {
		return nil, err
	}
	resultType := outcome.Candidate.Params[0].Types[0]
	return &ir.Node{Kind: ir.KindBinary, Type: resultType, Op: op, Left: outcome.Promoted[0], Right: outcome.Promoted[1], Position: pos}, nil
}

// parseMul is level 5: * / % and word "mod" (spec.md §4.4 level 5).
func (s *state) parseMul() (*ir.Node, error) {
	left, err := s.parseUnary()
	if err != nil {
		return nil, err
	}
	for s.tok.Kind == token.Star || s.tok.Kind == token.Slash || s.tok.Kind == token.Percent || s.isWordOp("mod") {
		op := ir.OpMultiply
		switch {
		case s.tok.Kind == token.Slash:
			op = ir.OpDivide
		case s.tok.Kind == token.Percent || s.isWordOp("mod"):
			op = ir.OpModulo
		}
		pos := s.tok.Position
		if err := s.advance(); err != nil {
			return nil, err
		}
		right, err := s.parseUnary()
		if err != nil {
			return nil, err
		}
		sig := overload.AdditiveSignature(hostkit.NullableOf)
		outcome, err := overload.Resolve(overload.SameTypeCandidates(sig), []*ir.Node{left, right}, s.literals, pos)
		if err != nil {
			return nil, err
		}
		resultType := outcome.Candidate.Params[0].Types[0]
		left = &ir.Node{Kind: ir.KindBinary, Type: resultType, Op: op, Left: outcome.Promoted[0], Right: outcome.Promoted[1], Position: pos}
	}
	return left, nil
}

// parseUnary is level 6: - ! not, folding a literal sign per spec.md
// §4.4 level 6.
func (s *state) parseUnary() (*ir.Node, error) {
	switch {
	case s.tok.Kind == token.Minus:
		pos := s.tok.Position
		if err := s.advance(); err != nil {
			return nil, err
		}
		if s.tok.Kind == token.IntegerLiteral || s.tok.Kind == token.RealLiteral {
			return s.parseSignedLiteral(pos)
		}
		operand, err := s.parseUnary()
		if err != nil {
			return nil, err
		}
		sig := overload.NegationSignature(hostkit.NullableOf)
		outcome, err := overload.Resolve(overload.UnaryCandidates(sig), []*ir.Node{operand}, s.literals, pos)
		if err != nil {
			return nil, err
		}
		resultType := outcome.Candidate.Params[0].Types[0]
		return &ir.Node{Kind: ir.KindUnary, Type: resultType, Op: ir.OpNegate, Operand: outcome.Promoted[0], Position: pos}, nil

	case s.tok.Kind == token.Bang || s.isWordOp("not"):
		pos := s.tok.Position
		if err := s.advance(); err != nil {
			return nil, err
		}
		operand, err := s.parseUnary()
		if err != nil {
			return nil, err
		}
		n, err := promote.Expression(operand, reflect.TypeOf(false), false, s.literals)
		if err != nil {
			return nil, types.NewParseError(types.ErrIncompatibleOperand, operand.Position, "'!'/'not' operand must be bool")
		}
		return &ir.Node{Kind: ir.KindUnary, Type: reflect.TypeOf(false), Op: ir.OpNot, Operand: n, Position: pos}, nil

	default:
		return s.parsePrimarySuffixed()
	}
}

// parseSignedLiteral folds a unary minus directly against a following
// numeric literal token, re-lexing "-"+lexeme so the minimum signed
// literal (e.g. -2147483648) can be represented without an intermediate
// unsigned value (spec.md §4.4 level 6).
func (s *state) parseSignedLiteral(pos int) (*ir.Node, error) {
	isReal := s.tok.Kind == token.RealLiteral
	text := "-" + s.tok.Lexeme
	if err := s.advance(); err != nil {
		return nil, err
	}
	if isReal {
		return s.numberLiteralFromText(text, pos, true)
	}
	return s.numberLiteralFromText(text, pos, false)
}
