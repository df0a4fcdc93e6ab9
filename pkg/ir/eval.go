package ir

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/exprlang/dynlinq/pkg/hostkit"
)

// Eval walks node, producing the reflect.Value it denotes against scope.
// Every node the parser produces has already passed overload resolution
// and promotion, so Eval performs no further type checking — it only
// executes the decisions the parser already made.
func Eval(node *Node, scope *Scope) (reflect.Value, error) {
	if node == nil {
		return reflect.Value{}, nil
	}
	switch node.Kind {
	case KindConstant:
		return evalConstant(node)
	case KindParameter:
		return evalParameter(node, scope)
	case KindBinary:
		return evalBinary(node, scope)
	case KindUnary:
		return evalUnary(node, scope)
	case KindConditional:
		return evalConditional(node, scope)
	case KindCall:
		return evalCall(node, scope)
	case KindMember:
		return evalMember(node, scope)
	case KindIndex:
		return evalIndex(node, scope)
	case KindConvert:
		return evalConvert(node, scope)
	case KindTypeTest:
		return evalTypeTest(node, scope)
	case KindTypeAs:
		return evalTypeAs(node, scope)
	case KindMemberInit:
		return evalMemberInit(node, scope)
	case KindLambda:
		// A bare lambda node evaluates to itself: callers that need to
		// invoke it use CallLambda directly.
		return reflect.ValueOf(node), nil
	default:
		return reflect.Value{}, fmt.Errorf("ir: unhandled node kind %d", node.Kind)
	}
}

func evalConstant(node *Node) (reflect.Value, error) {
	if node.Value == nil {
		if node.Type == nil {
			return reflect.Value{}, nil
		}
		return reflect.Zero(node.Type), nil
	}
	v := reflect.ValueOf(node.Value)
	if node.Type != nil && v.Type() != node.Type && v.Type().ConvertibleTo(node.Type) {
		v = v.Convert(node.Type)
	}
	return v, nil
}

func evalParameter(node *Node, scope *Scope) (reflect.Value, error) {
	if node.IsIt {
		v, ok := scope.It(node.ItDepth)
		if !ok {
			return reflect.Value{}, fmt.Errorf("ir: it_%d not in scope", node.ItDepth)
		}
		return v, nil
	}
	v, ok := scope.Named(node.ParamName)
	if !ok {
		return reflect.Value{}, fmt.Errorf("ir: unbound parameter %q", node.ParamName)
	}
	return v, nil
}

func evalBinary(node *Node, scope *Scope) (reflect.Value, error) {
	switch node.Op {
	case OpAnd:
		l, err := Eval(node.Left, scope)
		if err != nil || !truth(l) {
			return reflect.ValueOf(false), err
		}
		r, err := Eval(node.Right, scope)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(truth(r)), nil
	case OpOr:
		l, err := Eval(node.Left, scope)
		if err != nil || truth(l) {
			return reflect.ValueOf(err == nil), err
		}
		r, err := Eval(node.Right, scope)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(truth(r)), nil
	}

	l, err := Eval(node.Left, scope)
	if err != nil {
		return reflect.Value{}, err
	}
	r, err := Eval(node.Right, scope)
	if err != nil {
		return reflect.Value{}, err
	}

	switch node.Op {
	case OpConcat:
		return reflect.ValueOf(stringOf(l) + stringOf(r)), nil
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return evalComparison(node.Op, l, r)
	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpModulo:
		return evalArithmetic(node.Op, l, r, node.Type)
	default:
		return reflect.Value{}, fmt.Errorf("ir: unhandled binary op %s", node.Op)
	}
}

func truth(v reflect.Value) bool {
	return v.IsValid() && v.Kind() == reflect.Bool && v.Bool()
}

func stringOf(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

func evalComparison(op Op, l, r reflect.Value) (reflect.Value, error) {
	if l.Kind() == reflect.String && r.Kind() == reflect.String {
		c := strings.Compare(l.String(), r.String())
		return boolFromCompare(op, c), nil
	}
	lf, rf, ok := numericPair(l, r)
	if ok {
		return boolFromCompare(op, compareFloat(lf, rf)), nil
	}
	if op == OpEqual || op == OpNotEqual {
		eq := reflect.DeepEqual(valueOrNil(l), valueOrNil(r))
		if op == OpEqual {
			return reflect.ValueOf(eq), nil
		}
		return reflect.ValueOf(!eq), nil
	}
	return reflect.Value{}, fmt.Errorf("ir: incomparable operands")
}

func valueOrNil(v reflect.Value) interface{} {
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

func boolFromCompare(op Op, c int) reflect.Value {
	var b bool
	switch op {
	case OpEqual:
		b = c == 0
	case OpNotEqual:
		b = c != 0
	case OpLess:
		b = c < 0
	case OpLessEqual:
		b = c <= 0
	case OpGreater:
		b = c > 0
	case OpGreaterEqual:
		b = c >= 0
	}
	return reflect.ValueOf(b)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func numericPair(l, r reflect.Value) (float64, float64, bool) {
	lf, ok1 := asFloat(l)
	rf, ok2 := asFloat(r)
	return lf, rf, ok1 && ok2
}

func asFloat(v reflect.Value) (float64, bool) {
	if !v.IsValid() {
		return 0, false
	}
	if hostkit.IsNullable(v.Type()) {
		inner, valid := hostkit.InnerOf(v)
		if !valid {
			return 0, false
		}
		v = inner
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

func evalArithmetic(op Op, l, r reflect.Value, resultType reflect.Type) (reflect.Value, error) {
	lf, ok1 := asFloat(l)
	rf, ok2 := asFloat(r)
	if !ok1 || !ok2 {
		return reflect.Value{}, fmt.Errorf("ir: non-numeric operand to %s", op)
	}
	var result float64
	switch op {
	case OpAdd:
		result = lf + rf
	case OpSubtract:
		result = lf - rf
	case OpMultiply:
		result = lf * rf
	case OpDivide:
		result = lf / rf
	case OpModulo:
		result = float64(int64(lf) % int64(rf))
	}
	target := resultType
	if target == nil {
		target = reflect.TypeOf(float64(0))
	}
	nn := hostkit.NonNullable(target)
	out := reflect.New(nn).Elem()
	switch nn.Kind() {
	case reflect.Float32, reflect.Float64:
		out.SetFloat(result)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out.SetInt(int64(result))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		out.SetUint(uint64(result))
	default:
		out.SetFloat(result)
	}
	if hostkit.IsNullable(target) {
		return hostkit.MakeNullable(target, out), nil
	}
	return out, nil
}

func evalUnary(node *Node, scope *Scope) (reflect.Value, error) {
	v, err := Eval(node.Operand, scope)
	if err != nil {
		return reflect.Value{}, err
	}
	switch node.Op {
	case OpNot:
		return reflect.ValueOf(!truth(v)), nil
	case OpNegate:
		f, ok := asFloat(v)
		if !ok {
			return reflect.Value{}, fmt.Errorf("ir: cannot negate non-numeric value")
		}
		return evalArithmetic(OpSubtract, reflect.ValueOf(0.0), reflect.ValueOf(f), node.Type)
	default:
		return reflect.Value{}, fmt.Errorf("ir: unhandled unary op %s", node.Op)
	}
}

func evalConditional(node *Node, scope *Scope) (reflect.Value, error) {
	test, err := Eval(node.Test, scope)
	if err != nil {
		return reflect.Value{}, err
	}
	if truth(test) {
		return Eval(node.IfTrue, scope)
	}
	return Eval(node.IfFalse, scope)
}

func evalMember(node *Node, scope *Scope) (reflect.Value, error) {
	recv, err := Eval(node.Receiver, scope)
	if err != nil {
		return reflect.Value{}, err
	}
	recv = deref(recv)
	if !recv.IsValid() {
		return reflect.Zero(node.Type), nil
	}
	if len(node.FieldIdx) > 0 {
		return recv.FieldByIndex(node.FieldIdx), nil
	}
	return recv.FieldByName(node.FieldName), nil
}

func deref(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func evalIndex(node *Node, scope *Scope) (reflect.Value, error) {
	recv, err := Eval(node.Receiver, scope)
	if err != nil {
		return reflect.Value{}, err
	}
	idx, err := Eval(node.Index, scope)
	if err != nil {
		return reflect.Value{}, err
	}
	recv = deref(recv)
	switch recv.Kind() {
	case reflect.Array, reflect.Slice, reflect.String:
		i := int(idx.Int())
		if i < 0 || i >= recv.Len() {
			return reflect.Value{}, fmt.Errorf("ir: index %d out of range", i)
		}
		return recv.Index(i), nil
	case reflect.Map:
		v := recv.MapIndex(idx)
		if !v.IsValid() {
			return reflect.Zero(node.Type), nil
		}
		return v, nil
	default:
		// Default-member indexer: look for an Item method.
		if m := recv.MethodByName("Item"); m.IsValid() {
			out := m.Call([]reflect.Value{idx})
			return out[0], nil
		}
		return reflect.Value{}, fmt.Errorf("ir: type %s is not indexable", recv.Type())
	}
}

func evalConvert(node *Node, scope *Scope) (reflect.Value, error) {
	v, err := Eval(node.Operand, scope)
	if err != nil {
		return reflect.Value{}, err
	}
	target := node.TargetType
	if hostkit.IsNullable(target) && !hostkit.IsNullable(v.Type()) {
		nn := hostkit.NonNullable(target)
		if v.Type() != nn && v.Type().ConvertibleTo(nn) {
			v = v.Convert(nn)
		}
		return hostkit.MakeNullable(target, v), nil
	}
	if hostkit.IsEnum(hostkit.NonNullable(target)) && v.Kind() == reflect.String {
		if n, ok := hostkit.EnumValue(hostkit.NonNullable(target), v.String()); ok {
			out := reflect.New(hostkit.NonNullable(target)).Elem()
			out.SetInt(n)
			return out, nil
		}
		return reflect.Value{}, fmt.Errorf("ir: %q is not a member of %s", v.String(), target)
	}
	if v.IsValid() && v.Type().ConvertibleTo(target) {
		return v.Convert(target), nil
	}
	return reflect.Value{}, fmt.Errorf("ir: cannot convert %s to %s", v.Type(), target)
}

func evalTypeTest(node *Node, scope *Scope) (reflect.Value, error) {
	v, err := Eval(node.Operand, scope)
	if err != nil {
		return reflect.Value{}, err
	}
	if !v.IsValid() {
		return reflect.ValueOf(false), nil
	}
	t := v.Type()
	ok := t == node.TargetType || (node.TargetType.Kind() == reflect.Interface && t.Implements(node.TargetType))
	return reflect.ValueOf(ok), nil
}

func evalTypeAs(node *Node, scope *Scope) (reflect.Value, error) {
	v, err := Eval(node.Operand, scope)
	if err != nil {
		return reflect.Value{}, err
	}
	if v.IsValid() && v.Type().AssignableTo(node.TargetType) {
		return v, nil
	}
	return reflect.Zero(node.TargetType), nil
}

func evalMemberInit(node *Node, scope *Scope) (reflect.Value, error) {
	out := reflect.New(node.Type).Elem()
	for _, f := range node.Fields {
		v, err := Eval(f.Value, scope)
		if err != nil {
			return reflect.Value{}, err
		}
		field := out.FieldByName(f.Name)
		if v.IsValid() {
			field.Set(v)
		}
	}
	return out, nil
}

// CallLambda invokes a KindLambda node with the given argument values,
// binding them either to named parameters or, for a single anonymous
// parameter, as a fresh "it" frame.
func CallLambda(lambda *Node, scope *Scope, args []reflect.Value) (reflect.Value, error) {
	if lambda.Kind != KindLambda {
		return reflect.Value{}, fmt.Errorf("ir: CallLambda on non-lambda node")
	}
	child := scope
	if len(lambda.Params) == 1 && lambda.Params[0].Name == "" {
		child = scope.Push(args[0])
	} else {
		for i, p := range lambda.Params {
			if i >= len(args) {
				break
			}
			child = child.WithNamed(p.Name, args[i])
		}
	}
	return Eval(lambda.Body, child)
}

func evalCall(node *Node, scope *Scope) (reflect.Value, error) {
	if node.IsBuiltin {
		return evalAggregateCall(node, scope)
	}

	args := make([]reflect.Value, 0, len(node.Args))
	for _, a := range node.Args {
		v, err := Eval(a, scope)
		if err != nil {
			return reflect.Value{}, err
		}
		args = append(args, v)
	}

	if node.Receiver != nil {
		recv, err := Eval(node.Receiver, scope)
		if err != nil {
			return reflect.Value{}, err
		}
		recv = deref(recv)
		if node.Method.Func.IsValid() {
			callArgs := append([]reflect.Value{recv}, args...)
			out := node.Method.Func.Call(callArgs)
			return firstResult(out)
		}
		m := recv.MethodByName(node.Callee)
		if !m.IsValid() {
			return reflect.Value{}, fmt.Errorf("ir: method %s not found on %s", node.Callee, recv.Type())
		}
		out := m.Call(args)
		return firstResult(out)
	}

	if node.Func.IsValid() {
		out := node.Func.Call(args)
		return firstResult(out)
	}

	return reflect.Value{}, fmt.Errorf("ir: call %s has no resolved target", node.Callee)
}

func firstResult(out []reflect.Value) (reflect.Value, error) {
	if len(out) == 0 {
		return reflect.Value{}, nil
	}
	last := out[len(out)-1]
	if last.Type().Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		if !last.IsNil() {
			return reflect.Value{}, last.Interface().(error)
		}
		if len(out) == 1 {
			return reflect.Value{}, nil
		}
		return out[0], nil
	}
	return out[0], nil
}
