package overload

import (
	"reflect"

	"github.com/exprlang/dynlinq/pkg/hostkit"
)

// Standard Go numeric/value types used to build the operator-signature
// sets of spec.md §4.4. These are intentionally over-generous; the
// resolver's better-conversion rule (not special-casing) disambiguates.
var (
	tBool    = reflect.TypeOf(false)
	tString  = reflect.TypeOf("")
	tByte    = reflect.TypeOf(byte(0))
	tRune    = reflect.TypeOf(hostkit.Char(0))
	tInt16   = reflect.TypeOf(int16(0))
	tUint16  = reflect.TypeOf(uint16(0))
	tInt32   = reflect.TypeOf(int32(0))
	tUint32  = reflect.TypeOf(uint32(0))
	tInt64   = reflect.TypeOf(int64(0))
	tUint64  = reflect.TypeOf(uint64(0))
	tFloat32 = reflect.TypeOf(float32(0))
	tFloat64 = reflect.TypeOf(float64(0))
)

// NumericTypes lists the non-nullable numeric operand types of the
// operator-signature sets: the default allowed-type set's numerics and
// char, without sbyte and decimal.
var NumericTypes = []reflect.Type{
	tByte, tRune, tInt16, tUint16, tInt32, tUint32, tInt64, tUint64, tFloat32, tFloat64,
}

// nullableTypesOf returns the Nullable[T] instantiation of every type in
// ts; hostkit.Nullable is generic so this module must name the concrete
// instantiations it needs via the caller-supplied constructor rather
// than hand-writing one case per type.
func nullableTypesOf(ts []reflect.Type, nullableOfType func(reflect.Type) reflect.Type) []reflect.Type {
	out := make([]reflect.Type, 0, len(ts))
	for _, t := range ts {
		out = append(out, nullableOfType(t))
	}
	return out
}

// SameTypeCandidates builds one binary-operator Candidate per member of
// types, with both parameter slots fixed to that single type — this is
// how spec.md §4.4's "signature set" is actually fed to the resolver:
// C#'s predefined comparison/arithmetic operators are likewise pairs of
// identical operand types (bool==bool, int==int, ...), with the
// resolver's better-conversion ranking picking the narrowest applicable
// pair rather than any cross-type combination.
func SameTypeCandidates(types []reflect.Type) []Candidate {
	out := make([]Candidate, len(types))
	for i, t := range types {
		out[i] = Candidate{Params: []Param{One(t), One(t)}, Payload: t}
	}
	return out
}

// UnaryCandidates builds one single-parameter Candidate per member of types.
func UnaryCandidates(types []reflect.Type) []Candidate {
	out := make([]Candidate, len(types))
	for i, t := range types {
		out[i] = Candidate{Params: []Param{One(t)}, Payload: t}
	}
	return out
}

// LogicalSignature is the {bool, bool?} operand set for && / || (and/or).
func LogicalSignature(nullableOfType func(reflect.Type) reflect.Type) []reflect.Type {
	return []reflect.Type{tBool, nullableOfType(tBool)}
}

// EqualitySignature extends NumericTypes with bool, string, char, and
// (via extra) host value types like DateTime/TimeSpan, plus nullables.
func EqualitySignature(extra []reflect.Type, nullableOfType func(reflect.Type) reflect.Type) []reflect.Type {
	base := append([]reflect.Type{tBool, tString}, NumericTypes...)
	base = append(base, extra...)
	return append(base, nullableTypesOf(base, nullableOfType)...)
}

// RelationalSignature is EqualitySignature without bool (relational
// ordering on booleans is meaningless).
func RelationalSignature(extra []reflect.Type, nullableOfType func(reflect.Type) reflect.Type) []reflect.Type {
	base := append([]reflect.Type{tString}, NumericTypes...)
	base = append(base, extra...)
	return append(base, nullableTypesOf(base, nullableOfType)...)
}

// AdditiveSignature is NumericTypes plus nullables. It has no DateTime or
// TimeSpan operand pairs, and the parser adds none.
func AdditiveSignature(nullableOfType func(reflect.Type) reflect.Type) []reflect.Type {
	return append(append([]reflect.Type{}, NumericTypes...), nullableTypesOf(NumericTypes, nullableOfType)...)
}

// NegationSignature is the unary "-" operand set.
func NegationSignature(nullableOfType func(reflect.Type) reflect.Type) []reflect.Type {
	return AdditiveSignature(nullableOfType)
}

// NotSignature is the unary "!"/"not" operand set.
func NotSignature(nullableOfType func(reflect.Type) reflect.Type) []reflect.Type {
	return LogicalSignature(nullableOfType)
}
