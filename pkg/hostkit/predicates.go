package hostkit

import "reflect"

// numericKind classifies the non-nullable form of t.
type numericKind int

const (
	// KindNone marks a type with no numeric-promotion role (including
	// registered enums, which coerce only via explicit narrowing).
	KindNone numericKind = 0
	// KindFloating covers the floating-like kinds: float32, float64, and
	// registered decimal types (see decimalTypes below). Char is not in
	// this group: its kind is Int32, so it reports KindSigned.
	KindFloating numericKind = 1
	// KindSigned covers the signed integer kinds.
	KindSigned numericKind = 2
	// KindUnsigned covers the unsigned integer kinds.
	KindUnsigned numericKind = 3
)

// decimalTypes holds the named types given fixed-point decimal
// treatment (there is no decimal kind in reflect.Kind). This package
// registers its own Decimal stand-in at init (valuetypes.go); hosts
// register further named types via RegisterDecimal.
var decimalTypes = map[reflect.Type]bool{}

// RegisterDecimal opts a named type into decimal-like numeric treatment
// (NumericKind reports KindFloating, matching the widening rules for
// Single/Double/Decimal in spec.md §4.2).
func RegisterDecimal(t reflect.Type) { decimalTypes[t] = true }

func isDecimal(t reflect.Type) bool { return decimalTypes[t] }

// NumericKind implements spec.md §4.2's classification over the
// non-nullable form of t. Registered enums always report KindNone.
func NumericKind(t reflect.Type) numericKind {
	t = NonNullable(t)
	if t == nil || IsEnum(t) {
		return KindNone
	}
	if isDecimal(t) {
		return KindFloating
	}
	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return KindSigned
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return KindUnsigned
	case reflect.Float32, reflect.Float64:
		return KindFloating
	default:
		return KindNone
	}
}

// typeCode enumerates the widening-matrix rows/columns of spec.md §4.2.
type typeCode int

const (
	tcNone typeCode = iota
	tcSByte
	tcByte
	tcInt16
	tcUInt16
	tcInt32
	tcUInt32
	tcInt64
	tcUInt64
	tcSingle
	tcDouble
	tcDecimal
)

func codeOf(t reflect.Type) typeCode {
	if t == nil {
		return tcNone
	}
	if isDecimal(t) {
		return tcDecimal
	}
	switch t.Kind() {
	case reflect.Int8:
		return tcSByte
	case reflect.Uint8:
		return tcByte
	case reflect.Int16:
		return tcInt16
	case reflect.Uint16:
		return tcUInt16
	case reflect.Int32, reflect.Int:
		return tcInt32
	case reflect.Uint32, reflect.Uint:
		return tcUInt32
	case reflect.Int64:
		return tcInt64
	case reflect.Uint64:
		return tcUInt64
	case reflect.Float32:
		return tcSingle
	case reflect.Float64:
		return tcDouble
	default:
		return tcNone
	}
}

// wideningTable lists, per source type-code, the permissible target
// type-codes for an implicit numeric widening conversion. Verbatim from
// spec.md §4.2.
var wideningTable = map[typeCode]map[typeCode]bool{
	tcSByte:  set(tcSByte, tcInt16, tcInt32, tcInt64, tcSingle, tcDouble, tcDecimal),
	tcByte:   set(tcByte, tcInt16, tcUInt16, tcInt32, tcUInt32, tcInt64, tcUInt64, tcSingle, tcDouble, tcDecimal),
	tcInt16:  set(tcInt16, tcInt32, tcInt64, tcSingle, tcDouble, tcDecimal),
	tcUInt16: set(tcUInt16, tcInt32, tcUInt32, tcInt64, tcUInt64, tcSingle, tcDouble, tcDecimal),
	tcInt32:  set(tcInt32, tcInt64, tcSingle, tcDouble, tcDecimal),
	tcUInt32: set(tcUInt32, tcInt64, tcUInt64, tcSingle, tcDouble, tcDecimal),
	tcInt64:  set(tcInt64, tcSingle, tcDouble, tcDecimal),
	tcUInt64: set(tcUInt64, tcSingle, tcDouble, tcDecimal),
	tcSingle: set(tcSingle, tcDouble),
}

func set(codes ...typeCode) map[typeCode]bool {
	m := make(map[typeCode]bool, len(codes))
	for _, c := range codes {
		m[c] = true
	}
	return m
}

// IsCompatibleWith implements spec.md §4.2's compatibility relation.
func IsCompatibleWith(s, t reflect.Type) bool {
	if s == t {
		return true
	}
	if t == nil {
		return false
	}
	if isReferenceType(t) {
		return s != nil && s.AssignableTo(t)
	}
	sNullable, tNullable := IsNullable(s), IsNullable(t)
	if sNullable && !tNullable {
		return false
	}
	sn, tn := NonNullable(s), NonNullable(t)
	if IsEnum(tn) {
		return sn == tn
	}
	sc, tc := codeOf(sn), codeOf(tn)
	if sc == tcNone || tc == tcNone {
		return sn == tn
	}
	row, ok := wideningTable[sc]
	if !ok {
		return false
	}
	return row[tc]
}

func isReferenceType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.String:
		return true
	default:
		return false
	}
}
