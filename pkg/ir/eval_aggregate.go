package ir

import (
	"fmt"
	"reflect"

	"github.com/exprlang/dynlinq/pkg/hostkit"
)

// evalAggregateCall executes a KindCall node built by pkg/aggregate: the
// receiver is an enumerable, node.Callee names one of spec.md §4.7's
// fixed forms, and node.Args holds either nothing or a single lambda
// body, pushed as a fresh "it" frame typed as the receiver's element
// type (spec.md §4.5 applies uniformly here, including to Contains: its
// argument is evaluated once under that pushed frame, not per element,
// since Contains tests membership of a single value rather than a
// per-element predicate).
func evalAggregateCall(node *Node, scope *Scope) (reflect.Value, error) {
	recv, err := Eval(node.Receiver, scope)
	if err != nil {
		return reflect.Value{}, err
	}
	recv = deref(recv)
	if recv.Kind() != reflect.Slice && recv.Kind() != reflect.Array {
		return reflect.Value{}, fmt.Errorf("ir: aggregate %s requires an enumerable receiver, got %s", node.Callee, recv.Type())
	}

	var lambda *Node
	if len(node.Args) == 1 {
		lambda = node.Args[0]
	}

	predicate := func(elem reflect.Value) (reflect.Value, error) {
		return CallLambda(lambda, scope, []reflect.Value{elem})
	}

	switch node.Callee {
	case "Any":
		if lambda == nil {
			return reflect.ValueOf(recv.Len() > 0), nil
		}
		for i := 0; i < recv.Len(); i++ {
			v, err := predicate(recv.Index(i))
			if err != nil {
				return reflect.Value{}, err
			}
			if truth(v) {
				return reflect.ValueOf(true), nil
			}
		}
		return reflect.ValueOf(false), nil

	case "All":
		for i := 0; i < recv.Len(); i++ {
			v, err := predicate(recv.Index(i))
			if err != nil {
				return reflect.Value{}, err
			}
			if !truth(v) {
				return reflect.ValueOf(false), nil
			}
		}
		return reflect.ValueOf(true), nil

	case "Count":
		if lambda == nil {
			return reflect.ValueOf(recv.Len()), nil
		}
		n := 0
		for i := 0; i < recv.Len(); i++ {
			v, err := predicate(recv.Index(i))
			if err != nil {
				return reflect.Value{}, err
			}
			if truth(v) {
				n++
			}
		}
		return reflect.ValueOf(n), nil

	case "Where":
		out := reflect.MakeSlice(recv.Type(), 0, recv.Len())
		for i := 0; i < recv.Len(); i++ {
			v, err := predicate(recv.Index(i))
			if err != nil {
				return reflect.Value{}, err
			}
			if truth(v) {
				out = reflect.Append(out, recv.Index(i))
			}
		}
		return out, nil

	case "First", "FirstOrDefault":
		for i := 0; i < recv.Len(); i++ {
			elem := recv.Index(i)
			if lambda != nil {
				v, err := predicate(elem)
				if err != nil {
					return reflect.Value{}, err
				}
				if !truth(v) {
					continue
				}
			}
			return elem, nil
		}
		if node.Callee == "First" {
			return reflect.Value{}, fmt.Errorf("ir: First: sequence contains no matching element")
		}
		return reflect.Zero(recv.Type().Elem()), nil

	case "Min", "Max":
		return minMax(node.Callee == "Max", recv, lambda, scope)

	case "Sum", "Average":
		return sumAverage(node.Callee == "Average", recv, lambda, scope, node.Type)

	case "Contains":
		target, err := CallLambda(lambda, scope, []reflect.Value{reflect.Zero(recv.Type().Elem())})
		if err != nil {
			return reflect.Value{}, err
		}
		for i := 0; i < recv.Len(); i++ {
			if reflect.DeepEqual(recv.Index(i).Interface(), target.Interface()) {
				return reflect.ValueOf(true), nil
			}
		}
		return reflect.ValueOf(false), nil

	case "Select":
		return mapSelect(recv, lambda, scope, node.Type)

	case "SelectMany":
		return selectMany(recv, lambda, scope, node.Type)

	case "GroupBy":
		return groupBy(recv, lambda, scope, node.Type)

	case "Distinct":
		return distinctOrSet(recv, lambda, scope, distinctOp)

	case "Union":
		return distinctOrSet(recv, lambda, scope, distinctOp)

	case "Concat":
		return recv, nil

	default:
		return reflect.Value{}, fmt.Errorf("ir: unknown aggregate %q", node.Callee)
	}
}

func minMax(max bool, recv reflect.Value, lambda *Node, scope *Scope) (reflect.Value, error) {
	if recv.Len() == 0 {
		return reflect.Value{}, fmt.Errorf("ir: Min/Max on empty sequence")
	}
	keyOf := func(elem reflect.Value) (reflect.Value, error) {
		if lambda == nil {
			return elem, nil
		}
		return CallLambda(lambda, scope, []reflect.Value{elem})
	}
	best, err := keyOf(recv.Index(0))
	if err != nil {
		return reflect.Value{}, err
	}
	bestElem := recv.Index(0)
	for i := 1; i < recv.Len(); i++ {
		k, err := keyOf(recv.Index(i))
		if err != nil {
			return reflect.Value{}, err
		}
		c, err := evalComparison(OpLess, k, best)
		if err != nil {
			return reflect.Value{}, err
		}
		better := truth(c) // k < best
		if max {
			better = !better && !reflect.DeepEqual(k.Interface(), best.Interface())
		}
		if better {
			best, bestElem = k, recv.Index(i)
		}
	}
	if lambda == nil {
		return bestElem, nil
	}
	return best, nil
}

func sumAverage(average bool, recv reflect.Value, lambda *Node, scope *Scope, resultType reflect.Type) (reflect.Value, error) {
	var total float64
	count := 0
	for i := 0; i < recv.Len(); i++ {
		elem := recv.Index(i)
		var v reflect.Value = elem
		if lambda != nil {
			var err error
			v, err = CallLambda(lambda, scope, []reflect.Value{elem})
			if err != nil {
				return reflect.Value{}, err
			}
		}
		f, ok := asFloat(v)
		if !ok {
			continue
		}
		total += f
		count++
	}
	if average && count > 0 {
		total /= float64(count)
	}
	if average && count == 0 {
		if hostkit.IsNullable(resultType) {
			return hostkit.MakeNullable(resultType, reflect.Value{}), nil
		}
	}
	nn := hostkit.NonNullable(resultType)
	if nn == nil {
		nn = reflect.TypeOf(float64(0))
	}
	out := reflect.New(nn).Elem()
	switch nn.Kind() {
	case reflect.Float32, reflect.Float64:
		out.SetFloat(total)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out.SetInt(int64(total))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		out.SetUint(uint64(total))
	default:
		out.SetFloat(total)
	}
	if hostkit.IsNullable(resultType) {
		return hostkit.MakeNullable(resultType, out), nil
	}
	return out, nil
}

func mapSelect(recv reflect.Value, lambda *Node, scope *Scope, resultType reflect.Type) (reflect.Value, error) {
	elemType := resultType
	if resultType != nil && resultType.Kind() == reflect.Slice {
		elemType = resultType.Elem()
	}
	out := reflect.MakeSlice(reflect.SliceOf(elemType), 0, recv.Len())
	for i := 0; i < recv.Len(); i++ {
		v, err := CallLambda(lambda, scope, []reflect.Value{recv.Index(i)})
		if err != nil {
			return reflect.Value{}, err
		}
		out = reflect.Append(out, v)
	}
	return out, nil
}

func selectMany(recv reflect.Value, lambda *Node, scope *Scope, resultType reflect.Type) (reflect.Value, error) {
	elemType := resultType
	if resultType != nil && resultType.Kind() == reflect.Slice {
		elemType = resultType.Elem()
	}
	out := reflect.MakeSlice(reflect.SliceOf(elemType), 0, recv.Len())
	for i := 0; i < recv.Len(); i++ {
		v, err := CallLambda(lambda, scope, []reflect.Value{recv.Index(i)})
		if err != nil {
			return reflect.Value{}, err
		}
		if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
			for j := 0; j < v.Len(); j++ {
				out = reflect.Append(out, v.Index(j))
			}
		} else {
			out = reflect.Append(out, v)
		}
	}
	return out, nil
}

// Group pairs a key with its members; GroupBy returns a []Group, one
// entry per distinct key with Items holding that key's elements.
type Group struct {
	Key   interface{}
	Items interface{}
}

func groupBy(recv reflect.Value, lambda *Node, scope *Scope, resultType reflect.Type) (reflect.Value, error) {
	type bucket struct {
		key   reflect.Value
		items reflect.Value
	}
	var buckets []bucket
	for i := 0; i < recv.Len(); i++ {
		elem := recv.Index(i)
		k, err := CallLambda(lambda, scope, []reflect.Value{elem})
		if err != nil {
			return reflect.Value{}, err
		}
		found := false
		for bi := range buckets {
			if reflect.DeepEqual(buckets[bi].key.Interface(), k.Interface()) {
				buckets[bi].items = reflect.Append(buckets[bi].items, elem)
				found = true
				break
			}
		}
		if !found {
			items := reflect.MakeSlice(reflect.SliceOf(recv.Type().Elem()), 0, 4)
			items = reflect.Append(items, elem)
			buckets = append(buckets, bucket{key: k, items: items})
		}
	}
	groupType := reflect.TypeOf(Group{})
	out := reflect.MakeSlice(reflect.SliceOf(groupType), 0, len(buckets))
	for _, b := range buckets {
		g := Group{Key: b.key.Interface(), Items: b.items.Interface()}
		out = reflect.Append(out, reflect.ValueOf(g))
	}
	return out, nil
}

type setOp int

const distinctOp setOp = 0

func distinctOrSet(recv reflect.Value, lambda *Node, scope *Scope, _ setOp) (reflect.Value, error) {
	out := reflect.MakeSlice(recv.Type(), 0, recv.Len())
	for i := 0; i < recv.Len(); i++ {
		elem := recv.Index(i)
		dup := false
		for j := 0; j < out.Len(); j++ {
			if reflect.DeepEqual(out.Index(j).Interface(), elem.Interface()) {
				dup = true
				break
			}
		}
		if !dup {
			out = reflect.Append(out, elem)
		}
	}
	return out, nil
}
