package table

import (
	"fmt"

	"github.com/fauxsoup/neural/lib/table/value"
)

// --------------------------------------------------------------------------
// Operation <-> Term Conversion
// --------------------------------------------------------------------------

// Compound update operations travel over the wire as terms so that a
// single payload encoding covers both stored values and operation
// lists. Every op becomes a two-field tuple {pos, arg}, and an op slice
// becomes a list of such tuples.

// EncodeIncrOps converts ops to their term form.
func EncodeIncrOps(ops []IncrOp) value.Term {
	items := make([]value.Term, len(ops))
	for i, op := range ops {
		items[i] = value.Tuple(value.Int(int64(op.Pos)), value.Int(op.Delta))
	}
	return value.List(items...)
}

// DecodeIncrOps parses the term form produced by EncodeIncrOps.
func DecodeIncrOps(t value.Term) ([]IncrOp, error) {
	tuples, err := opTuples(t, "increment")
	if err != nil {
		return nil, err
	}

	ops := make([]IncrOp, len(tuples))
	for i, tup := range tuples {
		pos, arg, err := opFields(tup, "increment", i)
		if err != nil {
			return nil, err
		}
		if !arg.IsNumber() {
			return nil, NewError(RetCBadValue, fmt.Sprintf("increment op %d: delta is not an integer", i))
		}
		ops[i] = IncrOp{Pos: pos, Delta: arg.Int()}
	}
	return ops, nil
}

// EncodeUnshiftOps converts ops to their term form.
func EncodeUnshiftOps(ops []UnshiftOp) value.Term {
	items := make([]value.Term, len(ops))
	for i, op := range ops {
		items[i] = value.Tuple(value.Int(int64(op.Pos)), value.List(op.Values...))
	}
	return value.List(items...)
}

// DecodeUnshiftOps parses the term form produced by EncodeUnshiftOps.
func DecodeUnshiftOps(t value.Term) ([]UnshiftOp, error) {
	tuples, err := opTuples(t, "unshift")
	if err != nil {
		return nil, err
	}

	ops := make([]UnshiftOp, len(tuples))
	for i, tup := range tuples {
		pos, arg, err := opFields(tup, "unshift", i)
		if err != nil {
			return nil, err
		}
		if !arg.IsList() {
			return nil, NewError(RetCBadValue, fmt.Sprintf("unshift op %d: values are not a list", i))
		}
		ops[i] = UnshiftOp{Pos: pos, Values: arg.Items()}
	}
	return ops, nil
}

// EncodeShiftOps converts ops to their term form.
func EncodeShiftOps(ops []ShiftOp) value.Term {
	items := make([]value.Term, len(ops))
	for i, op := range ops {
		items[i] = value.Tuple(value.Int(int64(op.Pos)), value.Int(int64(op.Count)))
	}
	return value.List(items...)
}

// DecodeShiftOps parses the term form produced by EncodeShiftOps.
func DecodeShiftOps(t value.Term) ([]ShiftOp, error) {
	tuples, err := opTuples(t, "shift")
	if err != nil {
		return nil, err
	}

	ops := make([]ShiftOp, len(tuples))
	for i, tup := range tuples {
		pos, arg, err := opFields(tup, "shift", i)
		if err != nil {
			return nil, err
		}
		if !arg.IsNumber() {
			return nil, NewError(RetCBadValue, fmt.Sprintf("shift op %d: count is not an integer", i))
		}
		ops[i] = ShiftOp{Pos: pos, Count: int(arg.Int())}
	}
	return ops, nil
}

// EncodeSwapOps converts ops to their term form.
func EncodeSwapOps(ops []SwapOp) value.Term {
	items := make([]value.Term, len(ops))
	for i, op := range ops {
		items[i] = value.Tuple(value.Int(int64(op.Pos)), op.Value)
	}
	return value.List(items...)
}

// DecodeSwapOps parses the term form produced by EncodeSwapOps.
func DecodeSwapOps(t value.Term) ([]SwapOp, error) {
	tuples, err := opTuples(t, "swap")
	if err != nil {
		return nil, err
	}

	ops := make([]SwapOp, len(tuples))
	for i, tup := range tuples {
		pos, arg, err := opFields(tup, "swap", i)
		if err != nil {
			return nil, err
		}
		ops[i] = SwapOp{Pos: pos, Value: arg}
	}
	return ops, nil
}

// --------------------------------------------------------------------------
// Result <-> Term Conversion
// --------------------------------------------------------------------------

// EncodeIntResults converts per-op integer results to their term form.
func EncodeIntResults(values []int64) value.Term {
	items := make([]value.Term, len(values))
	for i, v := range values {
		items[i] = value.Int(v)
	}
	return value.List(items...)
}

// DecodeIntResults parses the term form produced by EncodeIntResults.
func DecodeIntResults(t value.Term) ([]int64, error) {
	if !t.IsList() {
		return nil, NewError(RetCBadValue, "integer results are not a list")
	}
	items := t.Items()
	values := make([]int64, len(items))
	for i, item := range items {
		if !item.IsNumber() {
			return nil, NewError(RetCBadValue, fmt.Sprintf("result %d is not an integer", i))
		}
		values[i] = item.Int()
	}
	return values, nil
}

// EncodeTermLists converts per-op term-slice results to their term form.
func EncodeTermLists(lists [][]value.Term) value.Term {
	items := make([]value.Term, len(lists))
	for i, l := range lists {
		items[i] = value.List(l...)
	}
	return value.List(items...)
}

// DecodeTermLists parses the term form produced by EncodeTermLists.
func DecodeTermLists(t value.Term) ([][]value.Term, error) {
	if !t.IsList() {
		return nil, NewError(RetCBadValue, "results are not a list")
	}
	items := t.Items()
	lists := make([][]value.Term, len(items))
	for i, item := range items {
		if !item.IsList() {
			return nil, NewError(RetCBadValue, fmt.Sprintf("result %d is not a list", i))
		}
		lists[i] = item.Items()
	}
	return lists, nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// opTuples unpacks the outer list of an encoded op slice.
func opTuples(t value.Term, kind string) ([]value.Term, error) {
	if !t.IsList() {
		return nil, NewError(RetCBadValue, fmt.Sprintf("%s ops are not a list", kind))
	}
	return t.Items(), nil
}

// opFields unpacks one encoded op tuple into its position and argument.
func opFields(tup value.Term, kind string, idx int) (int, value.Term, error) {
	if tup.Arity() != 2 {
		return 0, value.Term{}, NewError(RetCBadValue, fmt.Sprintf("%s op %d is not a {pos, arg} tuple", kind, idx))
	}
	posTerm, _ := tup.Field(1)
	arg, _ := tup.Field(2)
	if !posTerm.IsNumber() {
		return 0, value.Term{}, NewError(RetCBadValue, fmt.Sprintf("%s op %d: position is not an integer", kind, idx))
	}
	return int(posTerm.Int()), arg, nil
}
