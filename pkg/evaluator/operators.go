package evaluator

import (
	"math"
	"strings"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/ast"
)

// ApplyBinary evaluates a binary operator on resolved operands. ok is false
// when the operator is not defined for the operand kinds.
func ApplyBinary(op ast.BinaryOp, left, right Value) (Value, bool) {
	switch op {
	case ast.OpEqEq:
		return NewBool(LooseEqual(left, right)), true
	case ast.OpNeq:
		return NewBool(!LooseEqual(left, right)), true
	case ast.OpGt, ast.OpLt, ast.OpGtEq, ast.OpLtEq:
		cmp, ok := Compare(left, right)
		if !ok {
			return NewBool(false), true
		}
		switch op {
		case ast.OpGt:
			return NewBool(cmp > 0), true
		case ast.OpLt:
			return NewBool(cmp < 0), true
		case ast.OpGtEq:
			return NewBool(cmp >= 0), true
		default:
			return NewBool(cmp <= 0), true
		}
	case ast.OpIn, ast.OpNotIn:
		found, ok := Contains(right, left)
		if !ok {
			return nil, false
		}
		if op == ast.OpNotIn {
			found = !found
		}
		return NewBool(found), true
	case ast.OpAdd:
		_, ls := left.(String)
		_, rs := right.(String)
		if ls || rs {
			return NewString(Print(left) + Print(right)), true
		}
	}

	l, lok := arithNumber(left)
	r, rok := arithNumber(right)
	if !lok || !rok {
		return nil, false
	}

	switch op {
	case ast.OpAdd:
		return NewNumber(l + r), true
	case ast.OpSub:
		return NewNumber(l - r), true
	case ast.OpMul:
		return NewNumber(l * r), true
	case ast.OpDiv:
		if r == 0 {
			return nil, false
		}
		return NewNumber(l / r), true
	case ast.OpFloorDiv:
		// Truncates toward zero.
		if r == 0 {
			return nil, false
		}
		return NewNumber(math.Trunc(l / r)), true
	case ast.OpMod:
		// Sign follows the dividend.
		if r == 0 {
			return nil, false
		}
		return NewNumber(math.Mod(l, r)), true
	case ast.OpPow:
		if l == 0 && r < 0 {
			return nil, false
		}
		res := math.Pow(l, r)
		if math.IsNaN(res) {
			return nil, false
		}
		return NewNumber(res), true
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShl, ast.OpShr:
		return bitwise(op, l, r)
	}
	return nil, false
}

func fitsInt64(f float64) bool {
	return !math.IsNaN(f) && math.Abs(f) < 1<<63
}

func bitwise(op ast.BinaryOp, l, r float64) (Value, bool) {
	// Operands must fit in an int64.
	if !fitsInt64(l) || !fitsInt64(r) {
		return nil, false
	}
	a, b := int64(math.Trunc(l)), int64(math.Trunc(r))
	switch op {
	case ast.OpBitAnd:
		return NewNumber(float64(a & b)), true
	case ast.OpBitOr:
		return NewNumber(float64(a | b)), true
	case ast.OpBitXor:
		return NewNumber(float64(a ^ b)), true
	}
	if b < 0 {
		return nil, false
	}
	if b > 63 {
		if op == ast.OpShr && a < 0 {
			return NewNumber(-1), true
		}
		return NewNumber(0), true
	}
	if op == ast.OpShl {
		return NewNumber(float64(a << uint(b))), true
	}
	return NewNumber(float64(a >> uint(b))), true
}

// ApplyUnary evaluates a unary operator on a resolved operand.
func ApplyUnary(op ast.UnaryOp, operand Value) (Value, bool) {
	if op == ast.OpNot {
		return NewBool(!Truthiness(operand)), true
	}
	n, ok := arithNumber(operand)
	if !ok {
		return nil, false
	}
	if op == ast.OpNeg {
		return NewNumber(-n), true
	}
	return NewNumber(n), true
}

// Contains implements membership: list and tuple elements by loose
// equality, dict keys, and substrings of a string.
func Contains(container, item Value) (found bool, ok bool) {
	switch c := container.(type) {
	case *List, *Tuple:
		items, _ := Items(c)
		for _, el := range items {
			if LooseEqual(el, item) {
				return true, true
			}
		}
		return false, true
	case *Dict:
		if !Hashable(item) {
			return false, false
		}
		_, found := c.Get(DictKey(item))
		return found, true
	case String:
		s, isStr := item.(String)
		if !isStr {
			return false, false
		}
		return strings.Contains(c.Value, s.Value), true
	}
	return false, false
}

// Hashable reports whether v may be used as a dict key.
func Hashable(v Value) bool {
	switch val := v.(type) {
	case *List, *Dict:
		return false
	case *Tuple:
		for _, item := range val.Items {
			if !Hashable(item) {
				return false
			}
		}
	}
	return true
}

// Index looks up obj[idx]: numeric positions (negative counts from the end)
// for lists, tuples and strings, keys for dicts. ok is false for a missing
// key, an out-of-range position or an ill-typed index.
func Index(obj, idx Value) (Value, bool) {
	switch c := obj.(type) {
	case *List, *Tuple:
		items, _ := Items(c)
		i, ok := position(idx, len(items))
		if !ok {
			return nil, false
		}
		return items[i], true
	case String:
		runes := []rune(c.Value)
		i, ok := position(idx, len(runes))
		if !ok {
			return nil, false
		}
		return NewString(string(runes[i])), true
	case *Dict:
		if !Hashable(idx) {
			return nil, false
		}
		return c.Get(DictKey(idx))
	}
	return nil, false
}

// position converts an index value into a bounds-checked offset.
func position(idx Value, length int) (int, bool) {
	n, ok := arithNumber(idx)
	if !ok || n != math.Trunc(n) || math.Abs(n) > float64(length) {
		return 0, false
	}
	i := int(n)
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, false
	}
	return i, true
}

// ReplaceIndex returns a new container equal to obj with obj[idx] set to
// val. obj itself is never modified.
func ReplaceIndex(obj, idx, val Value) (Value, bool) {
	switch c := obj.(type) {
	case *List:
		i, ok := position(idx, len(c.Items))
		if !ok {
			return nil, false
		}
		items := make([]Value, len(c.Items))
		copy(items, c.Items)
		items[i] = val
		return NewList(items), true
	case *Dict:
		if !Hashable(idx) {
			return nil, false
		}
		pairs := make([]KeyValue, len(c.Pairs))
		copy(pairs, c.Pairs)
		d := NewDict(pairs)
		d.Set(DictKey(idx), val)
		return d, true
	}
	return nil, false
}
