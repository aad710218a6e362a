package evaluator

import (
	"math"
	"strconv"
	"strings"
)

// LooseEqual compares two values with coercive equality: numbers, booleans
// and numeric strings compare by numeric value ("5" == 5, True == 1), and
// containers of the same kind compare element-wise with the same rule. This
// intentionally differs from strict typed equality.
func LooseEqual(a, b Value) bool {
	return looseEqual(a, b, 0)
}

const maxEqualDepth = 64

func looseEqual(a, b Value, depth int) bool {
	if depth > maxEqualDepth {
		return false
	}
	if isNone(a) || isNone(b) {
		return isNone(a) && isNone(b)
	}

	switch av := a.(type) {
	case String:
		if bv, ok := b.(String); ok {
			return av.Value == bv.Value
		}
	case *List:
		bv, ok := b.(*List)
		if !ok {
			return false
		}
		return av == bv || itemsEqual(av.Items, bv.Items, depth)
	case *Tuple:
		bv, ok := b.(*Tuple)
		if !ok {
			return false
		}
		return av == bv || itemsEqual(av.Items, bv.Items, depth)
	case *Dict:
		bv, ok := b.(*Dict)
		if !ok || len(av.Pairs) != len(bv.Pairs) {
			return false
		}
		if av == bv {
			return true
		}
		for _, kv := range av.Pairs {
			other, found := bv.Get(kv.Key)
			if !found || !looseEqual(kv.Value, other, depth+1) {
				return false
			}
		}
		return true
	}

	an, aok := toNumber(a)
	bn, bok := toNumber(b)
	return aok && bok && an == bn
}

func itemsEqual(a, b []Value, depth int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !looseEqual(a[i], b[i], depth+1) {
			return false
		}
	}
	return true
}

func isNone(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(None)
	return ok
}

// toNumber coerces scalars to a number for loose comparison. Strings convert
// when their trimmed text parses as a number; the empty string is 0.
func toNumber(v Value) (float64, bool) {
	switch val := v.(type) {
	case Number:
		return val.Value, true
	case Bool:
		if val.Value {
			return 1, true
		}
		return 0, true
	case String:
		s := strings.TrimSpace(val.Value)
		if s == "" {
			return 0, true
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), false
		}
		return n, true
	}
	return 0, false
}

// arithNumber accepts only numbers and booleans as arithmetic operands.
func arithNumber(v Value) (float64, bool) {
	switch val := v.(type) {
	case Number:
		return val.Value, true
	case Bool:
		if val.Value {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Compare orders a and b. ok is false when the values are not comparable,
// in which case every ordering comparison is false. Containers nested deeper
// than maxEqualDepth are not comparable.
func Compare(a, b Value) (cmp int, ok bool) {
	return compare(a, b, 0)
}

func compare(a, b Value, depth int) (int, bool) {
	if depth > maxEqualDepth {
		return 0, false
	}
	if as, isStr := a.(String); isStr {
		if bs, isStr := b.(String); isStr {
			return strings.Compare(as.Value, bs.Value), true
		}
	}

	if ai, isSeq := Items(a); isSeq {
		bi, isSeq := Items(b)
		if !isSeq || KindOf(a) != KindOf(b) {
			return 0, false
		}
		if sameContainer(a, b) {
			return 0, true
		}
		for i := 0; i < len(ai) && i < len(bi); i++ {
			if looseEqual(ai[i], bi[i], depth+1) {
				continue
			}
			return compare(ai[i], bi[i], depth+1)
		}
		return compareFloat(float64(len(ai)), float64(len(bi))), true
	}

	an, aok := toNumber(a)
	bn, bok := toNumber(b)
	if !aok || !bok || math.IsNaN(an) || math.IsNaN(bn) {
		return 0, false
	}
	return compareFloat(an, bn), true
}

func sameContainer(a, b Value) bool {
	switch av := a.(type) {
	case *List:
		bv, ok := b.(*List)
		return ok && av == bv
	case *Tuple:
		bv, ok := b.(*Tuple)
		return ok && av == bv
	}
	return false
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
