package stdlib

import (
	"fmt"
	"math"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/evaluator"
)

// abs(x) → |x|
func builtinAbs(args []evaluator.Value) (evaluator.Value, error) {
	if err := arity("abs", args, 1, 1); err != nil {
		return nil, err
	}
	n, err := numeric("abs", args[0])
	if err != nil {
		return nil, err
	}
	return evaluator.NewNumber(math.Abs(n)), nil
}

// round(x) rounds half-up to the nearest integer; round(x, n) rounds to n
// decimal places.
func builtinRound(args []evaluator.Value) (evaluator.Value, error) {
	if err := arity("round", args, 1, 2); err != nil {
		return nil, err
	}
	x, err := numeric("round", args[0])
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return evaluator.NewNumber(math.Floor(x + 0.5)), nil
	}
	digits, err := numeric("round", args[1])
	if err != nil {
		return nil, err
	}
	var rounded float64
	if d := math.Trunc(digits); d >= 0 {
		scale := math.Pow(10, d)
		rounded = math.Floor(x*scale+0.5) / scale
	} else {
		scale := math.Pow(10, -d)
		rounded = math.Floor(x/scale+0.5) * scale
	}
	if math.IsNaN(rounded) || math.IsInf(rounded, 0) {
		return evaluator.NewNumber(x), nil
	}
	return evaluator.NewNumber(rounded), nil
}

func builtinMax(args []evaluator.Value) (evaluator.Value, error) {
	return extremum("max", args, func(a, b float64) bool { return a > b })
}

func builtinMin(args []evaluator.Value) (evaluator.Value, error) {
	return extremum("min", args, func(a, b float64) bool { return a < b })
}

// extremum implements max/min over a single container argument or a
// variadic argument list. Every element must be numeric.
func extremum(name string, args []evaluator.Value, better func(a, b float64) bool) (evaluator.Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%s() expected at least 1 argument", name)
	}
	candidates := args
	if len(args) == 1 {
		items, err := iterate(name, args[0])
		if err != nil {
			return nil, err
		}
		candidates = items
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%s() arg is an empty sequence", name)
	}
	var best float64
	for i, c := range candidates {
		n, err := numeric(name, c)
		if err != nil {
			return nil, err
		}
		if i == 0 || better(n, best) {
			best = n
		}
	}
	return evaluator.NewNumber(best), nil
}

// sum(container) → total of numeric elements
func builtinSum(args []evaluator.Value) (evaluator.Value, error) {
	if err := arity("sum", args, 1, 2); err != nil {
		return nil, err
	}
	items, err := iterate("sum", args[0])
	if err != nil {
		return nil, err
	}
	total := 0.0
	if len(args) == 2 {
		if total, err = numeric("sum", args[1]); err != nil {
			return nil, err
		}
	}
	for _, item := range items {
		n, err := numeric("sum", item)
		if err != nil {
			return nil, err
		}
		total += n
	}
	return evaluator.NewNumber(total), nil
}

// numeric accepts Numbers and Bools.
func numeric(name string, v evaluator.Value) (float64, error) {
	switch val := v.(type) {
	case evaluator.Number:
		return val.Value, nil
	case evaluator.Bool:
		if val.Value {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%s(): expected a number, got '%s'", name, evaluator.TypeName(v))
}
