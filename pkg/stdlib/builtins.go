package stdlib

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/evaluator"
)

// maxRangeItems bounds the list materialized by range().
const maxRangeItems = 1_000_000

// RegisterDefaults adds all built-in functions and methods.
func RegisterDefaults(r *Registry) {
	// Builtins
	r.Register(Fn{Name: "len", Execute: builtinLen})
	r.Register(Fn{Name: "abs", Execute: builtinAbs})
	r.Register(Fn{Name: "round", Execute: builtinRound})
	r.Register(Fn{Name: "max", Execute: builtinMax})
	r.Register(Fn{Name: "min", Execute: builtinMin})
	r.Register(Fn{Name: "sum", Execute: builtinSum})

	// Conversions
	r.Register(Fn{Name: "int", Execute: builtinInt})
	r.Register(Fn{Name: "float", Execute: builtinFloat})
	r.Register(Fn{Name: "str", Execute: builtinStr})
	r.Register(Fn{Name: "bool", Execute: builtinBool})

	// Sequences
	r.Register(Fn{Name: "sorted", Execute: builtinSorted})
	r.Register(Fn{Name: "list", Execute: builtinList})
	r.Register(Fn{Name: "range", Execute: builtinRange})

	registerStringMethods(r)
	registerListMethods(r)
	registerDictMethods(r)
}

func arity(name string, args []evaluator.Value, min, max int) error {
	if len(args) < min || len(args) > max {
		if min == max {
			return fmt.Errorf("%s() takes %d argument(s), got %d", name, min, len(args))
		}
		return fmt.Errorf("%s() takes %d to %d arguments, got %d", name, min, max, len(args))
	}
	return nil
}

// len(x) → number of characters, elements or entries
func builtinLen(args []evaluator.Value) (evaluator.Value, error) {
	if err := arity("len", args, 1, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case evaluator.String:
		return evaluator.NewNumber(float64(utf8.RuneCountInString(v.Value))), nil
	case *evaluator.List:
		return evaluator.NewNumber(float64(len(v.Items))), nil
	case *evaluator.Tuple:
		return evaluator.NewNumber(float64(len(v.Items))), nil
	case *evaluator.Dict:
		return evaluator.NewNumber(float64(v.Len())), nil
	}
	return nil, fmt.Errorf("object of type '%s' has no len()", evaluator.TypeName(args[0]))
}

// str(x) → print form
func builtinStr(args []evaluator.Value) (evaluator.Value, error) {
	if len(args) == 0 {
		return evaluator.NewString(""), nil
	}
	if err := arity("str", args, 1, 1); err != nil {
		return nil, err
	}
	return evaluator.NewString(evaluator.Print(args[0])), nil
}

// bool(x) → truthiness
func builtinBool(args []evaluator.Value) (evaluator.Value, error) {
	if len(args) == 0 {
		return evaluator.NewBool(false), nil
	}
	if err := arity("bool", args, 1, 1); err != nil {
		return nil, err
	}
	return evaluator.NewBool(evaluator.Truthiness(args[0])), nil
}

// int(x) → truncated number; a failed conversion yields 0
func builtinInt(args []evaluator.Value) (evaluator.Value, error) {
	if len(args) == 0 {
		return evaluator.NewNumber(0), nil
	}
	if err := arity("int", args, 1, 1); err != nil {
		return nil, err
	}
	n := convertNumber(args[0])
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return evaluator.NewNumber(0), nil
	}
	return evaluator.NewNumber(math.Trunc(n)), nil
}

// float(x) → number; a failed conversion yields 0
func builtinFloat(args []evaluator.Value) (evaluator.Value, error) {
	if len(args) == 0 {
		return evaluator.NewNumber(0), nil
	}
	if err := arity("float", args, 1, 1); err != nil {
		return nil, err
	}
	return evaluator.NewNumber(convertNumber(args[0])), nil
}

func convertNumber(v evaluator.Value) float64 {
	switch val := v.(type) {
	case evaluator.Number:
		return val.Value
	case evaluator.Bool:
		if val.Value {
			return 1
		}
	case evaluator.String:
		s := strings.ReplaceAll(strings.TrimSpace(val.Value), "_", "")
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n
		}
	}
	return 0
}

// sorted(container) → new ascending list
func builtinSorted(args []evaluator.Value) (evaluator.Value, error) {
	if err := arity("sorted", args, 1, 1); err != nil {
		return nil, err
	}
	items, err := iterate("sorted", args[0])
	if err != nil {
		return nil, err
	}
	if err := sortValues(items); err != nil {
		return nil, fmt.Errorf("sorted(): %w", err)
	}
	return evaluator.NewList(items), nil
}

// list(container) → new list of its elements
func builtinList(args []evaluator.Value) (evaluator.Value, error) {
	if len(args) == 0 {
		return evaluator.NewList(nil), nil
	}
	if err := arity("list", args, 1, 1); err != nil {
		return nil, err
	}
	items, err := iterate("list", args[0])
	if err != nil {
		return nil, err
	}
	return evaluator.NewList(items), nil
}

// range(stop) / range(start, stop[, step]) → materialized list
func builtinRange(args []evaluator.Value) (evaluator.Value, error) {
	if err := arity("range", args, 1, 3); err != nil {
		return nil, err
	}
	nums, err := numbers("range", args)
	if err != nil {
		return nil, err
	}
	start, stop, step := 0.0, nums[0], 1.0
	if len(nums) >= 2 {
		start, stop = nums[0], nums[1]
	}
	if len(nums) == 3 {
		step = nums[2]
	}
	if step == 0 {
		return nil, fmt.Errorf("range() step must not be zero")
	}

	var items []evaluator.Value
	for n := 0; ; n++ {
		v := start + float64(n)*step
		if (step > 0 && v >= stop) || (step < 0 && v <= stop) {
			break
		}
		if n >= maxRangeItems {
			return nil, fmt.Errorf("range too large: more than %d items", maxRangeItems)
		}
		items = append(items, evaluator.NewNumber(v))
	}
	return evaluator.NewList(items), nil
}

// iterate returns a fresh slice of the elements of a list, tuple, string
// (characters) or dict (keys).
func iterate(name string, v evaluator.Value) ([]evaluator.Value, error) {
	switch c := v.(type) {
	case *evaluator.List, *evaluator.Tuple:
		items, _ := evaluator.Items(c)
		return append([]evaluator.Value(nil), items...), nil
	case evaluator.String:
		var out []evaluator.Value
		for _, r := range c.Value {
			out = append(out, evaluator.NewString(string(r)))
		}
		return out, nil
	case *evaluator.Dict:
		return c.KeyValues(), nil
	}
	return nil, fmt.Errorf("%s(): '%s' object is not iterable", name, evaluator.TypeName(v))
}

// numbers requires every arg to be a Number.
func numbers(name string, args []evaluator.Value) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		n, ok := a.(evaluator.Number)
		if !ok {
			return nil, fmt.Errorf("%s(): expected a number, got '%s'", name, evaluator.TypeName(a))
		}
		out[i] = n.Value
	}
	return out, nil
}

// sortValues sorts items ascending in place. Incomparable pairs are an error.
func sortValues(items []evaluator.Value) error {
	var err error
	sort.SliceStable(items, func(i, j int) bool {
		cmp, ok := evaluator.Compare(items[i], items[j])
		if !ok && err == nil {
			err = fmt.Errorf("cannot compare '%s' and '%s'",
				evaluator.TypeName(items[i]), evaluator.TypeName(items[j]))
		}
		return cmp < 0
	})
	return err
}
