package stdlib

import (
	"fmt"
	"math"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/evaluator"
)

type listFn func(l *evaluator.List, args []evaluator.Value) (evaluator.Value, error)

func listMethod(name string, min, max int, mutates bool, fn listFn) Method {
	return Method{
		Receiver: evaluator.KindList,
		Name:     name,
		Mutates:  mutates,
		Execute: func(recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
			if err := arity(name, args, min, max); err != nil {
				return nil, err
			}
			return fn(recv.(*evaluator.List), args)
		},
	}
}

func registerListMethods(r *Registry) {
	// In place; every alias of the list observes the change.
	r.RegisterMethod(listMethod("append", 1, 1, true, listAppend))
	r.RegisterMethod(listMethod("insert", 2, 2, true, listInsert))
	r.RegisterMethod(listMethod("extend", 1, 1, true, listExtend))
	r.RegisterMethod(listMethod("sort", 0, 0, true, listSort))
	r.RegisterMethod(listMethod("reverse", 0, 0, true, listReverse))
	r.RegisterMethod(listMethod("remove", 1, 1, true, listRemove))
	r.RegisterMethod(listMethod("clear", 0, 0, true, listClear))
	r.RegisterMethod(listMethod("pop", 0, 1, true, listPop))

	r.RegisterMethod(listMethod("index", 1, 1, false, func(l *evaluator.List, args []evaluator.Value) (evaluator.Value, error) {
		return seqIndex(l.Items, args[0])
	}))
	r.RegisterMethod(listMethod("count", 1, 1, false, func(l *evaluator.List, args []evaluator.Value) (evaluator.Value, error) {
		return seqCount(l.Items, args[0]), nil
	}))
	r.RegisterMethod(listMethod("copy", 0, 0, false, func(l *evaluator.List, _ []evaluator.Value) (evaluator.Value, error) {
		return evaluator.NewList(append([]evaluator.Value(nil), l.Items...)), nil
	}))

	r.RegisterMethod(Method{Receiver: evaluator.KindTuple, Name: "index", Execute: func(recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
		if err := arity("index", args, 1, 1); err != nil {
			return nil, err
		}
		return seqIndex(recv.(*evaluator.Tuple).Items, args[0])
	}})
	r.RegisterMethod(Method{Receiver: evaluator.KindTuple, Name: "count", Execute: func(recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
		if err := arity("count", args, 1, 1); err != nil {
			return nil, err
		}
		return seqCount(recv.(*evaluator.Tuple).Items, args[0]), nil
	}})
}

func listAppend(l *evaluator.List, args []evaluator.Value) (evaluator.Value, error) {
	l.Items = append(l.Items, args[0])
	return evaluator.NewNone(), nil
}

// insert clamps the position to the list bounds.
func listInsert(l *evaluator.List, args []evaluator.Value) (evaluator.Value, error) {
	pos, err := numeric("insert", args[0])
	if err != nil {
		return nil, err
	}
	if math.IsNaN(pos) {
		return nil, fmt.Errorf("insert(): position must be a number")
	}
	n := float64(len(l.Items))
	pos = math.Trunc(pos)
	if pos < 0 {
		pos += n
	}
	i := int(math.Max(0, math.Min(pos, n)))
	l.Items = append(l.Items, nil)
	copy(l.Items[i+1:], l.Items[i:])
	l.Items[i] = args[1]
	return evaluator.NewNone(), nil
}

func listExtend(l *evaluator.List, args []evaluator.Value) (evaluator.Value, error) {
	items, err := iterate("extend", args[0])
	if err != nil {
		return nil, err
	}
	l.Items = append(l.Items, items...)
	return evaluator.NewNone(), nil
}

// sort leaves the list unchanged when elements cannot be compared.
func listSort(l *evaluator.List, _ []evaluator.Value) (evaluator.Value, error) {
	sorted := append([]evaluator.Value(nil), l.Items...)
	if err := sortValues(sorted); err != nil {
		return nil, fmt.Errorf("sort(): %w", err)
	}
	copy(l.Items, sorted)
	return evaluator.NewNone(), nil
}

func listReverse(l *evaluator.List, _ []evaluator.Value) (evaluator.Value, error) {
	for i, j := 0, len(l.Items)-1; i < j; i, j = i+1, j-1 {
		l.Items[i], l.Items[j] = l.Items[j], l.Items[i]
	}
	return evaluator.NewNone(), nil
}

// remove deletes the first element loosely equal to the argument.
func listRemove(l *evaluator.List, args []evaluator.Value) (evaluator.Value, error) {
	for i, item := range l.Items {
		if evaluator.LooseEqual(item, args[0]) {
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
			return evaluator.NewNone(), nil
		}
	}
	return nil, fmt.Errorf("remove(): %s not in list", evaluator.Display(args[0]))
}

func listClear(l *evaluator.List, _ []evaluator.Value) (evaluator.Value, error) {
	l.Items = []evaluator.Value{}
	return evaluator.NewNone(), nil
}

// pop removes and returns the element at the position (default last).
func listPop(l *evaluator.List, args []evaluator.Value) (evaluator.Value, error) {
	if len(l.Items) == 0 {
		return nil, fmt.Errorf("pop from empty list")
	}
	pos := -1.0
	if len(args) == 1 {
		n, err := numeric("pop", args[0])
		if err != nil {
			return nil, err
		}
		pos = n
	}
	item, ok := evaluator.Index(l, evaluator.NewNumber(pos))
	if !ok {
		return nil, fmt.Errorf("pop index %s out of range", evaluator.FormatNumber(pos))
	}
	i := int(pos)
	if i < 0 {
		i += len(l.Items)
	}
	l.Items = append(l.Items[:i], l.Items[i+1:]...)
	return item, nil
}

func seqIndex(items []evaluator.Value, target evaluator.Value) (evaluator.Value, error) {
	for i, item := range items {
		if evaluator.LooseEqual(item, target) {
			return evaluator.NewNumber(float64(i)), nil
		}
	}
	return nil, fmt.Errorf("index(): %s is not in sequence", evaluator.Display(target))
}

func seqCount(items []evaluator.Value, target evaluator.Value) evaluator.Value {
	n := 0
	for _, item := range items {
		if evaluator.LooseEqual(item, target) {
			n++
		}
	}
	return evaluator.NewNumber(float64(n))
}
