package stdlib

import (
	"fmt"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/evaluator"
)

type dictFn func(d *evaluator.Dict, args []evaluator.Value) (evaluator.Value, error)

func dictMethod(name string, min, max int, mutates bool, fn dictFn) Method {
	return Method{
		Receiver: evaluator.KindDict,
		Name:     name,
		Mutates:  mutates,
		Execute: func(recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
			if err := arity(name, args, min, max); err != nil {
				return nil, err
			}
			return fn(recv.(*evaluator.Dict), args)
		},
	}
}

func registerDictMethods(r *Registry) {
	r.RegisterMethod(dictMethod("keys", 0, 0, false, dictKeys))
	r.RegisterMethod(dictMethod("values", 0, 0, false, dictValues))
	r.RegisterMethod(dictMethod("items", 0, 0, false, dictItems))
	r.RegisterMethod(dictMethod("get", 1, 2, false, dictGet))
	r.RegisterMethod(dictMethod("copy", 0, 0, false, dictCopy))

	r.RegisterMethod(dictMethod("setdefault", 1, 2, true, dictSetDefault))
	r.RegisterMethod(dictMethod("update", 1, 1, true, dictUpdate))
	r.RegisterMethod(dictMethod("pop", 1, 2, true, dictPop))

	// clear binds the receiver to a fresh dict; aliases keep the old entries.
	reset := dictMethod("clear", 0, 0, true, func(*evaluator.Dict, []evaluator.Value) (evaluator.Value, error) {
		return evaluator.NewDict(nil), nil
	})
	reset.Rebind = true
	r.RegisterMethod(reset)
}

// dictKey converts a lookup argument into its storage key.
func dictKey(name string, v evaluator.Value) (string, error) {
	if !evaluator.Hashable(v) {
		return "", fmt.Errorf("%s(): unhashable type: '%s'", name, evaluator.TypeName(v))
	}
	return evaluator.DictKey(v), nil
}

func dictKeys(d *evaluator.Dict, _ []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewList(d.KeyValues()), nil
}

func dictValues(d *evaluator.Dict, _ []evaluator.Value) (evaluator.Value, error) {
	values := make([]evaluator.Value, len(d.Pairs))
	for i, kv := range d.Pairs {
		values[i] = kv.Value
	}
	return evaluator.NewList(values), nil
}

// items returns a list of (key, value) tuples.
func dictItems(d *evaluator.Dict, _ []evaluator.Value) (evaluator.Value, error) {
	items := make([]evaluator.Value, len(d.Pairs))
	for i, kv := range d.Pairs {
		items[i] = evaluator.NewTuple([]evaluator.Value{evaluator.SurfaceKey(kv.Key), kv.Value})
	}
	return evaluator.NewList(items), nil
}

func dictGet(d *evaluator.Dict, args []evaluator.Value) (evaluator.Value, error) {
	key, err := dictKey("get", args[0])
	if err != nil {
		return nil, err
	}
	if v, ok := d.Get(key); ok {
		return v, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return evaluator.NewNone(), nil
}

func dictCopy(d *evaluator.Dict, _ []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewDict(append([]evaluator.KeyValue(nil), d.Pairs...)), nil
}

func dictSetDefault(d *evaluator.Dict, args []evaluator.Value) (evaluator.Value, error) {
	key, err := dictKey("setdefault", args[0])
	if err != nil {
		return nil, err
	}
	if v, ok := d.Get(key); ok {
		return v, nil
	}
	var def evaluator.Value = evaluator.NewNone()
	if len(args) == 2 {
		def = args[1]
	}
	d.Set(key, def)
	return def, nil
}

// update merges another dict, or a sequence of key/value pairs.
func dictUpdate(d *evaluator.Dict, args []evaluator.Value) (evaluator.Value, error) {
	switch src := args[0].(type) {
	case *evaluator.Dict:
		for _, kv := range append([]evaluator.KeyValue(nil), src.Pairs...) {
			d.Set(kv.Key, kv.Value)
		}
	case *evaluator.List, *evaluator.Tuple:
		entries, _ := evaluator.Items(src)
		for _, entry := range entries {
			pair, ok := evaluator.Items(entry)
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("update(): sequence elements must be pairs")
			}
			key, err := dictKey("update", pair[0])
			if err != nil {
				return nil, err
			}
			d.Set(key, pair[1])
		}
	default:
		return nil, fmt.Errorf("update(): '%s' object is not a mapping", evaluator.TypeName(args[0]))
	}
	return evaluator.NewNone(), nil
}

func dictPop(d *evaluator.Dict, args []evaluator.Value) (evaluator.Value, error) {
	key, err := dictKey("pop", args[0])
	if err != nil {
		return nil, err
	}
	if v, ok := d.Delete(key); ok {
		return v, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return nil, fmt.Errorf("pop(): key %s not found", evaluator.Display(args[0]))
}
