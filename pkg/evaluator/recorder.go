package evaluator

// record appends a snapshot of the current environment and output.
func (ev *evaluator) record(line int) {
	out := make([]string, len(ev.output))
	copy(out, ev.output)
	ev.steps = append(ev.steps, Step{
		Line:      line,
		Variables: CopyEnv(ev.env),
		Output:    out,
	})
}

// CopyEnv deep-copies every binding of env. Containers shared between
// bindings stay shared inside the copy, and cycles are preserved.
func CopyEnv(env *Env) *Env {
	memo := make(map[Value]Value)
	cp := &Env{
		names:    make([]string, len(env.names)),
		bindings: make(map[string]Value, len(env.bindings)),
	}
	copy(cp.names, env.names)
	for name, val := range env.bindings {
		cp.bindings[name] = deepCopy(val, memo)
	}
	return cp
}

// DeepCopy returns a fully independent copy of v.
func DeepCopy(v Value) Value {
	return deepCopy(v, make(map[Value]Value))
}

func deepCopy(v Value, memo map[Value]Value) Value {
	switch val := v.(type) {
	case *List:
		if cp, ok := memo[val]; ok {
			return cp
		}
		cp := &List{Items: make([]Value, len(val.Items))}
		memo[val] = cp
		for i, item := range val.Items {
			cp.Items[i] = deepCopy(item, memo)
		}
		return cp
	case *Tuple:
		if cp, ok := memo[val]; ok {
			return cp
		}
		cp := &Tuple{Items: make([]Value, len(val.Items))}
		memo[val] = cp
		for i, item := range val.Items {
			cp.Items[i] = deepCopy(item, memo)
		}
		return cp
	case *Dict:
		if cp, ok := memo[val]; ok {
			return cp
		}
		cp := &Dict{Pairs: make([]KeyValue, len(val.Pairs))}
		memo[val] = cp
		for i, kv := range val.Pairs {
			cp.Pairs[i] = KeyValue{Key: kv.Key, Value: deepCopy(kv.Value, memo)}
		}
		return cp
	}
	// Scalars are immutable values.
	return v
}
