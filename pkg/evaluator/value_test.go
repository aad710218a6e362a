package evaluator_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/ast"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/evaluator"
)

func n(v float64) evaluator.Value { return evaluator.NewNumber(v) }

func s(v string) evaluator.Value { return evaluator.NewString(v) }

func TestTruthiness(t *testing.T) {
	tests := []struct {
		value    evaluator.Value
		expected bool
	}{
		{evaluator.NewNone(), false},
		{evaluator.NewBool(false), false},
		{evaluator.NewBool(true), true},
		{n(0), false},
		{n(1), true},
		{n(-1), true},
		{n(math.NaN()), false},
		{s(""), false},
		{s("hello"), true},
		{evaluator.NewList(nil), false},
		{evaluator.NewList([]evaluator.Value{n(0)}), true},
		{evaluator.NewTuple(nil), false},
		{evaluator.NewDict(nil), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, evaluator.Truthiness(tt.value), evaluator.Display(tt.value))
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{5, "5"},
		{-3, "-3"},
		{2.5, "2.5"},
		{math.Copysign(0, -1), "0"},
		{1e20, "100000000000000000000"},
		{1e21, "1000000000000000000000"},
		{0.1, "0.1"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, evaluator.FormatNumber(tt.in))
	}
}

func TestDisplayAndPrint(t *testing.T) {
	tup1 := evaluator.NewTuple([]evaluator.Value{n(1)})
	d := evaluator.NewDict([]evaluator.KeyValue{{Key: "2", Value: s("x")}, {Key: "k", Value: evaluator.NewNone()}})
	tests := []struct {
		value   evaluator.Value
		display string
		print   string
	}{
		{s("hi"), "'hi'", "hi"},
		{s("it's"), `"it's"`, "it's"},
		{s(`both ' and "`), `'both \' and "'`, `both ' and "`},
		{s("a\nb"), `'a\nb'`, "a\nb"},
		{evaluator.NewBool(true), "True", "True"},
		{evaluator.NewNone(), "None", "None"},
		{evaluator.NewList([]evaluator.Value{n(1), s("a")}), "[1, 'a']", "[1, 'a']"},
		{tup1, "(1,)", "(1,)"},
		{evaluator.NewTuple(nil), "()", "()"},
		{d, "{2: 'x', 'k': None}", "{2: 'x', 'k': None}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.display, evaluator.Display(tt.value))
		assert.Equal(t, tt.print, evaluator.Print(tt.value))
	}
}

func TestDisplay_Cycles(t *testing.T) {
	l := evaluator.NewList(nil)
	l.Items = append(l.Items, n(1), l)
	assert.Equal(t, "[1, [...]]", evaluator.Display(l))

	d := evaluator.NewDict(nil)
	d.Set("self", d)
	assert.Equal(t, "{'self': {...}}", evaluator.Display(d))
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "NoneType", evaluator.TypeName(evaluator.NewNone()))
	assert.Equal(t, "str", evaluator.TypeName(s("")))
	assert.Equal(t, "number", evaluator.TypeName(n(1)))
	assert.Equal(t, "tuple", evaluator.TypeName(evaluator.NewTuple(nil)))
	assert.Equal(t, evaluator.KindDict, evaluator.KindOf(evaluator.NewDict(nil)))
	assert.Equal(t, evaluator.KindNone, evaluator.KindOf(evaluator.NewNone()))
}

func TestDict_OrderAndIndex(t *testing.T) {
	d := evaluator.NewDict([]evaluator.KeyValue{
		{Key: "b", Value: n(2)},
		{Key: "a", Value: n(1)},
		{Key: "b", Value: n(3)},
	})
	assert.Equal(t, []string{"b", "a"}, d.Keys())
	v, ok := d.Get("b")
	require.True(t, ok)
	assert.Equal(t, n(3), v)

	d.Set("c", n(4))
	removed, ok := d.Delete("b")
	require.True(t, ok)
	assert.Equal(t, n(3), removed)
	assert.Equal(t, []string{"a", "c"}, d.Keys())
	v, ok = d.Get("c")
	require.True(t, ok, "index rebuilt after delete")
	assert.Equal(t, n(4), v)

	_, ok = d.Delete("zz")
	assert.False(t, ok)
}

func TestSurfaceKey(t *testing.T) {
	assert.Equal(t, n(1), evaluator.SurfaceKey("1"))
	assert.Equal(t, n(-2.5), evaluator.SurfaceKey("-2.5"))
	assert.Equal(t, s("01"), evaluator.SurfaceKey("01"))
	assert.Equal(t, s("1.0"), evaluator.SurfaceKey("1.0"))
	assert.Equal(t, s(" 1"), evaluator.SurfaceKey(" 1"))
	assert.Equal(t, s("inf"), evaluator.SurfaceKey("inf"))
	assert.Equal(t, s("True"), evaluator.SurfaceKey("True"))
}

func TestEnv_OrderedRebind(t *testing.T) {
	env := evaluator.NewEnv()
	env.Set("b", n(1))
	env.Set("a", n(2))
	env.Set("b", n(3))
	assert.Equal(t, []string{"b", "a"}, env.Names())
	assert.Equal(t, 2, env.Len())
	assert.True(t, env.Has("a"))
	assert.False(t, env.Has("z"))
}

func TestCopyEnv_Independent(t *testing.T) {
	inner := evaluator.NewList([]evaluator.Value{n(1)})
	env := evaluator.NewEnv()
	env.Set("x", inner)
	env.Set("y", evaluator.NewDict([]evaluator.KeyValue{{Key: "l", Value: inner}}))

	cp := evaluator.CopyEnv(env)
	inner.Items[0] = n(99)

	x, _ := cp.Get("x")
	y, _ := cp.Get("y")
	assert.Equal(t, "[1]", evaluator.Display(x))
	assert.Equal(t, "{'l': [1]}", evaluator.Display(y))

	// the shared list stays shared inside the copy
	l, _ := y.(*evaluator.Dict).Get("l")
	assert.Same(t, x.(*evaluator.List), l.(*evaluator.List))
}

func TestDeepCopy_Cycle(t *testing.T) {
	l := evaluator.NewList(nil)
	l.Items = append(l.Items, l)
	cp := evaluator.DeepCopy(l).(*evaluator.List)
	assert.NotSame(t, l, cp)
	assert.Same(t, cp, cp.Items[0].(*evaluator.List))
}

func TestLooseEqual(t *testing.T) {
	tests := []struct {
		a, b evaluator.Value
		want bool
	}{
		{n(1), n(1), true},
		{n(1), s("1"), true},
		{n(0), s(""), true},
		{n(1), evaluator.NewBool(true), true},
		{s("a"), s("a"), true},
		{s("a"), s("b"), false},
		{evaluator.NewNone(), evaluator.NewNone(), true},
		{evaluator.NewNone(), n(0), false},
		{evaluator.NewList([]evaluator.Value{n(1)}), evaluator.NewList([]evaluator.Value{s("1")}), true},
		{evaluator.NewList(nil), evaluator.NewTuple(nil), false},
		{s("x"), n(0), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, evaluator.LooseEqual(tt.a, tt.b), "%s == %s", evaluator.Display(tt.a), evaluator.Display(tt.b))
	}
}

func TestCompare(t *testing.T) {
	cmp, ok := evaluator.Compare(s("a"), s("b"))
	assert.True(t, ok)
	assert.Equal(t, -1, cmp)

	cmp, ok = evaluator.Compare(n(3), s("2"))
	assert.True(t, ok)
	assert.Equal(t, 1, cmp)

	cmp, ok = evaluator.Compare(evaluator.NewList([]evaluator.Value{n(1), n(2)}), evaluator.NewList([]evaluator.Value{n(1)}))
	assert.True(t, ok)
	assert.Equal(t, 1, cmp)

	_, ok = evaluator.Compare(evaluator.NewList(nil), n(1))
	assert.False(t, ok)
}

func TestApplyBinary_Unresolved(t *testing.T) {
	tests := []struct {
		op   ast.BinaryOp
		l, r evaluator.Value
	}{
		{ast.OpDiv, n(1), n(0)},
		{ast.OpFloorDiv, n(1), n(0)},
		{ast.OpMod, n(1), n(0)},
		{ast.OpPow, n(0), n(-1)},
		{ast.OpPow, n(-8), n(1.0 / 3)},
		{ast.OpSub, s("a"), n(1)},
		{ast.OpMul, evaluator.NewList(nil), n(2)},
		{ast.OpShl, n(1), n(-1)},
		{ast.OpIn, n(1), n(2)},
		{ast.OpIn, evaluator.NewList(nil), evaluator.NewDict(nil)},
	}
	for _, tt := range tests {
		_, ok := evaluator.ApplyBinary(tt.op, tt.l, tt.r)
		assert.False(t, ok, "%s %s %s", evaluator.Display(tt.l), tt.op, evaluator.Display(tt.r))
	}
}

func TestApplyBinary_Mod(t *testing.T) {
	v, ok := evaluator.ApplyBinary(ast.OpMod, n(-7), n(3))
	require.True(t, ok)
	assert.Equal(t, n(-1), v, "sign follows the dividend")
}

func TestIndexAndReplace(t *testing.T) {
	l := evaluator.NewList([]evaluator.Value{n(1), n(2)})
	v, ok := evaluator.Index(l, n(-1))
	require.True(t, ok)
	assert.Equal(t, n(2), v)
	_, ok = evaluator.Index(l, n(2))
	assert.False(t, ok)
	_, ok = evaluator.Index(l, n(0.5))
	assert.False(t, ok)
	_, ok = evaluator.Index(l, s("0"))
	assert.False(t, ok)

	replaced, ok := evaluator.ReplaceIndex(l, n(0), s("x"))
	require.True(t, ok)
	assert.Equal(t, "['x', 2]", evaluator.Display(replaced))
	assert.Equal(t, "[1, 2]", evaluator.Display(l))

	_, ok = evaluator.ReplaceIndex(evaluator.NewTuple([]evaluator.Value{n(1)}), n(0), n(2))
	assert.False(t, ok, "tuples are immutable")
	_, ok = evaluator.ReplaceIndex(s("ab"), n(0), s("x"))
	assert.False(t, ok)
}

// --- encoding ---

func sampleTrace() *evaluator.Trace {
	env := evaluator.NewEnv()
	env.Set("x", n(5))
	env.Set("items", evaluator.NewList([]evaluator.Value{n(1.5), s("a"), evaluator.NewNone()}))
	env.Set("d", evaluator.NewDict([]evaluator.KeyValue{{Key: "1", Value: evaluator.NewBool(true)}}))
	return &evaluator.Trace{Steps: []evaluator.Step{
		{Line: -1, Variables: evaluator.NewEnv(), Output: []string{}},
		{Line: 0, Variables: env, Output: []string{"5"}},
	}}
}

func TestTraceToJSON(t *testing.T) {
	b, err := evaluator.TraceToJSON(sampleTrace())
	require.NoError(t, err)
	assert.JSONEq(t, `{"steps":[
		{"line":-1,"variables":{},"output":[]},
		{"line":0,"variables":{"x":5,"items":[1.5,"a",null],"d":{"1":true}},"output":["5"]}
	]}`, string(b))
	// insertion order, not sorted
	assert.Less(t, strings.Index(string(b), `"x"`), strings.Index(string(b), `"items"`))
}

func TestValueToJSON_Special(t *testing.T) {
	assert.Equal(t, `"nan"`, evaluator.ValueToJSONString(n(math.NaN())))
	assert.Equal(t, `[1,2]`, evaluator.ValueToJSONString(evaluator.NewTuple([]evaluator.Value{n(1), n(2)})))

	l := evaluator.NewList(nil)
	l.Items = append(l.Items, l)
	assert.Equal(t, `["[...]"]`, evaluator.ValueToJSONString(l))
}

func TestWriteNDJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, evaluator.WriteNDJSON(&buf, sampleTrace()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"line":-1,"variables":{},"output":[]}`, lines[0])
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, evaluator.WriteYAML(&buf, sampleTrace()))
	out := buf.String()
	assert.Contains(t, out, "items: [1.5, a, null]")
	assert.Contains(t, out, "output: []")
	assert.Less(t, strings.Index(out, "x: 5"), strings.Index(out, "items:"))

	var doc struct {
		Steps []struct {
			Line      int            `yaml:"line"`
			Variables map[string]any `yaml:"variables"`
			Output    []string       `yaml:"output"`
		} `yaml:"steps"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Steps, 2)
	assert.Equal(t, -1, doc.Steps[0].Line)
	assert.Empty(t, doc.Steps[0].Variables)
	assert.Equal(t, []string{"5"}, doc.Steps[1].Output)
	assert.Equal(t, 5, doc.Steps[1].Variables["x"])
	assert.Equal(t, map[string]any{"1": true}, doc.Steps[1].Variables["d"])
}
