package formatter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/ast"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/formatter"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/parser"
)

func TestFormatExpr(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1+2*3", "1 + 2 * 3"},
		{"(1+2)*3", "(1 + 2) * 3"},
		{"10-4-3", "10 - 4 - 3"},
		{"10-(4-3)", "10 - (4 - 3)"},
		{"-2**2", "-2 ** 2"},
		{"(-2)**2", "(-2) ** 2"},
		{"2**3**2", "2 ** 3 ** 2"},
		{"(2**3)**2", "(2 ** 3) ** 2"},
		{"2**-1", "2 ** -1"},
		{"+x", "+x"},
		{"a|b&c", "a | b & c"},
		{"(a|b)&c", "(a | b) & c"},
		{"1<<2>>3", "1 << 2 >> 3"},
		{"a and b or c", "a and b or c"},
		{"a and (b or c)", "a and (b or c)"},
		{"not (a and b)", "not (a and b)"},
		{"not x==1", "not x == 1"},
		{"x not in xs", "x not in xs"},
		{"'a' in s", `"a" in s`},
		{"[1,'a',None,true]", `[1, "a", None, True]`},
		{"()", "()"},
		{"(1,)", "(1,)"},
		{"1,2", "(1, 2)"},
		{"{'a':1,'b':[2]}", `{"a": 1, "b": [2]}`},
		{"{}", "{}"},
		{"d['k'][0]", `d["k"][0]`},
		{"s.strip( ).split(',')", `s.strip().split(",")`},
		{"(a+b).count(1)", "(a + b).count(1)"},
		{"max( 1,2 )", "max(1, 2)"},
		{"1e3", "1e3"},
		{"'say \"hi\"'", `"say \"hi\""`},
		{"'a' 'b'", `"ab"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := parser.ParseExpr(tt.input, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, formatter.FormatExpr(expr))
		})
	}
}

func TestFormatExpr_StringValuesSurviveReparse(t *testing.T) {
	values := []string{
		"plain",
		"ctl\x01\x7f",
		"tab\tnl\ncr\r",
		`back\slash "quoted" 'single'`,
		"caf\u00e9 \u2603",
		`\x41 stays`,
	}
	for _, v := range values {
		src := formatter.FormatExpr(&ast.StrLiteral{Value: v})
		expr, err := parser.ParseExpr(src, 0)
		require.NoError(t, err, src)
		lit, ok := expr.(*ast.StrLiteral)
		require.True(t, ok, src)
		assert.Equal(t, v, lit.Value, src)
	}
}

func TestFormatExpr_Nil(t *testing.T) {
	assert.Equal(t, "<unparsed>", formatter.FormatExpr(nil))
}

func TestFormatStmt(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"x=1", "x = 1"},
		{"a,b=b,a", "a, b = b, a"},
		{"t = 1,2", "t = 1, 2"},
		{"t = (1,)", "t = (1,)"},
		{"x+=1", "x += 1"},
		{"x//=2", "x //= 2"},
		{"x**=2", "x **= 2"},
		{"d['k']=[ ]", `d["k"] = []`},
		{"print( x,y )", "print(x, y)"},
		{"print()", "print()"},
		{"xs.append( 1 )", "xs.append(1)"},
		{"if x>1 :", "if x > 1:"},
		{"elif not y:", "elif not y:"},
		{"else :", "else:"},
		{"for i in range( 5 ):", "for i in range(5):"},
		{"for i in range(10,0,-2):", "for i in range(10, 0, -2):"},
		{"for k,v in d.items():", "for k, v in d.items():"},
		{"for x in 1,2:", "for x in 1, 2:"},
		{"while n<3 and ok:", "while n < 3 and ok:"},
		{"break", "break"},
		{"continue", "continue"},
		{"pass", "pass"},
		{"break 2", "break 2"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			stmt, err := parser.ParseStatement(tt.input, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, formatter.FormatStmt(stmt))
		})
	}
}

func TestFormat_Program(t *testing.T) {
	src := "x=1\n\n# comment\nif x:\n    y=[1,2]  # trailing\n    z = (1\n\n"
	want := "x = 1\n\n\nif x:\n    y = [1, 2]\n    z = (1\n"
	assert.Equal(t, want, formatter.Format(parser.Parse(src)))
}

func TestFormat_Idempotent(t *testing.T) {
	src := "total=0\nfor i in range(1,4):\n  if i%2==0 :\n    total+=i**2\n  else:\n    continue\nprint( 'total',total )"
	once := formatter.Format(parser.Parse(src))
	twice := formatter.Format(parser.Parse(once))
	assert.Equal(t, once, twice)
	assert.Contains(t, once, "    total += i ** 2\n")
	assert.Contains(t, once, `print("total", total)`)
}

func TestHasComments(t *testing.T) {
	assert.True(t, formatter.HasComments("x = 1\n# note"))
	assert.True(t, formatter.HasComments(`s = "#" # real`))
	assert.False(t, formatter.HasComments(`s = "# inside"`))
	assert.False(t, formatter.HasComments(""))
}
