package parser_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/ast"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/diagnostics"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/parser"
)

// --- helpers ---

func mustStmt(t *testing.T, text string) ast.Stmt {
	t.Helper()
	stmt, err := parser.ParseStatement(text, 0)
	require.NoError(t, err)
	require.NotNil(t, stmt)
	return stmt
}

func mustExpr(t *testing.T, text string) ast.Expr {
	t.Helper()
	expr, err := parser.ParseExpr(text, 0)
	require.NoError(t, err)
	require.NotNil(t, expr)
	return expr
}

func stmtAs[T ast.Stmt](t *testing.T, text string) T {
	t.Helper()
	stmt := mustStmt(t, text)
	typed, ok := stmt.(T)
	require.True(t, ok, "expected %T, got %s", *new(T), stmt.Kind())
	return typed
}

func exprAs[T ast.Expr](t *testing.T, expr ast.Expr) T {
	t.Helper()
	typed, ok := expr.(T)
	require.True(t, ok, "expected %T, got %s", *new(T), expr.Kind())
	return typed
}

func number(t *testing.T, expr ast.Expr) float64 {
	t.Helper()
	return exprAs[*ast.NumberLiteral](t, expr).Value
}

func ident(t *testing.T, expr ast.Expr) string {
	t.Helper()
	return exprAs[*ast.Name](t, expr).Ident
}

// --- line preprocessing ---

func TestParse_Lines(t *testing.T) {
	prog := parser.Parse("x = 1\n\n  # note\n    y = 2  # trailing\r\nprint(y)")
	require.Len(t, prog.Lines, 5)

	assert.Equal(t, "x = 1", prog.Lines[0].Text)
	assert.False(t, prog.Lines[0].Blank())
	assert.IsType(t, &ast.AssignStmt{}, prog.Lines[0].Stmt)

	assert.True(t, prog.Lines[1].Blank())
	assert.Nil(t, prog.Lines[1].Stmt)

	assert.True(t, prog.Lines[2].Blank(), "comment-only line is blank")
	assert.Equal(t, 2, prog.Lines[2].Indent)

	assert.Equal(t, "y = 2", prog.Lines[3].Text)
	assert.Equal(t, 4, prog.Lines[3].Indent)
	assert.Equal(t, 3, prog.Lines[3].Index)

	assert.IsType(t, &ast.PrintStmt{}, prog.Lines[4].Stmt)
}

func TestParse_TabsCountAsIndent(t *testing.T) {
	prog := parser.Parse("if x:\n\tpass")
	assert.Equal(t, 1, prog.Lines[1].Indent)
}

func TestParse_EmptySource(t *testing.T) {
	prog := parser.Parse("")
	require.Len(t, prog.Lines, 1)
	assert.True(t, prog.Lines[0].Blank())
}

func TestParse_FailedLineKeepsStatement(t *testing.T) {
	prog := parser.Parse("x = (1\ny = 2")
	require.Len(t, prog.Lines, 2)

	assign, ok := prog.Lines[0].Stmt.(*ast.AssignStmt)
	require.True(t, ok)
	assert.Nil(t, assign.Value)
	assert.NotEmpty(t, prog.Lines[0].Err)

	assert.Empty(t, prog.Lines[1].Err)
}

// --- statements ---

func TestParseStatement_Assign(t *testing.T) {
	stmt := stmtAs[*ast.AssignStmt](t, "x = 5")
	require.Len(t, stmt.Targets, 1)
	assert.Equal(t, "x", ident(t, stmt.Targets[0]))
	assert.Equal(t, ast.BinaryOp(""), stmt.Op)
	assert.Equal(t, 5.0, number(t, stmt.Value))
}

func TestParseStatement_MultiTarget(t *testing.T) {
	stmt := stmtAs[*ast.AssignStmt](t, "a, b = b, a")
	require.Len(t, stmt.Targets, 2)
	assert.Equal(t, "a", ident(t, stmt.Targets[0]))
	assert.Equal(t, "b", ident(t, stmt.Targets[1]))
	tuple := exprAs[*ast.TupleExpr](t, stmt.Value)
	assert.Len(t, tuple.Elements, 2)
}

func TestParseStatement_IndexTarget(t *testing.T) {
	stmt := stmtAs[*ast.AssignStmt](t, `d["k"][0] = 1`)
	require.Len(t, stmt.Targets, 1)
	outer := exprAs[*ast.IndexExpr](t, stmt.Targets[0])
	inner := exprAs[*ast.IndexExpr](t, outer.Object)
	assert.Equal(t, "d", ident(t, inner.Object))
	assert.Equal(t, "k", exprAs[*ast.StrLiteral](t, inner.Index).Value)
}

func TestParseStatement_EqualsInsideBrackets(t *testing.T) {
	// `==` and nested `=`-free expressions must not split the line.
	stmt := stmtAs[*ast.AssignStmt](t, "ok = x == 1")
	bin := exprAs[*ast.BinaryExpr](t, stmt.Value)
	assert.Equal(t, ast.OpEqEq, bin.Op)

	expr := stmtAs[*ast.ExprStmt](t, "x == 1")
	assert.IsType(t, &ast.BinaryExpr{}, expr.Expr)
}

func TestParseStatement_Augmented(t *testing.T) {
	tests := []struct {
		text string
		op   ast.BinaryOp
	}{
		{"x += 1", ast.OpAdd},
		{"x -= 1", ast.OpSub},
		{"x *= 2", ast.OpMul},
		{"x /= 2", ast.OpDiv},
		{"x //= 2", ast.OpFloorDiv},
		{"x %= 2", ast.OpMod},
		{"x **= 2", ast.OpPow},
		{"xs[0] += 1", ast.OpAdd},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			stmt := stmtAs[*ast.AssignStmt](t, tt.text)
			assert.Equal(t, tt.op, stmt.Op)
			assert.Len(t, stmt.Targets, 1)
			assert.NotNil(t, stmt.Value)
		})
	}
}

func TestParseStatement_Print(t *testing.T) {
	stmt := stmtAs[*ast.PrintStmt](t, `print(1, "a", x[0])`)
	require.Len(t, stmt.Args, 3)
	assert.IsType(t, &ast.IndexExpr{}, stmt.Args[2])

	empty := stmtAs[*ast.PrintStmt](t, "print()")
	assert.Empty(t, empty.Args)
}

func TestParseStatement_PrintAsName(t *testing.T) {
	stmt := stmtAs[*ast.AssignStmt](t, "print = 3")
	assert.Equal(t, "print", ident(t, stmt.Targets[0]))
}

func TestParseStatement_MethodCall(t *testing.T) {
	stmt := stmtAs[*ast.ExprStmt](t, "xs.append(len(xs))")
	call := exprAs[*ast.MethodCallExpr](t, stmt.Expr)
	assert.Equal(t, "append", call.Method)
	assert.Equal(t, "xs", ident(t, call.Receiver))
	require.Len(t, call.Args, 1)
	assert.Equal(t, "len", exprAs[*ast.CallExpr](t, call.Args[0]).Func)
}

func TestParseStatement_Headers(t *testing.T) {
	ifStmt := stmtAs[*ast.IfStmt](t, "if x > 1:")
	assert.Equal(t, ast.OpGt, exprAs[*ast.BinaryExpr](t, ifStmt.Cond).Op)

	elif := stmtAs[*ast.ElifStmt](t, "elif y:")
	assert.Equal(t, "y", ident(t, elif.Cond))

	stmtAs[*ast.ElseStmt](t, "else:")

	while := stmtAs[*ast.WhileStmt](t, "while n < 3 and not done:")
	logical := exprAs[*ast.LogicalExpr](t, while.Cond)
	assert.Equal(t, ast.OpAnd, logical.Op)
	assert.Len(t, logical.Operands, 2)
}

func TestParseStatement_ForRange(t *testing.T) {
	tests := []struct {
		text string
		args int
	}{
		{"for i in range(5):", 1},
		{"for i in range(1, 5):", 2},
		{"for i in range(10, 0, -2):", 3},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			stmt := stmtAs[*ast.ForRangeStmt](t, tt.text)
			assert.Equal(t, "i", stmt.Var)
			assert.Len(t, stmt.Args, tt.args)
		})
	}
}

func TestParseStatement_ForEach(t *testing.T) {
	stmt := stmtAs[*ast.ForEachStmt](t, "for k, v in d.items():")
	assert.Equal(t, []string{"k", "v"}, stmt.Targets)
	assert.Equal(t, "items", exprAs[*ast.MethodCallExpr](t, stmt.Iter).Method)

	literal := stmtAs[*ast.ForEachStmt](t, "for x in 1, 2:")
	assert.Len(t, exprAs[*ast.TupleExpr](t, literal.Iter).Elements, 2)

	// range with too many args is an ordinary call over the iterable.
	wide := stmtAs[*ast.ForEachStmt](t, "for i in range(1, 2, 3, 4):")
	assert.Equal(t, "range", exprAs[*ast.CallExpr](t, wide.Iter).Func)

	// Tuple unpacking over range is not a counted loop.
	pair := stmtAs[*ast.ForEachStmt](t, "for a, b in range(3):")
	assert.Equal(t, []string{"a", "b"}, pair.Targets)
}

func TestParseStatement_LoopControl(t *testing.T) {
	stmtAs[*ast.BreakStmt](t, "break")
	stmtAs[*ast.ContinueStmt](t, "continue")
	stmtAs[*ast.PassStmt](t, "pass")

	extra := stmtAs[*ast.UnknownStmt](t, "break 2")
	assert.Equal(t, "break 2", extra.Text)
}

func TestParseStatement_Span(t *testing.T) {
	stmt := mustStmt(t, "x = 1")
	assert.Equal(t, ast.Span{Line: 0, StartCol: 1, EndCol: 6}, stmt.NodeSpan())

	other, err := parser.ParseStatement("pass", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, other.NodeSpan().Line)
}

func TestParseStatement_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind string
		msg  string
	}{
		{"missing rhs", "x = ", "AssignStmt", "missing value after '='"},
		{"bad target", "1 = 2", "UnknownStmt", "cannot assign to NumberLiteral"},
		{"call target", "f(x) = 2", "UnknownStmt", "cannot assign to CallExpr"},
		{"augmented tuple", "a, b += 1", "UnknownStmt", "augmented assignment needs a single target"},
		{"if without colon", "if x", "IfStmt", "expected ':' at end of 'if' header"},
		{"if without condition", "if :", "IfStmt", "missing condition after 'if'"},
		{"while without colon", "while x", "WhileStmt", "expected ':' at end of 'while' header"},
		{"else with junk", "else x:", "ElseStmt", "expected ':' after else"},
		{"for without in", "for x:", "ForEachStmt", "expected 'for <name> in <expr>:'"},
		{"for without colon", "for x in xs", "ForEachStmt", "expected ':' at end of 'for' header"},
		{"for without iterable", "for x in :", "ForEachStmt", "missing iterable in 'for' header"},
		{"attribute", "y = a.b", "AssignStmt", "attribute access '.b' is not supported"},
		{"open print", "print(", "PrintStmt", "expected ')', got ''"},
		{"trailing token", "x y", "UnknownStmt", "unexpected token 'y'"},
		{"lex error", "x = 1 $", "UnknownStmt", "unexpected character '$'"},
		{"lex error in header", `if s == "abc:`, "IfStmt", "unterminated string literal"},
		{"lex error in loop header", `for c in "ab:`, "ForEachStmt", "unterminated string literal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := parser.ParseStatement(tt.text, 0)
			require.Error(t, err)
			require.NotNil(t, stmt)
			assert.Equal(t, tt.kind, stmt.Kind())
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

// --- expressions ---

func TestParseExpr_Literals(t *testing.T) {
	assert.Equal(t, 3.5, number(t, mustExpr(t, "3.5")))
	assert.Equal(t, "3.5", exprAs[*ast.NumberLiteral](t, mustExpr(t, "3.5")).Raw)
	assert.True(t, exprAs[*ast.BoolLiteral](t, mustExpr(t, "True")).Value)
	assert.False(t, exprAs[*ast.BoolLiteral](t, mustExpr(t, "false")).Value)
	assert.IsType(t, &ast.NoneLiteral{}, mustExpr(t, "None"))
	assert.Equal(t, "ab", exprAs[*ast.StrLiteral](t, mustExpr(t, `"a" 'b'`)).Value)
}

func TestParseExpr_Collections(t *testing.T) {
	list := exprAs[*ast.ListExpr](t, mustExpr(t, "[1, [2], ]"))
	assert.Len(t, list.Elements, 2)

	assert.Empty(t, exprAs[*ast.ListExpr](t, mustExpr(t, "[]")).Elements)

	dict := exprAs[*ast.DictExpr](t, mustExpr(t, `{"a": 1, 2: [x]}`))
	require.Len(t, dict.Entries, 2)
	assert.Equal(t, "a", exprAs[*ast.StrLiteral](t, dict.Entries[0].Key).Value)
	assert.IsType(t, &ast.ListExpr{}, dict.Entries[1].Value)

	assert.Empty(t, exprAs[*ast.DictExpr](t, mustExpr(t, "{}")).Entries)
}

func TestParseExpr_Tuples(t *testing.T) {
	tests := []struct {
		text string
		size int
	}{
		{"()", 0},
		{"(1,)", 1},
		{"(1, 2)", 2},
		{"1, 2, 3", 3},
		{"1,", 1},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			tuple := exprAs[*ast.TupleExpr](t, mustExpr(t, tt.text))
			assert.Len(t, tuple.Elements, tt.size)
		})
	}

	// A parenthesized single expression is not a tuple.
	assert.Equal(t, 1.0, number(t, mustExpr(t, "(1)")))
}

func TestParseExpr_Precedence(t *testing.T) {
	// 1 + 2 * 3
	add := exprAs[*ast.BinaryExpr](t, mustExpr(t, "1 + 2 * 3"))
	assert.Equal(t, ast.OpAdd, add.Op)
	assert.Equal(t, ast.OpMul, exprAs[*ast.BinaryExpr](t, add.Right).Op)

	// (1 + 2) * 3
	mul := exprAs[*ast.BinaryExpr](t, mustExpr(t, "(1 + 2) * 3"))
	assert.Equal(t, ast.OpMul, mul.Op)
	assert.Equal(t, ast.OpAdd, exprAs[*ast.BinaryExpr](t, mul.Left).Op)

	// left associativity: 10 - 4 - 3
	sub := exprAs[*ast.BinaryExpr](t, mustExpr(t, "10 - 4 - 3"))
	assert.Equal(t, 3.0, number(t, sub.Right))
	assert.Equal(t, ast.OpSub, exprAs[*ast.BinaryExpr](t, sub.Left).Op)

	// comparison binds looser than shift and bitwise ops
	cmp := exprAs[*ast.BinaryExpr](t, mustExpr(t, "a | b < 1 << 2"))
	assert.Equal(t, ast.OpLt, cmp.Op)
	assert.Equal(t, ast.OpBitOr, exprAs[*ast.BinaryExpr](t, cmp.Left).Op)
	assert.Equal(t, ast.OpShl, exprAs[*ast.BinaryExpr](t, cmp.Right).Op)
}

func TestParseExpr_Power(t *testing.T) {
	// -2 ** 2 is -(2 ** 2)
	neg := exprAs[*ast.UnaryExpr](t, mustExpr(t, "-2 ** 2"))
	assert.Equal(t, ast.OpNeg, neg.Op)
	assert.Equal(t, ast.OpPow, exprAs[*ast.BinaryExpr](t, neg.Operand).Op)

	// right associative: 2 ** 3 ** 2
	pow := exprAs[*ast.BinaryExpr](t, mustExpr(t, "2 ** 3 ** 2"))
	assert.Equal(t, 2.0, number(t, pow.Left))
	assert.Equal(t, ast.OpPow, exprAs[*ast.BinaryExpr](t, pow.Right).Op)

	// negative exponent
	negExp := exprAs[*ast.BinaryExpr](t, mustExpr(t, "2 ** -1"))
	assert.IsType(t, &ast.UnaryExpr{}, negExp.Right)
}

func TestParseExpr_Logical(t *testing.T) {
	flat := exprAs[*ast.LogicalExpr](t, mustExpr(t, "a and b and c"))
	assert.Equal(t, ast.OpAnd, flat.Op)
	assert.Len(t, flat.Operands, 3)

	mixed := exprAs[*ast.LogicalExpr](t, mustExpr(t, "a and b or c"))
	assert.Equal(t, ast.OpOr, mixed.Op)
	require.Len(t, mixed.Operands, 2)
	assert.Equal(t, ast.OpAnd, exprAs[*ast.LogicalExpr](t, mixed.Operands[0]).Op)

	not := exprAs[*ast.UnaryExpr](t, mustExpr(t, "not x in y"))
	assert.Equal(t, ast.OpNot, not.Op)
	assert.Equal(t, ast.OpIn, exprAs[*ast.BinaryExpr](t, not.Operand).Op)
}

func TestParseExpr_Membership(t *testing.T) {
	in := exprAs[*ast.BinaryExpr](t, mustExpr(t, `"a" in s`))
	assert.Equal(t, ast.OpIn, in.Op)
	assert.True(t, in.Op.IsComparison())

	notIn := exprAs[*ast.BinaryExpr](t, mustExpr(t, "x not in xs"))
	assert.Equal(t, ast.OpNotIn, notIn.Op)
}

func TestParseExpr_Postfix(t *testing.T) {
	chain := exprAs[*ast.MethodCallExpr](t, mustExpr(t, `s.strip().split(",")`))
	assert.Equal(t, "split", chain.Method)
	assert.Equal(t, "strip", exprAs[*ast.MethodCallExpr](t, chain.Receiver).Method)

	idx := exprAs[*ast.IndexExpr](t, mustExpr(t, "m[i][j]"))
	assert.Equal(t, "j", ident(t, idx.Index))
	assert.IsType(t, &ast.IndexExpr{}, idx.Object)

	call := exprAs[*ast.CallExpr](t, mustExpr(t, "max(1, x, 3)"))
	assert.Equal(t, "max", call.Func)
	assert.Len(t, call.Args, 3)

	literalRecv := exprAs[*ast.MethodCallExpr](t, mustExpr(t, `", ".join(xs)`))
	assert.Equal(t, ", ", exprAs[*ast.StrLiteral](t, literalRecv.Receiver).Value)
}

func TestParseExpr_Spans(t *testing.T) {
	expr, err := parser.ParseExpr("a + bc", 2)
	require.NoError(t, err)
	assert.Equal(t, ast.Span{Line: 2, StartCol: 1, EndCol: 7}, expr.NodeSpan())
}

func TestParseExpr_Errors(t *testing.T) {
	tests := []struct {
		text string
		msg  string
	}{
		{"", "unexpected end of expression"},
		{"1 +", "unexpected end of expression"},
		{"1 2", "unexpected token '2'"},
		{"(1", "expected ')', got ''"},
		{"[1, 2", "expected ']', got ''"},
		{"{1 2}", "expected ':', got '2'"},
		{"a.b", "attribute access '.b' is not supported"},
		{"a.(1)", "expected identifier, got '('"},
		{")", "unexpected token ')'"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := parser.ParseExpr(tt.text, 0)
			require.Error(t, err)
			var pe *parser.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, diagnostics.EParse, pe.Diag.Code)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestParseExpr_LexErrorBecomesParseError(t *testing.T) {
	_, err := parser.ParseExpr(`"open`, 0)
	var pe *parser.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, diagnostics.ELex, pe.Diag.Code)
}
