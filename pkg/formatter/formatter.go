// Package formatter renders stepviz expression trees and statements back to
// canonical source text.
package formatter

import (
	"strconv"
	"strings"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/ast"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/lexer"
)

// Precedence table for binary operators (higher = tighter binding)
var precedence = map[ast.BinaryOp]int{
	ast.OpEqEq: 4, ast.OpNeq: 4, ast.OpGt: 4, ast.OpLt: 4, ast.OpGtEq: 4, ast.OpLtEq: 4,
	ast.OpIn: 4, ast.OpNotIn: 4,
	ast.OpBitOr:  5,
	ast.OpBitXor: 6,
	ast.OpBitAnd: 7,
	ast.OpShl:    8, ast.OpShr: 8,
	ast.OpAdd: 9, ast.OpSub: 9,
	ast.OpMul: 10, ast.OpDiv: 10, ast.OpFloorDiv: 10, ast.OpMod: 10,
	ast.OpPow: 12,
}

const (
	precOr    = 1
	precAnd   = 2
	precNot   = 3
	precUnary = 11
	precAtom  = 13
)

func exprPrec(e ast.Expr) int {
	switch n := e.(type) {
	case *ast.LogicalExpr:
		if n.Op == ast.OpOr {
			return precOr
		}
		return precAnd
	case *ast.UnaryExpr:
		if n.Op == ast.OpNot {
			return precNot
		}
		return precUnary
	case *ast.BinaryExpr:
		return precedence[n.Op]
	}
	return precAtom
}

// FormatExpr renders an expression in canonical form. A nil expression
// renders as "<unparsed>".
func FormatExpr(e ast.Expr) string {
	var sb strings.Builder
	writeExpr(&sb, e)
	return sb.String()
}

func writeOperand(sb *strings.Builder, e ast.Expr, minPrec int) {
	if exprPrec(e) < minPrec {
		sb.WriteByte('(')
		writeExpr(sb, e)
		sb.WriteByte(')')
		return
	}
	writeExpr(sb, e)
}

func writeList(sb *strings.Builder, exprs []ast.Expr) {
	for i, e := range exprs {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeOperand(sb, e, precOr)
	}
}

func writeExpr(sb *strings.Builder, e ast.Expr) {
	switch n := e.(type) {
	case nil:
		sb.WriteString("<unparsed>")
	case *ast.NumberLiteral:
		if n.Raw != "" {
			sb.WriteString(n.Raw)
		} else {
			sb.WriteString(strconv.FormatFloat(n.Value, 'f', -1, 64))
		}
	case *ast.BoolLiteral:
		if n.Value {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case *ast.StrLiteral:
		writeString(sb, n.Value)
	case *ast.NoneLiteral:
		sb.WriteString("None")
	case *ast.Name:
		sb.WriteString(n.Ident)
	case *ast.ListExpr:
		sb.WriteByte('[')
		writeList(sb, n.Elements)
		sb.WriteByte(']')
	case *ast.TupleExpr:
		sb.WriteByte('(')
		writeList(sb, n.Elements)
		if len(n.Elements) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case *ast.DictExpr:
		sb.WriteByte('{')
		for i, entry := range n.Entries {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeOperand(sb, entry.Key, precOr)
			sb.WriteString(": ")
			writeOperand(sb, entry.Value, precOr)
		}
		sb.WriteByte('}')
	case *ast.BinaryExpr:
		prec := precedence[n.Op]
		left, right := prec, prec+1
		if n.Op == ast.OpPow {
			// Right-associative; a unary operand on the right needs no parens.
			left, right = prec+1, precUnary
		}
		if n.Op.IsComparison() {
			left, right = prec+1, prec+1
		}
		writeOperand(sb, n.Left, left)
		sb.WriteString(" " + string(n.Op) + " ")
		writeOperand(sb, n.Right, right)
	case *ast.UnaryExpr:
		if n.Op == ast.OpNot {
			sb.WriteString("not ")
			writeOperand(sb, n.Operand, precNot)
			return
		}
		sb.WriteString(string(n.Op))
		writeOperand(sb, n.Operand, precUnary)
	case *ast.LogicalExpr:
		prec := exprPrec(n)
		for i, operand := range n.Operands {
			if i > 0 {
				sb.WriteString(" " + string(n.Op) + " ")
			}
			writeOperand(sb, operand, prec+1)
		}
	case *ast.IndexExpr:
		writeOperand(sb, n.Object, precAtom)
		sb.WriteByte('[')
		writeExpr(sb, n.Index)
		sb.WriteByte(']')
	case *ast.CallExpr:
		sb.WriteString(n.Func)
		sb.WriteByte('(')
		writeList(sb, n.Args)
		sb.WriteByte(')')
	case *ast.MethodCallExpr:
		writeOperand(sb, n.Receiver, precAtom)
		sb.WriteString("." + n.Method + "(")
		writeList(sb, n.Args)
		sb.WriteByte(')')
	}
}

// writeString writes s as a double-quoted literal using only the escapes the
// lexer understands; every other character is written as is.
func writeString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
}

// FormatStmt renders one statement without indentation.
func FormatStmt(s ast.Stmt) string {
	var sb strings.Builder
	switch n := s.(type) {
	case *ast.AssignStmt:
		for i, t := range n.Targets {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeExpr(&sb, t)
		}
		sb.WriteString(" " + string(n.Op) + "= ")
		if tuple, ok := n.Value.(*ast.TupleExpr); ok && len(tuple.Elements) > 1 {
			writeList(&sb, tuple.Elements)
		} else {
			writeExpr(&sb, n.Value)
		}
	case *ast.ExprStmt:
		writeExpr(&sb, n.Expr)
	case *ast.PrintStmt:
		sb.WriteString("print(")
		writeList(&sb, n.Args)
		sb.WriteByte(')')
	case *ast.IfStmt:
		sb.WriteString("if " + FormatExpr(n.Cond) + ":")
	case *ast.ElifStmt:
		sb.WriteString("elif " + FormatExpr(n.Cond) + ":")
	case *ast.ElseStmt:
		sb.WriteString("else:")
	case *ast.ForRangeStmt:
		sb.WriteString("for " + n.Var + " in range(")
		writeList(&sb, n.Args)
		sb.WriteString("):")
	case *ast.ForEachStmt:
		sb.WriteString("for " + strings.Join(n.Targets, ", ") + " in ")
		if tuple, ok := n.Iter.(*ast.TupleExpr); ok && len(tuple.Elements) > 1 {
			writeList(&sb, tuple.Elements)
		} else {
			writeExpr(&sb, n.Iter)
		}
		sb.WriteByte(':')
	case *ast.WhileStmt:
		sb.WriteString("while " + FormatExpr(n.Cond) + ":")
	case *ast.BreakStmt:
		sb.WriteString("break")
	case *ast.ContinueStmt:
		sb.WriteString("continue")
	case *ast.PassStmt:
		sb.WriteString("pass")
	case *ast.UnknownStmt:
		sb.WriteString(n.Text)
	}
	return sb.String()
}

// Format re-renders a program line by line, keeping each line's original
// indentation. Lines that failed to parse keep their text; comments are
// dropped.
func Format(program *ast.Program) string {
	lines := make([]string, len(program.Lines))
	for i, line := range program.Lines {
		if line.Blank() {
			continue
		}
		text := line.Text
		if line.Err == "" && line.Stmt != nil {
			text = FormatStmt(line.Stmt)
		}
		lines[i] = strings.Repeat(" ", line.Indent) + text
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
}

// HasComments reports whether source contains any `#` comment outside a
// string literal.
func HasComments(source string) bool {
	for _, line := range strings.Split(source, "\n") {
		if lexer.StripComment(line) != line {
			return true
		}
	}
	return false
}
