// Package validator implements the structural pre-pass over a parsed stepviz
// program. Only exceeding the nesting limit is an error; everything else is
// a warning, since the executor degrades those cases to no-ops.
package validator

import (
	"fmt"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/ast"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/diagnostics"
)

// Options configures validation.
type Options struct {
	// MaxNestingDepth is the deepest allowed block nesting; 0 disables the check.
	MaxNestingDepth int
	// Builtins lists callable function names. When nil, calls are not checked.
	Builtins map[string]bool
}

type block struct {
	indent int
	loop   bool
}

type validator struct {
	opts    Options
	diags   []diagnostics.Diagnostic
	blocks  []block
	chains  map[int]bool // indent -> open if/elif chain
	pending *ast.Line    // header still waiting for its first body line
	prev    *ast.Line
	tooDeep bool
}

// Validate checks program structure and returns diagnostics in line order.
func Validate(program *ast.Program, opts Options) []diagnostics.Diagnostic {
	v := &validator{opts: opts, chains: make(map[int]bool)}
	for i := range program.Lines {
		line := &program.Lines[i]
		if line.Blank() {
			continue
		}
		v.visit(line)
	}
	if v.pending != nil {
		v.emptyBody(v.pending)
	}
	return v.diags
}

func (v *validator) warn(code, msg string, line *ast.Line, hint string) {
	span := lineSpan(line)
	v.diags = append(v.diags, diagnostics.MakeWarning(code, msg, &span, hint))
}

func lineSpan(line *ast.Line) ast.Span {
	return ast.Span{Line: line.Index, StartCol: line.Indent + 1, EndCol: line.Indent + len(line.Text) + 1}
}

func (v *validator) visit(line *ast.Line) {
	if v.pending != nil && line.Indent <= v.pending.Indent {
		v.emptyBody(v.pending)
	}
	if v.pending == nil && v.prev != nil && line.Indent > v.prev.Indent {
		v.warn(diagnostics.WIndent, "unexpected indentation", line, "only lines after a header ending in ':' may be indented further")
	}
	v.pending = nil

	for n := len(v.blocks); n > 0 && v.blocks[n-1].indent >= line.Indent; n = len(v.blocks) {
		v.blocks = v.blocks[:n-1]
	}
	for indent := range v.chains {
		if indent > line.Indent {
			delete(v.chains, indent)
		}
	}

	if limit := v.opts.MaxNestingDepth; limit > 0 && len(v.blocks) > limit && !v.tooDeep {
		v.tooDeep = true
		span := lineSpan(line)
		v.diags = append(v.diags, diagnostics.MakeDiag(diagnostics.EDepth,
			fmt.Sprintf("nesting depth %d exceeds the limit of %d", len(v.blocks), limit), &span,
			"flatten nested loops and conditionals"))
	}

	if line.Err != "" {
		v.warn(diagnostics.WUnparsed, fmt.Sprintf("statement cannot be evaluated: %s", line.Err), line, "the line will be skipped")
	}

	v.checkChain(line)
	v.checkLoopControl(line)
	v.checkCalls(line)

	if ast.HasBody(line.Stmt) {
		_, isLoop := line.Stmt.(*ast.WhileStmt)
		switch line.Stmt.(type) {
		case *ast.ForRangeStmt, *ast.ForEachStmt:
			isLoop = true
		}
		v.blocks = append(v.blocks, block{indent: line.Indent, loop: isLoop})
		v.pending = line
	}
	v.prev = line
}

func (v *validator) emptyBody(header *ast.Line) {
	v.warn(diagnostics.WEmptyBody, fmt.Sprintf("'%s' has no indented body", header.Text), header, "indent the lines that belong to this block")
}

func (v *validator) checkChain(line *ast.Line) {
	k := line.Indent
	switch line.Stmt.(type) {
	case *ast.IfStmt:
		v.chains[k] = true
	case *ast.ElifStmt:
		if !v.chains[k] {
			v.warn(diagnostics.WOrphanBranch, "elif without a matching if", line, "its body will never run")
		}
	case *ast.ElseStmt:
		if !v.chains[k] {
			v.warn(diagnostics.WOrphanBranch, "else without a matching if", line, "its body will never run")
		}
		delete(v.chains, k)
	default:
		delete(v.chains, k)
	}
}

func (v *validator) checkLoopControl(line *ast.Line) {
	var word string
	switch line.Stmt.(type) {
	case *ast.BreakStmt:
		word = "break"
	case *ast.ContinueStmt:
		word = "continue"
	default:
		return
	}
	for _, b := range v.blocks {
		if b.loop {
			return
		}
	}
	v.warn(diagnostics.WLoopControl, fmt.Sprintf("'%s' outside a loop", word), line, "it ends the program at this point")
}

func (v *validator) checkCalls(line *ast.Line) {
	if v.opts.Builtins == nil {
		return
	}
	for _, expr := range stmtExprs(line.Stmt) {
		walk(expr, func(e ast.Expr) {
			call, ok := e.(*ast.CallExpr)
			if ok && !v.opts.Builtins[call.Func] {
				v.warn(diagnostics.WUnknownFn, fmt.Sprintf("unknown function '%s'", call.Func), line, "")
			}
		})
	}
}

// stmtExprs returns the top-level expressions of a statement.
func stmtExprs(s ast.Stmt) []ast.Expr {
	switch n := s.(type) {
	case *ast.AssignStmt:
		return append(append([]ast.Expr{}, n.Targets...), n.Value)
	case *ast.ExprStmt:
		return []ast.Expr{n.Expr}
	case *ast.PrintStmt:
		return n.Args
	case *ast.IfStmt:
		return []ast.Expr{n.Cond}
	case *ast.ElifStmt:
		return []ast.Expr{n.Cond}
	case *ast.WhileStmt:
		return []ast.Expr{n.Cond}
	case *ast.ForRangeStmt:
		return n.Args
	case *ast.ForEachStmt:
		return []ast.Expr{n.Iter}
	}
	return nil
}

// walk visits e and all of its subexpressions in source order.
func walk(e ast.Expr, fn func(ast.Expr)) {
	if e == nil {
		return
	}
	fn(e)
	switch n := e.(type) {
	case *ast.ListExpr:
		for _, el := range n.Elements {
			walk(el, fn)
		}
	case *ast.TupleExpr:
		for _, el := range n.Elements {
			walk(el, fn)
		}
	case *ast.DictExpr:
		for _, entry := range n.Entries {
			walk(entry.Key, fn)
			walk(entry.Value, fn)
		}
	case *ast.BinaryExpr:
		walk(n.Left, fn)
		walk(n.Right, fn)
	case *ast.UnaryExpr:
		walk(n.Operand, fn)
	case *ast.LogicalExpr:
		for _, op := range n.Operands {
			walk(op, fn)
		}
	case *ast.IndexExpr:
		walk(n.Object, fn)
		walk(n.Index, fn)
	case *ast.CallExpr:
		for _, a := range n.Args {
			walk(a, fn)
		}
	case *ast.MethodCallExpr:
		walk(n.Receiver, fn)
		for _, a := range n.Args {
			walk(a, fn)
		}
	}
}
