package evaluator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/ast"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/diagnostics"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/formatter"
)

// chainLink tracks the if/elif chain opened at one indentation.
type chainLink struct {
	indent    int
	satisfied bool
}

type chain []chainLink

// at returns the open chain at exactly indent, if any.
func (c *chain) at(indent int) *chainLink {
	if n := len(*c); n > 0 && (*c)[n-1].indent == indent {
		return &(*c)[n-1]
	}
	return nil
}

// unwind drops chains opened deeper than indent.
func (c *chain) unwind(indent int) {
	for n := len(*c); n > 0 && (*c)[n-1].indent > indent; n = len(*c) {
		*c = (*c)[:n-1]
	}
}

func (c *chain) pop() {
	if n := len(*c); n > 0 {
		*c = (*c)[:n-1]
	}
}

// executeBlock runs lines [start, end). Each non-blank line records a step
// before it acts. A break or continue signal is returned to the caller
// as soon as it is produced.
func (ev *evaluator) executeBlock(start, end, depth int) (Signal, error) {
	if depth > ev.budget.MaxNestingDepth {
		return SignalNone, &RuntimeError{
			Code:    diagnostics.EDepth,
			Message: fmt.Sprintf("nesting depth exceeds %d", ev.budget.MaxNestingDepth),
			Line:    start - 1,
		}
	}
	if depth > ev.tracker.MaxDepthReached {
		ev.tracker.MaxDepthReached = depth
	}

	var open chain
	i := start
	for i < end {
		line := ev.lines[i]
		if line.Blank() {
			i++
			continue
		}
		if err := ev.step(i); err != nil {
			return SignalNone, err
		}

		bodyEnd := i + 1
		if ast.HasBody(line.Stmt) {
			bodyEnd = ev.blockEnd(i, end)
		}

		open.unwind(line.Indent)
		sig, err := ev.executeLine(line, bodyEnd, depth, &open)
		if err != nil || sig != SignalNone {
			return sig, err
		}
		i = bodyEnd
	}
	return SignalNone, nil
}

// step checks for cancellation and records a snapshot for line.
func (ev *evaluator) step(line int) error {
	if err := ev.ctx.Err(); err != nil {
		msg := "run cancelled"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "run timed out"
		}
		return &RuntimeError{Code: diagnostics.ETimeout, Message: msg, Line: line}
	}
	ev.tracker.Statements++
	ev.record(line)
	return nil
}

// blockEnd returns the first line after header i whose indentation is not
// greater than the header's. Blank lines never end a block.
func (ev *evaluator) blockEnd(i, end int) int {
	indent := ev.lines[i].Indent
	j := i + 1
	for j < end {
		l := ev.lines[j]
		if !l.Blank() && l.Indent <= indent {
			break
		}
		j++
	}
	return j
}

func (ev *evaluator) executeLine(line ast.Line, bodyEnd, depth int, open *chain) (Signal, error) {
	i := line.Index

	switch s := line.Stmt.(type) {
	case *ast.IfStmt:
		ok := ev.condition(s.Cond)
		if link := open.at(line.Indent); link != nil {
			*link = chainLink{indent: line.Indent, satisfied: ok}
		} else {
			*open = append(*open, chainLink{indent: line.Indent, satisfied: ok})
		}
		if ok {
			return ev.executeBlock(i+1, bodyEnd, depth+1)
		}
		return SignalNone, nil

	case *ast.ElifStmt:
		link := open.at(line.Indent)
		if link == nil {
			ev.log.Debug("elif without a matching if, body skipped", "line", i)
			return SignalNone, nil
		}
		if link.satisfied || !ev.condition(s.Cond) {
			return SignalNone, nil
		}
		link.satisfied = true
		return ev.executeBlock(i+1, bodyEnd, depth+1)

	case *ast.ElseStmt:
		link := open.at(line.Indent)
		if link == nil {
			ev.log.Debug("else without a matching if, body skipped", "line", i)
			return SignalNone, nil
		}
		satisfied := link.satisfied
		open.pop()
		if satisfied {
			return SignalNone, nil
		}
		return ev.executeBlock(i+1, bodyEnd, depth+1)
	}

	// Any other statement closes a chain at its own indentation.
	if open.at(line.Indent) != nil {
		open.pop()
	}

	switch s := line.Stmt.(type) {
	case *ast.BreakStmt:
		return SignalBreak, nil
	case *ast.ContinueStmt:
		return SignalContinue, nil
	case *ast.ForRangeStmt:
		return SignalNone, ev.execForRange(s, i, bodyEnd, depth)
	case *ast.ForEachStmt:
		return SignalNone, ev.execForEach(s, i, bodyEnd, depth)
	case *ast.WhileStmt:
		return SignalNone, ev.execWhile(s, i, bodyEnd, depth)
	}

	if line.Err != "" {
		ev.log.Debug("unparsed statement skipped", "line", i, "text", line.Text, "err", line.Err)
		return SignalNone, nil
	}

	switch s := line.Stmt.(type) {
	case *ast.PrintStmt:
		ev.execPrint(s, i)
	case *ast.AssignStmt:
		ev.execAssign(s, i)
	case *ast.ExprStmt:
		if call, ok := s.Expr.(*ast.MethodCallExpr); ok {
			ev.callMethod(call, true)
		} else {
			ev.resolve(s.Expr)
		}
	}
	return SignalNone, nil
}

// runBody executes one loop iteration's body and reports whether the loop
// should stop.
func (ev *evaluator) runBody(i, bodyEnd, depth int) (done bool, err error) {
	ev.tracker.LoopIterations++
	sig, err := ev.executeBlock(i+1, bodyEnd, depth+1)
	if err != nil {
		return true, err
	}
	return sig == SignalBreak, nil
}

func (ev *evaluator) execForRange(s *ast.ForRangeStmt, i, bodyEnd, depth int) error {
	args, ok := ev.resolveAll(s.Args)
	if !ok || len(args) == 0 {
		ev.log.Debug("range arguments unresolved, loop skipped", "line", i)
		return nil
	}
	nums := make([]float64, len(args))
	for k, a := range args {
		n, isNum := arithNumber(a)
		if !isNum {
			ev.log.Debug("range argument is not a number, loop skipped", "line", i, "arg", Display(a))
			return nil
		}
		nums[k] = n
	}

	start, stop, stride := 0.0, nums[0], 1.0
	if len(nums) >= 2 {
		start, stop = nums[0], nums[1]
	}
	if len(nums) == 3 {
		stride = nums[2]
	}
	if stride == 0 {
		ev.log.Debug("range step is zero, loop skipped", "line", i)
		return nil
	}

	for n := 0; ; n++ {
		val := start + float64(n)*stride
		if (stride > 0 && val >= stop) || (stride < 0 && val <= stop) {
			return nil
		}
		if limit := ev.budget.MaxRangeIterations; limit > 0 && n >= limit {
			ev.log.Info("range iteration cap reached", "line", i, "cap", limit)
			return nil
		}
		if n > 0 {
			if err := ev.step(i); err != nil {
				return err
			}
		}
		ev.env.Set(s.Var, NewNumber(val))
		if done, err := ev.runBody(i, bodyEnd, depth); done || err != nil {
			return err
		}
	}
}

func (ev *evaluator) execForEach(s *ast.ForEachStmt, i, bodyEnd, depth int) error {
	iterable, ok := ev.resolve(s.Iter)
	if !ok {
		ev.log.Debug("for-each iterable unresolved, loop skipped", "line", i)
		return nil
	}
	items, ok := iterationItems(iterable)
	if !ok {
		ev.log.Debug("value is not iterable, loop skipped", "line", i, "type", TypeName(iterable))
		return nil
	}

	for n, item := range items {
		if n > 0 {
			if err := ev.step(i); err != nil {
				return err
			}
		}
		if !ev.bindTargets(s.Targets, item) {
			ev.log.Debug("cannot unpack loop item, loop ended", "line", i, "item", Display(item))
			return nil
		}
		if done, err := ev.runBody(i, bodyEnd, depth); done || err != nil {
			return err
		}
	}
	return nil
}

// iterationItems snapshots the elements a for-each walks: list and tuple
// items, string characters, or dict keys.
func iterationItems(v Value) ([]Value, bool) {
	switch c := v.(type) {
	case *List, *Tuple:
		items, _ := Items(c)
		out := make([]Value, len(items))
		copy(out, items)
		return out, true
	case String:
		var out []Value
		for _, r := range c.Value {
			out = append(out, NewString(string(r)))
		}
		return out, true
	case *Dict:
		return c.KeyValues(), true
	}
	return nil, false
}

func (ev *evaluator) bindTargets(targets []string, item Value) bool {
	if len(targets) == 1 {
		ev.env.Set(targets[0], item)
		return true
	}
	parts, ok := Items(item)
	if !ok || len(parts) != len(targets) {
		return false
	}
	for k, name := range targets {
		ev.env.Set(name, parts[k])
	}
	return true
}

func (ev *evaluator) execWhile(s *ast.WhileStmt, i, bodyEnd, depth int) error {
	limit := ev.budget.MaxWhileIterations
	for n := 0; ; n++ {
		if n >= limit {
			ev.tracker.WhileCapsHit++
			ev.log.Info("while iteration cap reached", "line", i, "cap", limit)
			return nil
		}
		if !ev.condition(s.Cond) {
			return nil
		}
		if n > 0 {
			if err := ev.step(i); err != nil {
				return err
			}
		}
		if done, err := ev.runBody(i, bodyEnd, depth); done || err != nil {
			return err
		}
	}
}

func (ev *evaluator) execPrint(s *ast.PrintStmt, i int) {
	parts := make([]string, len(s.Args))
	for k, arg := range s.Args {
		v, ok := ev.resolve(arg)
		if !ok {
			ev.log.Debug("print argument unresolved, nothing printed", "line", i, "arg", formatter.FormatExpr(arg))
			return
		}
		parts[k] = Print(v)
	}
	ev.output = append(ev.output, strings.Join(parts, " "))
}

func (ev *evaluator) execAssign(s *ast.AssignStmt, i int) {
	var value Value
	var ok bool
	if call, isCall := s.Value.(*ast.MethodCallExpr); isCall {
		value, ok = ev.callMethod(call, true)
	} else {
		value, ok = ev.resolve(s.Value)
	}
	if !ok {
		ev.log.Debug("right-hand side unresolved, assignment skipped", "line", i, "expr", formatter.FormatExpr(s.Value))
		return
	}

	if s.Op != "" {
		current, ok := ev.resolve(s.Targets[0])
		if !ok {
			ev.log.Debug("augmented target unresolved, assignment skipped", "line", i)
			return
		}
		if value, ok = ApplyBinary(s.Op, current, value); !ok {
			ev.log.Debug("augmented operator undefined for operands, assignment skipped", "line", i, "op", string(s.Op))
			return
		}
	}

	if len(s.Targets) == 1 {
		if !ev.assign(s.Targets[0], value) {
			ev.log.Debug("assignment target rejected", "line", i, "target", formatter.FormatExpr(s.Targets[0]))
		}
		return
	}

	parts, ok := Items(value)
	if !ok || len(parts) != len(s.Targets) {
		ev.log.Debug("cannot unpack value, assignment skipped", "line", i, "targets", len(s.Targets))
		return
	}
	parts = append([]Value(nil), parts...)
	for k, target := range s.Targets {
		ev.assign(target, parts[k])
	}
}

// assign binds value to a name, or for an indexed target rebinds the
// enclosing name to a new container with one slot replaced. The previous
// container, and every other alias of it, is left untouched.
func (ev *evaluator) assign(target ast.Expr, value Value) bool {
	switch t := target.(type) {
	case *ast.Name:
		ev.env.Set(t.Ident, value)
		return true
	case *ast.IndexExpr:
		if !assignable(t.Object) {
			return false
		}
		obj, ok := ev.resolve(t.Object)
		if !ok {
			return false
		}
		idx, ok := ev.resolve(t.Index)
		if !ok {
			return false
		}
		replaced, ok := ReplaceIndex(obj, idx, value)
		if !ok {
			return false
		}
		return ev.assign(t.Object, replaced)
	}
	return false
}

func assignable(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Name:
		return true
	case *ast.IndexExpr:
		return assignable(e.Object)
	}
	return false
}
