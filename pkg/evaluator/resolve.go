package evaluator

import (
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/ast"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/formatter"
)

// resolve evaluates expr against the current environment. ok is false when
// the expression is unresolved: unknown names, ill-typed operands, failed
// builtin or method calls, and expressions that failed to parse (nil).
// Unresolved never aborts the run.
func (ev *evaluator) resolve(expr ast.Expr) (Value, bool) {
	if expr == nil {
		return nil, false
	}

	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return NewNumber(e.Value), true

	case *ast.BoolLiteral:
		return NewBool(e.Value), true

	case *ast.StrLiteral:
		return NewString(e.Value), true

	case *ast.NoneLiteral:
		return NewNone(), true

	case *ast.Name:
		return ev.env.Get(e.Ident)

	case *ast.ListExpr:
		items, ok := ev.resolveAll(e.Elements)
		if !ok {
			return nil, false
		}
		return NewList(items), true

	case *ast.TupleExpr:
		items, ok := ev.resolveAll(e.Elements)
		if !ok {
			return nil, false
		}
		return NewTuple(items), true

	case *ast.DictExpr:
		d := NewDict(nil)
		for _, entry := range e.Entries {
			key, ok := ev.resolve(entry.Key)
			if !ok || !Hashable(key) {
				return nil, false
			}
			val, ok := ev.resolve(entry.Value)
			if !ok {
				return nil, false
			}
			d.Set(DictKey(key), val)
		}
		return d, true

	case *ast.BinaryExpr:
		left, ok := ev.resolve(e.Left)
		if !ok {
			return nil, false
		}
		right, ok := ev.resolve(e.Right)
		if !ok {
			return nil, false
		}
		return ApplyBinary(e.Op, left, right)

	case *ast.UnaryExpr:
		operand, ok := ev.resolve(e.Operand)
		if !ok {
			return nil, false
		}
		return ApplyUnary(e.Op, operand)

	case *ast.LogicalExpr:
		return ev.resolveLogical(e)

	case *ast.IndexExpr:
		obj, ok := ev.resolve(e.Object)
		if !ok {
			return nil, false
		}
		idx, ok := ev.resolve(e.Index)
		if !ok {
			return nil, false
		}
		return Index(obj, idx)

	case *ast.CallExpr:
		return ev.callBuiltin(e)

	case *ast.MethodCallExpr:
		return ev.callMethod(e, false)
	}
	return nil, false
}

func (ev *evaluator) resolveAll(exprs []ast.Expr) ([]Value, bool) {
	vals := make([]Value, len(exprs))
	for i, expr := range exprs {
		v, ok := ev.resolve(expr)
		if !ok {
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

// resolveLogical yields the deciding operand the way `and`/`or` do in the
// scripting language: `or` returns the first truthy operand, `and` the first
// falsy one, otherwise the last operand.
func (ev *evaluator) resolveLogical(e *ast.LogicalExpr) (Value, bool) {
	var last Value
	for _, operand := range e.Operands {
		v, ok := ev.resolve(operand)
		if !ok {
			return nil, false
		}
		last = v
		truthy := Truthiness(v)
		if (e.Op == ast.OpOr && truthy) || (e.Op == ast.OpAnd && !truthy) {
			return v, true
		}
	}
	return last, last != nil
}

func (ev *evaluator) callBuiltin(e *ast.CallExpr) (Value, bool) {
	fn, ok := ev.opts.Builtins[e.Func]
	if !ok {
		ev.log.Debug("unknown function", "call", formatter.FormatExpr(e))
		return nil, false
	}
	args, ok := ev.resolveAll(e.Args)
	if !ok {
		return nil, false
	}
	result, err := fn.Execute(args)
	if err != nil {
		ev.log.Debug("builtin failed", "call", formatter.FormatExpr(e), "err", err)
		return nil, false
	}
	return result, true
}

// callMethod dispatches a method call on the receiver's kind. Mutating
// methods are only allowed when allowMutation is set.
func (ev *evaluator) callMethod(e *ast.MethodCallExpr, allowMutation bool) (Value, bool) {
	recv, ok := ev.resolve(e.Receiver)
	if !ok {
		return nil, false
	}
	m, ok := ev.opts.Methods[MethodKey(KindOf(recv), e.Method)]
	if !ok {
		ev.log.Debug("unknown method", "call", formatter.FormatExpr(e), "receiver", TypeName(recv))
		return nil, false
	}
	if m.Mutates && !allowMutation {
		ev.log.Debug("mutating method used inside an expression", "call", formatter.FormatExpr(e))
		return nil, false
	}
	args, ok := ev.resolveAll(e.Args)
	if !ok {
		return nil, false
	}
	result, err := m.Execute(recv, args)
	if err != nil {
		ev.log.Debug("method failed", "call", formatter.FormatExpr(e), "err", err)
		return nil, false
	}
	if m.Rebind {
		if !ev.assign(e.Receiver, result) {
			ev.log.Debug("method receiver is not assignable", "call", formatter.FormatExpr(e))
			return nil, false
		}
		return NewNone(), true
	}
	return result, true
}

// condition evaluates expr as a branch or loop condition. and/or
// short-circuit, `not` negates, and an unresolved clause counts as false.
func (ev *evaluator) condition(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.LogicalExpr:
		for _, operand := range e.Operands {
			v := ev.condition(operand)
			if e.Op == ast.OpOr && v {
				return true
			}
			if e.Op == ast.OpAnd && !v {
				return false
			}
		}
		return e.Op == ast.OpAnd
	case *ast.UnaryExpr:
		if e.Op == ast.OpNot {
			return !ev.condition(e.Operand)
		}
	}
	v, ok := ev.resolve(expr)
	if !ok {
		if expr != nil {
			ev.log.Debug("unresolved condition treated as false", "cond", formatter.FormatExpr(expr))
		}
		return false
	}
	return Truthiness(v)
}
