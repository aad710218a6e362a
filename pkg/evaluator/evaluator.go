package evaluator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/ast"
)

// BuiltinFn defines a built-in function callable by name.
type BuiltinFn struct {
	Name    string
	Execute func(args []Value) (Value, error)
}

// MethodFn defines a method dispatched on the receiver's kind.
//
// Mutates marks methods that change their receiver; they run only as a bare
// statement or as the whole right-hand side of an assignment. Rebind marks
// mutating methods whose result replaces the receiver binding instead of
// being the call's value (the call itself then evaluates to None).
type MethodFn struct {
	Receiver Kind
	Name     string
	Mutates  bool
	Rebind   bool
	Execute  func(recv Value, args []Value) (Value, error)
}

// MethodKey is the lookup key of a method in ExecOptions.Methods.
func MethodKey(kind Kind, name string) string {
	return string(kind) + "." + name
}

// ExecOptions configures program execution.
type ExecOptions struct {
	Builtins map[string]*BuiltinFn
	Methods  map[string]*MethodFn
	Budget   Budget
	Logger   *slog.Logger
}

// Step is one recorded instant of execution. Variables and Output are deep,
// independent copies; nothing executed later can change them.
type Step struct {
	Line      int
	Variables *Env
	Output    []string
}

// Trace is the complete ordered step list of a run.
type Trace struct {
	Steps []Step
	Stats BudgetTracker
}

// RuntimeError represents a fatal error that discards the run.
type RuntimeError struct {
	Code    string
	Message string
	Line    int
}

func (e *RuntimeError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("line %d: %s", e.Line+1, e.Message)
	}
	return e.Message
}

// Signal is a control transfer produced by break or continue and consumed
// by the nearest enclosing loop.
type Signal int

const (
	SignalNone Signal = iota
	SignalBreak
	SignalContinue
)

func (s Signal) String() string {
	switch s {
	case SignalBreak:
		return "break"
	case SignalContinue:
		return "continue"
	}
	return "none"
}

type evaluator struct {
	ctx     context.Context
	opts    ExecOptions
	budget  Budget
	tracker BudgetTracker
	log     *slog.Logger
	lines   []ast.Line
	env     *Env
	output  []string
	steps   []Step
}

// Execute runs a parsed program to completion and returns its trace. The
// trace starts and ends with a sentinel step on line -1. A fatal error
// discards the run: no partial trace is returned.
func Execute(ctx context.Context, program *ast.Program, opts ExecOptions) (*Trace, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ev := &evaluator{
		ctx:    ctx,
		opts:   opts,
		budget: opts.Budget.withDefaults(),
		log:    logger,
		lines:  program.Lines,
		env:    NewEnv(),
	}

	ev.record(-1)

	sig, err := ev.executeBlock(0, len(ev.lines), 0)
	if err != nil {
		return nil, err
	}
	if sig != SignalNone {
		ev.log.Info("loop control outside a loop ended the run", "signal", sig.String())
	}

	ev.record(-1)
	return &Trace{Steps: ev.steps, Stats: ev.tracker}, nil
}
