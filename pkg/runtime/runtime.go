// Package runtime provides the top-level stepviz runtime orchestrator.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/config"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/diagnostics"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/evaluator"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/formatter"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/parser"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/stdlib"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/validator"
)

// Result holds the trace of a run plus any validator warnings.
type Result struct {
	Steps       []evaluator.Step
	Stats       evaluator.BudgetTracker
	Diagnostics []diagnostics.Diagnostic
}

// Trace returns the result as an evaluator trace for encoding.
func (r *Result) Trace() *evaluator.Trace {
	return &evaluator.Trace{Steps: r.Steps, Stats: r.Stats}
}

// Runtime wires together all stepviz components for program execution.
type Runtime struct {
	stdlib  *stdlib.Registry
	budget  evaluator.Budget
	timeout time.Duration
	logger  *slog.Logger
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithStdlib sets the builtin/method registry.
func WithStdlib(r *stdlib.Registry) Option {
	return func(rt *Runtime) {
		rt.stdlib = r
	}
}

// WithLogger sets the logger used for skipped statements and loop caps.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithBudget sets the execution limits.
func WithBudget(b evaluator.Budget) Option {
	return func(rt *Runtime) {
		rt.budget = b
	}
}

// WithTimeout bounds each run; zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(rt *Runtime) {
		rt.timeout = d
	}
}

// WithConfig applies limits and timeout from a loaded config.
func WithConfig(cfg *config.Config) Option {
	return func(rt *Runtime) {
		if cfg == nil {
			return
		}
		rt.budget = cfg.Budget()
		rt.timeout = time.Duration(cfg.Timeout)
	}
}

// New creates a new Runtime with the given options.
// By default, the stdlib defaults are registered and the default budget applies.
func New(opts ...Option) *Runtime {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg)

	rt := &Runtime{
		stdlib: reg,
		budget: evaluator.DefaultBudget(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Run parses, validates, and executes a program, returning its full step
// trace. Validator errors abort before execution; warnings are returned on
// the Result. Any fatal error discards the trace. A panic anywhere in the
// pipeline is reported as a generic E_INTERNAL error.
func (rt *Runtime) Run(ctx context.Context, source string) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Error("run panicked", "panic", fmt.Sprint(r))
			result = nil
			err = &DiagnosticError{Diagnostics: []diagnostics.Diagnostic{
				diagnostics.MakeDiag(diagnostics.EInternal, "parsing error", nil, ""),
			}}
		}
	}()

	program := parser.Parse(source)
	diags := validator.Validate(program, rt.validatorOptions())
	if diagnostics.HasErrors(diags) {
		return nil, &DiagnosticError{Diagnostics: diags}
	}

	if rt.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.timeout)
		defer cancel()
	}

	trace, err := evaluator.Execute(ctx, program, rt.buildExecOptions())
	if err != nil {
		return nil, err
	}
	return &Result{Steps: trace.Steps, Stats: trace.Stats, Diagnostics: diags}, nil
}

// Check parses and validates a program without executing it.
func (rt *Runtime) Check(source string) []diagnostics.Diagnostic {
	program := parser.Parse(source)
	return validator.Validate(program, rt.validatorOptions())
}

// Format parses and re-renders a program in canonical form.
func (rt *Runtime) Format(source string) string {
	return formatter.Format(parser.Parse(source))
}

func (rt *Runtime) validatorOptions() validator.Options {
	known := make(map[string]bool, len(rt.stdlib.All()))
	for name := range rt.stdlib.All() {
		known[name] = true
	}
	return validator.Options{
		MaxNestingDepth: rt.budget.MaxNestingDepth,
		Builtins:        known,
	}
}

// buildExecOptions constructs evaluator options from the runtime's configuration.
func (rt *Runtime) buildExecOptions() evaluator.ExecOptions {
	return evaluator.ExecOptions{
		Builtins: rt.stdlib.Builtins(),
		Methods:  rt.stdlib.Methods(),
		Budget:   rt.budget,
		Logger:   rt.logger,
	}
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	var msgs []string
	for _, d := range e.Diagnostics {
		if d.IsError() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", d.Code, d.Message))
		}
	}
	return strings.Join(msgs, "; ")
}
