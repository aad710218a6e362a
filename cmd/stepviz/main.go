// Command stepviz runs teaching-subset scripts and prints or explores their
// step-by-step execution traces.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/config"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/diagnostics"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/evaluator"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/formatter"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/runtime"
)

const usage = `usage: stepviz <command> [options]

commands:
  run <file>     execute a script and print its output
  trace <file>   print the full step trace (--format json|ndjson|yaml)
  step <file>    scrub interactively through the step trace
  check <file>   report structural diagnostics without running
  fmt <file>     print the script in canonical form (--write to rewrite)
  help           show this message

common options:
  --pretty            human-readable diagnostics
  --max-while <n>     override the while iteration cap
  --timeout <d>       abort runs after a duration such as 2s
  -v                  debug logging (also enabled by DEBUG=1)

Use - as the file to read from stdin.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "trace":
		os.Exit(cmdTrace(os.Args[2:]))
	case "step":
		os.Exit(cmdStep(os.Args[2:]))
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "fmt":
		os.Exit(cmdFmt(os.Args[2:]))
	case "help", "--help", "-h":
		fmt.Print(usage)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		os.Exit(1)
	}
}

// options holds the flags shared by the commands that execute a script.
type options struct {
	file     string
	pretty   bool
	verbose  bool
	format   string
	write    bool
	maxWhile int
	timeout  time.Duration
}

func parseArgs(args []string) (*options, error) {
	opts := &options{format: "json"}
	value := func(i *int, name string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s needs a value", name)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--pretty":
			opts.pretty = true
		case "-v", "--verbose":
			opts.verbose = true
		case "--write":
			opts.write = true
		case "--format":
			v, err := value(&i, arg)
			if err != nil {
				return nil, err
			}
			opts.format = v
		case "--max-while":
			v, err := value(&i, arg)
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("--max-while must be a positive integer, got %q", v)
			}
			opts.maxWhile = n
		case "--timeout":
			v, err := value(&i, arg)
			if err != nil {
				return nil, err
			}
			d, err := time.ParseDuration(v)
			if err != nil || d < 0 {
				return nil, fmt.Errorf("--timeout must be a non-negative duration, got %q", v)
			}
			opts.timeout = d
		default:
			if arg != "-" && strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown option %s", arg)
			}
			opts.file = arg
		}
	}
	if opts.file == "" {
		return nil, errors.New("missing script file")
	}
	return opts, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose || os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newRuntime builds a runtime from the config files, with command-line
// flags taking precedence.
func newRuntime(opts *options, logger *slog.Logger) (*runtime.Runtime, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		logger.Debug("loaded config", "path", cfg.Path)
	}
	if opts.maxWhile > 0 {
		cfg.MaxWhileIterations = opts.maxWhile
	}
	if opts.timeout > 0 {
		cfg.Timeout = config.Duration(opts.timeout)
	}
	return runtime.New(runtime.WithConfig(cfg), runtime.WithLogger(logger)), nil
}

// execute reads and runs the script named by opts, reporting failures on
// stderr. A non-zero code means the caller should exit with it.
func execute(opts *options) (*runtime.Result, []string, int) {
	source, code := readSource(opts.file, opts.pretty)
	if code != 0 {
		return nil, nil, code
	}
	logger := newLogger(opts.verbose)
	rt, err := newRuntime(opts, logger)
	if err != nil {
		printDiag(diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), nil, ""), opts.pretty)
		return nil, nil, 1
	}

	result, err := rt.Run(context.Background(), source)
	if err != nil {
		return nil, nil, reportRunError(err, opts.pretty)
	}
	if len(result.Diagnostics) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(result.Diagnostics, opts.pretty))
	}
	return result, strings.Split(source, "\n"), 0
}

func reportRunError(err error, pretty bool) int {
	var diagErr *runtime.DiagnosticError
	if errors.As(err, &diagErr) {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, pretty))
		for _, d := range diagErr.Diagnostics {
			if d.Code == diagnostics.EInternal {
				return 4
			}
		}
		return 2
	}
	var rtErr *evaluator.RuntimeError
	if errors.As(err, &rtErr) {
		diag := diagnostics.MakeDiag(rtErr.Code, rtErr.Error(), nil, "")
		printDiag(diag, pretty)
		return 4
	}
	fmt.Fprintln(os.Stderr, err.Error())
	return 4
}

func cmdRun(args []string) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nusage: stepviz run <file> [--pretty] [--max-while <n>] [--timeout <d>] [-v]\n", err)
		return 1
	}
	result, _, code := execute(opts)
	if code != 0 {
		return code
	}
	for _, line := range result.Steps[len(result.Steps)-1].Output {
		fmt.Println(line)
	}
	return 0
}

func cmdTrace(args []string) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nusage: stepviz trace <file> [--format json|ndjson|yaml]\n", err)
		return 1
	}
	switch opts.format {
	case "json", "ndjson", "yaml":
	default:
		fmt.Fprintf(os.Stderr, "unknown trace format %q (want json, ndjson or yaml)\n", opts.format)
		return 1
	}

	result, _, code := execute(opts)
	if code != 0 {
		return code
	}
	if err := writeTrace(os.Stdout, result.Trace(), opts.format); err != nil {
		fmt.Fprintf(os.Stderr, "error serializing trace: %s\n", err)
		return 4
	}
	return 0
}

func writeTrace(w io.Writer, trace *evaluator.Trace, format string) error {
	switch format {
	case "ndjson":
		return evaluator.WriteNDJSON(w, trace)
	case "yaml":
		return evaluator.WriteYAML(w, trace)
	default:
		data, err := evaluator.TraceToJSON(trace)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}

func cmdStep(args []string) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nusage: stepviz step <file>\n", err)
		return 1
	}
	if opts.file == "-" {
		fmt.Fprintln(os.Stderr, "step reads commands from the terminal; pass a script file")
		return 1
	}
	result, lines, code := execute(opts)
	if code != 0 {
		return code
	}
	return runScrubber(newScrubber(result.Steps, lines))
}

func cmdCheck(args []string) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nusage: stepviz check <file> [--pretty]\n", err)
		return 1
	}
	source, code := readSource(opts.file, opts.pretty)
	if code != 0 {
		return code
	}

	rt, err := newRuntime(opts, newLogger(opts.verbose))
	if err != nil {
		printDiag(diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), nil, ""), opts.pretty)
		return 1
	}
	diags := rt.Check(source)
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diags, opts.pretty))
		if diagnostics.HasErrors(diags) {
			return 2
		}
		return 0
	}

	if opts.pretty {
		fmt.Println("No problems found.")
	} else {
		fmt.Println("[]")
	}
	return 0
}

func cmdFmt(args []string) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nusage: stepviz fmt <file> [--write]\n", err)
		return 1
	}
	source, code := readSource(opts.file, false)
	if code != 0 {
		return code
	}

	formatted := runtime.New().Format(source)
	if formatter.HasComments(source) {
		fmt.Fprintln(os.Stderr, "warning: comments are not preserved by the formatter")
	}

	if opts.write && opts.file != "-" {
		if err := os.WriteFile(opts.file, []byte(formatted), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing file: %s\n", err)
			return 1
		}
		return 0
	}
	fmt.Print(formatted)
	return 0
}

func readSource(file string, pretty bool) (string, int) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading stdin: %s\n", err)
			return "", 1
		}
		return string(data), 0
	}

	source, err := os.ReadFile(file)
	if err != nil {
		printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), nil, ""), pretty)
		return "", 1
	}
	return string(source), 0
}

func printDiag(d diagnostics.Diagnostic, pretty bool) {
	fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{d}, pretty))
}
