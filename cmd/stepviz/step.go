package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/config"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/evaluator"
)

const (
	historyFile = "step_history"
	stepPrompt  = "step> "
)

const stepHelp = `commands:
  <enter>, n, next     move forward one step
  p, prev              move back one step
  g <k>, goto <k>      jump to step k (1-based)
  f, first / l, last   jump to the first or last step
  line <n>             jump to the next step that executes source line n
  v, vars              show the variables of the current step
  o, out               show the output printed so far
  h, help              show this message
  q, quit              leave the scrubber`

// scrubber is a cursor over a recorded trace.
type scrubber struct {
	steps  []evaluator.Step
	source []string
	pos    int
}

func newScrubber(steps []evaluator.Step, source []string) *scrubber {
	return &scrubber{steps: steps, source: source}
}

// handle applies one command and returns the text to show. quit reports
// that the session should end.
func (s *scrubber) handle(input string) (out string, quit bool) {
	fields := strings.Fields(input)
	cmd := ""
	if len(fields) > 0 {
		cmd = fields[0]
	}

	switch cmd {
	case "", "n", "next":
		if s.pos == len(s.steps)-1 {
			return "already at the last step", false
		}
		s.pos++
	case "p", "prev":
		if s.pos == 0 {
			return "already at the first step", false
		}
		s.pos--
	case "f", "first":
		s.pos = 0
	case "l", "last":
		s.pos = len(s.steps) - 1
	case "g", "goto":
		if len(fields) != 2 {
			return "usage: goto <step>", false
		}
		k, err := strconv.Atoi(fields[1])
		if err != nil || k < 1 || k > len(s.steps) {
			return fmt.Sprintf("step must be between 1 and %d", len(s.steps)), false
		}
		s.pos = k - 1
	case "line":
		if len(fields) != 2 {
			return "usage: line <n>", false
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return "usage: line <n>", false
		}
		next := -1
		for k := s.pos + 1; k < len(s.steps); k++ {
			if s.steps[k].Line == n-1 {
				next = k
				break
			}
		}
		if next < 0 {
			return fmt.Sprintf("line %d does not execute again", n), false
		}
		s.pos = next
	case "v", "vars":
		return s.variables(), false
	case "o", "out":
		return s.output(), false
	case "h", "help":
		return stepHelp, false
	case "q", "quit", "exit":
		return "", true
	default:
		return fmt.Sprintf("unknown command %q (h for help)", cmd), false
	}
	return s.render(), false
}

// render shows the current step header with its variables.
func (s *scrubber) render() string {
	step := s.steps[s.pos]
	var sb strings.Builder
	fmt.Fprintf(&sb, "step %d/%d  ", s.pos+1, len(s.steps))
	switch {
	case step.Line < 0 && s.pos == 0:
		sb.WriteString("(start)")
	case step.Line < 0:
		sb.WriteString("(end)")
	default:
		text := ""
		if step.Line < len(s.source) {
			text = strings.TrimRight(s.source[step.Line], " \t\r")
		}
		fmt.Fprintf(&sb, "line %d: %s", step.Line+1, text)
	}
	sb.WriteString("\n")
	sb.WriteString(s.variables())
	if n := len(step.Output); n > 0 {
		fmt.Fprintf(&sb, "\n  last output: %s", step.Output[n-1])
	}
	return sb.String()
}

func (s *scrubber) variables() string {
	env := s.steps[s.pos].Variables
	if env == nil || env.Len() == 0 {
		return "  (no variables)"
	}
	var parts []string
	env.Each(func(name string, val evaluator.Value) {
		parts = append(parts, fmt.Sprintf("  %s = %s", name, evaluator.Display(val)))
	})
	return strings.Join(parts, "\n")
}

func (s *scrubber) output() string {
	out := s.steps[s.pos].Output
	if len(out) == 0 {
		return "  (no output yet)"
	}
	return "  " + strings.Join(out, "\n  ")
}

// runScrubber drives the scrubber from the terminal until quit or EOF.
func runScrubber(s *scrubber) int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, config.UserDir, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	fmt.Println(s.render())
	fmt.Println("(h for help)")
	for {
		input, err := ln.Prompt(stepPrompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading input: %s\n", err)
			return 1
		}
		if strings.TrimSpace(input) != "" {
			ln.AppendHistory(input)
		}
		out, quit := s.handle(input)
		if quit {
			break
		}
		fmt.Println(out)
	}

	if histPath != "" {
		if err := os.MkdirAll(filepath.Dir(histPath), 0o755); err == nil {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}
	}
	return 0
}
