package parser_test

import (
	"testing"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/parser"
)

// FuzzParse feeds random inputs to the parser to catch panics.
// The parser should never panic; failures are recorded per line.
func FuzzParse(f *testing.F) {
	seeds := []string{
		// Assignments
		`x = 5`,
		`a, b = 1, 2`,
		`d["k"] = [1, (2, 3), {"a": None}]`,
		`n //= 2`,
		// Blocks
		"if x > 3:\n  print(x)\nelif x == 3:\n  pass\nelse:\n  y = -x",
		"for i in range(0, 10, 2):\n  total += i",
		"for k, v in d.items():\n  print(k, v)",
		"while n < 5 and not done:\n  n += 1\n  if n == 3:\n    break",
		// Method calls
		`xs.append(len(xs) ** 2)`,
		`s.strip().split(",")`,
		`re = "a" "b"`,
		// Comments and blanks
		"# comment only\n\n   \n",
		`x = "#" # trailing`,
		// Broken input
		`x = `,
		`if x`,
		`for in:`,
		`x = (1, `,
		`print(`,
		`a.b`,
		`x = "unterminated`,
		`1 = 2`,
		`))))`,
		"\t\t\x00",
		`@@@`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Parse panicked on input %q: %v", input, r)
				}
			}()
			prog := parser.Parse(input)
			for _, line := range prog.Lines {
				if !line.Blank() && line.Stmt == nil {
					t.Fatalf("line %d has text but no statement", line.Index)
				}
			}
			_, _ = parser.ParseExpr(input, 0)
		}()
	})
}
