package lexer

import (
	"testing"
)

// FuzzTokenize feeds random inputs to the lexer to catch panics.
// The lexer should never panic; it returns an error for invalid input.
func FuzzTokenize(f *testing.F) {
	seeds := []string{
		// Keywords
		`True False None true false`,
		`if elif else for while break continue pass`,
		`and or not in`,
		// Literals
		`42 3.14 .5 1e10 2E-3 1.`,
		`"hello" 'single' "with\nescape" "quote\""`,
		`r"\d+" R'raw'`,
		// Operators
		`+ - * / // % ** << >> & | ^`,
		`== != > < >= <= = += -= *= /= //= %= **=`,
		// Delimiters
		`{ } [ ] ( ) : , .`,
		// Statements
		`x = [1, 2, 3]`,
		`for k, v in d.items():`,
		`print("a", x[0], len(y))`,
		`s.findall("(\w)=(\d)")`,
		// Comments
		`x = 1 # trailing`,
		`"# not a comment"`,
		// Edge cases
		``,
		`   `,
		"\t\n\r",
		`"unterminated`,
		`'`,
		`"\`,
		`@$?!`,
		"\xff\xfe",
		`ünïcode = 1`,
		`é`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Tokenize panicked on input %q: %v", input, r)
				}
			}()
			tokens, err := Tokenize(input, 0)
			if err == nil && (len(tokens) == 0 || tokens[len(tokens)-1].Type != TokEOF) {
				t.Fatalf("token stream for %q does not end in EOF", input)
			}
			StripComment(input)
		}()
	})
}
