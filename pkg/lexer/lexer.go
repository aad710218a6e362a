// Package lexer implements the tokenizer for one stepviz statement line.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/ast"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Keywords
	TokTrue TokenType = iota
	TokFalse
	TokNone
	TokAnd
	TokOr
	TokNot
	TokIn
	TokIf
	TokElif
	TokElse
	TokFor
	TokWhile
	TokBreak
	TokContinue
	TokPass

	// Literals
	TokNumberLit
	TokStringLit

	// Identifiers
	TokIdent

	// Punctuation
	TokLBrace   // {
	TokRBrace   // }
	TokLBracket // [
	TokRBracket // ]
	TokLParen   // (
	TokRParen   // )
	TokColon    // :
	TokComma    // ,
	TokDot      // .
	TokEquals   // =

	// Augmented assignment
	TokPlusEq       // +=
	TokMinusEq      // -=
	TokStarEq       // *=
	TokSlashEq      // /=
	TokSlashSlashEq // //=
	TokPercentEq    // %=
	TokStarStarEq   // **=

	// Comparison operators
	TokGtEq   // >=
	TokLtEq   // <=
	TokEqEq   // ==
	TokBangEq // !=
	TokGt     // >
	TokLt     // <

	// Arithmetic and bitwise operators
	TokPlus       // +
	TokMinus      // -
	TokStar       // *
	TokStarStar   // **
	TokSlash      // /
	TokSlashSlash // //
	TokPercent    // %
	TokShl        // <<
	TokShr        // >>
	TokAmp        // &
	TokPipe       // |
	TokCaret      // ^

	// Special
	TokEOF
)

// Token represents a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Span  ast.Span
}

var keywords = map[string]TokenType{
	"True":     TokTrue,
	"true":     TokTrue,
	"False":    TokFalse,
	"false":    TokFalse,
	"None":     TokNone,
	"and":      TokAnd,
	"or":       TokOr,
	"not":      TokNot,
	"in":       TokIn,
	"if":       TokIf,
	"elif":     TokElif,
	"else":     TokElse,
	"for":      TokFor,
	"while":    TokWhile,
	"break":    TokBreak,
	"continue": TokContinue,
	"pass":     TokPass,
}

// operators is ordered longest first so that `//=` wins over `//` and `/`.
var operators = []struct {
	text string
	typ  TokenType
}{
	{"//=", TokSlashSlashEq},
	{"**=", TokStarStarEq},
	{"**", TokStarStar},
	{"//", TokSlashSlash},
	{"<<", TokShl},
	{">>", TokShr},
	{"==", TokEqEq},
	{"!=", TokBangEq},
	{">=", TokGtEq},
	{"<=", TokLtEq},
	{"+=", TokPlusEq},
	{"-=", TokMinusEq},
	{"*=", TokStarEq},
	{"/=", TokSlashEq},
	{"%=", TokPercentEq},
	{"{", TokLBrace},
	{"}", TokRBrace},
	{"[", TokLBracket},
	{"]", TokRBracket},
	{"(", TokLParen},
	{")", TokRParen},
	{":", TokColon},
	{",", TokComma},
	{".", TokDot},
	{"=", TokEquals},
	{">", TokGt},
	{"<", TokLt},
	{"+", TokPlus},
	{"-", TokMinus},
	{"*", TokStar},
	{"/", TokSlash},
	{"%", TokPercent},
	{"&", TokAmp},
	{"|", TokPipe},
	{"^", TokCaret},
}

type scanner struct {
	source string
	line   int
	pos    int
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) span(start int) ast.Span {
	return ast.Span{Line: s.line, StartCol: start + 1, EndCol: s.pos + 1}
}

func (s *scanner) skipWhitespace() {
	for !s.atEnd() {
		switch s.peek() {
		case ' ', '\t', '\r', '\n':
			s.pos++
		default:
			return
		}
	}
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

func (s *scanner) scanString(raw bool) (Token, error) {
	start := s.pos
	if raw {
		s.pos++ // consume r prefix
	}
	quote := s.source[s.pos]
	s.pos++

	var buf strings.Builder
	for !s.atEnd() {
		ch := s.peek()
		if ch == quote {
			s.pos++
			return Token{Type: TokStringLit, Value: buf.String(), Span: s.span(start)}, nil
		}
		if ch == '\\' {
			if s.pos+1 >= len(s.source) {
				return Token{}, s.lexError(start, "unterminated string escape")
			}
			esc := s.source[s.pos+1]
			s.pos += 2
			if raw {
				buf.WriteByte('\\')
				buf.WriteByte(esc)
				continue
			}
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			case 'r':
				buf.WriteByte('\r')
			case '\\', '\'', '"':
				buf.WriteByte(esc)
			default:
				// Unknown escapes are kept verbatim.
				buf.WriteByte('\\')
				buf.WriteByte(esc)
			}
			continue
		}
		r, size := utf8.DecodeRuneInString(s.source[s.pos:])
		if r == utf8.RuneError && size == 1 {
			return Token{}, s.lexError(start, "invalid UTF-8 character in string")
		}
		buf.WriteRune(r)
		s.pos += size
	}
	return Token{}, s.lexError(start, "unterminated string literal")
}

func (s *scanner) scanNumber() Token {
	start := s.pos

	for !s.atEnd() && isDigit(s.peek()) {
		s.pos++
	}

	// Optional fractional part; `1.` is accepted like the source language does.
	if s.peek() == '.' && !isAlpha(s.peekAt(1)) {
		s.pos++
		for !s.atEnd() && isDigit(s.peek()) {
			s.pos++
		}
	}

	// Optional exponent
	if s.peek() == 'e' || s.peek() == 'E' {
		next := s.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(s.peekAt(2))) {
			s.pos += 2
			for !s.atEnd() && isDigit(s.peek()) {
				s.pos++
			}
		}
	}

	return Token{Type: TokNumberLit, Value: s.source[start:s.pos], Span: s.span(start)}
}

func (s *scanner) scanIdentOrKeyword() Token {
	start := s.pos
	for !s.atEnd() {
		r, size := utf8.DecodeRuneInString(s.source[s.pos:])
		if r < utf8.RuneSelf {
			if !isAlphaNumeric(byte(r)) {
				break
			}
		} else if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		s.pos += size
	}

	text := s.source[start:s.pos]
	if tokType, ok := keywords[text]; ok {
		return Token{Type: tokType, Value: text, Span: s.span(start)}
	}
	return Token{Type: TokIdent, Value: text, Span: s.span(start)}
}

func (s *scanner) lexError(start int, msg string) error {
	diag := diagnostics.MakeDiag(
		diagnostics.ELex,
		msg,
		&ast.Span{Line: s.line, StartCol: start + 1, EndCol: start + 2},
		"",
	)
	return &LexError{Diag: diag}
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

func (s *scanner) nextToken() (Token, error) {
	s.skipWhitespace()

	if s.atEnd() {
		return Token{Type: TokEOF, Span: s.span(s.pos)}, nil
	}

	ch := s.peek()
	start := s.pos

	if ch == '"' || ch == '\'' {
		return s.scanString(false)
	}
	if (ch == 'r' || ch == 'R') && (s.peekAt(1) == '"' || s.peekAt(1) == '\'') {
		return s.scanString(true)
	}
	if isDigit(ch) || (ch == '.' && isDigit(s.peekAt(1))) {
		return s.scanNumber(), nil
	}
	if isAlpha(ch) || ch >= utf8.RuneSelf {
		r, _ := utf8.DecodeRuneInString(s.source[s.pos:])
		if ch < utf8.RuneSelf || unicode.IsLetter(r) {
			return s.scanIdentOrKeyword(), nil
		}
	}

	rest := s.source[s.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			s.pos += len(op.text)
			return Token{Type: op.typ, Value: op.text, Span: s.span(start)}, nil
		}
	}

	r, size := utf8.DecodeRuneInString(rest)
	s.pos += size
	return Token{}, s.lexError(start, fmt.Sprintf("unexpected character '%c'", r))
}

// Tokenize breaks one line of source into tokens. line is the zero-based
// line index recorded in every token span.
func Tokenize(source string, line int) ([]Token, error) {
	s := &scanner{source: source, line: line}
	var tokens []Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, nil
}

// StripComment removes a trailing `#` comment that is not inside a string
// literal.
func StripComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '#':
			return line[:i]
		}
	}
	return line
}
