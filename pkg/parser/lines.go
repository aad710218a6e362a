package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/ast"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/lexer"
)

// Parse preprocesses source into lines (comments stripped, indentation
// measured) and parses each non-blank line into a statement. Parsing never
// fails as a whole: a line whose expression cannot be parsed keeps its
// statement shape with a nil expression and records the reason in Line.Err.
func Parse(source string) *ast.Program {
	rawLines := strings.Split(source, "\n")
	prog := &ast.Program{Lines: make([]ast.Line, len(rawLines))}
	for i, raw := range rawLines {
		raw = strings.TrimSuffix(raw, "\r")
		line := ast.Line{
			Index:  i,
			Indent: measureIndent(raw),
			Text:   strings.TrimSpace(lexer.StripComment(raw)),
		}
		if !line.Blank() {
			stmt, err := ParseStatement(line.Text, i)
			line.Stmt = stmt
			if err != nil {
				line.Err = err.Error()
			}
		}
		prog.Lines[i] = line
	}
	return prog
}

func measureIndent(raw string) int {
	n := 0
	for n < len(raw) && (raw[n] == ' ' || raw[n] == '\t') {
		n++
	}
	return n
}

// headerPattern classifies header lines whose text cannot be tokenized, so
// that their bodies are still treated as blocks.
var headerPattern = regexp.MustCompile(`^(if|elif|while|for)\b.*:$`)

// ParseStatement parses one comment-stripped, trimmed line. The returned
// statement is never nil; err reports an expression that failed to parse.
func ParseStatement(text string, line int) (ast.Stmt, error) {
	span := ast.Span{Line: line, StartCol: 1, EndCol: len(text) + 1}

	tokens, err := lexer.Tokenize(text, line)
	if err != nil {
		return fallbackStatement(text, span), err
	}
	toks := tokens[:len(tokens)-1] // drop EOF
	if len(toks) == 0 {
		return &ast.UnknownStmt{Span: span, Text: text}, nil
	}

	switch toks[0].Type {
	case lexer.TokBreak, lexer.TokContinue, lexer.TokPass:
		if len(toks) == 1 {
			switch toks[0].Type {
			case lexer.TokBreak:
				return &ast.BreakStmt{Span: span}, nil
			case lexer.TokContinue:
				return &ast.ContinueStmt{Span: span}, nil
			default:
				return &ast.PassStmt{Span: span}, nil
			}
		}
		return &ast.UnknownStmt{Span: span, Text: text}, nil

	case lexer.TokIf, lexer.TokElif, lexer.TokWhile:
		cond, err := parseHeaderExpr(toks[1:], toks[0])
		switch toks[0].Type {
		case lexer.TokIf:
			return &ast.IfStmt{Span: span, Cond: cond}, err
		case lexer.TokElif:
			return &ast.ElifStmt{Span: span, Cond: cond}, err
		default:
			return &ast.WhileStmt{Span: span, Cond: cond}, err
		}

	case lexer.TokElse:
		if len(toks) == 2 && toks[1].Type == lexer.TokColon {
			return &ast.ElseStmt{Span: span}, nil
		}
		return &ast.ElseStmt{Span: span}, fmt.Errorf("expected ':' after else")

	case lexer.TokFor:
		return parseFor(toks, span)
	}

	if stmt, ok, err := parseAssignment(toks, span); ok {
		return stmt, err
	}

	if toks[0].Type == lexer.TokIdent && toks[0].Value == "print" &&
		len(toks) > 1 && toks[1].Type == lexer.TokLParen {
		expr, err := parseTokens(toks, false)
		if err != nil {
			return &ast.PrintStmt{Span: span}, err
		}
		if call, ok := expr.(*ast.CallExpr); ok {
			return &ast.PrintStmt{Span: span, Args: call.Args}, nil
		}
	}

	expr, err := parseTokens(toks, false)
	if err != nil {
		return &ast.UnknownStmt{Span: span, Text: text}, err
	}
	return &ast.ExprStmt{Span: span, Expr: expr}, nil
}

// fallbackStatement keeps block structure for header lines that failed to
// tokenize; their condition stays nil and evaluates as unresolved.
func fallbackStatement(text string, span ast.Span) ast.Stmt {
	m := headerPattern.FindStringSubmatch(text)
	if m == nil {
		if text == "else:" {
			return &ast.ElseStmt{Span: span}
		}
		return &ast.UnknownStmt{Span: span, Text: text}
	}
	switch m[1] {
	case "if":
		return &ast.IfStmt{Span: span}
	case "elif":
		return &ast.ElifStmt{Span: span}
	case "while":
		return &ast.WhileStmt{Span: span}
	default:
		return &ast.ForEachStmt{Span: span}
	}
}

// parseHeaderExpr parses the expression between a header keyword and the
// trailing colon.
func parseHeaderExpr(toks []lexer.Token, kw lexer.Token) (ast.Expr, error) {
	if len(toks) == 0 || toks[len(toks)-1].Type != lexer.TokColon {
		return nil, fmt.Errorf("expected ':' at end of '%s' header", kw.Value)
	}
	if len(toks) == 1 {
		return nil, fmt.Errorf("missing condition after '%s'", kw.Value)
	}
	return parseTokens(toks[:len(toks)-1], false)
}

func parseFor(toks []lexer.Token, span ast.Span) (ast.Stmt, error) {
	var targets []string
	i := 1
	for i < len(toks) && toks[i].Type == lexer.TokIdent {
		targets = append(targets, toks[i].Value)
		i++
		if i < len(toks) && toks[i].Type == lexer.TokComma {
			i++
			continue
		}
		break
	}
	if len(targets) == 0 || i >= len(toks) || toks[i].Type != lexer.TokIn {
		return &ast.ForEachStmt{Span: span}, fmt.Errorf("expected 'for <name> in <expr>:'")
	}
	rest := toks[i+1:]
	if len(rest) == 0 || rest[len(rest)-1].Type != lexer.TokColon {
		return &ast.ForEachStmt{Span: span, Targets: targets}, fmt.Errorf("expected ':' at end of 'for' header")
	}
	rest = rest[:len(rest)-1]

	if len(targets) == 1 && len(rest) >= 3 &&
		rest[0].Type == lexer.TokIdent && rest[0].Value == "range" &&
		rest[1].Type == lexer.TokLParen && rest[len(rest)-1].Type == lexer.TokRParen {
		expr, err := parseTokens(rest, false)
		if err == nil {
			if call, ok := expr.(*ast.CallExpr); ok && call.Func == "range" && len(call.Args) >= 1 && len(call.Args) <= 3 {
				return &ast.ForRangeStmt{Span: span, Var: targets[0], Args: call.Args}, nil
			}
		}
		if err != nil {
			return &ast.ForRangeStmt{Span: span, Var: targets[0]}, err
		}
	}

	if len(rest) == 0 {
		return &ast.ForEachStmt{Span: span, Targets: targets}, fmt.Errorf("missing iterable in 'for' header")
	}
	iter, err := parseTokens(rest, true)
	return &ast.ForEachStmt{Span: span, Targets: targets, Iter: iter}, err
}

var augmentedOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.TokPlusEq:       ast.OpAdd,
	lexer.TokMinusEq:      ast.OpSub,
	lexer.TokStarEq:       ast.OpMul,
	lexer.TokSlashEq:      ast.OpDiv,
	lexer.TokSlashSlashEq: ast.OpFloorDiv,
	lexer.TokPercentEq:    ast.OpMod,
	lexer.TokStarStarEq:   ast.OpPow,
}

// parseAssignment recognizes `<targets> = <expr>` and augmented forms by
// locating the first assignment token at bracket depth zero. ok is false
// when the line is not an assignment at all.
func parseAssignment(toks []lexer.Token, span ast.Span) (ast.Stmt, bool, error) {
	split := -1
	depth := 0
	for i, tok := range toks {
		switch tok.Type {
		case lexer.TokLParen, lexer.TokLBracket, lexer.TokLBrace:
			depth++
		case lexer.TokRParen, lexer.TokRBracket, lexer.TokRBrace:
			depth--
		case lexer.TokEquals:
			if depth == 0 {
				split = i
			}
		default:
			if _, aug := augmentedOps[tok.Type]; aug && depth == 0 {
				split = i
			}
		}
		if split >= 0 {
			break
		}
	}
	if split <= 0 {
		return nil, false, nil
	}

	op := augmentedOps[toks[split].Type]
	stmt := &ast.AssignStmt{Span: span, Op: op}

	targets, err := parseTargets(toks[:split])
	if err != nil {
		return &ast.UnknownStmt{Span: span}, true, err
	}
	if op != "" && len(targets) != 1 {
		return &ast.UnknownStmt{Span: span}, true, fmt.Errorf("augmented assignment needs a single target")
	}
	stmt.Targets = targets

	rhs := toks[split+1:]
	if len(rhs) == 0 {
		return stmt, true, fmt.Errorf("missing value after '%s'", toks[split].Value)
	}
	value, err := parseTokens(rhs, true)
	stmt.Value = value
	return stmt, true, err
}

func parseTargets(toks []lexer.Token) ([]ast.Expr, error) {
	expr, err := parseTokens(toks, true)
	if err != nil {
		return nil, err
	}
	var candidates []ast.Expr
	if tuple, ok := expr.(*ast.TupleExpr); ok {
		candidates = tuple.Elements
	} else {
		candidates = []ast.Expr{expr}
	}
	for _, c := range candidates {
		switch c.(type) {
		case *ast.Name, *ast.IndexExpr:
		default:
			return nil, fmt.Errorf("cannot assign to %s", c.Kind())
		}
	}
	return candidates, nil
}
