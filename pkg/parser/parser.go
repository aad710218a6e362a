// Package parser implements the stepviz line preprocessor and the
// recursive-descent expression parser used once per statement.
package parser

import (
	"fmt"
	"strconv"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/ast"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/diagnostics"
	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/lexer"
)

type parser struct {
	tokens []lexer.Token
	pos    int
	diag   *diagnostics.Diagnostic
}

// ParseError wraps the first diagnostic produced while parsing a statement.
type ParseError struct {
	Diag diagnostics.Diagnostic
}

func (e *ParseError) Error() string {
	return e.Diag.Message
}

func newParser(tokens []lexer.Token) *parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.TokEOF {
		var eofSpan ast.Span
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1].Span
			eofSpan = ast.Span{Line: last.Line, StartCol: last.EndCol, EndCol: last.EndCol}
		}
		tokens = append(tokens[:len(tokens):len(tokens)], lexer.Token{Type: lexer.TokEOF, Span: eofSpan})
	}
	return &parser{tokens: tokens}
}

// ParseExpr tokenizes and parses a single expression. A bare top-level
// comma list yields a tuple.
func ParseExpr(text string, line int) (ast.Expr, error) {
	tokens, err := lexer.Tokenize(text, line)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return nil, &ParseError{Diag: le.Diag}
		}
		return nil, err
	}
	return parseTokens(tokens, true)
}

// parseTokens parses tokens as one complete expression.
func parseTokens(tokens []lexer.Token, allowTuple bool) (ast.Expr, error) {
	p := newParser(tokens)
	var expr ast.Expr
	if allowTuple {
		expr = p.parseExprList()
	} else {
		expr = p.parseExpr()
	}
	if expr != nil && p.peek() != lexer.TokEOF {
		tok := p.current()
		p.addError(fmt.Sprintf("unexpected token '%s'", tok.Value), &tok.Span)
	}
	if p.diag != nil {
		return nil, &ParseError{Diag: *p.diag}
	}
	return expr, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) peekAt(offset int) lexer.TokenType {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return lexer.TokEOF
	}
	return p.tokens[idx].Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ lexer.TokenType) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		p.addError(fmt.Sprintf("expected %s, got '%s'", tokenName(typ), tok.Value), &tok.Span)
		return tok, false
	}
	return p.advance(), true
}

// addError keeps only the first error; later ones are consequences of it.
func (p *parser) addError(msg string, span *ast.Span) {
	if p.diag != nil {
		return
	}
	if msg == "unexpected token ''" {
		msg = "unexpected end of expression"
	}
	d := diagnostics.MakeDiag(diagnostics.EParse, msg, span, "")
	p.diag = &d
}

func spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{Line: start.Line, StartCol: start.StartCol, EndCol: end.EndCol}
}

func tokenName(t lexer.TokenType) string {
	switch t {
	case lexer.TokLBrace:
		return "'{'"
	case lexer.TokRBrace:
		return "'}'"
	case lexer.TokLBracket:
		return "'['"
	case lexer.TokRBracket:
		return "']'"
	case lexer.TokLParen:
		return "'('"
	case lexer.TokRParen:
		return "')'"
	case lexer.TokColon:
		return "':'"
	case lexer.TokComma:
		return "','"
	case lexer.TokEquals:
		return "'='"
	case lexer.TokIn:
		return "'in'"
	case lexer.TokIdent:
		return "identifier"
	case lexer.TokEOF:
		return "end of line"
	default:
		return fmt.Sprintf("token(%d)", int(t))
	}
}

// parseExprList parses `expr (, expr)* [,]`, producing a tuple when a
// top-level comma is present.
func (p *parser) parseExprList() ast.Expr {
	first := p.parseExpr()
	if first == nil {
		return nil
	}
	if p.peek() != lexer.TokComma {
		return first
	}
	elements := []ast.Expr{first}
	end := first.NodeSpan()
	for p.peek() == lexer.TokComma {
		comma := p.advance()
		end = comma.Span
		if p.peek() == lexer.TokEOF {
			break
		}
		elem := p.parseExpr()
		if elem == nil {
			return nil
		}
		elements = append(elements, elem)
		end = elem.NodeSpan()
	}
	return &ast.TupleExpr{Span: spanFromTo(first.NodeSpan(), end), Elements: elements}
}

func (p *parser) parseExpr() ast.Expr {
	return p.parseOr()
}

// --- Precedence climbing ---

func (p *parser) parseOr() ast.Expr {
	return p.parseLogical(ast.OpOr, lexer.TokOr, p.parseAnd)
}

func (p *parser) parseAnd() ast.Expr {
	return p.parseLogical(ast.OpAnd, lexer.TokAnd, p.parseNot)
}

func (p *parser) parseLogical(op ast.LogicalOp, tok lexer.TokenType, next func() ast.Expr) ast.Expr {
	first := next()
	if first == nil {
		return nil
	}
	if p.peek() != tok {
		return first
	}
	operands := []ast.Expr{first}
	for p.peek() == tok {
		p.advance()
		operand := next()
		if operand == nil {
			return nil
		}
		operands = append(operands, operand)
	}
	last := operands[len(operands)-1]
	return &ast.LogicalExpr{
		Span:     spanFromTo(first.NodeSpan(), last.NodeSpan()),
		Op:       op,
		Operands: operands,
	}
}

func (p *parser) parseNot() ast.Expr {
	if p.peek() == lexer.TokNot {
		start := p.advance()
		operand := p.parseNot()
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{
			Span:    spanFromTo(start.Span, operand.NodeSpan()),
			Op:      ast.OpNot,
			Operand: operand,
		}
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() ast.Expr {
	left := p.parseBitOr()
	if left == nil {
		return nil
	}

	for {
		var op ast.BinaryOp
		switch p.peek() {
		case lexer.TokGt:
			op = ast.OpGt
		case lexer.TokLt:
			op = ast.OpLt
		case lexer.TokGtEq:
			op = ast.OpGtEq
		case lexer.TokLtEq:
			op = ast.OpLtEq
		case lexer.TokEqEq:
			op = ast.OpEqEq
		case lexer.TokBangEq:
			op = ast.OpNeq
		case lexer.TokIn:
			op = ast.OpIn
		case lexer.TokNot:
			if p.peekAt(1) != lexer.TokIn {
				return left
			}
			p.advance()
			op = ast.OpNotIn
		default:
			return left
		}
		p.advance()
		right := p.parseBitOr()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

// binaryLevel parses one left-associative precedence tier.
func (p *parser) binaryLevel(ops map[lexer.TokenType]ast.BinaryOp, next func() ast.Expr) ast.Expr {
	left := next()
	if left == nil {
		return nil
	}
	for {
		op, ok := ops[p.peek()]
		if !ok {
			return left
		}
		p.advance()
		right := next()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

var (
	bitOrOps  = map[lexer.TokenType]ast.BinaryOp{lexer.TokPipe: ast.OpBitOr}
	bitXorOps = map[lexer.TokenType]ast.BinaryOp{lexer.TokCaret: ast.OpBitXor}
	bitAndOps = map[lexer.TokenType]ast.BinaryOp{lexer.TokAmp: ast.OpBitAnd}
	shiftOps  = map[lexer.TokenType]ast.BinaryOp{lexer.TokShl: ast.OpShl, lexer.TokShr: ast.OpShr}
	addOps    = map[lexer.TokenType]ast.BinaryOp{lexer.TokPlus: ast.OpAdd, lexer.TokMinus: ast.OpSub}
	mulOps    = map[lexer.TokenType]ast.BinaryOp{
		lexer.TokStar:       ast.OpMul,
		lexer.TokSlash:      ast.OpDiv,
		lexer.TokSlashSlash: ast.OpFloorDiv,
		lexer.TokPercent:    ast.OpMod,
	}
)

func (p *parser) parseBitOr() ast.Expr  { return p.binaryLevel(bitOrOps, p.parseBitXor) }
func (p *parser) parseBitXor() ast.Expr { return p.binaryLevel(bitXorOps, p.parseBitAnd) }
func (p *parser) parseBitAnd() ast.Expr { return p.binaryLevel(bitAndOps, p.parseShift) }
func (p *parser) parseShift() ast.Expr  { return p.binaryLevel(shiftOps, p.parseAdditive) }

func (p *parser) parseAdditive() ast.Expr {
	return p.binaryLevel(addOps, p.parseMultiplicative)
}

func (p *parser) parseMultiplicative() ast.Expr {
	return p.binaryLevel(mulOps, p.parseUnary)
}

func (p *parser) parseUnary() ast.Expr {
	var op ast.UnaryOp
	switch p.peek() {
	case lexer.TokMinus:
		op = ast.OpNeg
	case lexer.TokPlus:
		op = ast.OpPos
	default:
		return p.parsePower()
	}
	start := p.advance()
	operand := p.parseUnary()
	if operand == nil {
		return nil
	}
	return &ast.UnaryExpr{
		Span:    spanFromTo(start.Span, operand.NodeSpan()),
		Op:      op,
		Operand: operand,
	}
}

// parsePower is right-associative and binds tighter than unary minus on its
// left: -2 ** 2 == -(2 ** 2).
func (p *parser) parsePower() ast.Expr {
	base := p.parsePostfix()
	if base == nil {
		return nil
	}
	if p.peek() != lexer.TokStarStar {
		return base
	}
	p.advance()
	exp := p.parseUnary()
	if exp == nil {
		return nil
	}
	return &ast.BinaryExpr{
		Span:  spanFromTo(base.NodeSpan(), exp.NodeSpan()),
		Op:    ast.OpPow,
		Left:  base,
		Right: exp,
	}
}

func (p *parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	for {
		switch p.peek() {
		case lexer.TokLBracket:
			p.advance()
			index := p.parseExpr()
			if index == nil {
				return nil
			}
			end, ok := p.expect(lexer.TokRBracket)
			if !ok {
				return nil
			}
			expr = &ast.IndexExpr{
				Span:   spanFromTo(expr.NodeSpan(), end.Span),
				Object: expr,
				Index:  index,
			}
		case lexer.TokDot:
			p.advance()
			name, ok := p.expect(lexer.TokIdent)
			if !ok {
				return nil
			}
			if p.peek() != lexer.TokLParen {
				p.addError(fmt.Sprintf("attribute access '.%s' is not supported", name.Value), &name.Span)
				return nil
			}
			args, end, ok := p.parseArgs()
			if !ok {
				return nil
			}
			expr = &ast.MethodCallExpr{
				Span:     spanFromTo(expr.NodeSpan(), end),
				Receiver: expr,
				Method:   name.Value,
				Args:     args,
			}
		default:
			return expr
		}
	}
}

// parseArgs parses `( expr, ... )` and returns the span of the closing paren.
func (p *parser) parseArgs() ([]ast.Expr, ast.Span, bool) {
	if _, ok := p.expect(lexer.TokLParen); !ok {
		return nil, ast.Span{}, false
	}
	var args []ast.Expr
	for p.peek() != lexer.TokRParen && p.peek() != lexer.TokEOF {
		arg := p.parseExpr()
		if arg == nil {
			return nil, ast.Span{}, false
		}
		args = append(args, arg)
		if p.peek() != lexer.TokComma {
			break
		}
		p.advance()
	}
	end, ok := p.expect(lexer.TokRParen)
	if !ok {
		return nil, ast.Span{}, false
	}
	return args, end.Span, true
}

func (p *parser) parsePrimary() ast.Expr {
	switch p.peek() {
	case lexer.TokLParen:
		return p.parseParenOrTuple()

	case lexer.TokLBrace:
		return p.parseDictExpr()

	case lexer.TokLBracket:
		return p.parseListExpr()

	case lexer.TokNumberLit:
		tok := p.advance()
		val, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.addError(fmt.Sprintf("invalid number literal '%s'", tok.Value), &tok.Span)
			return nil
		}
		return &ast.NumberLiteral{Span: tok.Span, Value: val, Raw: tok.Value}

	case lexer.TokStringLit:
		tok := p.advance()
		value, end := tok.Value, tok.Span
		// Adjacent literals concatenate: "a" "b" == "ab".
		for p.peek() == lexer.TokStringLit {
			next := p.advance()
			value += next.Value
			end = next.Span
		}
		return &ast.StrLiteral{Span: spanFromTo(tok.Span, end), Value: value}

	case lexer.TokTrue:
		tok := p.advance()
		return &ast.BoolLiteral{Span: tok.Span, Value: true}

	case lexer.TokFalse:
		tok := p.advance()
		return &ast.BoolLiteral{Span: tok.Span, Value: false}

	case lexer.TokNone:
		tok := p.advance()
		return &ast.NoneLiteral{Span: tok.Span}

	case lexer.TokIdent:
		tok := p.advance()
		if p.peek() == lexer.TokLParen {
			args, end, ok := p.parseArgs()
			if !ok {
				return nil
			}
			return &ast.CallExpr{Span: spanFromTo(tok.Span, end), Func: tok.Value, Args: args}
		}
		return &ast.Name{Span: tok.Span, Ident: tok.Value}

	default:
		tok := p.current()
		p.addError(fmt.Sprintf("unexpected token '%s'", tok.Value), &tok.Span)
		return nil
	}
}

func (p *parser) parseParenOrTuple() ast.Expr {
	start := p.advance()
	if p.peek() == lexer.TokRParen {
		end := p.advance()
		return &ast.TupleExpr{Span: spanFromTo(start.Span, end.Span)}
	}
	first := p.parseExpr()
	if first == nil {
		return nil
	}
	if p.peek() == lexer.TokRParen {
		p.advance()
		return first
	}
	elements := []ast.Expr{first}
	for p.peek() == lexer.TokComma {
		p.advance()
		if p.peek() == lexer.TokRParen {
			break
		}
		elem := p.parseExpr()
		if elem == nil {
			return nil
		}
		elements = append(elements, elem)
	}
	end, ok := p.expect(lexer.TokRParen)
	if !ok {
		return nil
	}
	return &ast.TupleExpr{Span: spanFromTo(start.Span, end.Span), Elements: elements}
}

func (p *parser) parseDictExpr() ast.Expr {
	start, ok := p.expect(lexer.TokLBrace)
	if !ok {
		return nil
	}

	var entries []ast.DictEntry
	for p.peek() != lexer.TokRBrace && p.peek() != lexer.TokEOF {
		key := p.parseExpr()
		if key == nil {
			return nil
		}
		if _, ok := p.expect(lexer.TokColon); !ok {
			return nil
		}
		value := p.parseExpr()
		if value == nil {
			return nil
		}
		entries = append(entries, ast.DictEntry{Key: key, Value: value})
		if p.peek() != lexer.TokComma {
			break
		}
		p.advance()
	}

	end, ok := p.expect(lexer.TokRBrace)
	if !ok {
		return nil
	}
	return &ast.DictExpr{Span: spanFromTo(start.Span, end.Span), Entries: entries}
}

func (p *parser) parseListExpr() ast.Expr {
	start, ok := p.expect(lexer.TokLBracket)
	if !ok {
		return nil
	}

	var elements []ast.Expr
	for p.peek() != lexer.TokRBracket && p.peek() != lexer.TokEOF {
		elem := p.parseExpr()
		if elem == nil {
			return nil
		}
		elements = append(elements, elem)
		if p.peek() != lexer.TokComma {
			break
		}
		p.advance()
	}

	end, ok := p.expect(lexer.TokRBracket)
	if !ok {
		return nil
	}
	return &ast.ListExpr{Span: spanFromTo(start.Span, end.Span), Elements: elements}
}
