// Package ast defines the expression tree and per-line statement nodes of the
// stepviz script subset.
package ast

// Span represents a column range within one source line.
// Line is zero-based to match step line indices; columns are one-based.
type Span struct {
	Line     int `json:"line"`
	StartCol int `json:"startCol"`
	EndCol   int `json:"endCol"`
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// BinaryOp represents a binary operator.
type BinaryOp string

const (
	OpAdd      BinaryOp = "+"
	OpSub      BinaryOp = "-"
	OpMul      BinaryOp = "*"
	OpDiv      BinaryOp = "/"
	OpFloorDiv BinaryOp = "//"
	OpMod      BinaryOp = "%"
	OpPow      BinaryOp = "**"
	OpShl      BinaryOp = "<<"
	OpShr      BinaryOp = ">>"
	OpBitAnd   BinaryOp = "&"
	OpBitOr    BinaryOp = "|"
	OpBitXor   BinaryOp = "^"
	OpGt       BinaryOp = ">"
	OpLt       BinaryOp = "<"
	OpGtEq     BinaryOp = ">="
	OpLtEq     BinaryOp = "<="
	OpEqEq     BinaryOp = "=="
	OpNeq      BinaryOp = "!="
	OpIn       BinaryOp = "in"
	OpNotIn    BinaryOp = "not in"
)

// IsComparison reports whether op always yields a boolean.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpGt, OpLt, OpGtEq, OpLtEq, OpEqEq, OpNeq, OpIn, OpNotIn:
		return true
	}
	return false
}

// UnaryOp represents a unary operator.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpPos UnaryOp = "+"
	OpNot UnaryOp = "not"
)

// LogicalOp joins condition clauses.
type LogicalOp string

const (
	OpAnd LogicalOp = "and"
	OpOr  LogicalOp = "or"
)

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Literal Expressions ---

type NumberLiteral struct {
	Span  Span
	Value float64
	Raw   string
}

func (n *NumberLiteral) Kind() string   { return "NumberLiteral" }
func (n *NumberLiteral) NodeSpan() Span { return n.Span }
func (n *NumberLiteral) exprNode()      {}

type BoolLiteral struct {
	Span  Span
	Value bool
}

func (n *BoolLiteral) Kind() string   { return "BoolLiteral" }
func (n *BoolLiteral) NodeSpan() Span { return n.Span }
func (n *BoolLiteral) exprNode()      {}

type StrLiteral struct {
	Span  Span
	Value string
}

func (n *StrLiteral) Kind() string   { return "StrLiteral" }
func (n *StrLiteral) NodeSpan() Span { return n.Span }
func (n *StrLiteral) exprNode()      {}

type NoneLiteral struct {
	Span Span
}

func (n *NoneLiteral) Kind() string   { return "NoneLiteral" }
func (n *NoneLiteral) NodeSpan() Span { return n.Span }
func (n *NoneLiteral) exprNode()      {}

// --- Identifiers ---

type Name struct {
	Span  Span
	Ident string
}

func (n *Name) Kind() string   { return "Name" }
func (n *Name) NodeSpan() Span { return n.Span }
func (n *Name) exprNode()      {}

// --- Collections ---

type ListExpr struct {
	Span     Span
	Elements []Expr
}

func (n *ListExpr) Kind() string   { return "ListExpr" }
func (n *ListExpr) NodeSpan() Span { return n.Span }
func (n *ListExpr) exprNode()      {}

type TupleExpr struct {
	Span     Span
	Elements []Expr
}

func (n *TupleExpr) Kind() string   { return "TupleExpr" }
func (n *TupleExpr) NodeSpan() Span { return n.Span }
func (n *TupleExpr) exprNode()      {}

// DictEntry is one key: value pair of a dict literal.
type DictEntry struct {
	Key   Expr
	Value Expr
}

type DictExpr struct {
	Span    Span
	Entries []DictEntry
}

func (n *DictExpr) Kind() string   { return "DictExpr" }
func (n *DictExpr) NodeSpan() Span { return n.Span }
func (n *DictExpr) exprNode()      {}

// --- Operators ---

type BinaryExpr struct {
	Span  Span
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) Kind() string   { return "BinaryExpr" }
func (n *BinaryExpr) NodeSpan() Span { return n.Span }
func (n *BinaryExpr) exprNode()      {}

type UnaryExpr struct {
	Span    Span
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpr) Kind() string   { return "UnaryExpr" }
func (n *UnaryExpr) NodeSpan() Span { return n.Span }
func (n *UnaryExpr) exprNode()      {}

// LogicalExpr is a short-circuit and/or chain. Operands are kept flat so the
// condition evaluator can walk clauses in source order.
type LogicalExpr struct {
	Span     Span
	Op       LogicalOp
	Operands []Expr
}

func (n *LogicalExpr) Kind() string   { return "LogicalExpr" }
func (n *LogicalExpr) NodeSpan() Span { return n.Span }
func (n *LogicalExpr) exprNode()      {}

// --- Access and calls ---

type IndexExpr struct {
	Span   Span
	Object Expr
	Index  Expr
}

func (n *IndexExpr) Kind() string   { return "IndexExpr" }
func (n *IndexExpr) NodeSpan() Span { return n.Span }
func (n *IndexExpr) exprNode()      {}

// CallExpr is a call of a builtin function by name.
type CallExpr struct {
	Span Span
	Func string
	Args []Expr
}

func (n *CallExpr) Kind() string   { return "CallExpr" }
func (n *CallExpr) NodeSpan() Span { return n.Span }
func (n *CallExpr) exprNode()      {}

// MethodCallExpr is a trailing method call on an object expression.
type MethodCallExpr struct {
	Span     Span
	Receiver Expr
	Method   string
	Args     []Expr
}

func (n *MethodCallExpr) Kind() string   { return "MethodCallExpr" }
func (n *MethodCallExpr) NodeSpan() Span { return n.Span }
func (n *MethodCallExpr) exprNode()      {}
