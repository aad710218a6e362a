package ast

// Line is one preprocessed source line. It is derived once from the source
// and never mutated afterwards.
type Line struct {
	Index  int    // zero-based line number
	Text   string // comment-stripped, trimmed text
	Indent int    // count of leading whitespace characters
	Stmt   Stmt   // nil for blank lines
	// Err holds the parse failure for a statement whose expression could not
	// be parsed. The statement is still present and evaluates as unresolved.
	Err string
}

// Blank reports whether the line carries no statement.
func (l Line) Blank() bool { return l.Text == "" }

// Program is the whole preprocessed source.
type Program struct {
	Lines []Line
}

// --- Statements ---

// AssignStmt covers plain, indexed, multi-target and augmented assignment.
// Op is empty for plain assignment. Value is nil when the right-hand side
// failed to parse.
type AssignStmt struct {
	Span    Span
	Targets []Expr // *Name or *IndexExpr
	Op      BinaryOp
	Value   Expr
}

func (n *AssignStmt) Kind() string   { return "AssignStmt" }
func (n *AssignStmt) NodeSpan() Span { return n.Span }
func (n *AssignStmt) stmtNode()      {}

// ExprStmt is a bare expression statement, typically a mutating method call.
type ExprStmt struct {
	Span Span
	Expr Expr
}

func (n *ExprStmt) Kind() string   { return "ExprStmt" }
func (n *ExprStmt) NodeSpan() Span { return n.Span }
func (n *ExprStmt) stmtNode()      {}

type PrintStmt struct {
	Span Span
	Args []Expr
}

func (n *PrintStmt) Kind() string   { return "PrintStmt" }
func (n *PrintStmt) NodeSpan() Span { return n.Span }
func (n *PrintStmt) stmtNode()      {}

type IfStmt struct {
	Span Span
	Cond Expr
}

func (n *IfStmt) Kind() string   { return "IfStmt" }
func (n *IfStmt) NodeSpan() Span { return n.Span }
func (n *IfStmt) stmtNode()      {}

type ElifStmt struct {
	Span Span
	Cond Expr
}

func (n *ElifStmt) Kind() string   { return "ElifStmt" }
func (n *ElifStmt) NodeSpan() Span { return n.Span }
func (n *ElifStmt) stmtNode()      {}

type ElseStmt struct {
	Span Span
}

func (n *ElseStmt) Kind() string   { return "ElseStmt" }
func (n *ElseStmt) NodeSpan() Span { return n.Span }
func (n *ElseStmt) stmtNode()      {}

// ForRangeStmt is `for <var> in range(<args>):` with one to three args.
type ForRangeStmt struct {
	Span Span
	Var  string
	Args []Expr
}

func (n *ForRangeStmt) Kind() string   { return "ForRangeStmt" }
func (n *ForRangeStmt) NodeSpan() Span { return n.Span }
func (n *ForRangeStmt) stmtNode()      {}

// ForEachStmt is `for <targets> in <expr>:`.
type ForEachStmt struct {
	Span    Span
	Targets []string
	Iter    Expr
}

func (n *ForEachStmt) Kind() string   { return "ForEachStmt" }
func (n *ForEachStmt) NodeSpan() Span { return n.Span }
func (n *ForEachStmt) stmtNode()      {}

type WhileStmt struct {
	Span Span
	Cond Expr
}

func (n *WhileStmt) Kind() string   { return "WhileStmt" }
func (n *WhileStmt) NodeSpan() Span { return n.Span }
func (n *WhileStmt) stmtNode()      {}

type BreakStmt struct {
	Span Span
}

func (n *BreakStmt) Kind() string   { return "BreakStmt" }
func (n *BreakStmt) NodeSpan() Span { return n.Span }
func (n *BreakStmt) stmtNode()      {}

type ContinueStmt struct {
	Span Span
}

func (n *ContinueStmt) Kind() string   { return "ContinueStmt" }
func (n *ContinueStmt) NodeSpan() Span { return n.Span }
func (n *ContinueStmt) stmtNode()      {}

type PassStmt struct {
	Span Span
}

func (n *PassStmt) Kind() string   { return "PassStmt" }
func (n *PassStmt) NodeSpan() Span { return n.Span }
func (n *PassStmt) stmtNode()      {}

// UnknownStmt is any line the executor advances over without effect.
type UnknownStmt struct {
	Span Span
	Text string
}

func (n *UnknownStmt) Kind() string   { return "UnknownStmt" }
func (n *UnknownStmt) NodeSpan() Span { return n.Span }
func (n *UnknownStmt) stmtNode()      {}

// HasBody reports whether s is a block header owning the following
// more-indented lines.
func HasBody(s Stmt) bool {
	switch s.(type) {
	case *IfStmt, *ElifStmt, *ElseStmt, *ForRangeStmt, *ForEachStmt, *WhileStmt:
		return true
	}
	return false
}
