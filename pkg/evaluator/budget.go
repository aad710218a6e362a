package evaluator

// Default resource limits.
const (
	DefaultMaxWhileIterations = 1000
	DefaultMaxNestingDepth    = 100
)

// Budget holds the resource limits for a program execution.
type Budget struct {
	// MaxWhileIterations caps every while loop. Reaching the cap ends the
	// loop silently; it is not an error.
	MaxWhileIterations int
	// MaxNestingDepth bounds block nesting. Exceeding it is fatal.
	MaxNestingDepth int
	// MaxRangeIterations caps for-range loops; 0 means unlimited.
	MaxRangeIterations int
}

// DefaultBudget returns the limits used when none are configured.
func DefaultBudget() Budget {
	return Budget{
		MaxWhileIterations: DefaultMaxWhileIterations,
		MaxNestingDepth:    DefaultMaxNestingDepth,
	}
}

// withDefaults fills unset limits.
func (b Budget) withDefaults() Budget {
	if b.MaxWhileIterations <= 0 {
		b.MaxWhileIterations = DefaultMaxWhileIterations
	}
	if b.MaxNestingDepth <= 0 {
		b.MaxNestingDepth = DefaultMaxNestingDepth
	}
	if b.MaxRangeIterations < 0 {
		b.MaxRangeIterations = 0
	}
	return b
}

// BudgetTracker tracks resource consumption during execution.
type BudgetTracker struct {
	Statements      int64
	LoopIterations  int64
	WhileCapsHit    int64
	MaxDepthReached int
}
