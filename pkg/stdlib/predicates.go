package stdlib

import (
	"unicode"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/evaluator"
)

// stringPredicate builds a zero-argument string method returning a Bool.
func stringPredicate(name string, test func(s string) bool) Method {
	return Method{
		Receiver: evaluator.KindString,
		Name:     name,
		Execute: func(recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
			if err := arity(name, args, 0, 0); err != nil {
				return nil, err
			}
			return evaluator.NewBool(test(recv.(evaluator.String).Value)), nil
		},
	}
}

// every reports whether s is non-empty and all runes satisfy fn.
func every(s string, fn func(rune) bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !fn(r) {
			return false
		}
	}
	return true
}

func isDigit(s string) bool { return every(s, unicode.IsDigit) }

func isAlpha(s string) bool { return every(s, unicode.IsLetter) }

func isSpace(s string) bool { return every(s, unicode.IsSpace) }

func isNumeric(s string) bool { return every(s, unicode.IsNumber) }

func isAlnum(s string) bool {
	return every(s, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsNumber(r) })
}

// isPrintable is true for the empty string.
func isPrintable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// isLower requires at least one cased rune and no uppercase ones.
func isLower(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsLower(r) {
			cased = true
		}
	}
	return cased
}

func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return s != ""
}

func registerPredicates(r *Registry) {
	r.RegisterMethod(stringPredicate("isdigit", isDigit))
	r.RegisterMethod(stringPredicate("isalpha", isAlpha))
	r.RegisterMethod(stringPredicate("islower", isLower))
	r.RegisterMethod(stringPredicate("isupper", isUpper))
	r.RegisterMethod(stringPredicate("isspace", isSpace))
	r.RegisterMethod(stringPredicate("isalnum", isAlnum))
	r.RegisterMethod(stringPredicate("isnumeric", isNumeric))
	r.RegisterMethod(stringPredicate("isprintable", isPrintable))
	r.RegisterMethod(stringPredicate("isidentifier", isIdentifier))
}
