package stdlib

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/evaluator"
)

type stringFn func(s string, args []evaluator.Value) (evaluator.Value, error)

func stringMethod(name string, min, max int, fn stringFn) Method {
	return Method{
		Receiver: evaluator.KindString,
		Name:     name,
		Execute: func(recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
			if err := arity(name, args, min, max); err != nil {
				return nil, err
			}
			return fn(recv.(evaluator.String).Value, args)
		},
	}
}

func registerStringMethods(r *Registry) {
	r.RegisterMethod(stringMethod("upper", 0, 0, strUpper))
	r.RegisterMethod(stringMethod("lower", 0, 0, strLower))
	r.RegisterMethod(stringMethod("capitalize", 0, 0, strCapitalize))
	r.RegisterMethod(stringMethod("title", 0, 0, strTitle))
	r.RegisterMethod(stringMethod("strip", 0, 1, strStrip))
	r.RegisterMethod(stringMethod("split", 0, 1, strSplit))
	r.RegisterMethod(stringMethod("replace", 2, 2, strReplace))
	r.RegisterMethod(stringMethod("startswith", 1, 1, strStartsWith))
	r.RegisterMethod(stringMethod("endswith", 1, 1, strEndsWith))
	r.RegisterMethod(stringMethod("find", 1, 1, strFind))
	r.RegisterMethod(stringMethod("count", 1, 1, strCount))
	r.RegisterMethod(stringMethod("join", 1, 1, strJoin))
	r.RegisterMethod(stringMethod("findall", 1, 1, strFindAll))
	registerPredicates(r)
}

// stringArg requires args[i] to be a String.
func stringArg(name string, args []evaluator.Value, i int) (string, error) {
	s, ok := args[i].(evaluator.String)
	if !ok {
		return "", fmt.Errorf("%s(): argument %d must be str, not '%s'", name, i+1, evaluator.TypeName(args[i]))
	}
	return s.Value, nil
}

// A cases.Caser keeps state between calls, so each call builds its own.

func strUpper(s string, _ []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewString(cases.Upper(language.Und).String(s)), nil
}

func strLower(s string, _ []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewString(cases.Lower(language.Und).String(s)), nil
}

// capitalize upper-cases the first character and lower-cases the rest.
func strCapitalize(s string, _ []evaluator.Value) (evaluator.Value, error) {
	if s == "" {
		return evaluator.NewString(""), nil
	}
	_, size := utf8.DecodeRuneInString(s)
	return evaluator.NewString(cases.Upper(language.Und).String(s[:size]) + cases.Lower(language.Und).String(s[size:])), nil
}

func strTitle(s string, _ []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewString(cases.Title(language.Und).String(s)), nil
}

func strStrip(s string, args []evaluator.Value) (evaluator.Value, error) {
	if len(args) == 0 {
		return evaluator.NewString(strings.TrimSpace(s)), nil
	}
	chars, err := stringArg("strip", args, 0)
	if err != nil {
		return nil, err
	}
	return evaluator.NewString(strings.Trim(s, chars)), nil
}

// split() splits on runs of whitespace; split(sep) on every sep.
func strSplit(s string, args []evaluator.Value) (evaluator.Value, error) {
	var parts []string
	if len(args) == 0 {
		parts = strings.Fields(s)
	} else {
		sep, err := stringArg("split", args, 0)
		if err != nil {
			return nil, err
		}
		if sep == "" {
			return nil, fmt.Errorf("split(): empty separator")
		}
		parts = strings.Split(s, sep)
	}
	return stringList(parts), nil
}

func strReplace(s string, args []evaluator.Value) (evaluator.Value, error) {
	old, err := stringArg("replace", args, 0)
	if err != nil {
		return nil, err
	}
	repl, err := stringArg("replace", args, 1)
	if err != nil {
		return nil, err
	}
	return evaluator.NewString(strings.ReplaceAll(s, old, repl)), nil
}

func strStartsWith(s string, args []evaluator.Value) (evaluator.Value, error) {
	prefix, err := stringArg("startswith", args, 0)
	if err != nil {
		return nil, err
	}
	return evaluator.NewBool(strings.HasPrefix(s, prefix)), nil
}

func strEndsWith(s string, args []evaluator.Value) (evaluator.Value, error) {
	suffix, err := stringArg("endswith", args, 0)
	if err != nil {
		return nil, err
	}
	return evaluator.NewBool(strings.HasSuffix(s, suffix)), nil
}

// find returns the character index of the first occurrence, or -1.
func strFind(s string, args []evaluator.Value) (evaluator.Value, error) {
	sub, err := stringArg("find", args, 0)
	if err != nil {
		return nil, err
	}
	i := strings.Index(s, sub)
	if i < 0 {
		return evaluator.NewNumber(-1), nil
	}
	return evaluator.NewNumber(float64(utf8.RuneCountInString(s[:i]))), nil
}

// count returns the number of non-overlapping occurrences.
func strCount(s string, args []evaluator.Value) (evaluator.Value, error) {
	sub, err := stringArg("count", args, 0)
	if err != nil {
		return nil, err
	}
	return evaluator.NewNumber(float64(strings.Count(s, sub))), nil
}

// join concatenates the print forms of the elements, separated by s.
func strJoin(s string, args []evaluator.Value) (evaluator.Value, error) {
	items, err := iterate("join", args[0])
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = evaluator.Print(item)
	}
	return evaluator.NewString(strings.Join(parts, s)), nil
}

// findall returns every match of the pattern. With one capture group the
// group text is returned, with several a tuple of groups.
func strFindAll(s string, args []evaluator.Value) (evaluator.Value, error) {
	pattern, err := stringArg("findall", args, 0)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("findall(): invalid pattern: %w", err)
	}
	var out []evaluator.Value
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		switch groups := m[1:]; len(groups) {
		case 0:
			out = append(out, evaluator.NewString(m[0]))
		case 1:
			out = append(out, evaluator.NewString(groups[0]))
		default:
			out = append(out, stringTuple(groups))
		}
	}
	return evaluator.NewList(out), nil
}

func stringList(parts []string) *evaluator.List {
	items := make([]evaluator.Value, len(parts))
	for i, p := range parts {
		items[i] = evaluator.NewString(p)
	}
	return evaluator.NewList(items)
}

func stringTuple(parts []string) *evaluator.Tuple {
	items := make([]evaluator.Value, len(parts))
	for i, p := range parts {
		items[i] = evaluator.NewString(p)
	}
	return evaluator.NewTuple(items)
}
