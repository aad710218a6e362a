package evaluator

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber formats a float64 as an integer string if it's a whole number.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "nan"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case n == 0:
		return "0" // also folds -0
	case n == math.Trunc(n) && math.Abs(n) < 1e21:
		return strconv.FormatFloat(n, 'f', 0, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Display renders v for the variable table: strings keep their quotes and
// containers render recursively.
func Display(v Value) string {
	var sb strings.Builder
	writeDisplay(&sb, v, map[Value]bool{})
	return sb.String()
}

// Print renders v for an output line. It differs from Display only for a
// top-level string, which loses its quotes.
func Print(v Value) string {
	if s, ok := v.(String); ok {
		return s.Value
	}
	return Display(v)
}

func writeDisplay(sb *strings.Builder, v Value, visiting map[Value]bool) {
	switch val := v.(type) {
	case nil, None:
		sb.WriteString("None")
	case Bool:
		if val.Value {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case Number:
		sb.WriteString(FormatNumber(val.Value))
	case String:
		sb.WriteString(quote(val.Value))
	case *List:
		if visiting[val] {
			sb.WriteString("[...]")
			return
		}
		visiting[val] = true
		sb.WriteByte('[')
		writeItems(sb, val.Items, visiting)
		sb.WriteByte(']')
		delete(visiting, val)
	case *Tuple:
		if visiting[val] {
			sb.WriteString("(...)")
			return
		}
		visiting[val] = true
		sb.WriteByte('(')
		writeItems(sb, val.Items, visiting)
		if len(val.Items) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
		delete(visiting, val)
	case *Dict:
		if visiting[val] {
			sb.WriteString("{...}")
			return
		}
		visiting[val] = true
		sb.WriteByte('{')
		for i, kv := range val.Pairs {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeDisplay(sb, SurfaceKey(kv.Key), visiting)
			sb.WriteString(": ")
			writeDisplay(sb, kv.Value, visiting)
		}
		sb.WriteByte('}')
		delete(visiting, val)
	}
}

func writeItems(sb *strings.Builder, items []Value, visiting map[Value]bool) {
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeDisplay(sb, item, visiting)
	}
}

// quote renders s the way the scripting language's repr does: single quotes
// unless the string contains a single quote and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var sb strings.Builder
	sb.WriteByte(q)
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if r == rune(q) {
				sb.WriteByte('\\')
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(q)
	return sb.String()
}

// TypeName returns the scripting-language type name of v.
func TypeName(v Value) string {
	switch v.(type) {
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "str"
	case *List:
		return "list"
	case *Tuple:
		return "tuple"
	case *Dict:
		return "dict"
	default:
		return "NoneType"
	}
}
