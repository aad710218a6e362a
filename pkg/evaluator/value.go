// Package evaluator implements the stepviz value model, expression resolver,
// condition evaluator, block executor and step recorder.
package evaluator

import (
	"math"
	"strconv"
	"strings"
)

// Value is the interface for all stepviz runtime values.
// Use the sealed marker method to restrict implementations to this package.
//
// Scalars (None, Bool, Number, String) are plain values. Containers (*List,
// *Tuple, *Dict) are handles: copying a Value copies the handle, so two
// bindings may alias one container.
type Value interface {
	value() // sealed marker
}

// None represents the absence of a value.
type None struct{}

func (None) value() {}

// Bool represents a boolean value.
type Bool struct {
	Value bool
}

func (Bool) value() {}

// Number represents a numeric value. Integers and floats share one kind.
type Number struct {
	Value float64
}

func (Number) value() {}

// String represents a string value.
type String struct {
	Value string
}

func (String) value() {}

// List represents a mutable ordered sequence.
type List struct {
	Items []Value
}

func (*List) value() {}

// Tuple represents an immutable ordered sequence.
type Tuple struct {
	Items []Value
}

func (*Tuple) value() {}

// KeyValue is a key-value pair in an ordered dict.
type KeyValue struct {
	Key   string
	Value Value
}

// Dict represents an ordered map. Keys are stored in their print form, so
// 1 and "1" address the same entry. Insertion order is preserved via the
// Pairs slice.
type Dict struct {
	Pairs []KeyValue
	index map[string]int // lazy index for lookups
}

func (*Dict) value() {}

// NewNone creates a none value.
func NewNone() Value {
	return None{}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Bool{Value: b}
}

// NewNumber creates a numeric value.
func NewNumber(n float64) Value {
	return Number{Value: n}
}

// NewString creates a string value.
func NewString(s string) Value {
	return String{Value: s}
}

// NewList creates a list value that owns items.
func NewList(items []Value) *List {
	if items == nil {
		items = []Value{}
	}
	return &List{Items: items}
}

// NewTuple creates a tuple value that owns items.
func NewTuple(items []Value) *Tuple {
	if items == nil {
		items = []Value{}
	}
	return &Tuple{Items: items}
}

// NewDict creates a dict from key-value pairs. Later duplicates overwrite
// earlier values in place.
func NewDict(pairs []KeyValue) *Dict {
	d := &Dict{Pairs: make([]KeyValue, 0, len(pairs))}
	for _, kv := range pairs {
		d.Set(kv.Key, kv.Value)
	}
	return d
}

func (d *Dict) reindex() {
	d.index = make(map[string]int, len(d.Pairs))
	for i, kv := range d.Pairs {
		d.index[kv.Key] = i
	}
}

// Get retrieves a value by key from the dict.
func (d *Dict) Get(key string) (Value, bool) {
	if d.index == nil {
		d.reindex()
	}
	i, ok := d.index[key]
	if !ok {
		return nil, false
	}
	return d.Pairs[i].Value, true
}

// Set sets a value by key in the dict, preserving insertion order.
func (d *Dict) Set(key string, val Value) {
	if d.index == nil {
		d.reindex()
	}
	if i, ok := d.index[key]; ok {
		d.Pairs[i].Value = val
		return
	}
	d.index[key] = len(d.Pairs)
	d.Pairs = append(d.Pairs, KeyValue{Key: key, Value: val})
}

// Delete removes key and returns its value.
func (d *Dict) Delete(key string) (Value, bool) {
	if d.index == nil {
		d.reindex()
	}
	i, ok := d.index[key]
	if !ok {
		return nil, false
	}
	val := d.Pairs[i].Value
	d.Pairs = append(d.Pairs[:i], d.Pairs[i+1:]...)
	d.reindex()
	return val, true
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	return len(d.Pairs)
}

// Keys returns all keys in insertion order as stored.
func (d *Dict) Keys() []string {
	keys := make([]string, len(d.Pairs))
	for i, kv := range d.Pairs {
		keys[i] = kv.Key
	}
	return keys
}

// KeyValues returns all keys in insertion order, with canonical decimal
// number keys surfaced as Numbers.
func (d *Dict) KeyValues() []Value {
	keys := make([]Value, len(d.Pairs))
	for i, kv := range d.Pairs {
		keys[i] = SurfaceKey(kv.Key)
	}
	return keys
}

// DictKey converts a value into the string key used for dict storage.
func DictKey(v Value) string {
	return Print(v)
}

// SurfaceKey surfaces a stored dict key: canonical decimal strings such
// as "1" or "-2.5" become Numbers, everything else stays a String.
func SurfaceKey(key string) Value {
	if n, ok := canonicalNumber(key); ok {
		return NewNumber(n)
	}
	return NewString(key)
}

func canonicalNumber(s string) (float64, bool) {
	if s == "" || strings.TrimSpace(s) != s {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, FormatNumber(n) == s
}

// Items returns the element slice of a list or tuple.
func Items(v Value) ([]Value, bool) {
	switch c := v.(type) {
	case *List:
		return c.Items, true
	case *Tuple:
		return c.Items, true
	}
	return nil, false
}

// Truthiness returns the boolean interpretation of a value.
// none, false, 0, "" and empty containers are falsy; everything else is truthy.
func Truthiness(v Value) bool {
	switch val := v.(type) {
	case nil, None:
		return false
	case Bool:
		return val.Value
	case Number:
		return val.Value != 0 && !math.IsNaN(val.Value)
	case String:
		return val.Value != ""
	case *List:
		return len(val.Items) > 0
	case *Tuple:
		return len(val.Items) > 0
	case *Dict:
		return len(val.Pairs) > 0
	default:
		return true
	}
}

// Kind names the variant of v. Method dispatch is keyed by kind.
type Kind string

const (
	KindNone   Kind = "none"
	KindBool   Kind = "bool"
	KindNumber Kind = "number"
	KindString Kind = "string"
	KindList   Kind = "list"
	KindTuple  Kind = "tuple"
	KindDict   Kind = "dict"
)

// KindOf returns the kind of v.
func KindOf(v Value) Kind {
	switch v.(type) {
	case Bool:
		return KindBool
	case Number:
		return KindNumber
	case String:
		return KindString
	case *List:
		return KindList
	case *Tuple:
		return KindTuple
	case *Dict:
		return KindDict
	default:
		return KindNone
	}
}
