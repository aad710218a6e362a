package evaluator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

// ValueToJSON marshals a Value to JSON bytes.
// Dicts preserve key order. Numbers output integers without decimal point.
// Tuples encode as arrays; a container that contains itself encodes its
// inner reference as its display form.
func ValueToJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, map[Value]bool{}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ValueToJSONString is a convenience that returns a string.
func ValueToJSONString(v Value) string {
	b, err := ValueToJSON(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func writeJSON(buf *bytes.Buffer, v Value, visiting map[Value]bool) error {
	switch val := v.(type) {
	case nil, None:
		buf.WriteString("null")
	case Bool:
		if val.Value {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		if math.IsNaN(val.Value) || math.IsInf(val.Value, 0) {
			// JSON has no encoding for these.
			return writeJSONString(buf, FormatNumber(val.Value))
		}
		buf.WriteString(FormatNumber(val.Value))
	case String:
		return writeJSONString(buf, val.Value)
	case *List, *Tuple:
		if visiting[val] {
			return writeJSONString(buf, "[...]")
		}
		visiting[val] = true
		defer delete(visiting, val)
		items, _ := Items(val)
		buf.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item, visiting); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Dict:
		if visiting[val] {
			return writeJSONString(buf, "{...}")
		}
		visiting[val] = true
		defer delete(visiting, val)
		buf.WriteByte('{')
		for i, kv := range val.Pairs {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, kv.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, kv.Value, visiting); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("cannot encode %T", v)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// MarshalJSON encodes the environment as an object in insertion order.
func (e *Env) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range e.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, e.bindings[name], map[Value]bool{}); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type stepJSON struct {
	Line      int      `json:"line"`
	Variables *Env     `json:"variables"`
	Output    []string `json:"output"`
}

// MarshalJSON encodes a step as {"line":..,"variables":{..},"output":[..]}.
func (s Step) MarshalJSON() ([]byte, error) {
	out := s.Output
	if out == nil {
		out = []string{}
	}
	vars := s.Variables
	if vars == nil {
		vars = NewEnv()
	}
	return json.Marshal(stepJSON{Line: s.Line, Variables: vars, Output: out})
}

// TraceToJSON marshals a trace as {"steps":[...]}.
func TraceToJSON(t *Trace) ([]byte, error) {
	steps := t.Steps
	if steps == nil {
		steps = []Step{}
	}
	return json.Marshal(struct {
		Steps []Step `json:"steps"`
	}{Steps: steps})
}

// WriteNDJSON writes one JSON-encoded step per line.
func WriteNDJSON(w io.Writer, t *Trace) error {
	enc := json.NewEncoder(w)
	for i, s := range t.Steps {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode step %d: %w", i, err)
		}
	}
	return nil
}

// ValueToYAML builds an ordered YAML node for v. Containers use flow style
// so that small values stay on one line.
func ValueToYAML(v Value) *yaml.Node {
	return valueNode(v, map[Value]bool{})
}

func valueNode(v Value, visiting map[Value]bool) *yaml.Node {
	scalar := func(tag, text string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}
	}
	switch val := v.(type) {
	case nil, None:
		return scalar("!!null", "null")
	case Bool:
		if val.Value {
			return scalar("!!bool", "true")
		}
		return scalar("!!bool", "false")
	case Number:
		switch {
		case math.IsNaN(val.Value):
			return scalar("!!float", ".nan")
		case math.IsInf(val.Value, 1):
			return scalar("!!float", ".inf")
		case math.IsInf(val.Value, -1):
			return scalar("!!float", "-.inf")
		}
		if val.Value == math.Trunc(val.Value) {
			return scalar("!!int", FormatNumber(val.Value))
		}
		return scalar("!!float", FormatNumber(val.Value))
	case String:
		return scalar("!!str", val.Value)
	case *List, *Tuple:
		if visiting[val] {
			return scalar("!!str", "[...]")
		}
		visiting[val] = true
		defer delete(visiting, val)
		items, _ := Items(val)
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, item := range items {
			node.Content = append(node.Content, valueNode(item, visiting))
		}
		return node
	case *Dict:
		if visiting[val] {
			return scalar("!!str", "{...}")
		}
		visiting[val] = true
		defer delete(visiting, val)
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: yaml.FlowStyle}
		for _, kv := range val.Pairs {
			node.Content = append(node.Content, scalar("!!str", kv.Key), valueNode(kv.Value, visiting))
		}
		return node
	}
	return scalar("!!null", "null")
}

// MarshalYAML encodes the environment as an ordered mapping.
func (e *Env) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range e.names {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			ValueToYAML(e.bindings[name]),
		)
	}
	return node, nil
}

type stepYAML struct {
	Line      int      `yaml:"line"`
	Variables *Env     `yaml:"variables"`
	Output    []string `yaml:"output,flow"`
}

type traceYAML struct {
	Steps []stepYAML `yaml:"steps"`
}

// WriteYAML writes the trace as a YAML document with a top-level steps list.
func WriteYAML(w io.Writer, t *Trace) error {
	doc := traceYAML{Steps: make([]stepYAML, len(t.Steps))}
	for i, s := range t.Steps {
		vars := s.Variables
		if vars == nil {
			vars = NewEnv()
		}
		out := s.Output
		if out == nil {
			out = []string{}
		}
		doc.Steps[i] = stepYAML{Line: s.Line, Variables: vars, Output: out}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml trace: %w", err)
	}
	return enc.Close()
}
