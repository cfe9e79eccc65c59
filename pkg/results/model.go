package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// SPARQL JSON Results Format
// https://www.w3.org/TR/sparql11-results-json/

// ErrInvalidResultShape is returned when a results document is not a
// SPARQL results object
var ErrInvalidResultShape = errors.New("invalid results format")

// QueryResult is the canonical form of one query's results. It is never
// modified after construction; accessors hand out copies.
type QueryResult struct {
	variables []string
	rows      []Binding
	boolean   *bool
}

// New builds a QueryResult from declared variables and rows. Duplicate
// variable names keep their first position and bindings for undeclared
// variables are dropped.
func New(variables []string, rows []Binding) (*QueryResult, error) {
	r := &QueryResult{
		variables: make([]string, 0, len(variables)),
		rows:      make([]Binding, 0, len(rows)),
	}

	declared := make(map[string]bool, len(variables))
	for _, name := range variables {
		if declared[name] {
			continue
		}
		declared[name] = true
		r.variables = append(r.variables, name)
	}

	for i, row := range rows {
		b := make(Binding, len(row))
		for name, v := range row {
			if !declared[name] {
				continue
			}
			if err := validateValue(v); err != nil {
				return nil, fmt.Errorf("%w: row %d, variable %q: %v", ErrInvalidResultShape, i, name, err)
			}
			b[name] = v
		}
		r.rows = append(r.rows, b)
	}

	return r, nil
}

// NewBoolean builds the result of an ASK query
func NewBoolean(value bool) *QueryResult {
	return &QueryResult{variables: []string{}, rows: []Binding{}, boolean: &value}
}

func validateValue(v Value) error {
	if !v.Kind.Valid() {
		return fmt.Errorf("unknown value type %q", v.Kind)
	}
	if v.Language != "" && v.Datatype != "" {
		return errors.New("literal has both xml:lang and datatype")
	}
	if v.Kind == KindLiteral && v.Datatype != "" {
		return errors.New("plain literal carries a datatype")
	}
	if v.Kind == KindTypedLiteral && v.Datatype == "" {
		return errors.New("typed literal without datatype")
	}
	return nil
}

// Variables returns the declared variables in declaration order
func (r *QueryResult) Variables() []string {
	out := make([]string, len(r.variables))
	copy(out, r.variables)
	return out
}

// Len returns the number of rows
func (r *QueryResult) Len() int {
	return len(r.rows)
}

// Row returns a copy of the i-th binding
func (r *QueryResult) Row(i int) Binding {
	return r.rows[i].clone()
}

// Value returns the value bound to name in row i
func (r *QueryResult) Value(i int, name string) (Value, bool) {
	v, ok := r.rows[i][name]
	return v, ok
}

// Boolean returns the ASK result and whether this is an ASK result at all
func (r *QueryResult) Boolean() (value bool, ok bool) {
	if r.boolean == nil {
		return false, false
	}
	return *r.boolean, true
}

// IsEmpty reports whether a SELECT result has no rows
func (r *QueryResult) IsEmpty() bool {
	return r.boolean == nil && len(r.rows) == 0
}

// Parse decodes a SPARQL JSON results document
func Parse(data []byte) (*QueryResult, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResultShape, err)
	}
	return FromRaw(raw)
}

// FromRaw validates an already decoded JSON value (as produced by
// encoding/json into an any) and converts it to a QueryResult
func FromRaw(raw any) (*QueryResult, error) {
	root, ok := raw.(map[string]any)
	if !ok {
		return nil, invalidf("results must be a JSON object")
	}

	head, ok := root["head"].(map[string]any)
	if !ok {
		return nil, invalidf("missing head section")
	}

	if b, present := root["boolean"]; present {
		if _, hasResults := root["results"]; !hasResults {
			value, ok := b.(bool)
			if !ok {
				return nil, invalidf("boolean member is not a boolean")
			}
			return NewBoolean(value), nil
		}
	}

	rawVars, ok := head["vars"].([]any)
	if !ok {
		return nil, invalidf("head.vars is not a list")
	}
	variables := make([]string, 0, len(rawVars))
	for i, v := range rawVars {
		name, ok := v.(string)
		if !ok {
			return nil, invalidf("head.vars[%d] is not a string", i)
		}
		variables = append(variables, name)
	}

	section, ok := root["results"].(map[string]any)
	if !ok {
		return nil, invalidf("missing results section")
	}
	rawBindings, ok := section["bindings"].([]any)
	if !ok {
		return nil, invalidf("results.bindings is not a list")
	}

	rows := make([]Binding, 0, len(rawBindings))
	for i, rb := range rawBindings {
		obj, ok := rb.(map[string]any)
		if !ok {
			return nil, invalidf("binding %d is not an object", i)
		}
		row := make(Binding, len(obj))
		for name, rv := range obj {
			v, err := valueFromRaw(rv)
			if err != nil {
				return nil, invalidf("binding %d, variable %q: %v", i, name, err)
			}
			row[name] = v
		}
		rows = append(rows, row)
	}

	return New(variables, rows)
}

func valueFromRaw(raw any) (Value, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Value{}, errors.New("value is not an object")
	}

	typ, ok := obj["type"].(string)
	if !ok {
		return Value{}, errors.New("missing type")
	}
	value, ok := obj["value"].(string)
	if !ok {
		return Value{}, errors.New("missing value")
	}

	var lang, datatype string
	if l, present := obj["xml:lang"]; present {
		if lang, ok = l.(string); !ok {
			return Value{}, errors.New("xml:lang is not a string")
		}
	}
	if d, present := obj["datatype"]; present {
		if datatype, ok = d.(string); !ok {
			return Value{}, errors.New("datatype is not a string")
		}
	}

	switch Kind(typ) {
	case KindURI:
		return NewURI(value), nil
	case KindBNode:
		return NewBNode(value), nil
	case KindLiteral, KindTypedLiteral:
		if lang != "" && datatype != "" {
			return Value{}, errors.New("literal has both xml:lang and datatype")
		}
		if datatype != "" {
			return NewTypedLiteral(value, datatype), nil
		}
		return NewLangLiteral(value, lang), nil
	default:
		return Value{}, fmt.Errorf("unknown value type %q", typ)
	}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidResultShape, fmt.Sprintf(format, args...))
}

// ToPlain re-expresses the result as a JSON-compatible value in the SPARQL
// 1.1 JSON shape. Typed literals are written as literals with a datatype.
func (r *QueryResult) ToPlain() map[string]any {
	vars := make([]any, len(r.variables))
	for i, name := range r.variables {
		vars[i] = name
	}
	head := map[string]any{"vars": vars}

	if r.boolean != nil {
		return map[string]any{"head": head, "boolean": *r.boolean}
	}

	bindings := make([]any, 0, len(r.rows))
	for _, row := range r.rows {
		obj := make(map[string]any, len(row))
		for name, v := range row {
			obj[name] = plainValue(v)
		}
		bindings = append(bindings, obj)
	}

	return map[string]any{
		"head":    head,
		"results": map[string]any{"bindings": bindings},
	}
}

func plainValue(v Value) map[string]any {
	kind := v.Kind
	if kind == KindTypedLiteral {
		kind = KindLiteral
	}
	out := map[string]any{
		"type":  string(kind),
		"value": v.Value,
	}
	if v.Language != "" {
		out["xml:lang"] = v.Language
	} else if v.Datatype != "" {
		out["datatype"] = v.Datatype
	}
	return out
}
