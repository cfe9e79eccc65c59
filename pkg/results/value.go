package results

import (
	"fmt"
)

// Kind is the RDF kind of a bound value
type Kind string

const (
	KindURI          Kind = "uri"
	KindLiteral      Kind = "literal"
	KindTypedLiteral Kind = "typed-literal"
	KindBNode        Kind = "bnode"
)

// Valid reports whether k is one of the known value kinds
func (k Kind) Valid() bool {
	switch k {
	case KindURI, KindLiteral, KindTypedLiteral, KindBNode:
		return true
	}
	return false
}

// IsLiteral reports whether k belongs to the literal family
func (k Kind) IsLiteral() bool {
	return k == KindLiteral || k == KindTypedLiteral
}

// Value is a single bound RDF value
type Value struct {
	Kind     Kind
	Value    string
	Datatype string // typed-literal only
	Language string // literal only, never set together with Datatype
}

func NewURI(iri string) Value {
	return Value{Kind: KindURI, Value: iri}
}

func NewBNode(id string) Value {
	return Value{Kind: KindBNode, Value: id}
}

func NewLiteral(value string) Value {
	return Value{Kind: KindLiteral, Value: value}
}

func NewLangLiteral(value, language string) Value {
	return Value{Kind: KindLiteral, Value: value, Language: language}
}

func NewTypedLiteral(value, datatype string) Value {
	return Value{Kind: KindTypedLiteral, Value: value, Datatype: datatype}
}

// String returns the N-Triples form of the value
func (v Value) String() string {
	switch v.Kind {
	case KindURI:
		return fmt.Sprintf("<%s>", v.Value)
	case KindBNode:
		return fmt.Sprintf("_:%s", v.Value)
	default:
		result := fmt.Sprintf("%q", v.Value)
		if v.Language != "" {
			result += "@" + v.Language
		} else if v.Datatype != "" {
			result += "^^<" + v.Datatype + ">"
		}
		return result
	}
}

func (v Value) Equals(other Value) bool {
	return v == other
}

// Common XSD datatypes
const (
	XSDString  = "http://www.w3.org/2001/XMLSchema#string"
	XSDInteger = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDecimal = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDDouble  = "http://www.w3.org/2001/XMLSchema#double"
	XSDBoolean = "http://www.w3.org/2001/XMLSchema#boolean"
)

// Binding maps variable names to values. A variable missing from the map is
// unbound in that row, which is distinct from a bound empty literal.
type Binding map[string]Value

// Get returns the value bound to name and whether it is bound
func (b Binding) Get(name string) (Value, bool) {
	v, ok := b[name]
	return v, ok
}

func (b Binding) clone() Binding {
	out := make(Binding, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
