package render

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/aleksaelezovic/sparqlconsole/pkg/results"
)

// DefaultMaxBindings caps how many edge-producing bindings the graph
// extractor processes
const DefaultMaxBindings = 100

const (
	maxURILabel     = 25
	maxLiteralLabel = 30
)

// Role is the position a node was seen in
type Role string

const (
	RoleGeneric Role = "generic"
	RoleSubject Role = "subject"
	RoleObject  Role = "object"
)

// GraphNode is a node of the extracted graph, identified by its URI or
// literal value
type GraphNode struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	IsLiteral bool   `json:"isLiteral"`
	Role      Role   `json:"role"`
}

// GraphEdge connects two node IDs
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// GraphModel is the node/edge view of a result. Node IDs are unique and
// every edge endpoint names an existing node.
type GraphModel struct {
	Nodes             []GraphNode `json:"nodes"`
	Edges             []GraphEdge `json:"edges"`
	LimitReached      bool        `json:"limitReached"`
	ProcessedBindings int         `json:"processedBindings"`

	index map[string]int
}

// Node returns the node with the given ID
func (g *GraphModel) Node(id string) (GraphNode, bool) {
	i, ok := g.index[id]
	if !ok {
		return GraphNode{}, false
	}
	return g.Nodes[i], true
}

// touch creates or updates a node. Roles only move from generic to subject
// or object, and IsLiteral only from false to true.
func (g *GraphModel) touch(v results.Value, role Role) {
	isLiteral := v.Kind.IsLiteral()

	i, ok := g.index[v.Value]
	if !ok {
		g.index[v.Value] = len(g.Nodes)
		g.Nodes = append(g.Nodes, GraphNode{
			ID:        v.Value,
			Label:     FormatLabel(v.Value, isLiteral),
			IsLiteral: isLiteral,
			Role:      role,
		})
		return
	}

	n := &g.Nodes[i]
	if n.Role == RoleGeneric && role != RoleGeneric {
		n.Role = role
	}
	if isLiteral && !n.IsLiteral {
		n.IsLiteral = true
		n.Label = FormatLabel(n.ID, true)
	}
}

type slot int

const (
	slotNone slot = iota
	slotSubject
	slotPredicate
	slotObject
)

// ExtractGraph builds a graph from the bindings of r using variable names as
// hints. A variable whose name contains "subject" (case-insensitively) or is
// "s" supplies the subject; "predicate"/"p" and "object"/"o" work the same
// way. When a binding has no such variables but at least two URIs, the first
// two URIs in declared variable order are linked instead. This is a
// best-effort guess and result sets with other naming schemes may produce
// misleading edges.
//
// Processing stops once maxBindings bindings have produced an edge; if
// bindings remain at that point LimitReached is set.
func ExtractGraph(r *results.QueryResult, maxBindings int) *GraphModel {
	if maxBindings <= 0 {
		maxBindings = DefaultMaxBindings
	}

	g := &GraphModel{
		Nodes: []GraphNode{},
		Edges: []GraphEdge{},
		index: make(map[string]int),
	}

	variables := r.Variables()
	slots := classifyVariables(variables)

	for i := 0; i < r.Len(); i++ {
		if len(g.Edges) >= maxBindings {
			g.LimitReached = true
			break
		}
		g.ProcessedBindings++

		var subject, predicate, object *results.Value
		var uris []results.Value
		named := false

		for _, name := range variables {
			v, ok := r.Value(i, name)
			if !ok {
				continue
			}

			switch slots[name] {
			case slotSubject:
				named = true
				if subject == nil {
					subject = &v
				}
				continue
			case slotPredicate:
				named = true
				if predicate == nil {
					predicate = &v
				}
				continue
			case slotObject:
				named = true
				if object == nil {
					object = &v
				}
				continue
			}

			if v.Kind == results.KindURI {
				g.touch(v, RoleGeneric)
				uris = append(uris, v)
			}
		}

		switch {
		case subject != nil && object != nil:
			g.touch(*subject, RoleSubject)
			g.touch(*object, RoleObject)
			label := ""
			if predicate != nil {
				label = FormatLabel(predicate.Value, predicate.Kind.IsLiteral())
			}
			g.Edges = append(g.Edges, GraphEdge{Source: subject.Value, Target: object.Value, Label: label})

		case !named && len(uris) >= 2:
			g.touch(uris[0], RoleSubject)
			g.touch(uris[1], RoleObject)
			g.Edges = append(g.Edges, GraphEdge{Source: uris[0].Value, Target: uris[1].Value})
		}
	}

	return g
}

func classifyVariables(variables []string) map[string]slot {
	fold := cases.Fold()
	slots := make(map[string]slot, len(variables))
	for _, name := range variables {
		n := fold.String(name)
		switch {
		case n == "s" || strings.Contains(n, "subject"):
			slots[name] = slotSubject
		case n == "p" || strings.Contains(n, "predicate"):
			slots[name] = slotPredicate
		case n == "o" || strings.Contains(n, "object"):
			slots[name] = slotObject
		default:
			slots[name] = slotNone
		}
	}
	return slots
}

// FormatLabel shortens a URI to its fragment or last path segment and
// truncates labels longer than 25 (URI) or 30 (literal) characters with an
// ellipsis
func FormatLabel(value string, isLiteral bool) string {
	if isLiteral {
		return truncate(value, maxLiteralLabel)
	}
	return truncate(localName(value), maxURILabel)
}

func localName(iri string) string {
	if i := strings.LastIndex(iri, "#"); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	trimmed := strings.TrimRight(iri, "/#")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 && i < len(trimmed)-1 {
		return trimmed[i+1:]
	}
	if trimmed == "" {
		return iri
	}
	return trimmed
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
