// Package graph assembles validated documents into the corpus content graph
// and checks the global invariants that cannot be verified per document.
package graph

import (
	"fmt"
	"sort"

	"mdgraph/internal/corpus"
)

// Kind labels an edge relation.
type Kind string

// Edge kinds. Prerequisite edges are directed ("read this first"); related
// edges are lateral and carry no ordering.
const (
	KindPrerequisite Kind = "prerequisite"
	KindRelated      Kind = "related"
)

// Node is one graph node: a (topic, depth) pair, or a bare topic for
// documents without a depth tag.
type Node struct {
	ID    string
	Topic string
	Depth corpus.Depth
	Doc   corpus.Document
}

// Edge is a single authored relation. To is empty when Ref did not resolve
// to any node; the integrity checker reports those as dangling.
type Edge struct {
	From string
	To   string
	Ref  string // identifier as written in the frontmatter
	Kind Kind
}

// ConstructionError reports two or more documents claiming the same
// (topic, depth) node. Duplicates are never merged; merging would hide
// authoring mistakes.
type ConstructionError struct {
	NodeID string
	Paths  []string // files claiming the node, sorted
}

func (e ConstructionError) Error() string {
	return fmt.Sprintf("duplicate node %q claimed by %d documents", e.NodeID, len(e.Paths))
}

// Graph is an immutable snapshot of the corpus content graph.
type Graph struct {
	nodes map[string]*Node
	order []string // node IDs, sorted
	out   map[string][]Edge
	in    map[string][]Edge // reverse index of resolved edges
}

// Build assembles validated documents into a graph. It is deterministic:
// the same document set yields the same node and edge sets regardless of
// input order. Duplicate (topic, depth) nodes abort construction and are
// returned as errors.
func Build(docs []corpus.Document) (*Graph, []ConstructionError) {
	sorted := make([]corpus.Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].NodeID() != sorted[j].NodeID() {
			return sorted[i].NodeID() < sorted[j].NodeID()
		}

		return sorted[i].Path < sorted[j].Path
	})

	claims := make(map[string][]string)
	for _, doc := range sorted {
		claims[doc.NodeID()] = append(claims[doc.NodeID()], doc.Path)
	}

	var dupErrs []ConstructionError

	for id, paths := range claims {
		if len(paths) > 1 {
			dupErrs = append(dupErrs, ConstructionError{NodeID: id, Paths: paths})
		}
	}

	if len(dupErrs) > 0 {
		sort.Slice(dupErrs, func(i, j int) bool { return dupErrs[i].NodeID < dupErrs[j].NodeID })

		return nil, dupErrs
	}

	g := &Graph{
		nodes: make(map[string]*Node, len(sorted)),
		out:   make(map[string][]Edge),
		in:    make(map[string][]Edge),
	}

	for _, doc := range sorted {
		node := &Node{ID: doc.NodeID(), Topic: doc.Topic, Depth: doc.Depth, Doc: doc}
		g.nodes[node.ID] = node
		g.order = append(g.order, node.ID)
	}

	for _, doc := range sorted {
		from := doc.NodeID()

		for _, ref := range doc.Prerequisites {
			g.addEdge(Edge{From: from, Ref: ref, Kind: KindPrerequisite})
		}

		for _, ref := range doc.RelatedTopics {
			g.addEdge(Edge{From: from, Ref: ref, Kind: KindRelated})
		}
	}

	return g, nil
}

func (g *Graph) addEdge(edge Edge) {
	if to, ok := g.Resolve(edge.Ref); ok {
		edge.To = to
		g.in[to] = append(g.in[to], edge)
	}

	g.out[edge.From] = append(g.out[edge.From], edge)
}

// Resolve maps an authored identifier to a node ID. An exact node ID match
// wins; a bare topic resolves to that topic's shallowest present depth node.
func (g *Graph) Resolve(ref string) (string, bool) {
	if _, ok := g.nodes[ref]; ok {
		return ref, true
	}

	best := ""
	bestRank := len(corpus.DepthLevels())

	// order is sorted, so ties cannot occur and iteration is deterministic.
	for _, id := range g.order {
		node := g.nodes[id]
		if node.Topic != ref || node.Depth == "" {
			continue
		}

		if rank := corpus.DepthRank(node.Depth); rank < bestRank {
			best = id
			bestRank = rank
		}
	}

	if best == "" {
		return "", false
	}

	return best, true
}

// Nodes returns all nodes sorted by ID.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}

	return out
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	node, ok := g.nodes[id]

	return node, ok
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int {
	return len(g.order)
}

// NumEdges returns the count of authored edges, resolved or not.
func (g *Graph) NumEdges() int {
	total := 0
	for _, edges := range g.out {
		total += len(edges)
	}

	return total
}

// EdgesFrom returns the authored edges leaving a node, sorted by kind then
// reference for stable output.
func (g *Graph) EdgesFrom(id string) []Edge {
	edges := make([]Edge, len(g.out[id]))
	copy(edges, g.out[id])
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Kind != edges[j].Kind {
			return edges[i].Kind < edges[j].Kind
		}

		return edges[i].Ref < edges[j].Ref
	})

	return edges
}

// Neighbors returns the resolved neighbor node IDs of id for the given kind,
// sorted and deduplicated. Related edges are lateral, so related neighbors
// include both directions.
func (g *Graph) Neighbors(id string, kind Kind) []string {
	seen := make(map[string]bool)

	for _, edge := range g.out[id] {
		if edge.Kind == kind && edge.To != "" {
			seen[edge.To] = true
		}
	}

	if kind == KindRelated {
		for _, edge := range g.in[id] {
			if edge.Kind == KindRelated {
				seen[edge.From] = true
			}
		}
	}

	out := make([]string, 0, len(seen))
	for nodeID := range seen {
		out = append(out, nodeID)
	}

	sort.Strings(out)

	return out
}

// Dependents returns the IDs of nodes that list id as a prerequisite, sorted.
func (g *Graph) Dependents(id string) []string {
	seen := make(map[string]bool)

	for _, edge := range g.in[id] {
		if edge.Kind == KindPrerequisite {
			seen[edge.From] = true
		}
	}

	out := make([]string, 0, len(seen))
	for nodeID := range seen {
		out = append(out, nodeID)
	}

	sort.Strings(out)

	return out
}
