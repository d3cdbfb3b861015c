package graph

import (
	"strings"

	"github.com/matsen/papergraph/internal/edge"
)

// Stats reports node and edge counts by kind.
type Stats struct {
	Nodes NodeStats `json:"nodes"`
	Edges EdgeStats `json:"edges"`
	Total Totals    `json:"total"`
}

// NodeStats counts nodes per kind.
type NodeStats struct {
	Papers    int `json:"papers"`
	Authors   int `json:"authors"`
	Topics    int `json:"topics"`
	Keywords  int `json:"keywords"`
	Citations int `json:"citations"`
}

// EdgeStats counts edges per kind.
type EdgeStats struct {
	Citations      int `json:"citations"`
	Authorships    int `json:"authorships"`
	Topics         int `json:"topics"`
	Similarities   int `json:"similarities"`
	Collaborations int `json:"collaborations"`
}

// Totals counts all nodes and edges.
type Totals struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// Search returns nodes whose label or abstract contains query, ignoring case,
// in storage order. An empty query matches every node.
func (g *Graph) Search(query string) []Node {
	q := strings.ToLower(query)

	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []Node
	for _, n := range g.nodes {
		if strings.Contains(strings.ToLower(n.Label), q) ||
			strings.Contains(strings.ToLower(n.Payload.abstract()), q) {
			out = append(out, n.clone())
		}
	}
	return out
}

// FilterByKind returns all nodes of the given kind in storage order.
func (g *Graph) FilterByKind(kind Kind) []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []Node
	for _, n := range g.nodes {
		if n.Kind == kind {
			out = append(out, n.clone())
		}
	}
	return out
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := g.node(id)
	if n == nil {
		return Node{}, false
	}
	return n.clone(), true
}

// Neighbors returns each node one edge away from id, in either direction,
// exactly once. id itself is included only when a self-loop exists. Edge
// endpoints that are not stored nodes are skipped.
func (g *Graph) Neighbors(id string) []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.neighbors(id)
}

// Edges returns copies of all edges touching id, in storage order.
func (g *Graph) Edges(id string) []edge.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edgesOf(id)
}

// Neighborhood is a node together with its neighbors and incident edges, all
// read from the same graph state.
type Neighborhood struct {
	Node      Node
	Neighbors []Node
	Edges     []edge.Edge
}

// Neighborhood returns id's node, neighbors and edges under one read lock.
// The slices are never nil. ok is false when id is not stored.
func (g *Graph) Neighborhood(id string) (Neighborhood, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := g.node(id)
	if n == nil {
		return Neighborhood{}, false
	}
	edges := g.edgesOf(id)
	if edges == nil {
		edges = []edge.Edge{}
	}
	return Neighborhood{Node: n.clone(), Neighbors: g.neighbors(id), Edges: edges}, true
}

// neighbors is Neighbors without locking. The caller must hold a lock.
func (g *Graph) neighbors(id string) []Node {
	connected := make(map[string]bool)
	for _, e := range g.edges {
		if e.SourceID == id {
			connected[e.TargetID] = true
		} else if e.TargetID == id {
			connected[e.SourceID] = true
		}
	}

	out := make([]Node, 0, len(connected))
	for _, n := range g.nodes {
		if connected[n.ID] {
			out = append(out, n.clone())
			delete(connected, n.ID)
		}
	}
	return out
}

// edgesOf is Edges without locking. The caller must hold a lock.
func (g *Graph) edgesOf(id string) []edge.Edge {
	var out []edge.Edge
	for _, e := range g.edges {
		if e.SourceID == id || e.TargetID == id {
			out = append(out, *e)
		}
	}
	return out
}

// Stats counts nodes and edges by kind.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := g.countNodes()
	edges := g.countEdges()
	return Stats{
		Nodes: NodeStats{
			Papers:    nodes[KindPaper],
			Authors:   nodes[KindAuthor],
			Topics:    nodes[KindTopic],
			Keywords:  nodes[KindKeyword],
			Citations: nodes[KindCitation],
		},
		Edges: EdgeStats{
			Citations:      edges[edge.Cites],
			Authorships:    edges[edge.AuthoredBy],
			Topics:         edges[edge.ContainsTopic],
			Similarities:   edges[edge.SimilarTo],
			Collaborations: edges[edge.CollaboratesWith],
		},
		Total: Totals{
			Nodes: len(g.nodes),
			Edges: len(g.edges),
		},
	}
}
