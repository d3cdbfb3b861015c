package viz

import (
	"strings"

	"github.com/matsen/papergraph/internal/graph"
)

// FromSnapshot flattens a graph snapshot into visualization data, keeping
// storage order. Edges whose endpoints are missing are dropped.
func FromSnapshot(s graph.Snapshot) *GraphData {
	data := &GraphData{
		Nodes: make([]Node, 0, len(s.Nodes)),
		Edges: make([]Edge, 0, len(s.Edges)),
	}

	present := make(map[string]bool, len(s.Nodes))
	for i := range s.Nodes {
		n := &s.Nodes[i]
		present[n.ID] = true
		data.Nodes = append(data.Nodes, newNode(n))
	}

	for _, e := range s.Edges {
		if !present[e.SourceID] || !present[e.TargetID] {
			continue
		}
		data.Edges = append(data.Edges, Edge{
			ID:     e.ID,
			Source: e.SourceID,
			Target: e.TargetID,
			Type:   string(e.Kind),
			Weight: e.Weight,
			Label:  e.Label,
		})
	}

	return data
}

// FilterKinds returns a copy holding only nodes of the given kinds and the
// edges between them. With no kinds the data is returned unchanged.
func (g *GraphData) FilterKinds(kinds ...graph.Kind) *GraphData {
	if len(kinds) == 0 {
		return g
	}
	keep := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		keep[string(k)] = true
	}

	out := &GraphData{Nodes: []Node{}, Edges: []Edge{}}
	ids := make(map[string]bool)
	for _, n := range g.Nodes {
		if keep[n.Type] {
			out.Nodes = append(out.Nodes, n)
			ids[n.ID] = true
		}
	}
	for _, e := range g.Edges {
		if ids[e.Source] && ids[e.Target] {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}

// newNode creates a visualization node from a graph node.
func newNode(n *graph.Node) Node {
	v := Node{
		ID:    n.ID,
		Type:  string(n.Kind),
		Label: n.Label,
		Size:  n.Size,
		Color: n.Color,
	}

	if p := n.Payload.Paper; p != nil {
		v.Authors = strings.Join(p.Record.Authors, ", ")
		v.Year = p.Record.Year
		v.Category = p.Record.Category
		v.Citations = p.Record.Citations
		if p.Analysis != nil {
			v.Summary = p.Analysis.Summary
		}
	}
	v.PaperCount = len(n.Papers())

	return v
}
