package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/matsen/papergraph/internal/edge"
)

// Required top-level sections of an exported graph.
var exportSections = []string{"nodes", "edges", "metadata"}

// FormatError is returned by Import when a blob cannot be parsed or lacks a
// required section. The graph is left unchanged.
type FormatError struct {
	Section string // Offending section, empty when the whole blob is unreadable
	Reason  string
	Err     error
}

func (e *FormatError) Error() string {
	msg := "invalid graph data"
	if e.Section != "" {
		msg += fmt.Sprintf(" (%s)", e.Section)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsFormatError reports whether err is or wraps a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// Export serializes the whole graph as indented JSON with top-level nodes,
// edges, and metadata sections.
func (g *Graph) Export() ([]byte, error) {
	return json.MarshalIndent(g.Snapshot(), "", "  ")
}

// Import replaces the graph with the contents of an exported blob.
//
// Only the presence of the three sections is validated; dangling edge
// endpoints and duplicate ids are accepted as-is (see Check). Metadata
// timestamps are taken from the blob and the kind counts are recomputed.
func (g *Graph) Import(data []byte) error {
	snap, err := decodeSnapshot(data)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = make([]*Node, 0, len(snap.Nodes))
	g.nodeIndex = make(map[string]int, len(snap.Nodes))
	for i := range snap.Nodes {
		n := snap.Nodes[i]
		g.appendNode(&n)
	}

	g.edges = make([]*edge.Edge, 0, len(snap.Edges))
	g.edgeIndex = make(map[string]int, len(snap.Edges))
	for i := range snap.Edges {
		e := snap.Edges[i]
		g.edgeIndex[e.ID] = len(g.edges)
		g.edges = append(g.edges, &e)
	}

	counts := g.countNodes()
	g.meta = snap.Metadata
	g.meta.PaperCount = counts[KindPaper]
	g.meta.AuthorCount = counts[KindAuthor]
	g.meta.TopicCount = counts[KindTopic]

	g.publishGauges()
	g.log.Info("graph imported", "nodes", len(g.nodes), "edges", len(g.edges))
	return nil
}

// decodeSnapshot parses and validates an exported blob without touching any graph.
func decodeSnapshot(data []byte) (*Snapshot, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, &FormatError{Reason: "not a JSON object", Err: err}
	}

	for _, name := range exportSections {
		raw, ok := sections[name]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, &FormatError{Section: name, Reason: "missing section"}
		}
	}

	var nodes []*Node
	if err := json.Unmarshal(sections["nodes"], &nodes); err != nil {
		return nil, &FormatError{Section: "nodes", Reason: "decoding", Err: err}
	}
	var edges []*edge.Edge
	if err := json.Unmarshal(sections["edges"], &edges); err != nil {
		return nil, &FormatError{Section: "edges", Reason: "decoding", Err: err}
	}
	var meta Metadata
	if err := json.Unmarshal(sections["metadata"], &meta); err != nil {
		return nil, &FormatError{Section: "metadata", Reason: "decoding", Err: err}
	}

	snap := &Snapshot{Metadata: meta}
	for _, n := range nodes {
		if n != nil {
			snap.Nodes = append(snap.Nodes, *n)
		}
	}
	for _, e := range edges {
		if e != nil {
			snap.Edges = append(snap.Edges, *e)
		}
	}
	return snap, nil
}

// Report lists structural problems that Import tolerates.
type Report struct {
	Nodes          int                     `json:"nodes"`
	Edges          int                     `json:"edges"`
	OrphanedEdges  []edge.OrphanedEdgeInfo `json:"orphaned_edges,omitempty"`
	DuplicateEdges map[string]int          `json:"duplicate_edges,omitempty"`
	DuplicateNodes map[string]int          `json:"duplicate_nodes,omitempty"`
	InvalidEdges   []InvalidEdge           `json:"invalid_edges,omitempty"`
}

// InvalidEdge names an edge that fails edge.Validate.
type InvalidEdge struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Clean reports whether no problems were found.
func (r *Report) Clean() bool {
	return len(r.OrphanedEdges) == 0 && len(r.DuplicateEdges) == 0 &&
		len(r.DuplicateNodes) == 0 && len(r.InvalidEdges) == 0
}

// Check inspects the graph for dangling edge endpoints, duplicate ids, and
// malformed edges.
func (g *Graph) Check() Report {
	snap := g.Snapshot()

	validIDs := make(map[string]bool, len(snap.Nodes))
	nodeCounts := make(map[string]int, len(snap.Nodes))
	for _, n := range snap.Nodes {
		validIDs[n.ID] = true
		nodeCounts[n.ID]++
	}

	report := Report{
		Nodes: len(snap.Nodes),
		Edges: len(snap.Edges),
	}
	report.OrphanedEdges, _ = edge.DetectOrphanedEdges(snap.Edges, validIDs)

	if dups := edge.FindDuplicateEdges(snap.Edges); len(dups) > 0 {
		report.DuplicateEdges = dups
	}
	for id, count := range nodeCounts {
		if count > 1 {
			if report.DuplicateNodes == nil {
				report.DuplicateNodes = make(map[string]int)
			}
			report.DuplicateNodes[id] = count
		}
	}

	for i := range snap.Edges {
		if err := snap.Edges[i].Validate(); err != nil {
			report.InvalidEdges = append(report.InvalidEdges, InvalidEdge{ID: snap.Edges[i].ID, Reason: err.Error()})
		}
	}
	sort.Slice(report.InvalidEdges, func(i, j int) bool {
		return report.InvalidEdges[i].ID < report.InvalidEdges[j].ID
	})

	return report
}
