package graph

import (
	"fmt"
	"testing"
	"time"

	"github.com/matsen/papergraph/internal/edge"
	"github.com/matsen/papergraph/internal/reference"
)

var testEpoch = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// newTestGraph returns a graph whose clock advances one second per reading.
func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	tick := 0
	return New(WithClock(func() time.Time {
		tick++
		return testEpoch.Add(time.Duration(tick) * time.Second)
	}))
}

func paper(id string, authors ...string) reference.PaperRecord {
	return reference.PaperRecord{ID: id, Title: "Paper " + id, Authors: authors}
}

func analysis(topics, keywords []string) *reference.AnalysisRecord {
	return &reference.AnalysisRecord{Topics: topics, Keywords: keywords}
}

// words returns n distinct labels "<prefix>0" ... "<prefix>n-1".
func words(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}

func mustNode(t *testing.T, g *Graph, id string) Node {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %q not found", id)
	}
	return n
}

func findEdge(g *Graph, id string) (edge.Edge, bool) {
	for _, e := range g.Snapshot().Edges {
		if e.ID == id {
			return e, true
		}
	}
	return edge.Edge{}, false
}

func nodeIDs(nodes []Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func countEdgesOfKind(g *Graph, kind edge.Kind) int {
	n := 0
	for _, e := range g.Snapshot().Edges {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
