// Package graph builds an incremental knowledge graph of papers, authors,
// topics, and keywords from one paper record and analysis record at a time.
//
// A *Graph is safe for concurrent use. Mutations (AddPaper, Import, Reset)
// hold the write lock for their whole duration, so readers never observe a
// partially applied ingestion.
package graph

import (
	"sync"
	"time"

	"github.com/matsen/papergraph/internal/edge"
	"github.com/matsen/papergraph/internal/logger"
	"github.com/matsen/papergraph/internal/metrics"
)

// Metadata summarizes the graph. The counts always equal the live number of
// nodes of each kind.
type Metadata struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	PaperCount  int       `json:"paper_count"`
	AuthorCount int       `json:"author_count"`
	TopicCount  int       `json:"topic_count"`
}

// Snapshot is a detached copy of the whole graph. It is also the export format.
type Snapshot struct {
	Nodes    []Node      `json:"nodes"`
	Edges    []edge.Edge `json:"edges"`
	Metadata Metadata    `json:"metadata"`
}

// Graph is the knowledge graph handle. The zero value is not usable; call New.
type Graph struct {
	mu sync.RWMutex

	// Nodes and edges are kept in storage order with id -> position indexes.
	nodes     []*Node
	nodeIndex map[string]int
	edges     []*edge.Edge
	edgeIndex map[string]int
	meta      Metadata

	log *logger.Logger
	now func() time.Time
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used for ingestion diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.log = l
		}
	}
}

// WithClock overrides the time source for metadata timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Graph) {
		if now != nil {
			g.now = now
		}
	}
}

// New returns an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		log: logger.Nop(),
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With("component", "graph")
	g.clear()
	return g
}

// Reset discards all nodes and edges and reinitializes the metadata timestamps.
func (g *Graph) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.clear()
	g.publishGauges()
	g.log.Info("graph reset")
}

// clear reinitializes all state. The caller must hold the write lock or own g exclusively.
func (g *Graph) clear() {
	now := g.now()
	g.nodes = nil
	g.nodeIndex = make(map[string]int)
	g.edges = nil
	g.edgeIndex = make(map[string]int)
	g.meta = Metadata{CreatedAt: now, UpdatedAt: now}
}

// Snapshot returns a deep copy of the graph. Mutating it does not affect g.
func (g *Graph) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Snapshot{
		Nodes:    make([]Node, 0, len(g.nodes)),
		Edges:    make([]edge.Edge, 0, len(g.edges)),
		Metadata: g.meta,
	}
	for _, n := range g.nodes {
		s.Nodes = append(s.Nodes, n.clone())
	}
	for _, e := range g.edges {
		s.Edges = append(s.Edges, *e)
	}
	return s
}

// Metadata returns the current graph metadata.
func (g *Graph) Metadata() Metadata {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.meta
}

// node returns the stored node for id, or nil. The caller must hold a lock.
func (g *Graph) node(id string) *Node {
	if i, ok := g.nodeIndex[id]; ok {
		return g.nodes[i]
	}
	return nil
}

// appendNode adds n at the end of storage order. The caller must hold the write lock.
func (g *Graph) appendNode(n *Node) {
	g.nodeIndex[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

// removeNode deletes every node stored under id, keeping the order of the rest.
// Edges touching it are left in place. The caller must hold the write lock.
func (g *Graph) removeNode(id string) bool {
	if _, ok := g.nodeIndex[id]; !ok {
		return false
	}
	// An imported blob may hold several nodes with one id; drop them all.
	kept := g.nodes[:0]
	for _, n := range g.nodes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	clear(g.nodes[len(kept):])
	g.nodes = kept

	g.nodeIndex = make(map[string]int, len(g.nodes))
	for j, n := range g.nodes {
		g.nodeIndex[n.ID] = j
	}
	return true
}

// upsertEdge stores e if its id is new and returns it with created=true.
// Otherwise it returns the existing edge untouched with created=false.
// The caller must hold the write lock.
func (g *Graph) upsertEdge(e *edge.Edge) (stored *edge.Edge, created bool) {
	if i, ok := g.edgeIndex[e.ID]; ok {
		return g.edges[i], false
	}
	g.edgeIndex[e.ID] = len(g.edges)
	g.edges = append(g.edges, e)
	return e, true
}

// refreshMetadata recomputes the kind counts and bumps UpdatedAt.
// The caller must hold the write lock.
func (g *Graph) refreshMetadata() {
	counts := g.countNodes()
	g.meta.PaperCount = counts[KindPaper]
	g.meta.AuthorCount = counts[KindAuthor]
	g.meta.TopicCount = counts[KindTopic]
	g.meta.UpdatedAt = g.now()
}

func (g *Graph) countNodes() map[Kind]int {
	counts := make(map[Kind]int, len(Kinds))
	for _, n := range g.nodes {
		counts[n.Kind]++
	}
	return counts
}

func (g *Graph) countEdges() map[edge.Kind]int {
	counts := make(map[edge.Kind]int, len(edge.Kinds))
	for _, e := range g.edges {
		counts[e.Kind]++
	}
	return counts
}

// publishGauges mirrors the node and edge counts into prometheus.
func (g *Graph) publishGauges() {
	nodes := g.countNodes()
	for _, k := range Kinds {
		metrics.GraphNodes.WithLabelValues(string(k)).Set(float64(nodes[k]))
	}
	edges := g.countEdges()
	for _, k := range edge.Kinds {
		metrics.GraphEdges.WithLabelValues(string(k)).Set(float64(edges[k]))
	}
}
