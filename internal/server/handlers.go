package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/matsen/papergraph/internal/edge"
	"github.com/matsen/papergraph/internal/graph"
	"github.com/matsen/papergraph/internal/logger"
	"github.com/matsen/papergraph/internal/reference"
	"github.com/matsen/papergraph/internal/viz"
)

// MaxImportBytes bounds the body accepted by POST /api/import.
const MaxImportBytes = 64 << 20

// RecordSink persists an entry before it is ingested. pgraph serve appends to
// papers.jsonl so the entry survives a restart.
type RecordSink interface {
	Record(ctx context.Context, e reference.Entry) error
}

// GraphHandler serves the query surface and ingestion endpoints of one graph.
type GraphHandler struct {
	// ingest serializes AddPaper so entries reach the sink in the order
	// they are applied to the graph.
	ingest sync.Mutex

	graph *graph.Graph
	sink  RecordSink
	log   *logger.Logger
	viz   viz.HTMLOptions
}

func NewGraphHandler(g *graph.Graph, sink RecordSink, log *logger.Logger, vizOpts viz.HTMLOptions) *GraphHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &GraphHandler{graph: g, sink: sink, log: log, viz: vizOpts}
}

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Query   string       `json:"query"`
	Count   int          `json:"count"`
	Results []graph.Node `json:"results"`
}

// NodesResponse is the body of GET /api/nodes.
type NodesResponse struct {
	Kind  string       `json:"kind,omitempty"`
	Count int          `json:"count"`
	Nodes []graph.Node `json:"nodes"`
}

// NeighborsResponse is the body of GET /api/nodes/:id/neighbors.
type NeighborsResponse struct {
	Node      string       `json:"node"`
	Count     int          `json:"count"`
	Neighbors []graph.Node `json:"neighbors"`
	Edges     []edge.Edge  `json:"edges"`
}

// StatusResponse acknowledges a mutation.
type StatusResponse struct {
	Status string      `json:"status"`
	Stats  graph.Stats `json:"stats"`
}

func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *GraphHandler) Index(c *gin.Context) {
	page, err := viz.GenerateHTML(viz.FromSnapshot(h.graph.Snapshot()), h.viz)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, CodeInternal, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (h *GraphHandler) Graph(c *gin.Context) {
	RespondOK(c, h.graph.Snapshot())
}

func (h *GraphHandler) Stats(c *gin.Context) {
	RespondOK(c, h.graph.Stats())
}

func (h *GraphHandler) Search(c *gin.Context) {
	q := c.Query("q")
	results := nonNil(h.graph.Search(q))
	RespondOK(c, SearchResponse{Query: q, Count: len(results), Results: results})
}

func (h *GraphHandler) Nodes(c *gin.Context) {
	raw := c.Query("kind")
	if raw == "" {
		nodes := nonNil(h.graph.Snapshot().Nodes)
		RespondOK(c, NodesResponse{Count: len(nodes), Nodes: nodes})
		return
	}

	kind, err := graph.ParseKind(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, CodeInvalidKind, err)
		return
	}
	nodes := nonNil(h.graph.FilterByKind(kind))
	RespondOK(c, NodesResponse{Kind: string(kind), Count: len(nodes), Nodes: nodes})
}

func (h *GraphHandler) Node(c *gin.Context) {
	id := c.Param("id")
	n, ok := h.graph.Node(id)
	if !ok {
		RespondError(c, http.StatusNotFound, CodeNotFound, fmt.Errorf("node %q not found", id))
		return
	}
	RespondOK(c, n)
}

func (h *GraphHandler) Neighbors(c *gin.Context) {
	id := c.Param("id")
	hood, ok := h.graph.Neighborhood(id)
	if !ok {
		RespondError(c, http.StatusNotFound, CodeNotFound, fmt.Errorf("node %q not found", id))
		return
	}
	RespondOK(c, NeighborsResponse{Node: id, Count: len(hood.Neighbors), Neighbors: hood.Neighbors, Edges: hood.Edges})
}

func (h *GraphHandler) Export(c *gin.Context) {
	data, err := h.graph.Export()
	if err != nil {
		RespondError(c, http.StatusInternalServerError, CodeInternal, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="papergraph.json"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *GraphHandler) Import(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxImportBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		RespondError(c, status, CodeBadRequest, fmt.Errorf("reading body: %w", err))
		return
	}

	if err := h.graph.Import(body); err != nil {
		status, code := http.StatusInternalServerError, CodeInternal
		if graph.IsFormatError(err) {
			status, code = http.StatusBadRequest, CodeInvalidGraph
		}
		RespondError(c, status, code, err)
		return
	}
	RespondOK(c, StatusResponse{Status: "imported", Stats: h.graph.Stats()})
}

func (h *GraphHandler) AddPaper(c *gin.Context) {
	var entry reference.Entry
	if err := c.ShouldBindJSON(&entry); err != nil {
		RespondError(c, http.StatusBadRequest, CodeBadRequest, fmt.Errorf("decoding entry: %w", err))
		return
	}
	if err := entry.ValidateForCreate(); err != nil {
		RespondError(c, http.StatusBadRequest, CodeInvalidEntry, err)
		return
	}

	h.ingest.Lock()
	defer h.ingest.Unlock()

	if h.sink != nil {
		if err := h.sink.Record(c.Request.Context(), entry); err != nil {
			if errors.Is(err, context.Canceled) {
				c.Abort()
				return
			}
			_ = c.Error(err)
			RespondError(c, http.StatusInternalServerError, CodeInternal, fmt.Errorf("storing entry: %w", err))
			return
		}
	}

	node := h.graph.AddPaper(entry.Paper, entry.Analysis)
	h.log.Info("paper ingested", "id", node.ID)
	c.JSON(http.StatusCreated, node)
}

func (h *GraphHandler) Reset(c *gin.Context) {
	h.graph.Reset()
	h.log.Info("graph reset")
	RespondOK(c, StatusResponse{Status: "reset", Stats: h.graph.Stats()})
}

// nonNil keeps empty result lists encoding as [] rather than null.
func nonNil(nodes []graph.Node) []graph.Node {
	if nodes == nil {
		return []graph.Node{}
	}
	return nodes
}
