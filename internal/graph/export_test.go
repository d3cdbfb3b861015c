package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestExportImport_RoundTrip(t *testing.T) {
	g := seededGraph(t)
	g.AddPaper(paper("3", "Bob", "Alice"), analysis([]string{"nlp"}, []string{"transformer"}))

	data, err := g.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		t.Fatalf("export is not a JSON object: %v", err)
	}
	for _, name := range []string{"nodes", "edges", "metadata"} {
		if _, ok := sections[name]; !ok {
			t.Errorf("export lacks %q section", name)
		}
	}

	restored := New()
	if err := restored.Import(data); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	again, err := restored.Export()
	if err != nil {
		t.Fatalf("Export() after import error = %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Errorf("re-export differs:\n%s\n---\n%s", data, again)
	}
	if restored.Stats() != g.Stats() {
		t.Errorf("Stats() after import = %+v, want %+v", restored.Stats(), g.Stats())
	}
	if !restored.Metadata().CreatedAt.Equal(g.Metadata().CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", restored.Metadata().CreatedAt, g.Metadata().CreatedAt)
	}
}

func TestImport_IngestionContinues(t *testing.T) {
	g := seededGraph(t)
	data, err := g.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	restored := New()
	if err := restored.Import(data); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	restored.AddPaper(paper("4", "Alice", "Bob"), analysis([]string{"nlp"}, []string{"transformer", "attention"}))

	collab, ok := findEdge(restored, "author_Alice_collaborates_author_Bob")
	if !ok || collab.Weight != 2 {
		t.Errorf("collaboration after import = %+v, %v, want weight 2", collab, ok)
	}
	if got := len(mustNode(t, restored, "author_Alice").Papers()); got != 2 {
		t.Errorf("author_Alice papers = %d, want 2", got)
	}
	if _, ok := findEdge(restored, "paper_4_similar_paper_1"); !ok {
		t.Error("similarity against imported paper missing")
	}
}

func TestImport_RecomputesCounts(t *testing.T) {
	g := newTestGraph(t)
	err := g.Import([]byte(`{
		"nodes": [
			{"id": "paper_1", "type": "paper", "label": "One", "data": {}},
			{"id": "author_A", "type": "author", "label": "A", "data": {"author": {"name": "A", "papers": ["paper_1"]}}},
			null
		],
		"edges": [null],
		"metadata": {"created_at": "2020-01-01T00:00:00Z", "updated_at": "2021-01-01T00:00:00Z", "paper_count": 99}
	}`))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	meta := g.Metadata()
	if meta.PaperCount != 1 || meta.AuthorCount != 1 || meta.TopicCount != 0 {
		t.Errorf("metadata counts = %+v", meta)
	}
	if want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC); !meta.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", meta.CreatedAt, want)
	}
	if got := g.Stats().Total; got.Nodes != 2 || got.Edges != 0 {
		t.Errorf("totals = %+v", got)
	}
}

func TestImport_DuplicateIDsReplacedOnReingest(t *testing.T) {
	g := newTestGraph(t)
	err := g.Import([]byte(`{
		"nodes": [
			{"id": "paper_x", "type": "paper", "label": "First copy", "data": {}},
			{"id": "author_A", "type": "author", "label": "A", "data": {}},
			{"id": "paper_x", "type": "paper", "label": "Second copy", "data": {}}
		],
		"edges": [],
		"metadata": {}
	}`))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	p := paper("x")
	p.Title = "Fresh"
	g.AddPaper(p, nil)

	var copies []string
	for _, n := range g.Snapshot().Nodes {
		if n.ID == "paper_x" {
			copies = append(copies, n.Label)
		}
	}
	if len(copies) != 1 || copies[0] != "Fresh" {
		t.Errorf("paper_x copies = %v, want [Fresh]", copies)
	}
	if got := mustNode(t, g, "author_A").Label; got != "A" {
		t.Errorf("author_A label = %q", got)
	}
	if got := g.Metadata().PaperCount; got != 1 {
		t.Errorf("PaperCount = %d, want 1", got)
	}
}

func TestImport_FormatErrorsLeaveGraphUnchanged(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantSection string
	}{
		{"not json", `{nodes:`, ""},
		{"array", `[]`, ""},
		{"missing nodes", `{"edges": [], "metadata": {}}`, "nodes"},
		{"missing edges", `{"nodes": [], "metadata": {}}`, "edges"},
		{"null metadata", `{"nodes": [], "edges": [], "metadata": null}`, "metadata"},
		{"nodes not a list", `{"nodes": {}, "edges": [], "metadata": {}}`, "nodes"},
		{"edges wrong shape", `{"nodes": [], "edges": [1], "metadata": {}}`, "edges"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := seededGraph(t)
			before, _ := g.Export()

			err := g.Import([]byte(tt.data))
			if !IsFormatError(err) {
				t.Fatalf("Import() error = %v, want FormatError", err)
			}
			var fe *FormatError
			errors.As(err, &fe)
			if fe.Section != tt.wantSection {
				t.Errorf("Section = %q, want %q", fe.Section, tt.wantSection)
			}

			after, _ := g.Export()
			if !bytes.Equal(before, after) {
				t.Error("graph changed after failed import")
			}
		})
	}
}

func TestFormatError_Message(t *testing.T) {
	err := &FormatError{Section: "edges", Reason: "missing section"}
	if got := err.Error(); got != "invalid graph data (edges): missing section" {
		t.Errorf("Error() = %q", got)
	}
	if IsFormatError(errors.New("other")) {
		t.Error("IsFormatError(plain error) = true")
	}
}

func TestCheck(t *testing.T) {
	g := seededGraph(t)
	if r := g.Check(); !r.Clean() {
		t.Errorf("ingested graph should be clean, got %+v", r)
	}

	err := g.Import([]byte(`{
		"nodes": [
			{"id": "paper_1", "type": "paper", "label": "One", "data": {}},
			{"id": "paper_1", "type": "paper", "label": "One again", "data": {}}
		],
		"edges": [
			{"id": "e1", "source": "paper_1", "target": "paper_9", "type": "cites", "weight": 1},
			{"id": "e1", "source": "paper_1", "target": "paper_1", "type": "cites", "weight": 1},
			{"id": "e2", "source": "paper_1", "target": "paper_1", "type": "bogus", "weight": 1}
		],
		"metadata": {}
	}`))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	r := g.Check()
	if r.Clean() {
		t.Fatal("Check() reported a clean graph")
	}
	if len(r.OrphanedEdges) != 1 || r.OrphanedEdges[0].Reason != "missing_target" {
		t.Errorf("OrphanedEdges = %+v", r.OrphanedEdges)
	}
	if r.DuplicateEdges["e1"] != 2 {
		t.Errorf("DuplicateEdges = %v", r.DuplicateEdges)
	}
	if r.DuplicateNodes["paper_1"] != 2 {
		t.Errorf("DuplicateNodes = %v", r.DuplicateNodes)
	}
	if len(r.InvalidEdges) != 1 || r.InvalidEdges[0].ID != "e2" {
		t.Errorf("InvalidEdges = %+v", r.InvalidEdges)
	}
	if r.Nodes != 2 || r.Edges != 3 {
		t.Errorf("counts = %d nodes, %d edges", r.Nodes, r.Edges)
	}
}
