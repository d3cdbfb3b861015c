package graph

import (
	"testing"

	"github.com/matsen/papergraph/internal/edge"
	"github.com/matsen/papergraph/internal/reference"
)

func TestAddPaper_EndToEndScenario(t *testing.T) {
	g := newTestGraph(t)

	p1 := paper("1", "Alice", "Bob")
	p1.Citations = 100
	got := g.AddPaper(p1, analysis([]string{"nlp"}, []string{"transformer", "attention"}))

	if got.ID != "paper_1" || got.Size != 20 {
		t.Errorf("AddPaper() = %s size %v, want paper_1 size 20", got.ID, got.Size)
	}

	wantSizes := map[string]float64{
		"paper_1":             20,
		"author_Alice":        15,
		"author_Bob":          15,
		"topic_nlp":           12,
		"keyword_transformer": 8,
		"keyword_attention":   8,
	}
	for id, size := range wantSizes {
		if n := mustNode(t, g, id); n.Size != size {
			t.Errorf("%s size = %v, want %v", id, n.Size, size)
		}
	}

	stats := g.Stats()
	if stats.Total.Nodes != 6 {
		t.Errorf("total nodes = %d, want 6", stats.Total.Nodes)
	}
	if stats.Edges.Authorships != 2 || stats.Edges.Topics != 3 || stats.Edges.Collaborations != 1 {
		t.Errorf("edge stats = %+v", stats.Edges)
	}

	for _, id := range []string{"paper_1_contains_keyword_keyword_transformer", "paper_1_contains_keyword_keyword_attention"} {
		e, ok := findEdge(g, id)
		if !ok {
			t.Fatalf("edge %s missing", id)
		}
		if e.Weight != 0.5 || e.Kind != edge.ContainsTopic {
			t.Errorf("%s = %+v, want contains_topic weight 0.5", id, e)
		}
	}
	if e, ok := findEdge(g, "paper_1_contains_topic_nlp"); !ok || e.Weight != 1 {
		t.Errorf("topic edge = %+v, %v", e, ok)
	}

	collab, ok := findEdge(g, "author_Alice_collaborates_author_Bob")
	if !ok || collab.Weight != 1 {
		t.Fatalf("collaboration = %+v, %v, want weight 1", collab, ok)
	}

	g.AddPaper(paper("2", "Alice", "Bob"), analysis([]string{"nlp"}, []string{"transformer", "attention"}))

	collab, _ = findEdge(g, "author_Alice_collaborates_author_Bob")
	if collab.Weight != 2 {
		t.Errorf("collaboration weight = %v, want 2", collab.Weight)
	}

	sim, ok := findEdge(g, "paper_2_similar_paper_1")
	if !ok {
		t.Fatal("similarity edge paper_2 -> paper_1 missing")
	}
	if sim.SourceID != "paper_2" || sim.TargetID != "paper_1" || sim.Kind != edge.SimilarTo {
		t.Errorf("similarity edge = %+v", sim)
	}
	if sim.Weight != 1 || sim.Label != "100% similar" {
		t.Errorf("similarity = %v %q, want 1 \"100%% similar\"", sim.Weight, sim.Label)
	}
	if _, ok := findEdge(g, "paper_1_similar_paper_2"); ok {
		t.Error("similarity must only be computed from the new paper")
	}

	meta := g.Metadata()
	if meta.PaperCount != 2 || meta.AuthorCount != 2 || meta.TopicCount != 1 {
		t.Errorf("metadata = %+v", meta)
	}
}

func TestAddPaper_AuthorCountEqualsDistinctKeys(t *testing.T) {
	g := newTestGraph(t)

	papers := [][]string{
		{"Alice", "Bob"},
		{"Bob", "Carol"},
		{"Alice"},
		{"Ada Lovelace", "Ada  Lovelace", "alice"},
		{},
	}
	distinct := map[string]bool{}
	for i, authors := range papers {
		g.AddPaper(paper(string(rune('a'+i)), authors...), nil)
		for _, a := range authors {
			distinct[NodeID(KindAuthor, a)] = true
		}
	}

	if got := len(g.FilterByKind(KindAuthor)); got != len(distinct) {
		t.Errorf("author nodes = %d, want %d", got, len(distinct))
	}
	if g.Metadata().AuthorCount != len(distinct) {
		t.Errorf("AuthorCount = %d, want %d", g.Metadata().AuthorCount, len(distinct))
	}
	if _, ok := g.Node("author_Ada_Lovelace"); !ok {
		t.Error("whitespace runs should collapse to one separator")
	}
	if _, ok := g.Node("author_alice"); !ok {
		t.Error("labels differing in case must stay distinct")
	}
}

func TestAddPaper_EntityReuseGrowsSize(t *testing.T) {
	g := newTestGraph(t)
	for _, id := range []string{"1", "2", "3", "4", "5", "6"} {
		g.AddPaper(paper(id, "Alice"), analysis([]string{"nlp"}, []string{"graphs"}))
	}

	author := mustNode(t, g, "author_Alice")
	if len(author.Papers()) != 6 {
		t.Errorf("author papers = %v, want 6", author.Papers())
	}
	if author.Size != 18 {
		t.Errorf("author size = %v, want 18", author.Size)
	}
	if topic := mustNode(t, g, "topic_nlp"); topic.Size != 12 {
		t.Errorf("topic size = %v, want 12", topic.Size)
	}
	if kw := mustNode(t, g, "keyword_graphs"); kw.Size != 9 {
		t.Errorf("keyword size = %v, want 9", kw.Size)
	}
	if got := len(g.FilterByKind(KindAuthor)); got != 1 {
		t.Errorf("author nodes = %d, want 1", got)
	}

	// Re-ingesting an existing paper id must not duplicate the association.
	g.AddPaper(paper("6", "Alice"), nil)
	if got := len(mustNode(t, g, "author_Alice").Papers()); got != 6 {
		t.Errorf("author papers after re-ingest = %d, want 6", got)
	}
}

func TestAddPaper_CollaborationOrderSensitive(t *testing.T) {
	g := newTestGraph(t)

	const k = 3
	for i := 0; i < k; i++ {
		g.AddPaper(paper(string(rune('a'+i)), "A", "B"), nil)
	}
	ab, ok := findEdge(g, "author_A_collaborates_author_B")
	if !ok || ab.Weight != k {
		t.Fatalf("A->B = %+v, %v, want weight %d", ab, ok, k)
	}

	g.AddPaper(paper("z", "B", "A"), nil)

	ba, ok := findEdge(g, "author_B_collaborates_author_A")
	if !ok || ba.Weight != 1 {
		t.Errorf("B->A = %+v, %v, want separate edge with weight 1", ba, ok)
	}
	ab, _ = findEdge(g, "author_A_collaborates_author_B")
	if ab.Weight != k {
		t.Errorf("A->B weight = %v, want unchanged %d", ab.Weight, k)
	}
	if got := countEdgesOfKind(g, edge.CollaboratesWith); got != 2 {
		t.Errorf("collaboration edges = %d, want 2", got)
	}
}

func TestAddPaper_CollaborationSkipsRepeatedAuthor(t *testing.T) {
	g := newTestGraph(t)
	g.AddPaper(paper("1", "A", "B", "A"), nil)

	if _, ok := findEdge(g, "author_A_collaborates_author_A"); ok {
		t.Error("an author must not collaborate with themselves")
	}
	if got := countEdgesOfKind(g, edge.CollaboratesWith); got != 2 {
		t.Errorf("collaboration edges = %d, want 2 (A->B, B->A)", got)
	}
	if got := countEdgesOfKind(g, edge.AuthoredBy); got != 2 {
		t.Errorf("authorship edges = %d, want 2", got)
	}
}

func TestAddPaper_SimilarityThresholdIsStrict(t *testing.T) {
	tests := []struct {
		name        string
		anchorTops  []string
		anchorWords []string
		otherTops   []string
		otherWords  []string
		wantEdge    bool
		wantLabel   string
	}{
		// 3/5 keyword overlap and no topic overlap averages to exactly 0.30.
		{"exactly 0.30", []string{"y"}, words("k", 3), []string{"x"}, words("k", 5), false, ""},
		// 1/5 keywords and 2/5 topics average to 0.30, which is 0.30000000000000004 in floats.
		{"exactly 0.30 with rounding", words("t", 2), words("k", 1), words("t", 5), words("k", 5), false, ""},
		// 31/50 keyword overlap averages to 0.31.
		{"0.31", []string{"y"}, words("k", 31), []string{"x"}, words("k", 50), true, "31% similar"},
		// 1/5 keywords and 3/7 topics average to about 0.314.
		{"just above", words("t", 3), words("k", 1), words("t", 7), words("k", 5), true, "31% similar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph(t)
			g.AddPaper(paper("old"), analysis(tt.otherTops, tt.otherWords))
			g.AddPaper(paper("new"), analysis(tt.anchorTops, tt.anchorWords))

			e, ok := findEdge(g, "paper_new_similar_paper_old")
			if ok != tt.wantEdge {
				t.Fatalf("edge present = %v, want %v (score %v)", ok, tt.wantEdge,
					Similarity(analysis(tt.anchorTops, tt.anchorWords), analysis(tt.otherTops, tt.otherWords)))
			}
			if ok && e.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", e.Label, tt.wantLabel)
			}
		})
	}
}

func TestAddPaper_MissingAnalysisNeverLinksSimilar(t *testing.T) {
	g := newTestGraph(t)
	g.AddPaper(paper("1"), analysis([]string{"nlp"}, []string{"a"}))
	g.AddPaper(paper("2"), nil)
	g.AddPaper(paper("3"), analysis([]string{"nlp"}, []string{"a"}))

	if got := countEdgesOfKind(g, edge.SimilarTo); got != 1 {
		t.Errorf("similarity edges = %d, want 1 (paper_3 -> paper_1)", got)
	}
	if _, ok := findEdge(g, "paper_3_similar_paper_1"); !ok {
		t.Error("paper_3 -> paper_1 missing")
	}
}

func TestAddPaper_KeywordCap(t *testing.T) {
	g := newTestGraph(t)
	g.AddPaper(paper("1"), analysis(nil, words("kw", 8)))

	if got := len(g.FilterByKind(KindKeyword)); got != 5 {
		t.Errorf("keyword nodes = %d, want 5", got)
	}
	if _, ok := g.Node("keyword_kw5"); ok {
		t.Error("sixth keyword must be ignored")
	}

	// The full keyword list still feeds similarity.
	full := mustNode(t, g, "paper_1").Payload.Paper.Analysis.Keywords
	if len(full) != 8 {
		t.Errorf("stored keywords = %d, want 8", len(full))
	}
}

func TestAddPaper_ReplaceKeepsStaleEdges(t *testing.T) {
	g := newTestGraph(t)
	g.AddPaper(paper("1", "Alice"), analysis([]string{"nlp"}, nil))
	g.AddPaper(paper("2", "Bob"), nil)

	replacement := paper("1", "Carol")
	replacement.Title = "Revised"
	g.AddPaper(replacement, nil)

	papers := g.FilterByKind(KindPaper)
	if ids := nodeIDs(papers); len(ids) != 2 || ids[0] != "paper_2" || ids[1] != "paper_1" {
		t.Errorf("paper order = %v, want [paper_2 paper_1]", ids)
	}
	n := mustNode(t, g, "paper_1")
	if n.Label != "Revised" || n.Payload.Paper.Analysis != nil {
		t.Errorf("paper_1 not fully replaced: %+v", n)
	}
	if _, ok := findEdge(g, "author_Alice_authors_paper_1"); !ok {
		t.Error("authorship edge from the old payload should be kept")
	}
	if _, ok := findEdge(g, "paper_1_contains_topic_nlp"); !ok {
		t.Error("topic edge from the old payload should be kept")
	}
	if g.Metadata().PaperCount != 2 {
		t.Errorf("PaperCount = %d, want 2", g.Metadata().PaperCount)
	}
}

func TestAddPaper_PaperSizeAndColor(t *testing.T) {
	tests := []struct {
		citations int
		category  string
		wantSize  float64
		wantColor string
	}{
		{0, "Physics", 10, "#8B5CF6"},
		{55, "Machine Learning", 15.5, "#3B82F6"},
		{1000, "Underwater Basket Weaving", 50, neutralColor},
		{-500, "", 10, neutralColor},
	}

	for _, tt := range tests {
		g := newTestGraph(t)
		p := paper("1")
		p.Citations = tt.citations
		p.Category = tt.category
		n := g.AddPaper(p, nil)
		if n.Size != tt.wantSize || n.Color != tt.wantColor {
			t.Errorf("citations=%d category=%q: size %v color %s, want %v %s",
				tt.citations, tt.category, n.Size, n.Color, tt.wantSize, tt.wantColor)
		}
	}
}

func TestAddPaper_BlankLabelsSkipped(t *testing.T) {
	g := newTestGraph(t)
	g.AddPaper(paper("1", "  ", "Alice"), analysis([]string{""}, []string{"\t"}))

	stats := g.Stats()
	if stats.Total.Nodes != 2 {
		t.Errorf("nodes = %d, want 2 (paper + Alice)", stats.Total.Nodes)
	}
}

func TestAddPaper_ReturnsDetachedCopy(t *testing.T) {
	g := newTestGraph(t)
	rec := paper("1", "Alice")
	an := analysis([]string{"nlp"}, nil)
	n := g.AddPaper(rec, an)

	n.Label = "mutated"
	n.Payload.Paper.Record.Authors[0] = "Mallory"
	rec.Authors[0] = "Eve"
	an.Topics[0] = "vision"

	stored := mustNode(t, g, "paper_1")
	if stored.Label != "Paper 1" {
		t.Errorf("stored label = %q", stored.Label)
	}
	if stored.Payload.Paper.Record.Authors[0] != "Alice" {
		t.Errorf("stored authors = %v", stored.Payload.Paper.Record.Authors)
	}
	if stored.Payload.Paper.Analysis.Topics[0] != "nlp" {
		t.Errorf("stored topics = %v", stored.Payload.Paper.Analysis.Topics)
	}
}

func TestAddPaper_MetadataTimestamps(t *testing.T) {
	g := newTestGraph(t)
	created := g.Metadata().CreatedAt

	g.AddPaper(paper("1"), nil)
	meta := g.Metadata()
	if !meta.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed: %v -> %v", created, meta.CreatedAt)
	}
	if !meta.UpdatedAt.After(created) {
		t.Errorf("UpdatedAt = %v, want after %v", meta.UpdatedAt, created)
	}
}

func TestSimilarityAndJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"both empty", nil, nil, 0},
		{"one empty", []string{"x"}, nil, 0},
		{"identical", []string{"x", "y"}, []string{"y", "x"}, 1},
		{"half", []string{"x"}, []string{"x", "y"}, 0.5},
		{"duplicates collapse", []string{"x", "x"}, []string{"x"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Jaccard(tt.a, tt.b); got != tt.want {
				t.Errorf("Jaccard() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := Similarity(nil, analysis(nil, nil)); got != 0 {
		t.Errorf("Similarity(nil, _) = %v, want 0", got)
	}
	got := Similarity(
		&reference.AnalysisRecord{Keywords: []string{"a", "b"}, Topics: []string{"t"}},
		&reference.AnalysisRecord{Keywords: []string{"a"}, Topics: []string{"t"}},
	)
	if got != 0.75 {
		t.Errorf("Similarity() = %v, want 0.75", got)
	}
}
