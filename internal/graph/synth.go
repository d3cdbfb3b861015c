package graph

import (
	"fmt"
	"math"

	"github.com/matsen/papergraph/internal/edge"
	"github.com/matsen/papergraph/internal/reference"
)

// Edge weights and limits for the derivation rules.
const (
	authorshipWeight = 1.0
	topicWeight      = 1.0
	keywordWeight    = 0.5

	// maxKeywordEdges caps keyword containment edges per paper. Later
	// keywords are ignored for node and edge creation.
	maxKeywordEdges = 5

	// SimilarityThreshold is the score a paper pair must strictly exceed
	// to be linked by a similar_to edge.
	SimilarityThreshold = 0.3
)

// linkAuthorship creates the author -> paper edge. Weight stays fixed at 1.
func (g *Graph) linkAuthorship(authorID, paperID string) {
	g.upsertEdge(edge.New(authorID, paperID, edge.AuthoredBy, authorshipWeight))
}

// linkContainment creates the paper -> topic or paper -> keyword edge.
func (g *Graph) linkContainment(paperID, targetID string, weight float64) {
	g.upsertEdge(edge.New(paperID, targetID, edge.ContainsTopic, weight))
}

// linkCollaborations connects every pair of authors in listing order. The
// first-listed author is the source, so the same two authors listed in the
// opposite order on another paper get a separate edge. An existing edge for
// the same ordered pair gains 1 weight per paper.
func (g *Graph) linkCollaborations(authorIDs []string) {
	for i := 0; i < len(authorIDs); i++ {
		for j := i + 1; j < len(authorIDs); j++ {
			if authorIDs[i] == authorIDs[j] {
				continue
			}
			e, created := g.upsertEdge(edge.New(authorIDs[i], authorIDs[j], edge.CollaboratesWith, 1))
			if !created {
				e.Weight++
			}
		}
	}
}

// linkSimilar scores the anchor paper against every other paper node and
// links anchor -> other when the score exceeds SimilarityThreshold. Pairs
// between older papers are never rescored.
func (g *Graph) linkSimilar(anchor *Node) int {
	anchorAnalysis := anchor.Payload.Paper.Analysis

	linked := 0
	for _, other := range g.nodes {
		if other.Kind != KindPaper || other.ID == anchor.ID {
			continue
		}
		var otherAnalysis *reference.AnalysisRecord
		if other.Payload.Paper != nil {
			otherAnalysis = other.Payload.Paper.Analysis
		}

		if !exceedsThreshold(anchorAnalysis, otherAnalysis) {
			continue
		}
		score := Similarity(anchorAnalysis, otherAnalysis)

		e, _ := g.upsertEdge(edge.New(anchor.ID, other.ID, edge.SimilarTo, score))
		e.Weight = score
		e.Label = SimilarityLabel(score)
		linked++
	}
	return linked
}

// Similarity is the mean of the keyword-set and topic-set Jaccard coefficients
// of two analyses. A missing analysis on either side scores 0.
func Similarity(a, b *reference.AnalysisRecord) float64 {
	if a == nil || b == nil {
		return 0
	}
	return (Jaccard(a.Keywords, b.Keywords) + Jaccard(a.Topics, b.Topics)) / 2
}

// exceedsThreshold reports whether the similarity of a and b is strictly
// above SimilarityThreshold. It compares the Jaccard fractions as integers so
// a pair scoring exactly 0.30 is never linked through float rounding.
func exceedsThreshold(a, b *reference.AnalysisRecord) bool {
	if a == nil || b == nil {
		return false
	}
	ki, ku := jaccardCounts(a.Keywords, b.Keywords)
	ti, tu := jaccardCounts(a.Topics, b.Topics)
	if ku == 0 {
		ki, ku = 0, 1
	}
	if tu == 0 {
		ti, tu = 0, 1
	}
	// (ki/ku + ti/tu) / 2 > 3/10
	return 10*(ki*tu+ti*ku) > 6*ku*tu
}

// Jaccard returns |A∩B| / |A∪B| over the distinct elements of a and b,
// or 0 when both are empty.
func Jaccard(a, b []string) float64 {
	intersection, union := jaccardCounts(a, b)
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// jaccardCounts returns |A∩B| and |A∪B| over the distinct elements of a and b.
func jaccardCounts(a, b []string) (intersection, union int) {
	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[s] = struct{}{}
	}

	for s := range setA {
		if _, ok := setB[s]; ok {
			intersection++
		}
	}
	return intersection, len(setA) + len(setB) - intersection
}

// SimilarityLabel renders a score as a rounded percentage, e.g. "31% similar".
func SimilarityLabel(score float64) string {
	return fmt.Sprintf("%d%% similar", int(math.Round(score*100)))
}
