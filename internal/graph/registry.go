package graph

import (
	"math"
	"strings"

	"github.com/matsen/papergraph/internal/reference"
)

// neutralColor is used for paper categories missing from categoryColors.
const neutralColor = "#6B7280"

// categoryColors maps paper categories to node colors.
var categoryColors = map[string]string{
	"Machine Learning": "#3B82F6",
	"Computer Science": "#6366F1",
	"Physics":          "#8B5CF6",
	"Mathematics":      "#A855F7",
	"Biology":          "#10B981",
	"Chemistry":        "#059669",
	"Engineering":      "#DC2626",
	"Medicine":         "#EA580C",
	"Psychology":       "#D97706",
	"Economics":        "#CA8A04",
	"Climate Science":  "#65A30D",
	"Quantum Physics":  "#7C3AED",
	"Biotechnology":    "#059669",
	"Renewable Energy": "#16A34A",
	"Blockchain":       "#2563EB",
}

// CategoryColor returns the paper node color for a category.
func CategoryColor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return neutralColor
}

// entityStyle fixes the initial size, per-paper growth, and color of an entity kind.
type entityStyle struct {
	baseSize float64
	perPaper float64
	color    string
}

var entityStyles = map[Kind]entityStyle{
	KindAuthor:  {baseSize: 15, perPaper: 3, color: "#4F46E5"},
	KindTopic:   {baseSize: 12, perPaper: 2, color: "#10B981"},
	KindKeyword: {baseSize: 8, perPaper: 1.5, color: "#F59E0B"},
}

// Paper node size bounds.
const (
	minPaperSize = 10
	maxPaperSize = 50
)

// paperSize grows with citation count: citations/10 + 10, clamped to [10, 50].
func paperSize(citations int) float64 {
	size := float64(citations)/10 + 10
	return math.Max(minPaperSize, math.Min(maxPaperSize, size))
}

// newPaperNode builds a fresh paper node. The analysis is stored as given.
func newPaperNode(paper reference.PaperRecord, analysis *reference.AnalysisRecord) *Node {
	return &Node{
		ID:    PaperNodeID(paper.ID),
		Kind:  KindPaper,
		Label: paper.Title,
		Payload: Payload{Paper: &PaperData{
			Record:   cloneRecord(paper),
			Analysis: cloneAnalysis(analysis),
		}},
		Size:  paperSize(paper.Citations),
		Color: CategoryColor(paper.Category),
	}
}

// upsertEntity returns the author, topic, or keyword node for label, creating it
// on first reference. The caller must hold the write lock.
func (g *Graph) upsertEntity(kind Kind, label string) *Node {
	id := NodeID(kind, label)
	if n := g.node(id); n != nil {
		return n
	}

	style := entityStyles[kind]
	assoc := &Association{Name: label, Papers: []string{}}
	n := &Node{
		ID:    id,
		Kind:  kind,
		Label: label,
		Size:  style.baseSize,
		Color: style.color,
	}
	switch kind {
	case KindAuthor:
		n.Payload.Author = assoc
	case KindTopic:
		n.Payload.Topic = assoc
	case KindKeyword:
		n.Payload.Keyword = assoc
	}

	g.appendNode(n)
	return n
}

// recordAssociation adds paperID to the node's back-references if absent and
// grows its size. Size never shrinks. Reports whether the id was added.
func recordAssociation(n *Node, paperID string) bool {
	assoc := n.Payload.association()
	if assoc == nil {
		return false
	}
	for _, id := range assoc.Papers {
		if id == paperID {
			return false
		}
	}
	assoc.Papers = append(assoc.Papers, paperID)

	style := entityStyles[n.Kind]
	grown := math.Max(style.baseSize, float64(len(assoc.Papers))*style.perPaper)
	n.Size = math.Max(n.Size, grown)
	return true
}

// isBlank reports whether a label carries no characters besides whitespace.
func isBlank(label string) bool {
	return strings.TrimSpace(label) == ""
}
