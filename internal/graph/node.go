package graph

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/matsen/papergraph/internal/reference"
)

// Kind is the entity type of a node.
type Kind string

// Node kinds.
const (
	KindPaper    Kind = "paper"
	KindAuthor   Kind = "author"
	KindTopic    Kind = "topic"
	KindKeyword  Kind = "keyword"
	KindCitation Kind = "citation"
)

// Kinds lists every node kind in display order.
var Kinds = []Kind{KindPaper, KindAuthor, KindTopic, KindKeyword, KindCitation}

// ErrUnknownKind is returned by ParseKind for names outside Kinds.
var ErrUnknownKind = errors.New("unknown node kind")

// ParseKind converts a user-supplied name into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Node is one vertex of the knowledge graph.
//
// Size and Color are presentation hints derived from the payload; they are
// recomputed by the registry and are never authoritative on their own.
type Node struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"type"`
	Label    string    `json:"label"`
	Payload  Payload   `json:"data"`
	Size     float64   `json:"size"`
	Color    string    `json:"color"`
	Position *Position `json:"position,omitempty"`
}

// Position is a layout coordinate supplied by a renderer. The graph never sets it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Payload is a tagged variant: exactly one of the kind-specific fields is set,
// matching the node's Kind. Extra carries fields this version does not model.
type Payload struct {
	Paper    *PaperData     `json:"paper,omitempty"`
	Author   *Association   `json:"author,omitempty"`
	Topic    *Association   `json:"topic,omitempty"`
	Keyword  *Association   `json:"keyword,omitempty"`
	Citation *CitationData  `json:"citation,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// PaperData is the payload of a paper node: the record as ingested plus its analysis.
type PaperData struct {
	Record   reference.PaperRecord     `json:"record"`
	Analysis *reference.AnalysisRecord `json:"analysis,omitempty"`
}

// Association is the payload of author, topic, and keyword nodes: the entity
// name and the ids of the paper nodes that reference it, in first-seen order.
type Association struct {
	Name   string   `json:"name"`
	Papers []string `json:"papers"`
}

// CitationData is the payload of a citation node.
type CitationData struct {
	Text string `json:"text"`
}

// association returns the back-reference list of an author, topic, or keyword payload.
func (p *Payload) association() *Association {
	switch {
	case p.Author != nil:
		return p.Author
	case p.Topic != nil:
		return p.Topic
	case p.Keyword != nil:
		return p.Keyword
	default:
		return nil
	}
}

// abstract returns the abstract-like text of the payload, if any.
func (p *Payload) abstract() string {
	if p.Paper != nil && p.Paper.Record.Abstract != "" {
		return p.Paper.Record.Abstract
	}
	if s, ok := p.Extra["abstract"].(string); ok {
		return s
	}
	return ""
}

// Papers returns the paper ids associated with an author, topic, or keyword node.
func (n Node) Papers() []string {
	if a := n.Payload.association(); a != nil {
		return a.Papers
	}
	return nil
}

// CanonicalKey replaces every run of whitespace in label with a single "_".
// No other normalization is applied, so labels differing in case stay distinct.
func CanonicalKey(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	inSpace := false
	for _, r := range label {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// NodeID returns the id of the node for an entity label of the given kind.
// Paper ids are not canonicalized; use PaperNodeID for those.
func NodeID(kind Kind, label string) string {
	return string(kind) + "_" + CanonicalKey(label)
}

// PaperNodeID returns the node id for a paper record id.
func PaperNodeID(recordID string) string {
	return string(KindPaper) + "_" + recordID
}

// clone returns a deep copy of n that shares no slices or maps with it.
func (n *Node) clone() Node {
	c := *n
	if n.Position != nil {
		pos := *n.Position
		c.Position = &pos
	}
	c.Payload = n.Payload.clone()
	return c
}

func (p Payload) clone() Payload {
	c := Payload{Extra: cloneMap(p.Extra)}
	if p.Paper != nil {
		c.Paper = &PaperData{
			Record:   cloneRecord(p.Paper.Record),
			Analysis: cloneAnalysis(p.Paper.Analysis),
		}
	}
	c.Author = p.Author.clone()
	c.Topic = p.Topic.clone()
	c.Keyword = p.Keyword.clone()
	if p.Citation != nil {
		cit := *p.Citation
		c.Citation = &cit
	}
	return c
}

func (a *Association) clone() *Association {
	if a == nil {
		return nil
	}
	return &Association{Name: a.Name, Papers: cloneStrings(a.Papers)}
}

func cloneRecord(r reference.PaperRecord) reference.PaperRecord {
	r.Authors = cloneStrings(r.Authors)
	r.Extra = cloneMap(r.Extra)
	return r
}

func cloneAnalysis(a *reference.AnalysisRecord) *reference.AnalysisRecord {
	if a == nil {
		return nil
	}
	c := *a
	c.Topics = cloneStrings(a.Topics)
	c.Keywords = cloneStrings(a.Keywords)
	c.Findings = cloneStrings(a.Findings)
	c.Methodology = cloneStrings(a.Methodology)
	c.Citations = cloneStrings(a.Citations)
	if a.Entities != nil {
		c.Entities = append([]reference.Entity(nil), a.Entities...)
	}
	if a.Sentiment != nil {
		s := *a.Sentiment
		c.Sentiment = &s
	}
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

// cloneMap copies the top level of m; nested values are shared.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
