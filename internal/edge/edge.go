// Package edge defines the typed, weighted edges of the paper knowledge graph.
package edge

import (
	"errors"
	"strings"
)

// Kind is the relationship family of an edge.
type Kind string

// Edge kinds.
const (
	Cites            Kind = "cites"
	AuthoredBy       Kind = "authored_by"
	ContainsTopic    Kind = "contains_topic"
	SimilarTo        Kind = "similar_to"
	CollaboratesWith Kind = "collaborates_with"
)

// Kinds lists every edge kind in display order.
var Kinds = []Kind{Cites, AuthoredBy, ContainsTopic, SimilarTo, CollaboratesWith}

// Valid reports whether k is a known edge kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// keywordPrefix is the id prefix of keyword nodes. Containment edges to
// keywords use their own id infix so they never collide with topic edges.
const keywordPrefix = "keyword_"

// Edge is a directed relationship between two graph nodes.
type Edge struct {
	// Identity: derived from (SourceID, TargetID, Kind), see ID
	ID       string `json:"id"`
	SourceID string `json:"source"`
	TargetID string `json:"target"`
	Kind     Kind   `json:"type"`

	// Presentation
	Weight float64 `json:"weight"`
	Label  string  `json:"label,omitempty"`
}

// ID derives the deterministic edge id for a (source, target, kind) triple.
// The same triple always yields the same id; argument order matters.
func ID(sourceID, targetID string, kind Kind) string {
	switch kind {
	case AuthoredBy:
		return sourceID + "_authors_" + targetID
	case ContainsTopic:
		if strings.HasPrefix(targetID, keywordPrefix) {
			return sourceID + "_contains_keyword_" + targetID
		}
		return sourceID + "_contains_" + targetID
	case CollaboratesWith:
		return sourceID + "_collaborates_" + targetID
	case SimilarTo:
		return sourceID + "_similar_" + targetID
	case Cites:
		return sourceID + "_cites_" + targetID
	default:
		return sourceID + "_" + string(kind) + "_" + targetID
	}
}

// New returns an edge with its id derived from the endpoints and kind.
func New(sourceID, targetID string, kind Kind, weight float64) *Edge {
	return &Edge{
		ID:       ID(sourceID, targetID, kind),
		SourceID: sourceID,
		TargetID: targetID,
		Kind:     kind,
		Weight:   weight,
	}
}

// Validation errors.
var (
	ErrEmptyID       = errors.New("edge id is required")
	ErrEmptySourceID = errors.New("source is required")
	ErrEmptyTargetID = errors.New("target is required")
	ErrInvalidKind   = errors.New("unknown edge type")
)

// Validate checks that an edge carries an id, both endpoints, and a known kind.
// Self-loops are allowed.
func (e *Edge) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if e.SourceID == "" {
		return ErrEmptySourceID
	}
	if e.TargetID == "" {
		return ErrEmptyTargetID
	}
	if !e.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

// Key returns the identity tuple for this edge.
func (e *Edge) Key() EdgeKey {
	return EdgeKey{
		SourceID: e.SourceID,
		TargetID: e.TargetID,
		Kind:     e.Kind,
	}
}

// EdgeKey represents the identity tuple of an edge.
type EdgeKey struct {
	SourceID string
	TargetID string
	Kind     Kind
}

// OrphanedEdgeInfo describes an edge with an endpoint that is not a known node.
type OrphanedEdgeInfo struct {
	ID       string `json:"id"`
	SourceID string `json:"source"`
	TargetID string `json:"target"`
	Kind     Kind   `json:"type"`
	Reason   string `json:"reason"` // "missing_source", "missing_target", or "missing_both"
}

// DetectOrphanedEdges splits edges into those whose endpoints are all in
// validIDs and those with at least one dangling endpoint.
func DetectOrphanedEdges(edges []Edge, validIDs map[string]bool) (orphaned []OrphanedEdgeInfo, valid []Edge) {
	for _, e := range edges {
		sourceOK := validIDs[e.SourceID]
		targetOK := validIDs[e.TargetID]

		if sourceOK && targetOK {
			valid = append(valid, e)
			continue
		}

		info := OrphanedEdgeInfo{
			ID:       e.ID,
			SourceID: e.SourceID,
			TargetID: e.TargetID,
			Kind:     e.Kind,
		}
		switch {
		case !sourceOK && !targetOK:
			info.Reason = "missing_both"
		case !sourceOK:
			info.Reason = "missing_source"
		default:
			info.Reason = "missing_target"
		}
		orphaned = append(orphaned, info)
	}
	return orphaned, valid
}

// FindDuplicateEdges returns the ids that occur more than once, with their counts.
func FindDuplicateEdges(edges []Edge) map[string]int {
	counts := make(map[string]int)
	for _, e := range edges {
		counts[e.ID]++
	}

	duplicates := make(map[string]int)
	for id, count := range counts {
		if count > 1 {
			duplicates[id] = count
		}
	}
	return duplicates
}
