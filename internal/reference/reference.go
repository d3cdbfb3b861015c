// Package reference defines the input records consumed by the graph builder.
package reference

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// PaperRecord is one paper as handed to the graph builder by an upstream
// collaborator (importer, arXiv client, PDF reader, or a hand-written entry).
type PaperRecord struct {
	// Identity
	ID  string `json:"id"`            // Stable identifier; the paper node id is "paper_" + ID
	DOI string `json:"doi,omitempty"` // Digital Object Identifier, if known

	// Metadata
	Title     string   `json:"title"`
	Authors   []string `json:"authors"` // Display names in listing order
	Year      int      `json:"year,omitempty"`
	Category  string   `json:"category,omitempty"` // Drives the paper node color
	Citations int      `json:"citations,omitempty"`
	Abstract  string   `json:"abstract,omitempty"`
	Venue     string   `json:"venue,omitempty"`
	URL       string   `json:"url,omitempty"`

	// Extra holds free-form fields that are not part of the fixed schema.
	// They round-trip through JSON unchanged.
	Extra map[string]any `json:"-"`
}

// knownPaperFields lists the JSON keys decoded into PaperRecord fields.
var knownPaperFields = map[string]bool{
	"id": true, "doi": true, "title": true, "authors": true, "year": true,
	"category": true, "citations": true, "abstract": true, "venue": true, "url": true,
}

// paperFields has the same layout as PaperRecord without its JSON methods.
type paperFields PaperRecord

// UnmarshalJSON decodes the fixed schema and collects unknown keys into Extra.
func (p *PaperRecord) UnmarshalJSON(data []byte) error {
	var fields paperFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields.Extra = nil
	for key, value := range raw {
		if knownPaperFields[key] {
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("decoding field %q: %w", key, err)
		}
		if fields.Extra == nil {
			fields.Extra = make(map[string]any)
		}
		fields.Extra[key] = v
	}

	*p = PaperRecord(fields)
	return nil
}

// MarshalJSON encodes the fixed schema with Extra merged in at the top level.
// Extra keys never override fixed fields.
func (p PaperRecord) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(paperFields(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if knownPaperFields[k] {
			continue
		}
		value, err := json.Marshal(p.Extra[k])
		if err != nil {
			return nil, fmt.Errorf("encoding field %q: %w", k, err)
		}
		merged[k] = value
	}
	return json.Marshal(merged)
}

// AnalysisRecord is the output of the text-analysis stage for one paper.
// Absent fields are treated as empty by every consumer.
type AnalysisRecord struct {
	Topics      []string   `json:"topics,omitempty"`
	Keywords    []string   `json:"keywords,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Findings    []string   `json:"findings,omitempty"`
	Methodology []string   `json:"methodology,omitempty"`
	Sentiment   *Sentiment `json:"sentiment,omitempty"`
	Citations   []string   `json:"citations,omitempty"` // In-text citation markers, e.g. "(Smith, 2020)"
	Entities    []Entity   `json:"entities,omitempty"`
}

// Sentiment is a coarse tone label with a confidence score in [0, 1].
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Entity is a span of text recognized as an email, URL, or proper noun.
type Entity struct {
	Text  string  `json:"entity"`
	Type  string  `json:"type"`
	Score float64 `json:"score"`
	Start int     `json:"start"`
	End   int     `json:"end"`
}

// Entry pairs a paper record with its analysis. It is the unit stored in
// papers.jsonl and accepted by the HTTP ingestion endpoint.
type Entry struct {
	Paper    PaperRecord     `json:"paper"`
	Analysis *AnalysisRecord `json:"analysis,omitempty"`
}

// Validation errors.
var (
	ErrEmptyID    = errors.New("paper id is required")
	ErrEmptyTitle = errors.New("paper title is required")
)

// ValidateForCreate checks the fields a stored entry must carry.
// The graph builder itself accepts any record; this guards the record store.
func (e *Entry) ValidateForCreate() error {
	if e.Paper.ID == "" {
		return ErrEmptyID
	}
	if e.Paper.Title == "" {
		return ErrEmptyTitle
	}
	return nil
}
